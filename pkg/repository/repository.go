package repository

import (
	"context"

	"github.com/skilltrade/server/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRating(ctx context.Context, id int64, rating float64) error
	AdjustTradeTokens(ctx context.Context, id int64, delta int64) error
}

type ProfileRepo interface {
	UpsertProfile(ctx context.Context, p *models.Profile) error
	ProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	ProfileSchema(ctx context.Context, version string) (string, error)
}

type SkillRepo interface {
	SkillByID(ctx context.Context, id int64) (*models.Skill, error)
	SkillByName(ctx context.Context, name string) (*models.Skill, error)
	GetOrCreateSkill(ctx context.Context, name string) (*models.Skill, bool, error)
	ListSkills(ctx context.Context, limit, offset int) ([]models.Skill, error)
	SearchSkills(ctx context.Context, query string, limit int) ([]models.Skill, error)
}

type UserSkillRepo interface {
	AddUserSkill(ctx context.Context, us *models.UserSkill) error
	RemoveUserSkill(ctx context.Context, userID, skillID int64) (bool, error)
	SkillsByUser(ctx context.Context, userID int64) (teaching, learning []models.Skill, err error)
	SkillIDsByUser(ctx context.Context, userID int64, typ models.SkillType) ([]int64, error)
	CandidateUserIDs(ctx context.Context, userID int64, teachIDs, learnIDs []int64) ([]int64, error)
}

type MatchRepo interface {
	CreateMatch(ctx context.Context, user1ID, user2ID int64) (int64, error)
	MatchByID(ctx context.Context, id int64) (*models.Match, error)
	MatchByPair(ctx context.Context, user1ID, user2ID int64) (*models.Match, error)
	MatchesByUser(ctx context.Context, userID int64) ([]models.Match, error)
	SetMatchState(ctx context.Context, id int64, status models.MatchStatus, initiatorID, requestTime *int64) error
	DeleteMatch(ctx context.Context, id int64) error
}

type TradeRepo interface {
	CreateTrade(ctx context.Context, t *models.Trade) (int64, error)
	TradeByMatchID(ctx context.Context, matchID int64) (*models.Trade, error)
	SetCompletionFlag(ctx context.Context, tradeID int64, role models.TradeRole, kind models.ProgressKind, done bool) error
	SetTradeStatus(ctx context.Context, tradeID int64, status models.TradeStatus, completed *int64) error
	CreateTradeHistory(ctx context.Context, h *models.TradeHistory) (int64, error)
	TradeHistoryByTrade(ctx context.Context, tradeID int64) (*models.TradeHistory, error)
}

type RatingRepo interface {
	CreateRating(ctx context.Context, r *models.Rating) (int64, error)
	RatingByTradeAndReviewer(ctx context.Context, tradeID, reviewerID int64) (*models.Rating, error)
	ScoresForUser(ctx context.Context, userID int64) ([]int, error)
}

type ReportRepo interface {
	CreateFraudFlag(ctx context.Context, f *models.FraudFlag) (int64, error)
	ReportsForUser(ctx context.Context, userID int64) ([]models.FraudFlag, error)
}

type ChatRepo interface {
	AppendMessage(ctx context.Context, m *models.ChatMessage) (int64, error)
	MessagesByMatch(ctx context.Context, matchID int64) ([]models.ChatMessage, error)
}
