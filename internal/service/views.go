package service

import "github.com/skilltrade/server/pkg/models"

// UserCard is the public slice of a user shown to potential partners.
type UserCard struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Rating   float64 `json:"rating"`
}

// MatchView combines the counterpart's card and full skill lists with the
// pair's current match state.
type MatchView struct {
	MatchID          int64              `json:"match_id"`
	Status           models.MatchStatus `json:"match_status"`
	InitiatorID      *int64             `json:"initiator_id,omitempty"`
	TradeRequestTime *int64             `json:"trade_request_time,omitempty"`
	Partner          UserCard           `json:"partner"`
	PartnerTeaching  []string           `json:"partner_teaching"`
	PartnerLearning  []string           `json:"partner_learning"`
}

// MatchSummary is the compact row used by the active-matches listing.
type MatchSummary struct {
	MatchID          int64              `json:"match_id"`
	Status           models.MatchStatus `json:"match_status"`
	InitiatorID      *int64             `json:"initiator_id,omitempty"`
	TradeRequestTime *int64             `json:"trade_request_time,omitempty"`
	Partner          UserCard           `json:"partner"`
}

// TradeStatusView is the full state of a match's bound trade.
type TradeStatusView struct {
	MatchID           int64              `json:"match_id"`
	TradeID           int64              `json:"trade_id"`
	MatchStatus       models.MatchStatus `json:"match_status"`
	Status            models.TradeStatus `json:"status"`
	User1ID           int64              `json:"user1_id"`
	User2ID           int64              `json:"user2_id"`
	User1Skill        string             `json:"user1_skill"`
	User2Skill        string             `json:"user2_skill"`
	User1TeachingDone bool               `json:"user1_teaching_done"`
	User1LearningDone bool               `json:"user1_learning_done"`
	User2TeachingDone bool               `json:"user2_teaching_done"`
	User2LearningDone bool               `json:"user2_learning_done"`
	Completed         *int64             `json:"completed,omitempty"`
}

// RatingView is the result of a rating submission, including the rated
// user's refreshed aggregate.
type RatingView struct {
	RatingID    int64   `json:"rating_id"`
	TradeID     int64   `json:"trade_id"`
	ReviewerID  int64   `json:"reviewer_id"`
	RatedUserID int64   `json:"rated_user_id"`
	Score       int     `json:"score"`
	Feedback    string  `json:"feedback"`
	RatedUser   float64 `json:"rated_user_rating"`
}

// ReportView is the stored dispute record echoed back to the reporter.
type ReportView struct {
	ReportID       int64  `json:"report_id"`
	MatchID        int64  `json:"match_id"`
	TradeID        int64  `json:"trade_id"`
	ReporterID     int64  `json:"reporter_id"`
	ReportedUserID int64  `json:"reported_user_id"`
	Message        string `json:"message"`
}

func tradeStatusView(m *models.Match, t *models.Trade) *TradeStatusView {
	return &TradeStatusView{
		MatchID:           m.ID,
		TradeID:           t.ID,
		MatchStatus:       m.Status,
		Status:            t.Status,
		User1ID:           m.User1ID,
		User2ID:           m.User2ID,
		User1Skill:        t.User1Skill,
		User2Skill:        t.User2Skill,
		User1TeachingDone: t.User1TeachingDone,
		User1LearningDone: t.User1LearningDone,
		User2TeachingDone: t.User2TeachingDone,
		User2LearningDone: t.User2LearningDone,
		Completed:         t.Completed,
	}
}
