package models

// SkillType is the direction of a user-skill entry.
type SkillType string

const (
	SkillTeach SkillType = "teach"
	SkillLearn SkillType = "learn"
)

// ParseSkillType validates a raw direction string.
func ParseSkillType(s string) (SkillType, bool) {
	switch SkillType(s) {
	case SkillTeach, SkillLearn:
		return SkillType(s), true
	}
	return "", false
}

// MatchStatus is the lifecycle state of a match. Raw strings live only at the
// storage boundary; everything above it uses these constants.
type MatchStatus string

const (
	MatchPending      MatchStatus = "pending"
	MatchPendingTrade MatchStatus = "pending_trade"
	MatchInTrade      MatchStatus = "in_trade"
	MatchCompleted    MatchStatus = "completed"
)

// TradeStatus is the lifecycle state of a trade record.
type TradeStatus string

const (
	TradeActive    TradeStatus = "active"
	TradeCompleted TradeStatus = "completed"
	TradeReported  TradeStatus = "reported"
)

// TradeRole selects which side of a trade a progress update targets.
type TradeRole string

const (
	RoleUser1 TradeRole = "user1"
	RoleUser2 TradeRole = "user2"
)

func ParseTradeRole(s string) (TradeRole, bool) {
	switch TradeRole(s) {
	case RoleUser1, RoleUser2:
		return TradeRole(s), true
	}
	return "", false
}

// ProgressKind selects the teaching or learning completion flag.
type ProgressKind string

const (
	KindTeaching ProgressKind = "teaching"
	KindLearning ProgressKind = "learning"
)

func ParseProgressKind(s string) (ProgressKind, bool) {
	switch ProgressKind(s) {
	case KindTeaching, KindLearning:
		return ProgressKind(s), true
	}
	return "", false
}

type User struct {
	ID           int64   `json:"user_id" db:"user_id"`
	Username     string  `json:"username" db:"username"`
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Rating       float64 `json:"rating" db:"rating"`
	TradeTokens  int64   `json:"trade_token" db:"trade_token"`
	Created      int64   `json:"created" db:"created"`
}

type Profile struct {
	UserID  int64  `json:"user_id" db:"user_id"`
	Bio     string `json:"bio" db:"bio"`
	Updated int64  `json:"updated" db:"updated"`
}

type Skill struct {
	ID   int64  `json:"skill_id" db:"skill_id"`
	Name string `json:"skill_name" db:"skill_name"`
}

type UserSkill struct {
	UserID  int64     `json:"user_id" db:"user_id"`
	SkillID int64     `json:"skill_id" db:"skill_id"`
	Type    SkillType `json:"skill_type" db:"skill_type"`
}

// Match is the unordered pairing of two users with complementary skills.
// User1ID < User2ID always holds; creation canonicalizes the pair.
type Match struct {
	ID               int64       `json:"match_id" db:"match_id"`
	User1ID          int64       `json:"user1_id" db:"user1_id"`
	User2ID          int64       `json:"user2_id" db:"user2_id"`
	Status           MatchStatus `json:"match_status" db:"match_status"`
	InitiatorID      *int64      `json:"initiator_id,omitempty" db:"initiator_id"`
	TradeRequestTime *int64      `json:"trade_request_time,omitempty" db:"trade_request_time"`
	Created          int64       `json:"created" db:"created"`
}

// HasParticipant reports whether id is one of the two matched users.
func (m *Match) HasParticipant(id int64) bool {
	return m.User1ID == id || m.User2ID == id
}

// Counterpart returns the other participant's id.
func (m *Match) Counterpart(id int64) int64 {
	if m.User1ID == id {
		return m.User2ID
	}
	return m.User1ID
}

// RoleOf returns which side of the match id occupies.
func (m *Match) RoleOf(id int64) TradeRole {
	if m.User1ID == id {
		return RoleUser1
	}
	return RoleUser2
}

// Trade is the accepted execution of a skill swap, 1:1 with its match.
type Trade struct {
	ID                int64       `json:"trade_id" db:"trade_id"`
	MatchID           int64       `json:"match_id" db:"match_id"`
	User1Skill        string      `json:"user1_skill" db:"user1_skill"`
	User2Skill        string      `json:"user2_skill" db:"user2_skill"`
	User1TeachingDone bool        `json:"user1_teaching_done" db:"user1_teaching_done"`
	User1LearningDone bool        `json:"user1_learning_done" db:"user1_learning_done"`
	User2TeachingDone bool        `json:"user2_teaching_done" db:"user2_teaching_done"`
	User2LearningDone bool        `json:"user2_learning_done" db:"user2_learning_done"`
	Status            TradeStatus `json:"status" db:"status"`
	Created           int64       `json:"created" db:"created"`
	Completed         *int64      `json:"completed,omitempty" db:"completed"`
}

// AllDone reports whether all four completion flags are set.
func (t *Trade) AllDone() bool {
	return t.User1TeachingDone && t.User1LearningDone && t.User2TeachingDone && t.User2LearningDone
}

// TradeHistory is the immutable audit record written once per completed trade.
type TradeHistory struct {
	ID         int64  `json:"history_id" db:"history_id"`
	TradeID    int64  `json:"trade_id" db:"trade_id"`
	User1ID    int64  `json:"user1_id" db:"user1_id"`
	User2ID    int64  `json:"user2_id" db:"user2_id"`
	User1Skill string `json:"user1_skill" db:"user1_skill"`
	User2Skill string `json:"user2_skill" db:"user2_skill"`
	Completed  int64  `json:"completed" db:"completed"`
}

type Rating struct {
	ID          int64  `json:"rating_id" db:"rating_id"`
	TradeID     int64  `json:"trade_id" db:"trade_id"`
	ReviewerID  int64  `json:"reviewer_id" db:"reviewer_id"`
	RatedUserID int64  `json:"rated_user_id" db:"rated_user_id"`
	Score       int    `json:"score" db:"score"`
	Feedback    string `json:"feedback" db:"feedback"`
	Created     int64  `json:"created" db:"created"`
}

type FraudFlag struct {
	ID             int64  `json:"flag_id" db:"flag_id"`
	MatchID        int64  `json:"match_id" db:"match_id"`
	TradeID        int64  `json:"trade_id" db:"trade_id"`
	ReporterID     int64  `json:"reporter_id" db:"reporter_id"`
	ReportedUserID int64  `json:"reported_user_id" db:"reported_user_id"`
	Message        string `json:"message" db:"message"`
	Created        int64  `json:"created" db:"created"`
}

type ChatMessage struct {
	ID       int64  `json:"chat_id" db:"chat_id"`
	MatchID  int64  `json:"match_id" db:"match_id"`
	SenderID int64  `json:"sender_id" db:"sender_id"`
	Message  string `json:"message" db:"message"`
	Created  int64  `json:"created" db:"created"`
}
