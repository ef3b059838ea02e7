package sqlite

import (
	"strings"
	"time"

	"log/slog"

	"github.com/skilltrade/server/internal/db"
	"github.com/skilltrade/server/pkg/repository"
)

// Repo implements the repository interfaces over a db.Querier, so the same
// code serves both ambient reads (over *sql.DB) and transactional writes
// (over *sql.Tx).
type Repo struct {
	conn   db.Querier
	logger *slog.Logger
}

// Ensure Repo implements the public interfaces.
var _ repository.UserRepo = (*Repo)(nil)
var _ repository.ProfileRepo = (*Repo)(nil)
var _ repository.SkillRepo = (*Repo)(nil)
var _ repository.UserSkillRepo = (*Repo)(nil)
var _ repository.MatchRepo = (*Repo)(nil)
var _ repository.TradeRepo = (*Repo)(nil)
var _ repository.RatingRepo = (*Repo)(nil)
var _ repository.ReportRepo = (*Repo)(nil)
var _ repository.ChatRepo = (*Repo)(nil)

func New(conn db.Querier, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// IsUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure. The driver does not export a typed error for it, so the message
// is the contract.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
