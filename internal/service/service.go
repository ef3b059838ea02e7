package service

import (
	"time"

	"log/slog"

	"github.com/skilltrade/server/internal/db"
	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
)

// autoFeedback is the fixed feedback string attached to synthesized ratings
// when a trade completes before the counterpart rated.
const autoFeedback = "Auto-generated rating on trade completion"

// Service holds the core matchmaking logic: the discovery engine, the trade
// state machine and the rating aggregator. The HTTP layer resolves identity
// and hands an authenticated user id into every operation.
type Service struct {
	db             *db.DB
	logger         *slog.Logger
	locks          *matchLocks
	requestTimeout time.Duration

	// now is a field so tests can drive the lazy timeout reversion.
	now func() time.Time
}

func New(d *db.DB, logger *slog.Logger, requestTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 24 * time.Hour
	}
	return &Service{
		db:             d,
		logger:         logger,
		locks:          newMatchLocks(),
		requestTimeout: requestTimeout,
		now:            time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) nowMilli() int64 {
	return s.now().UTC().UnixMilli()
}

// repo returns a repository bound to q, which is either the ambient
// connection or an open transaction.
func (s *Service) repo(q db.Querier) *sqlite.Repo {
	return sqlite.New(q, s.logger)
}
