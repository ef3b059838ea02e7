package service

import (
	"context"
	"fmt"

	"github.com/skilltrade/server/internal/db"
	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/pkg/models"
)

// RequestOrRespondTrade is the single state-machine entry point behind the
// start-trade endpoint. What it does depends on the caller and the current
// state:
//
//   - pending: propose, the caller becomes initiator and the match goes
//     pending_trade
//   - pending_trade with the initiator calling: cancel, back to pending
//   - pending_trade with the other side calling: accept, a trade row is
//     created and the match goes in_trade
//
// A pending request older than the configured timeout is reverted before the
// caller's intent is evaluated. The whole transition is one transaction,
// serialized per match.
func (s *Service) RequestOrRespondTrade(ctx context.Context, userID, matchID int64) (*MatchView, error) {
	release := s.locks.Acquire(matchID)
	defer release()

	var view *MatchView
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		r := s.repo(q)

		m, err := s.loadMatchFor(ctx, r, userID, matchID)
		if err != nil {
			return err
		}

		if err := s.revertIfExpired(ctx, r, m); err != nil {
			return err
		}

		switch {
		case m.Status == models.MatchPending:
			nowMs := s.nowMilli()
			if err := r.SetMatchState(ctx, m.ID, models.MatchPendingTrade, &userID, &nowMs); err != nil {
				return fmt.Errorf("set pending_trade: %w", err)
			}
			m.Status = models.MatchPendingTrade
			m.InitiatorID = &userID
			m.TradeRequestTime = &nowMs

		case m.Status == models.MatchPendingTrade && m.InitiatorID != nil && *m.InitiatorID == userID:
			// initiator calling again withdraws the request
			if err := r.SetMatchState(ctx, m.ID, models.MatchPending, nil, nil); err != nil {
				return fmt.Errorf("cancel trade request: %w", err)
			}
			m.Status = models.MatchPending
			m.InitiatorID = nil
			m.TradeRequestTime = nil

		case m.Status == models.MatchPendingTrade:
			if err := s.acceptTrade(ctx, r, m); err != nil {
				return err
			}

		default:
			return fmt.Errorf("start-trade from %q: %w", m.Status, ErrInvalidState)
		}

		view, err = s.matchView(ctx, r, m, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// acceptTrade binds a trade to the match, capturing each side's first-listed
// taught skill. A side with nothing to teach contributes an empty label;
// that is accepted, not rejected.
func (s *Service) acceptTrade(ctx context.Context, r *sqlite.Repo, m *models.Match) error {
	user1Skill, err := s.firstTaughtSkill(ctx, r, m.User1ID)
	if err != nil {
		return err
	}
	user2Skill, err := s.firstTaughtSkill(ctx, r, m.User2ID)
	if err != nil {
		return err
	}

	if _, err := r.CreateTrade(ctx, &models.Trade{MatchID: m.ID, User1Skill: user1Skill, User2Skill: user2Skill}); err != nil {
		return fmt.Errorf("create trade: %w", err)
	}

	if err := r.SetMatchState(ctx, m.ID, models.MatchInTrade, nil, nil); err != nil {
		return fmt.Errorf("set in_trade: %w", err)
	}
	m.Status = models.MatchInTrade
	m.InitiatorID = nil
	m.TradeRequestTime = nil

	return nil
}

func (s *Service) firstTaughtSkill(ctx context.Context, r *sqlite.Repo, userID int64) (string, error) {
	teaching, _, err := r.SkillsByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load taught skills for %d: %w", userID, err)
	}
	if len(teaching) == 0 {
		return "", nil
	}
	return teaching[0].Name, nil
}

// revertIfExpired applies the lazy timeout: a stale trade request is undone
// before the caller's requested transition is evaluated. Not an error; the
// next legitimate touch simply sees a pending match again.
func (s *Service) revertIfExpired(ctx context.Context, r *sqlite.Repo, m *models.Match) error {
	if m.Status != models.MatchPendingTrade || m.TradeRequestTime == nil {
		return nil
	}
	if s.nowMilli()-*m.TradeRequestTime <= s.requestTimeout.Milliseconds() {
		return nil
	}

	if err := r.SetMatchState(ctx, m.ID, models.MatchPending, nil, nil); err != nil {
		return fmt.Errorf("revert expired trade request: %w", err)
	}
	s.logger.Info("trade request expired", "match", m.ID)

	m.Status = models.MatchPending
	m.InitiatorID = nil
	m.TradeRequestTime = nil

	return nil
}

// GetTradeStatus returns the bound trade's state for a participant.
func (s *Service) GetTradeStatus(ctx context.Context, userID, matchID int64) (*TradeStatusView, error) {
	r := s.repo(s.db.GetConn())

	m, err := s.loadMatchFor(ctx, r, userID, matchID)
	if err != nil {
		return nil, err
	}

	t, err := s.loadTrade(ctx, r, matchID)
	if err != nil {
		return nil, err
	}

	return tradeStatusView(m, t), nil
}

// UpdateTradeProgress overwrites one of the four completion flags. The four
// flags are independent: any subset may be set in any order, repeatedly.
func (s *Service) UpdateTradeProgress(ctx context.Context, userID, matchID int64, roleRaw, kindRaw string, completed bool) (*TradeStatusView, error) {
	role, ok := models.ParseTradeRole(roleRaw)
	if !ok {
		return nil, fmt.Errorf("user position %q: %w", roleRaw, ErrValidation)
	}
	kind, ok := models.ParseProgressKind(kindRaw)
	if !ok {
		return nil, fmt.Errorf("progress type %q: %w", kindRaw, ErrValidation)
	}

	release := s.locks.Acquire(matchID)
	defer release()

	var view *TradeStatusView
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		r := s.repo(q)

		m, err := s.loadMatchFor(ctx, r, userID, matchID)
		if err != nil {
			return err
		}

		t, err := s.loadTrade(ctx, r, matchID)
		if err != nil {
			return err
		}
		if t.Status != models.TradeActive {
			return fmt.Errorf("trade %d is %q: %w", t.ID, t.Status, ErrInvalidState)
		}

		if err := r.SetCompletionFlag(ctx, t.ID, role, kind, completed); err != nil {
			return fmt.Errorf("set completion flag: %w", err)
		}

		t, err = s.loadTrade(ctx, r, matchID)
		if err != nil {
			return err
		}

		view = tradeStatusView(m, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// CompleteTrade finalizes a trade once all four completion flags are set: it
// stamps the trade completed, writes the history row, synthesizes the
// counterpart's rating when they never rated (spending one of the
// completer's trade tokens), and closes the match.
func (s *Service) CompleteTrade(ctx context.Context, userID, matchID int64) (*TradeStatusView, error) {
	release := s.locks.Acquire(matchID)
	defer release()

	var view *TradeStatusView
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		r := s.repo(q)

		m, err := s.loadMatchFor(ctx, r, userID, matchID)
		if err != nil {
			return err
		}

		t, err := s.loadTrade(ctx, r, matchID)
		if err != nil {
			return err
		}
		if t.Status != models.TradeActive {
			return fmt.Errorf("trade %d is %q: %w", t.ID, t.Status, ErrInvalidState)
		}
		if !t.AllDone() {
			return fmt.Errorf("trade %d has unconfirmed steps: %w", t.ID, ErrInvalidState)
		}

		nowMs := s.nowMilli()
		if err := r.SetTradeStatus(ctx, t.ID, models.TradeCompleted, &nowMs); err != nil {
			return fmt.Errorf("complete trade: %w", err)
		}

		if _, err := r.CreateTradeHistory(ctx, &models.TradeHistory{
			TradeID:    t.ID,
			User1ID:    m.User1ID,
			User2ID:    m.User2ID,
			User1Skill: t.User1Skill,
			User2Skill: t.User2Skill,
			Completed:  nowMs,
		}); err != nil {
			return fmt.Errorf("write trade history: %w", err)
		}

		counterpart := m.Counterpart(userID)
		existing, err := r.RatingByTradeAndReviewer(ctx, t.ID, counterpart)
		if err != nil {
			return fmt.Errorf("check counterpart rating: %w", err)
		}

		if existing == nil {
			// unilateral completion: the counterpart never rated, so a
			// default 5-star rating is written from their viewpoint and the
			// completer spends a trade token
			if _, err := r.CreateRating(ctx, &models.Rating{
				TradeID:     t.ID,
				ReviewerID:  counterpart,
				RatedUserID: userID,
				Score:       5,
				Feedback:    autoFeedback,
			}); err != nil {
				return fmt.Errorf("auto rating: %w", err)
			}
			if _, err := s.recomputeRating(ctx, r, userID); err != nil {
				return err
			}
			if err := r.AdjustTradeTokens(ctx, userID, -1); err != nil {
				return fmt.Errorf("spend trade token: %w", err)
			}
		} else {
			completerRated, err := r.RatingByTradeAndReviewer(ctx, t.ID, userID)
			if err != nil {
				return fmt.Errorf("check completer rating: %w", err)
			}
			if completerRated != nil {
				// fully mutual completion earns both sides a token
				if err := r.AdjustTradeTokens(ctx, userID, 1); err != nil {
					return fmt.Errorf("credit trade token: %w", err)
				}
				if err := r.AdjustTradeTokens(ctx, counterpart, 1); err != nil {
					return fmt.Errorf("credit trade token: %w", err)
				}
			}
		}

		if err := r.SetMatchState(ctx, m.ID, models.MatchCompleted, nil, nil); err != nil {
			return fmt.Errorf("close match: %w", err)
		}
		m.Status = models.MatchCompleted
		m.InitiatorID = nil
		m.TradeRequestTime = nil

		t, err = s.loadTrade(ctx, r, matchID)
		if err != nil {
			return err
		}

		view = tradeStatusView(m, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// ReportIssue files a dispute against the counterpart: the trade is marked
// reported and the match closed. Distinguishable from success only through
// the trade status.
func (s *Service) ReportIssue(ctx context.Context, userID, matchID int64, description string) (*ReportView, error) {
	release := s.locks.Acquire(matchID)
	defer release()

	var view *ReportView
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		r := s.repo(q)

		m, err := s.loadMatchFor(ctx, r, userID, matchID)
		if err != nil {
			return err
		}

		t, err := s.loadTrade(ctx, r, matchID)
		if err != nil {
			return err
		}
		if t.Status == models.TradeReported {
			return fmt.Errorf("trade %d already reported: %w", t.ID, ErrInvalidState)
		}

		counterpart := m.Counterpart(userID)
		flagID, err := r.CreateFraudFlag(ctx, &models.FraudFlag{
			MatchID:        m.ID,
			TradeID:        t.ID,
			ReporterID:     userID,
			ReportedUserID: counterpart,
			Message:        description,
		})
		if err != nil {
			return fmt.Errorf("create fraud flag: %w", err)
		}

		nowMs := s.nowMilli()
		if err := r.SetTradeStatus(ctx, t.ID, models.TradeReported, &nowMs); err != nil {
			return fmt.Errorf("mark trade reported: %w", err)
		}

		if err := r.SetMatchState(ctx, m.ID, models.MatchCompleted, nil, nil); err != nil {
			return fmt.Errorf("close match: %w", err)
		}

		view = &ReportView{
			ReportID:       flagID,
			MatchID:        m.ID,
			TradeID:        t.ID,
			ReporterID:     userID,
			ReportedUserID: counterpart,
			Message:        description,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// loadMatchFor loads a match and authorizes the caller as a participant.
func (s *Service) loadMatchFor(ctx context.Context, r *sqlite.Repo, userID, matchID int64) (*models.Match, error) {
	m, err := r.MatchByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}
	if !m.HasParticipant(userID) {
		return nil, fmt.Errorf("user %d on match %d: %w", userID, matchID, ErrUnauthorized)
	}
	return m, nil
}

func (s *Service) loadTrade(ctx context.Context, r *sqlite.Repo, matchID int64) (*models.Trade, error) {
	t, err := r.TradeByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load trade: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("no trade bound to match %d: %w", matchID, ErrNotFound)
	}
	return t, nil
}

// matchView builds the caller-facing view of a match: the counterpart's card
// and skill lists plus the pair's current state.
func (s *Service) matchView(ctx context.Context, r *sqlite.Repo, m *models.Match, callerID int64) (*MatchView, error) {
	partnerID := m.Counterpart(callerID)
	partner, err := r.UserByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("load partner: %w", err)
	}
	if partner == nil {
		return nil, fmt.Errorf("partner %d: %w", partnerID, ErrNotFound)
	}

	teaching, learning, err := r.SkillsByUser(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("load partner skills: %w", err)
	}

	return &MatchView{
		MatchID:          m.ID,
		Status:           m.Status,
		InitiatorID:      m.InitiatorID,
		TradeRequestTime: m.TradeRequestTime,
		Partner:          UserCard{UserID: partner.ID, Username: partner.Username, Rating: partner.Rating},
		PartnerTeaching:  skillNames(teaching),
		PartnerLearning:  skillNames(learning),
	}, nil
}
