package service

import (
	"context"
	"fmt"

	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/pkg/models"
)

// DiscoverMatches computes every user bidirectionally compatible with
// userID: they must want to learn something userID teaches AND teach
// something userID wants to learn. Each qualifying pair is lazily bound to a
// match row (created pending, no initiator). A persistence failure on one
// pair drops that pair from the result and never fails the whole pass.
func (s *Service) DiscoverMatches(ctx context.Context, userID int64) ([]MatchView, error) {
	r := s.repo(s.db.GetConn())

	u, err := r.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	teachIDs, err := r.SkillIDsByUser(ctx, userID, models.SkillTeach)
	if err != nil {
		return nil, fmt.Errorf("load taught skills: %w", err)
	}
	learnIDs, err := r.SkillIDsByUser(ctx, userID, models.SkillLearn)
	if err != nil {
		return nil, fmt.Errorf("load learned skills: %w", err)
	}
	if len(teachIDs) == 0 || len(learnIDs) == 0 {
		// a swap needs something to give and something to get
		return nil, nil
	}

	teachSet := toSet(teachIDs)
	learnSet := toSet(learnIDs)

	// prefilter-then-verify: candidates share at least one edge, the loop
	// requires both
	candidates, err := r.CandidateUserIDs(ctx, userID, teachIDs, learnIDs)
	if err != nil {
		return nil, fmt.Errorf("candidate prefilter: %w", err)
	}

	var views []MatchView
	for _, vid := range candidates {
		vTeaching, vLearning, err := r.SkillsByUser(ctx, vid)
		if err != nil {
			return nil, fmt.Errorf("load candidate %d skills: %w", vid, err)
		}

		if !anyIn(vLearning, teachSet) || !anyIn(vTeaching, learnSet) {
			continue
		}

		m, err := s.ensureMatch(ctx, r, userID, vid)
		if err != nil {
			// pair is dropped, not silently reported as matched
			s.logger.Error("match bookkeeping failed", "user", userID, "candidate", vid, "err", err)
			continue
		}
		if m.Status == models.MatchCompleted {
			// terminal pairs are not re-surfaced as fresh candidates
			continue
		}

		partner, err := r.UserByID(ctx, vid)
		if err != nil || partner == nil {
			s.logger.Error("load candidate profile failed", "candidate", vid, "err", err)
			continue
		}

		views = append(views, MatchView{
			MatchID:          m.ID,
			Status:           m.Status,
			InitiatorID:      m.InitiatorID,
			TradeRequestTime: m.TradeRequestTime,
			Partner:          UserCard{UserID: partner.ID, Username: partner.Username, Rating: partner.Rating},
			PartnerTeaching:  skillNames(vTeaching),
			PartnerLearning:  skillNames(vLearning),
		})
	}

	return views, nil
}

// ensureMatch returns the match row for the unordered pair, creating a
// pending one on first discovery. A concurrent create for the same pair
// loses the unique-constraint race and recovers by refetching.
func (s *Service) ensureMatch(ctx context.Context, r *sqlite.Repo, a, b int64) (*models.Match, error) {
	if a == b {
		return nil, fmt.Errorf("self match: %w", ErrValidation)
	}
	if a > b {
		a, b = b, a
	}

	m, err := r.MatchByPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	if _, err := r.CreateMatch(ctx, a, b); err != nil {
		if !sqlite.IsUniqueViolation(err) {
			return nil, err
		}
		// another request created it first; use theirs
	}

	m, err = r.MatchByPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("match vanished after create for pair (%d,%d)", a, b)
	}

	return m, nil
}

// ListActiveMatches returns the caller's matches that are not terminal.
func (s *Service) ListActiveMatches(ctx context.Context, userID int64) ([]MatchSummary, error) {
	r := s.repo(s.db.GetConn())

	matches, err := r.MatchesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	var out []MatchSummary
	for _, m := range matches {
		if m.Status == models.MatchCompleted {
			continue
		}

		partner, err := r.UserByID(ctx, m.Counterpart(userID))
		if err != nil {
			return nil, fmt.Errorf("load partner: %w", err)
		}
		if partner == nil {
			continue
		}

		out = append(out, MatchSummary{
			MatchID:          m.ID,
			Status:           m.Status,
			InitiatorID:      m.InitiatorID,
			TradeRequestTime: m.TradeRequestTime,
			Partner:          UserCard{UserID: partner.ID, Username: partner.Username, Rating: partner.Rating},
		})
	}

	return out, nil
}

// DeleteMatch removes a match the caller participates in. Matches bound to a
// trade (in trade or already concluded) are kept for history and cannot be
// deleted.
func (s *Service) DeleteMatch(ctx context.Context, userID, matchID int64) error {
	release := s.locks.Acquire(matchID)
	defer release()

	r := s.repo(s.db.GetConn())
	m, err := r.MatchByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}
	if !m.HasParticipant(userID) {
		return fmt.Errorf("user %d on match %d: %w", userID, matchID, ErrUnauthorized)
	}
	if m.Status == models.MatchInTrade || m.Status == models.MatchCompleted {
		return fmt.Errorf("match %d has a bound trade: %w", matchID, ErrInvalidState)
	}

	if err := r.DeleteMatch(ctx, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}

	return nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func anyIn(skills []models.Skill, set map[int64]struct{}) bool {
	for _, s := range skills {
		if _, ok := set[s.ID]; ok {
			return true
		}
	}
	return false
}

func skillNames(skills []models.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}
