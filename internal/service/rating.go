package service

import (
	"context"
	"fmt"
	"math"

	"github.com/skilltrade/server/internal/db"
	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/pkg/models"
)

// SubmitRating records the caller's score for the counterpart on a match's
// trade and refreshes the counterpart's aggregate. One rating per reviewer
// per trade; a second submission conflicts.
func (s *Service) SubmitRating(ctx context.Context, userID, matchID int64, score int, feedback string) (*RatingView, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("score %d out of range: %w", score, ErrValidation)
	}

	release := s.locks.Acquire(matchID)
	defer release()

	var view *RatingView
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
		// ratable only once the trade completed or every step is confirmed,
		// whatever state the trade is in otherwise
		if t.Status != models.TradeCompleted && !t.AllDone() {
			return fmt.Errorf("trade %d has unconfirmed steps: %w", t.ID, ErrInvalidState)
		}

		existing, err := r.RatingByTradeAndReviewer(ctx, t.ID, userID)
		if err != nil {
			return fmt.Errorf("check prior rating: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("user %d already rated trade %d: %w", userID, t.ID, ErrConflict)
		}

		ratedUser := m.Counterpart(userID)
		rating := &models.Rating{
			TradeID:     t.ID,
			ReviewerID:  userID,
			RatedUserID: ratedUser,
			Score:       score,
			Feedback:    feedback,
		}
		ratingID, err := r.CreateRating(ctx, rating)
		if err != nil {
			if sqlite.IsUniqueViolation(err) {
				return fmt.Errorf("user %d already rated trade %d: %w", userID, t.ID, ErrConflict)
			}
			return fmt.Errorf("create rating: %w", err)
		}

		aggregate, err := s.recomputeRating(ctx, r, ratedUser)
		if err != nil {
			return err
		}

		view = &RatingView{
			RatingID:    ratingID,
			TradeID:     t.ID,
			ReviewerID:  userID,
			RatedUserID: ratedUser,
			Score:       score,
			Feedback:    feedback,
			RatedUser:   aggregate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// recomputeRating rebuilds a user's aggregate from all stored scores. The
// mean rounds half up to a whole star, so 3.5 becomes 4.
func (s *Service) recomputeRating(ctx context.Context, r *sqlite.Repo, userID int64) (float64, error) {
	scores, err := r.ScoresForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load scores: %w", err)
	}
	if len(scores) == 0 {
		return 0, nil
	}

	sum := 0
	for _, sc := range scores {
		sum += sc
	}
	aggregate := math.Floor(float64(sum)/float64(len(scores)) + 0.5)

	if err := r.UpdateUserRating(ctx, userID, aggregate); err != nil {
		return 0, fmt.Errorf("store aggregate: %w", err)
	}

	return aggregate, nil
}

// ReportsForUser lists disputes the user filed or was named in.
func (s *Service) ReportsForUser(ctx context.Context, userID int64) ([]models.FraudFlag, error) {
	r := s.repo(s.db.GetConn())
	flags, err := r.ReportsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	return flags, nil
}
