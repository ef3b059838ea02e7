package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) CreateRating(ctx context.Context, rt *models.Rating) (int64, error) {
	if rt == nil {
		return 0, fmt.Errorf("rating is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO ratings (trade_id, reviewer_id, rated_user_id, score, feedback, created) VALUES (?, ?, ?, ?, ?, ?)`, rt.TradeID, rt.ReviewerID, rt.RatedUserID, rt.Score, rt.Feedback, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) RatingByTradeAndReviewer(ctx context.Context, tradeID, reviewerID int64) (*models.Rating, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT rating_id, trade_id, reviewer_id, rated_user_id, score, feedback, created FROM ratings WHERE trade_id = ? AND reviewer_id = ?`, tradeID, reviewerID)

	var rt models.Rating
	if err := row.Scan(&rt.ID, &rt.TradeID, &rt.ReviewerID, &rt.RatedUserID, &rt.Score, &rt.Feedback, &rt.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &rt, nil
}

// ScoresForUser returns every score the user has received, oldest first.
func (r *Repo) ScoresForUser(ctx context.Context, userID int64) ([]int, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT score FROM ratings WHERE rated_user_id = ? ORDER BY rating_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}
