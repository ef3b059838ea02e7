package sqlite

import (
	"context"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) CreateFraudFlag(ctx context.Context, f *models.FraudFlag) (int64, error) {
	if f == nil {
		return 0, fmt.Errorf("fraud flag is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO fraud_flags (match_id, trade_id, reporter_id, reported_user_id, message, created) VALUES (?, ?, ?, ?, ?, ?)`, f.MatchID, f.TradeID, f.ReporterID, f.ReportedUserID, f.Message, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ReportsForUser lists reports where the user is reporter or reported.
func (r *Repo) ReportsForUser(ctx context.Context, userID int64) ([]models.FraudFlag, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT flag_id, match_id, trade_id, reporter_id, reported_user_id, message, created FROM fraud_flags WHERE reporter_id = ? OR reported_user_id = ? ORDER BY flag_id`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FraudFlag
	for rows.Next() {
		var f models.FraudFlag
		if err := rows.Scan(&f.ID, &f.MatchID, &f.TradeID, &f.ReporterID, &f.ReportedUserID, &f.Message, &f.Created); err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	return out, rows.Err()
}
