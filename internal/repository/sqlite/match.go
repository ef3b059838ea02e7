package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

// CreateMatch inserts a pending match for the canonical pair. The caller is
// expected to pass user1ID < user2ID; the schema rejects anything else.
func (r *Repo) CreateMatch(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	if user1ID >= user2ID {
		return 0, fmt.Errorf("match pair not canonical: %d >= %d", user1ID, user2ID)
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO matches (user1_id, user2_id, match_status, created) VALUES (?, ?, ?, ?)`, user1ID, user2ID, string(models.MatchPending), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) MatchByID(ctx context.Context, id int64) (*models.Match, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT match_id, user1_id, user2_id, match_status, initiator_id, trade_request_time, created FROM matches WHERE match_id = ?`, id)
	return scanMatch(row)
}

// MatchByPair resolves the match for an unordered pair; argument order does
// not matter.
func (r *Repo) MatchByPair(ctx context.Context, user1ID, user2ID int64) (*models.Match, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}

	row := r.conn.QueryRowContext(ctx, `SELECT match_id, user1_id, user2_id, match_status, initiator_id, trade_request_time, created FROM matches WHERE user1_id = ? AND user2_id = ?`, user1ID, user2ID)
	return scanMatch(row)
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	var m models.Match
	var status string
	var initiator, reqTime sql.NullInt64
	if err := row.Scan(&m.ID, &m.User1ID, &m.User2ID, &status, &initiator, &reqTime, &m.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	m.Status = models.MatchStatus(status)
	if initiator.Valid {
		v := initiator.Int64
		m.InitiatorID = &v
	}
	if reqTime.Valid {
		v := reqTime.Int64
		m.TradeRequestTime = &v
	}

	return &m, nil
}

func (r *Repo) MatchesByUser(ctx context.Context, userID int64) ([]models.Match, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT match_id, user1_id, user2_id, match_status, initiator_id, trade_request_time, created FROM matches WHERE user1_id = ? OR user2_id = ? ORDER BY match_id`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		var m models.Match
		var status string
		var initiator, reqTime sql.NullInt64
		if err := rows.Scan(&m.ID, &m.User1ID, &m.User2ID, &status, &initiator, &reqTime, &m.Created); err != nil {
			return nil, err
		}

		m.Status = models.MatchStatus(status)
		if initiator.Valid {
			v := initiator.Int64
			m.InitiatorID = &v
		}
		if reqTime.Valid {
			v := reqTime.Int64
			m.TradeRequestTime = &v
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// SetMatchState writes the status, initiator and request-time columns in one
// statement; nil pointers clear the nullable columns.
func (r *Repo) SetMatchState(ctx context.Context, id int64, status models.MatchStatus, initiatorID, requestTime *int64) error {
	var init, req any
	if initiatorID != nil {
		init = *initiatorID
	}
	if requestTime != nil {
		req = *requestTime
	}

	res, err := r.conn.ExecContext(ctx, `UPDATE matches SET match_status = ?, initiator_id = ?, trade_request_time = ? WHERE match_id = ?`, string(status), init, req, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repo) DeleteMatch(ctx context.Context, id int64) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM chats WHERE match_id = ?`, id); err != nil {
		return err
	}
	_, err := r.conn.ExecContext(ctx, `DELETE FROM matches WHERE match_id = ?`, id)
	return err
}
