package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) CreateTrade(ctx context.Context, t *models.Trade) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("trade is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO trades (match_id, user1_skill, user2_skill, status, created) VALUES (?, ?, ?, ?, ?)`, t.MatchID, t.User1Skill, t.User2Skill, string(models.TradeActive), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) TradeByMatchID(ctx context.Context, matchID int64) (*models.Trade, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT trade_id, match_id, user1_skill, user2_skill, user1_teaching_done, user1_learning_done, user2_teaching_done, user2_learning_done, status, created, completed FROM trades WHERE match_id = ?`, matchID)

	var t models.Trade
	var status string
	var completed sql.NullInt64
	if err := row.Scan(&t.ID, &t.MatchID, &t.User1Skill, &t.User2Skill, &t.User1TeachingDone, &t.User1LearningDone, &t.User2TeachingDone, &t.User2LearningDone, &status, &t.Created, &completed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	t.Status = models.TradeStatus(status)
	if completed.Valid {
		v := completed.Int64
		t.Completed = &v
	}

	return &t, nil
}

// SetCompletionFlag overwrites one of the four per-side completion flags.
// The column is selected from validated enums, never from raw input.
func (r *Repo) SetCompletionFlag(ctx context.Context, tradeID int64, role models.TradeRole, kind models.ProgressKind, done bool) error {
	var column string
	switch {
	case role == models.RoleUser1 && kind == models.KindTeaching:
		column = "user1_teaching_done"
	case role == models.RoleUser1 && kind == models.KindLearning:
		column = "user1_learning_done"
	case role == models.RoleUser2 && kind == models.KindTeaching:
		column = "user2_teaching_done"
	case role == models.RoleUser2 && kind == models.KindLearning:
		column = "user2_learning_done"
	default:
		return fmt.Errorf("invalid role/kind pair: %q/%q", role, kind)
	}

	res, err := r.conn.ExecContext(ctx, fmt.Sprintf(`UPDATE trades SET %s = ? WHERE trade_id = ?`, column), done, tradeID)
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

func (r *Repo) SetTradeStatus(ctx context.Context, tradeID int64, status models.TradeStatus, completed *int64) error {
	var comp any
	if completed != nil {
		comp = *completed
	}

	res, err := r.conn.ExecContext(ctx, `UPDATE trades SET status = ?, completed = ? WHERE trade_id = ?`, string(status), comp, tradeID)
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

func (r *Repo) CreateTradeHistory(ctx context.Context, h *models.TradeHistory) (int64, error) {
	if h == nil {
		return 0, fmt.Errorf("trade history is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO trade_history (trade_id, user1_id, user2_id, user1_skill, user2_skill, completed) VALUES (?, ?, ?, ?, ?, ?)`, h.TradeID, h.User1ID, h.User2ID, h.User1Skill, h.User2Skill, h.Completed)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) TradeHistoryByTrade(ctx context.Context, tradeID int64) (*models.TradeHistory, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT history_id, trade_id, user1_id, user2_id, user1_skill, user2_skill, completed FROM trade_history WHERE trade_id = ?`, tradeID)

	var h models.TradeHistory
	if err := row.Scan(&h.ID, &h.TradeID, &h.User1ID, &h.User2ID, &h.User1Skill, &h.User2Skill, &h.Completed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &h, nil
}
