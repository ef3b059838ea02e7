package sqlite

import (
	"context"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) AppendMessage(ctx context.Context, m *models.ChatMessage) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("chat message is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO chats (match_id, sender_id, message, created) VALUES (?, ?, ?, ?)`, m.MatchID, m.SenderID, m.Message, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// MessagesByMatch returns the full append-only log for a match in timestamp
// order; the id breaks ties so polling is deterministic.
func (r *Repo) MessagesByMatch(ctx context.Context, matchID int64) ([]models.ChatMessage, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT chat_id, match_id, sender_id, message, created FROM chats WHERE match_id = ? ORDER BY created, chat_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Message, &m.Created); err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, rows.Err()
}
