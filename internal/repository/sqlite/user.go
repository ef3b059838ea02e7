package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO users (username, email, password_hash, rating, trade_token, created) VALUES (?, ?, ?, 0, 1, ?)`, u.Username, u.Email, u.PasswordHash, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT user_id, username, email, password_hash, rating, trade_token, created FROM users WHERE user_id = ?`, id)
	return scanUser(row)
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT user_id, username, email, password_hash, rating, trade_token, created FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Rating, &u.TradeTokens, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}

func (r *Repo) UpdateUserRating(ctx context.Context, id int64, rating float64) error {
	_, err := r.conn.ExecContext(ctx, `UPDATE users SET rating = ? WHERE user_id = ?`, rating, id)
	return err
}

// AdjustTradeTokens adds delta to a user's token balance, floored at zero.
func (r *Repo) AdjustTradeTokens(ctx context.Context, id int64, delta int64) error {
	_, err := r.conn.ExecContext(ctx, `UPDATE users SET trade_token = MAX(0, trade_token + ?) WHERE user_id = ?`, delta, id)
	return err
}
