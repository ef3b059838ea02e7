package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) UpsertProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.ExecContext(ctx, `INSERT INTO profiles (user_id, bio, updated) VALUES (?, ?, ?) ON CONFLICT(user_id) DO UPDATE SET bio=excluded.bio, updated=excluded.updated`, p.UserID, p.Bio, now())
	return err
}

func (r *Repo) ProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT user_id, bio, updated FROM profiles WHERE user_id = ?`, userID)
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.Bio, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

// ProfileSchema returns the stored JSON schema for a version, or "" when the
// version is unknown.
func (r *Repo) ProfileSchema(ctx context.Context, version string) (string, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT schema_json FROM profile_schemas WHERE version = ?`, version)
	var s string
	if err := row.Scan(&s); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", err
	}

	return s, nil
}
