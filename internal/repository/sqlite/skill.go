package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) SkillByID(ctx context.Context, id int64) (*models.Skill, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT skill_id, skill_name FROM skills WHERE skill_id = ?`, id)
	return scanSkill(row)
}

// SkillByName looks a skill up by name, case-insensitively.
func (r *Repo) SkillByName(ctx context.Context, name string) (*models.Skill, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT skill_id, skill_name FROM skills WHERE skill_name = ? COLLATE NOCASE`, strings.TrimSpace(name))
	return scanSkill(row)
}

func scanSkill(row *sql.Row) (*models.Skill, error) {
	var s models.Skill
	if err := row.Scan(&s.ID, &s.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &s, nil
}

// GetOrCreateSkill resolves a skill name to its canonical row, creating one
// on first reference. The bool result reports whether the row is new. A
// concurrent create of the same name is absorbed by refetching after a
// unique violation.
func (r *Repo) GetOrCreateSkill(ctx context.Context, name string) (*models.Skill, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("skill name is empty")
	}

	existing, err := r.SkillByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	res, err := r.conn.ExecContext(ctx, `INSERT INTO skills (skill_name) VALUES (?)`, name)
	if err != nil {
		if IsUniqueViolation(err) {
			s, ferr := r.SkillByName(ctx, name)
			if ferr != nil {
				return nil, false, ferr
			}
			if s != nil {
				return s, false, nil
			}
		}

		return nil, false, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}

	return &models.Skill{ID: id, Name: name}, true, nil
}

func (r *Repo) ListSkills(ctx context.Context, limit, offset int) ([]models.Skill, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx, `SELECT skill_id, skill_name FROM skills ORDER BY skill_name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSkills(rows)
}

// SearchSkills returns skills whose name contains query, case-insensitive,
// ordered by name.
func (r *Repo) SearchSkills(ctx context.Context, query string, limit int) ([]models.Skill, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := r.conn.QueryContext(ctx, `SELECT skill_id, skill_name FROM skills WHERE skill_name LIKE ? COLLATE NOCASE ORDER BY skill_name LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSkills(rows)
}

func collectSkills(rows *sql.Rows) ([]models.Skill, error) {
	var out []models.Skill
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}
