package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/skilltrade/server/pkg/models"
)

func (r *Repo) AddUserSkill(ctx context.Context, us *models.UserSkill) error {
	if us == nil {
		return fmt.Errorf("user skill is nil")
	}

	_, err := r.conn.ExecContext(ctx, `INSERT INTO user_skills (user_id, skill_id, skill_type) VALUES (?, ?, ?)`, us.UserID, us.SkillID, string(us.Type))
	return err
}

// RemoveUserSkill deletes every direction entry a user holds for a skill.
// Returns false when nothing was deleted.
func (r *Repo) RemoveUserSkill(ctx context.Context, userID, skillID int64) (bool, error) {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM user_skills WHERE user_id = ? AND skill_id = ?`, userID, skillID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// SkillsByUser returns the user's ledger split into taught and learned
// skills, each ordered by entry insertion so "first listed" is stable.
func (r *Repo) SkillsByUser(ctx context.Context, userID int64) (teaching, learning []models.Skill, err error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT s.skill_id, s.skill_name, us.skill_type FROM user_skills us JOIN skills s ON s.skill_id = us.skill_id WHERE us.user_id = ? ORDER BY us.rowid`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Skill
		var typ string
		if err := rows.Scan(&s.ID, &s.Name, &typ); err != nil {
			return nil, nil, err
		}

		if models.SkillType(typ) == models.SkillTeach {
			teaching = append(teaching, s)
		} else {
			learning = append(learning, s)
		}
	}

	return teaching, learning, rows.Err()
}

func (r *Repo) SkillIDsByUser(ctx context.Context, userID int64, typ models.SkillType) ([]int64, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT skill_id FROM user_skills WHERE user_id = ? AND skill_type = ? ORDER BY rowid`, userID, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		out = append(out, id)
	}

	return out, rows.Err()
}

// CandidateUserIDs is the discovery prefilter: users other than userID who
// either want to learn one of teachIDs or can teach one of learnIDs. Full
// bidirectional verification happens in the service on this reduced set.
func (r *Repo) CandidateUserIDs(ctx context.Context, userID int64, teachIDs, learnIDs []int64) ([]int64, error) {
	if len(teachIDs) == 0 && len(learnIDs) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	if len(teachIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("(skill_id IN (%s) AND skill_type = 'learn')", placeholders(len(teachIDs))))
		for _, id := range teachIDs {
			args = append(args, id)
		}
	}
	if len(learnIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("(skill_id IN (%s) AND skill_type = 'teach')", placeholders(len(learnIDs))))
		for _, id := range learnIDs {
			args = append(args, id)
		}
	}

	query := fmt.Sprintf(`SELECT DISTINCT user_id FROM user_skills WHERE (%s) AND user_id != ? ORDER BY user_id`, strings.Join(clauses, " OR "))
	args = append(args, userID)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		out = append(out, id)
	}

	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
