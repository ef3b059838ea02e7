package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skilltrade/server/internal/db"
	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/pkg/models"
)

// AddSkill puts a skill on the user's ledger under the given direction,
// creating the catalog entry on first use. Skill names resolve
// case-insensitively, so "guitar" and "Guitar" are the same entry.
func (s *Service) AddSkill(ctx context.Context, userID int64, name, typeRaw string) (*models.Skill, error) {
	typ, ok := models.ParseSkillType(typeRaw)
	if !ok {
		return nil, fmt.Errorf("skill type %q: %w", typeRaw, ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("empty skill name: %w", ErrValidation)
	}

	var skill *models.Skill
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		r := s.repo(q)

		u, err := r.UserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		sk, _, err := r.GetOrCreateSkill(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve skill: %w", err)
		}

		if err := r.AddUserSkill(ctx, &models.UserSkill{UserID: userID, SkillID: sk.ID, Type: typ}); err != nil {
			if sqlite.IsUniqueViolation(err) {
				return fmt.Errorf("skill %q already listed as %s: %w", sk.Name, typ, ErrConflict)
			}
			return fmt.Errorf("add ledger entry: %w", err)
		}

		skill = sk
		return nil
	})
	if err != nil {
		return nil, err
	}

	return skill, nil
}

// RemoveSkill drops a skill from the user's ledger, both directions at once.
func (s *Service) RemoveSkill(ctx context.Context, userID, skillID int64) error {
	r := s.repo(s.db.GetConn())

	sk, err := r.SkillByID(ctx, skillID)
	if err != nil {
		return fmt.Errorf("resolve skill: %w", err)
	}
	if sk == nil {
		return fmt.Errorf("skill %d: %w", skillID, ErrNotFound)
	}

	removed, err := r.RemoveUserSkill(ctx, userID, skillID)
	if err != nil {
		return fmt.Errorf("remove ledger entry: %w", err)
	}
	if !removed {
		return fmt.Errorf("skill %d not on user %d's ledger: %w", skillID, userID, ErrNotFound)
	}

	return nil
}

// UserSkills returns the user's ledger split by direction, listing order
// preserved.
func (s *Service) UserSkills(ctx context.Context, userID int64) (teaching, learning []models.Skill, err error) {
	r := s.repo(s.db.GetConn())

	u, err := r.UserByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	teaching, learning, err = r.SkillsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}

	return teaching, learning, nil
}

// ListSkills pages through the skill catalog.
func (s *Service) ListSkills(ctx context.Context, limit, offset int) ([]models.Skill, error) {
	r := s.repo(s.db.GetConn())
	skills, err := r.ListSkills(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// SearchSkills finds catalog entries containing the query, case-insensitive.
func (s *Service) SearchSkills(ctx context.Context, query string, limit int) ([]models.Skill, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query: %w", ErrValidation)
	}
	r := s.repo(s.db.GetConn())
	skills, err := r.SearchSkills(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search skills: %w", err)
	}
	return skills, nil
}
