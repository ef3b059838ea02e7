package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
	"github.com/skilltrade/server/pkg/models"
)

// profileSchemaVersion selects which stored schema profile documents are
// validated against.
const profileSchemaVersion = "v1"

// ProfileView is a user's public card with their ledger and free-form
// profile document.
type ProfileView struct {
	UserCard
	TradeTokens int64           `json:"trade_token"`
	Teaching    []string        `json:"teaching"`
	Learning    []string        `json:"learning"`
	Profile     json.RawMessage `json:"profile,omitempty"`
}

// GetUser assembles the public view of any registered user.
func (s *Service) GetUser(ctx context.Context, userID int64) (*ProfileView, error) {
	r := s.repo(s.db.GetConn())

	u, err := r.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	teaching, learning, err := r.SkillsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	view := &ProfileView{
		UserCard:    UserCard{UserID: u.ID, Username: u.Username, Rating: u.Rating},
		TradeTokens: u.TradeTokens,
		Teaching:    skillNames(teaching),
		Learning:    skillNames(learning),
	}

	p, err := r.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p != nil && strings.TrimSpace(p.Bio) != "" {
		view.Profile = json.RawMessage(p.Bio)
	}

	return view, nil
}

// UpdateProfile replaces the caller's profile document after validating it
// against the stored schema.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, doc json.RawMessage) error {
	r := s.repo(s.db.GetConn())

	u, err := r.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	raw, err := r.ProfileSchema(ctx, profileSchemaVersion)
	if err != nil {
		return fmt.Errorf("load profile schema: %w", err)
	}
	if raw == "" {
		return fmt.Errorf("profile schema %s not seeded", profileSchemaVersion)
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), schema); err != nil {
		return fmt.Errorf("parse profile schema: %w", err)
	}

	keyErrs, err := schema.ValidateBytes(ctx, doc)
	if err != nil {
		return fmt.Errorf("profile document is not valid JSON: %w", ErrValidation)
	}
	if len(keyErrs) > 0 {
		details := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			details = append(details, ke.Error())
		}
		return fmt.Errorf("profile document rejected: %s: %w", strings.Join(details, "; "), ErrValidation)
	}

	if err := r.UpsertProfile(ctx, &models.Profile{UserID: userID, Bio: string(doc)}); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}

	return nil
}
