package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skilltrade/server/pkg/models"
)

// PostMessage appends a chat message to a match the caller participates in.
func (s *Service) PostMessage(ctx context.Context, userID, matchID int64, text string) (*models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty message: %w", ErrValidation)
	}

	r := s.repo(s.db.GetConn())
	if _, err := s.loadMatchFor(ctx, r, userID, matchID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{MatchID: matchID, SenderID: userID, Message: text}
	id, err := r.AppendMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	msg.ID = id

	return msg, nil
}

// Messages returns a match's chat history in send order.
func (s *Service) Messages(ctx context.Context, userID, matchID int64) ([]models.ChatMessage, error) {
	r := s.repo(s.db.GetConn())
	if _, err := s.loadMatchFor(ctx, r, userID, matchID); err != nil {
		return nil, err
	}

	msgs, err := r.MessagesByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	return msgs, nil
}
