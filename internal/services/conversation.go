package services

import (
	"context"
	"fmt"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// ConversationService exposes read-only access to conversations and their
// message history. The log itself is append-only; no mutation passes
// through here.
type ConversationService struct {
	store store.Store
}

func NewConversationService(s store.Store) *ConversationService {
	return &ConversationService{store: s}
}

func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.store.Conversations().List(ctx, userID)
}

// GetConversation returns a conversation and its full history. A conversation
// owned by a different user is rejected as unauthorized, not reported missing,
// so ownership violations are distinguishable from stale ids.
func (s *ConversationService) GetConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, []*model.Message, error) {
	conv, err := s.store.Conversations().Get(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv.UserID != userID {
		return nil, nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrUnauthorized)
	}
	msgs, err := s.store.Messages().History(ctx, conversationID, 0)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}
