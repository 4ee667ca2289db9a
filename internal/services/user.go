package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// UserService handles user-related operations.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

// EnsureUser auto-provisions a user on first contact. Calling it for an
// existing user is a successful no-op, so concurrent first-contact turns
// never conflict.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("userId is required: %w", model.ErrValidation)
	}
	display := strings.ReplaceAll(userID, "-", " ")
	return s.store.Users().Ensure(ctx, &model.User{
		UserID:      userID,
		Email:       userID + "@taskpilot.local",
		DisplayName: &display,
	})
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}
