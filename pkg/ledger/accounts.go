package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// RegisterUser creates the caller's points account with a zero balance. It
// returns the existing account when the caller is already registered.
func (s *Service) RegisterUser(ctx context.Context, caller identity.Identity, name, email string) (*models.User, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		ID:        caller.UserID,
		Name:      name,
		Email:     strings.TrimSpace(email),
		Role:      caller.Role,
		CreatedAt: s.now(),
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return s.store.GetUser(ctx, caller.UserID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetUser returns a user's account. Members may only read their own.
func (s *Service) GetUser(ctx context.Context, caller identity.Identity, userID string) (*models.User, error) {
	if err := caller.RequireSelfOrAdmin(userID); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}
