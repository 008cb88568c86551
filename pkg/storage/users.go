package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// UserStore defines the interface for managing user point accounts.
type UserStore interface {
	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateUser creates a user. It fails with ErrAlreadyExists when the ID is taken.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]models.User, error)
}
