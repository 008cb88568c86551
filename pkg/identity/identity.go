// Package identity carries the verified caller of an operation.
//
// Every engine operation takes the caller explicitly. The HTTP layer places the
// identity on the request context after verifying a bearer token.
package identity

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// Identity is a verified caller.
type Identity struct {
	UserID string
	Role   models.Role
}

// IsZero reports whether no caller was established.
func (id Identity) IsZero() bool { return id.UserID == "" }

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }

// Require fails with models.ErrUnauthorized when no caller was established.
func (id Identity) Require() error {
	if id.IsZero() {
		return models.ErrUnauthorized
	}
	return nil
}

// RequireAdmin fails unless the caller is an authenticated admin.
func (id Identity) RequireAdmin() error {
	if err := id.Require(); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}

// RequireSelfOrAdmin fails unless the caller is userID or an admin.
func (id Identity) RequireSelfOrAdmin(userID string) error {
	if err := id.Require(); err != nil {
		return err
	}
	if id.UserID != userID && !id.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}

type ctxKey struct{}

// WithIdentity stores the caller in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the caller from the context. The zero Identity is
// returned when none is present.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
