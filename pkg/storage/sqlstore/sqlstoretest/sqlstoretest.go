// Package sqlstoretest provides in-memory stores and fixtures for engine tests.
package sqlstoretest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// New opens a private in-memory database for the calling test.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	store, err := sqlstore.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// User creates a member with the given balance. The balance is not backed by
// ledger entries.
func User(t testing.TB, store *sqlstore.Store, id string, points int64) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), &models.User{
		ID:        id,
		Name:      id,
		Email:     id + "@example.com",
		Points:    points,
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return user
}

// Item creates an item owned by uploaderID in the given status.
func Item(t testing.TB, store *sqlstore.Store, uploaderID string, status models.ItemStatus, condition models.Condition, price int64) *models.Item {
	t.Helper()
	now := time.Now().UTC()
	item, err := store.CreateItem(context.Background(), &models.Item{
		ID:          uuid.NewString(),
		Title:       "Wool coat",
		Description: "Barely worn",
		Images:      []string{"https://img.example.com/coat.jpg"},
		Category:    models.CategoryOuterwear,
		Size:        "L",
		Condition:   condition,
		PointsValue: price,
		Status:      status,
		UploaderID:  uploaderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return item
}
