package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// ItemFilter narrows an item listing. Zero values match everything.
type ItemFilter struct {
	Status     models.ItemStatus
	UploaderID string
	Limit      int32
}

// ItemStore defines the interface for single-document item operations.
type ItemStore interface {
	// CreateItem stores a new item.
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)

	// GetItem retrieves an item by ID.
	GetItem(ctx context.Context, itemID string) (*models.Item, error)

	// ListItems retrieves items newest first.
	ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error)

	// UpdateItem replaces an item guarded by its expected status and version.
	UpdateItem(ctx context.Context, change ItemChange) error
}
