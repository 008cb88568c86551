package sqlstore

import (
	"context"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"gorm.io/gorm"
)

// CreateItem inserts a new item row.
func (s *Store) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("item with ID %s: %w", item.ID, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	if err := first(s.db.WithContext(ctx), "item", itemID, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems retrieves items newest first.
func (s *Store) ListItems(ctx context.Context, filter storage.ItemFilter) ([]models.Item, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UploaderID != "" {
		q = q.Where("uploader_id = ?", filter.UploaderID)
	}
	if filter.Limit > 0 {
		q = q.Limit(int(filter.Limit))
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return items, nil
}

// UpdateItem replaces an item guarded by its expected status and version.
func (s *Store) UpdateItem(ctx context.Context, change storage.ItemChange) error {
	return applyItem(s.db.WithContext(ctx), change)
}

// applyItem writes every column of the item while the stored row still has
// the expected status and version, and increments the version.
func applyItem(tx *gorm.DB, change storage.ItemChange) error {
	item := change.Item
	expected := item.Version
	item.Version = expected + 1

	res := tx.Model(&models.Item{ID: item.ID}).
		Where("status = ? AND version = ?", change.From, expected).
		Select("*").
		Updates(&item)
	if res.Error != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s changed concurrently: %w", item.ID, storage.ErrConflict)
	}
	return nil
}
