package sqlstore

import (
	"context"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"gorm.io/gorm"
)

// ListUserTransactions retrieves every entry of a user in creation order.
func (s *Store) ListUserTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error) {
	var entries []models.PointTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("rowid ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries by user ID: %w", err)
	}
	return entries, nil
}

// ListLedgerEntries retrieves the most recent entries across all users.
func (s *Store) ListLedgerEntries(ctx context.Context, limit int32) ([]models.PointTransaction, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Order("rowid DESC")
	if limit > 0 {
		q = q.Limit(int(limit))
	}
	var entries []models.PointTransaction
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query for ledger entries: %w", err)
	}
	return entries, nil
}

// GetRedemption retrieves a redemption by ID.
func (s *Store) GetRedemption(ctx context.Context, redemptionID string) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := first(s.db.WithContext(ctx), "redemption", redemptionID, &redemption); err != nil {
		return nil, err
	}
	return &redemption, nil
}

// ListRedemptionsByUser retrieves a user's redemptions newest first.
func (s *Store) ListRedemptionsByUser(ctx context.Context, userID string) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&redemptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions by user ID: %w", err)
	}
	return redemptions, nil
}

// applyBalance moves a user's balance by one ledger entry and appends the entry.
// The update only applies while the user row still has the snapshot version,
// and a debit only while the balance covers it.
func applyBalance(tx *gorm.DB, change storage.BalanceChange) error {
	entry := change.Entry
	if entry.BalanceAfter != change.User.Points+entry.Amount {
		return fmt.Errorf("ledger entry %s balance %d does not follow from %d%+d", entry.ID, entry.BalanceAfter, change.User.Points, entry.Amount)
	}

	q := tx.Model(&models.User{}).Where("id = ? AND version = ?", change.User.ID, change.User.Version)
	if entry.Amount < 0 {
		q = q.Where("points >= ?", -entry.Amount)
	}
	res := q.Updates(map[string]any{
		"points":  gorm.Expr("points + ?", entry.Amount),
		"version": gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update balance of user %s: %w", change.User.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s changed concurrently: %w", change.User.ID, storage.ErrConflict)
	}

	if err := tx.Create(&entry).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("ledger entry %s: %w", entry.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}
