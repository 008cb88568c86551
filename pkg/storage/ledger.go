package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListUserTransactions retrieves every entry of a user in creation order.
	ListUserTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error)

	// ListLedgerEntries retrieves the most recent ledger entries across all users.
	ListLedgerEntries(ctx context.Context, limit int32) ([]models.PointTransaction, error)
}

// RedemptionReader defines the interface for reading redemption records.
type RedemptionReader interface {
	GetRedemption(ctx context.Context, redemptionID string) (*models.Redemption, error)
	ListRedemptionsByUser(ctx context.Context, userID string) ([]models.Redemption, error)
}
