// Package ledger records every points movement as an append-only,
// balance-reconciled entry.
//
// Engines build entries with NewEntry and hand them to the store together
// with the other writes of their settlement. Post is the standalone
// settlement for admin adjustments and bonuses.
package ledger

import (
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/google/uuid"
)

// Refs links an entry to the business event that caused it.
type Refs struct {
	ItemID       string
	SwapID       string
	RedemptionID string
	AdminID      string
}

// NewEntry builds the entry that applies amount to user. The balance after the
// entry must not be negative.
func NewEntry(user models.User, amount int64, typ models.TransactionType, description string, refs Refs, at time.Time) (models.PointTransaction, error) {
	if amount == 0 {
		return models.PointTransaction{}, models.NewValidationError("amount", "must be non-zero")
	}
	if user.Points+amount < 0 {
		return models.PointTransaction{}, &models.InsufficientFundsError{Required: -amount, Available: user.Points}
	}

	return models.PointTransaction{
		ID:                  uuid.NewString(),
		UserID:              user.ID,
		Amount:              amount,
		Type:                typ,
		Description:         description,
		RelatedItemID:       refs.ItemID,
		RelatedSwapID:       refs.SwapID,
		RelatedRedemptionID: refs.RedemptionID,
		AdminID:             refs.AdminID,
		BalanceAfter:        user.Points + amount,
		CreatedAt:           at,
	}, nil
}

// Change pairs an entry with the user snapshot it was computed from.
func Change(user models.User, entry models.PointTransaction) storage.BalanceChange {
	return storage.BalanceChange{User: user, Entry: entry}
}
