package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// SwapFilter narrows a swap listing. Zero values match everything.
type SwapFilter struct {
	RequesterID string
	OwnerID     string
	Status      models.SwapStatus
}

// SwapReader defines the interface for reading swap records.
type SwapReader interface {
	GetSwap(ctx context.Context, swapID string) (*models.Swap, error)

	// ListSwaps retrieves swaps newest first. RequesterID and OwnerID, when both
	// set, match swaps where either side matches.
	ListSwaps(ctx context.Context, filter SwapFilter) ([]models.Swap, error)
}
