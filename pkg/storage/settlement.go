package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// BalanceChange applies one ledger entry to a user.
// User is the snapshot the entry was computed from; its Version is the
// expected version at write time. Entry.BalanceAfter must equal
// User.Points + Entry.Amount.
type BalanceChange struct {
	User  models.User
	Entry models.PointTransaction
}

// ItemChange replaces an item document. The write only applies while the stored
// item still has status From and version Item.Version; the stored version is
// then incremented.
type ItemChange struct {
	From models.ItemStatus
	Item models.Item
}

// PostSettlement is a standalone ledger post.
type PostSettlement struct {
	Change BalanceChange
}

// ApprovalSettlement moves a pending item to available and credits the uploader.
type ApprovalSettlement struct {
	Item   ItemChange
	Reward BalanceChange
}

// RejectionSettlement moves a pending item to rejected.
type RejectionSettlement struct {
	Item ItemChange
}

// RedemptionSettlement is a points-for-item exchange.
type RedemptionSettlement struct {
	Item       ItemChange
	Redemption models.Redemption
	Debit      BalanceChange
	Credit     BalanceChange
}

// SwapTransition moves a swap out of status From, together with any item changes
// that must happen in the same unit of work.
type SwapTransition struct {
	From  models.SwapStatus
	Swap  models.Swap
	Items []ItemChange
}

// SwapCompletion transfers ownership of every item in an accepted swap and
// increments both parties' successful swap counters.
type SwapCompletion struct {
	From     models.SwapStatus
	Swap     models.Swap
	Items    []ItemChange
	PartyIDs []string
}

// ReportResolution closes a pending report, optionally removing its item.
type ReportResolution struct {
	Report models.Report
	Item   *ItemChange
}

// SettlementStore defines the privileged interface for atomic multi-document writes.
// Every method either applies all of its writes or none of them. A lost race is
// reported as ErrConflict.
type SettlementStore interface {
	// PostEntry applies a single ledger entry.
	PostEntry(ctx context.Context, s PostSettlement) error

	// ApproveItem applies an approval and its reward.
	ApproveItem(ctx context.Context, s ApprovalSettlement) error

	// RejectItem applies a rejection.
	RejectItem(ctx context.Context, s RejectionSettlement) error

	// Redeem applies a redemption.
	Redeem(ctx context.Context, s RedemptionSettlement) error

	// CreateSwap stores a new pending swap. It fails with ErrAlreadyExists when
	// the requester already has a pending swap for the requested item.
	CreateSwap(ctx context.Context, swap *models.Swap) error

	// TransitionSwap applies accept, reject and cancel transitions.
	TransitionSwap(ctx context.Context, s SwapTransition) error

	// CompleteSwap applies a swap completion.
	CompleteSwap(ctx context.Context, s SwapCompletion) error

	// CreateReport stores a new report. It fails with ErrAlreadyExists when the
	// reporter already reported the item.
	CreateReport(ctx context.Context, report *models.Report) error

	// ResolveReport applies a report resolution.
	ResolveReport(ctx context.Context, s ReportResolution) error
}
