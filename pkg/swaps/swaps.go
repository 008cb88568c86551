// Package swaps settles item-for-item exchanges between members.
//
// A swap is proposed by a requester against another member's available item,
// offering one or more of the requester's own available items. Accepting locks
// every involved item in the swapping status; completing transfers ownership in
// both directions. No points move.
package swaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/google/uuid"
)

// MaxOfferedItems bounds the number of items offered in one proposal.
const MaxOfferedItems = 10

// Store is the storage the swap engine needs.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	storage.SwapReader
	CreateSwap(ctx context.Context, swap *models.Swap) error
	TransitionSwap(ctx context.Context, s storage.SwapTransition) error
	CompleteSwap(ctx context.Context, s storage.SwapCompletion) error
}

// Engine settles swaps.
type Engine struct {
	store  Store
	runner *settlement.Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a swap Engine.
func NewEngine(store Store, runner *settlement.Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		runner: runner,
		logger: logger.With("service", "swaps"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProposeInput is a swap request.
type ProposeInput struct {
	RequestedItemID string
	OfferedItemIDs  []string
	Message         string
}

func (in ProposeInput) validate() error {
	verr := &models.ValidationError{}
	if in.RequestedItemID == "" {
		verr.Errors = append(verr.Errors, models.FieldError{Field: "requested_item_id", Message: "is required"})
	}
	switch {
	case len(in.OfferedItemIDs) == 0:
		verr.Errors = append(verr.Errors, models.FieldError{Field: "offered_item_ids", Message: "at least one offered item is required"})
	case len(in.OfferedItemIDs) > MaxOfferedItems:
		verr.Errors = append(verr.Errors, models.FieldError{Field: "offered_item_ids", Message: fmt.Sprintf("must contain at most %d entries", MaxOfferedItems)})
	}
	seen := map[string]bool{in.RequestedItemID: true}
	for _, id := range in.OfferedItemIDs {
		if id == "" || seen[id] {
			verr.Errors = append(verr.Errors, models.FieldError{Field: "offered_item_ids", Message: "must be distinct item ids other than the requested item"})
			break
		}
		seen[id] = true
	}
	if len(in.Message) > 500 {
		verr.Errors = append(verr.Errors, models.FieldError{Field: "message", Message: "must be at most 500 characters"})
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

// Propose creates a pending swap. Item statuses do not change until the owner accepts.
func (e *Engine) Propose(ctx context.Context, caller identity.Identity, in ProposeInput) (*models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	in.Message = strings.TrimSpace(in.Message)
	if err := in.validate(); err != nil {
		return nil, err
	}

	requested, err := e.store.GetItem(ctx, in.RequestedItemID)
	if err != nil {
		return nil, err
	}
	if err := available(requested); err != nil {
		return nil, err
	}
	if requested.UploaderID == caller.UserID {
		return nil, models.ErrSelfSwapDenied
	}
	for _, id := range in.OfferedItemIDs {
		offered, err := e.store.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if offered.UploaderID != caller.UserID {
			return nil, fmt.Errorf("%w: offered item %s is not yours", models.ErrForbidden, id)
		}
		if err := available(offered); err != nil {
			return nil, err
		}
	}

	pending, err := e.store.ListSwaps(ctx, storage.SwapFilter{RequesterID: caller.UserID, Status: models.SwapPending})
	if err != nil {
		return nil, err
	}
	for _, s := range pending {
		if s.RequestedItemID == requested.ID {
			return nil, fmt.Errorf("%w: swap %s already requests item %s", models.ErrDuplicateSwap, s.ID, requested.ID)
		}
	}

	now := e.now()
	swap := &models.Swap{
		ID:              uuid.NewString(),
		RequesterID:     caller.UserID,
		OwnerID:         requested.UploaderID,
		RequestedItemID: requested.ID,
		OfferedItemIDs:  in.OfferedItemIDs,
		Status:          models.SwapPending,
		Message:         in.Message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.store.CreateSwap(ctx, swap); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a pending swap by %s already requests item %s", models.ErrDuplicateSwap, caller.UserID, requested.ID)
		}
		return nil, err
	}

	e.logger.InfoContext(ctx, "swap proposed", "swap_id", swap.ID, "requester_id", swap.RequesterID, "owner_id", swap.OwnerID)
	return swap, nil
}

// Accept locks every involved item in the swapping status. Only the owner of
// the requested item may accept.
func (e *Engine) Accept(ctx context.Context, caller identity.Identity, swapID, response string) (*models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	var accepted models.Swap
	err := e.runner.Run(ctx, "swap.accept", func() error {
		swap, err := e.pending(ctx, swapID)
		if err != nil {
			return err
		}
		if caller.UserID != swap.OwnerID {
			return fmt.Errorf("%w: only the item owner can accept swap %s", models.ErrForbidden, swap.ID)
		}

		now := e.now()
		var changes []storage.ItemChange
		for _, id := range swap.ItemIDs() {
			item, err := e.store.GetItem(ctx, id)
			if err != nil {
				return err
			}
			if err := available(item); err != nil {
				return err
			}
			locked := *item
			locked.Status = models.ItemSwapping
			locked.UpdatedAt = now
			changes = append(changes, storage.ItemChange{From: models.ItemAvailable, Item: locked})
		}

		accepted = *swap
		accepted.Status = models.SwapAccepted
		accepted.ResponseMessage = strings.TrimSpace(response)
		accepted.AcceptedDate = &now
		accepted.UpdatedAt = now
		return e.store.TransitionSwap(ctx, storage.SwapTransition{From: models.SwapPending, Swap: accepted, Items: changes})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "swap accepted", "swap_id", accepted.ID, "owner_id", accepted.OwnerID)
	ev := events.New(events.SwapAccepted)
	ev.SwapID = accepted.ID
	ev.ItemIDs = accepted.ItemIDs()
	ev.UserIDs = []string{accepted.RequesterID, accepted.OwnerID}
	e.runner.Announce(ctx, ev)

	return &accepted, nil
}

// Reject declines a pending swap. Either party may reject and no item changes.
func (e *Engine) Reject(ctx context.Context, caller identity.Identity, swapID, response string) (*models.Swap, error) {
	return e.close(ctx, caller, swapID, "swap.reject", func(swap *models.Swap, now time.Time) error {
		if !swap.Involves(caller.UserID) {
			return fmt.Errorf("%w: not a party to swap %s", models.ErrForbidden, swap.ID)
		}
		swap.Status = models.SwapRejected
		swap.ResponseMessage = strings.TrimSpace(response)
		swap.RejectedDate = &now
		return nil
	})
}

// Cancel withdraws a pending swap. Only the requester may cancel.
func (e *Engine) Cancel(ctx context.Context, caller identity.Identity, swapID, message string) (*models.Swap, error) {
	return e.close(ctx, caller, swapID, "swap.cancel", func(swap *models.Swap, now time.Time) error {
		if caller.UserID != swap.RequesterID {
			return fmt.Errorf("%w: only the requester can cancel swap %s", models.ErrForbidden, swap.ID)
		}
		swap.Status = models.SwapCancelled
		if message = strings.TrimSpace(message); message != "" {
			swap.ResponseMessage = message
		}
		swap.CancelledDate = &now
		return nil
	})
}

// close moves a pending swap to a final status without touching its items.
func (e *Engine) close(ctx context.Context, caller identity.Identity, swapID, kind string, mutate func(*models.Swap, time.Time) error) (*models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	var closed models.Swap
	err := e.runner.Run(ctx, kind, func() error {
		swap, err := e.pending(ctx, swapID)
		if err != nil {
			return err
		}
		closed = *swap
		now := e.now()
		if err := mutate(&closed, now); err != nil {
			return err
		}
		closed.UpdatedAt = now
		return e.store.TransitionSwap(ctx, storage.SwapTransition{From: models.SwapPending, Swap: closed})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "swap closed", "swap_id", closed.ID, "status", closed.Status, "user_id", caller.UserID)
	return &closed, nil
}

// Complete transfers ownership: the requester receives the requested item and
// the owner receives every offered item. Both parties' successful swap
// counters go up by one.
func (e *Engine) Complete(ctx context.Context, caller identity.Identity, swapID string) (*models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	var completed models.Swap
	err := e.runner.Run(ctx, "swap.complete", func() error {
		swap, err := e.store.GetSwap(ctx, swapID)
		if err != nil {
			return err
		}
		if !swap.Involves(caller.UserID) {
			return fmt.Errorf("%w: not a party to swap %s", models.ErrForbidden, swap.ID)
		}
		if swap.Status != models.SwapAccepted {
			return &models.StateError{Entity: "swap " + swap.ID, Current: string(swap.Status), Want: string(models.SwapAccepted)}
		}
		for _, id := range []string{swap.RequesterID, swap.OwnerID} {
			if _, err := e.store.GetUser(ctx, id); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("%w: party %s of swap %s does not exist", models.ErrInternalInconsistency, id, swap.ID)
				}
				return err
			}
		}

		now := e.now()
		var changes []storage.ItemChange
		for _, id := range swap.ItemIDs() {
			item, err := e.store.GetItem(ctx, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("%w: item %s of swap %s does not exist", models.ErrInternalInconsistency, id, swap.ID)
				}
				return err
			}
			if item.Status != models.ItemSwapping {
				return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status), Want: string(models.ItemSwapping)}
			}
			swapped := *item
			swapped.Status = models.ItemSwapped
			swapped.UpdatedAt = now
			if id == swap.RequestedItemID {
				swapped.UploaderID = swap.RequesterID
			} else {
				swapped.UploaderID = swap.OwnerID
			}
			changes = append(changes, storage.ItemChange{From: models.ItemSwapping, Item: swapped})
		}

		completed = *swap
		completed.Status = models.SwapCompleted
		completed.CompletedDate = &now
		completed.UpdatedAt = now
		return e.store.CompleteSwap(ctx, storage.SwapCompletion{
			From:     models.SwapAccepted,
			Swap:     completed,
			Items:    changes,
			PartyIDs: []string{swap.RequesterID, swap.OwnerID},
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "swap completed", "swap_id", completed.ID, "requester_id", completed.RequesterID, "owner_id", completed.OwnerID)
	ev := events.New(events.SwapCompleted)
	ev.SwapID = completed.ID
	ev.ItemIDs = completed.ItemIDs()
	ev.UserIDs = []string{completed.RequesterID, completed.OwnerID}
	e.runner.Announce(ctx, ev)

	return &completed, nil
}

// Get returns a swap to one of its parties or an admin.
func (e *Engine) Get(ctx context.Context, caller identity.Identity, swapID string) (*models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	swap, err := e.store.GetSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !swap.Involves(caller.UserID) {
		return nil, models.ErrForbidden
	}
	return swap, nil
}

// Role selects the caller's side of a swap listing.
type Role string

const (
	RoleSent     Role = "sent"
	RoleReceived Role = "received"
	RoleAll      Role = "all"
)

// ListFilter narrows a swap listing.
type ListFilter struct {
	Role   Role
	Status models.SwapStatus
}

// List returns the caller's swaps newest first.
func (e *Engine) List(ctx context.Context, caller identity.Identity, filter ListFilter) ([]models.Swap, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	f := storage.SwapFilter{Status: filter.Status}
	switch filter.Role {
	case RoleSent:
		f.RequesterID = caller.UserID
	case RoleReceived:
		f.OwnerID = caller.UserID
	case RoleAll, "":
		f.RequesterID = caller.UserID
		f.OwnerID = caller.UserID
	default:
		return nil, models.NewValidationError("role", "must be one of sent, received, all")
	}
	return e.store.ListSwaps(ctx, f)
}

func (e *Engine) pending(ctx context.Context, swapID string) (*models.Swap, error) {
	swap, err := e.store.GetSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapPending {
		return nil, &models.StateError{Entity: "swap " + swap.ID, Current: string(swap.Status), Want: string(models.SwapPending)}
	}
	return swap, nil
}

func available(item *models.Item) error {
	if item.Status != models.ItemAvailable {
		return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status), Want: string(models.ItemAvailable)}
	}
	return nil
}
