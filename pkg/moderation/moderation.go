// Package moderation implements the admin review of listings and reports.
//
// Bulk calls settle every id on its own: one id failing never stops the rest,
// and each id lands in exactly one bucket of the result.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/validation"
)

// Store is the storage the moderation engine needs.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	storage.ReportReader
	ApproveItem(ctx context.Context, s storage.ApprovalSettlement) error
	RejectItem(ctx context.Context, s storage.RejectionSettlement) error
	CreateReport(ctx context.Context, report *models.Report) error
	ResolveReport(ctx context.Context, s storage.ReportResolution) error
}

// Engine settles moderation decisions.
type Engine struct {
	store    Store
	runner   *settlement.Runner
	rewards  models.PointsSchedule
	validate *validation.Validator
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a moderation Engine. rewards is the approval reward schedule.
func NewEngine(store Store, runner *settlement.Runner, rewards models.PointsSchedule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		runner:   runner,
		rewards:  rewards,
		validate: validation.New(),
		logger:   logger.With("service", "moderation"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func pendingItem(item *models.Item) error {
	if item.Status != models.ItemPending {
		return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status), Want: string(models.ItemPending)}
	}
	return nil
}

// BulkApprove makes each pending item available and credits its uploader with
// the approval reward for the item's condition. pointsOverrides optionally
// replaces the redemption price of individual items.
func (e *Engine) BulkApprove(ctx context.Context, caller identity.Identity, itemIDs []string, pointsOverrides map[string]int64) (*BulkResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := checkBatch("item_ids", itemIDs); err != nil {
		return nil, err
	}

	result := newBulkResult(len(itemIDs))
	for _, id := range itemIDs {
		if !validID(id) {
			result.invalid(id)
			continue
		}
		outcome, err := e.approve(ctx, caller, id, pointsOverrides)
		if err != nil {
			result.record(id, err)
			continue
		}
		result.succeed(outcome)

		ev := events.New(events.ItemApproved)
		ev.ItemIDs = []string{id}
		ev.UserIDs = []string{outcome.UploaderID}
		e.runner.Announce(ctx, ev)
	}

	e.logger.InfoContext(ctx, "bulk approval finished", "admin_id", caller.UserID, "summary", result.Summary)
	return result, nil
}

func (e *Engine) approve(ctx context.Context, caller identity.Identity, itemID string, overrides map[string]int64) (Outcome, error) {
	var outcome Outcome
	err := e.runner.Run(ctx, "moderation.approve", func() error {
		item, err := e.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := pendingItem(item); err != nil {
			return err
		}
		uploader, err := e.store.GetUser(ctx, item.UploaderID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: uploader %s of item %s does not exist", models.ErrInternalInconsistency, item.UploaderID, item.ID)
		}
		if err != nil {
			return err
		}

		now := e.now()
		approved := *item
		approved.Status = models.ItemAvailable
		approved.ApprovedBy = caller.UserID
		approved.ApprovedDate = &now
		approved.UpdatedAt = now
		if points, ok := overrides[item.ID]; ok {
			if points <= 0 {
				return models.NewValidationError("points_overrides", "must be positive")
			}
			approved.PointsValue = points
		}

		reward := e.rewards.For(item.Condition)
		entry, err := ledger.NewEntry(*uploader, reward, models.TransactionUpload,
			fmt.Sprintf("Item approved: %s", item.Title),
			ledger.Refs{ItemID: item.ID, AdminID: caller.UserID}, now)
		if err != nil {
			return err
		}

		if err := e.store.ApproveItem(ctx, storage.ApprovalSettlement{
			Item:   storage.ItemChange{From: models.ItemPending, Item: approved},
			Reward: ledger.Change(*uploader, entry),
		}); err != nil {
			return err
		}

		outcome = Outcome{ID: item.ID, UploaderID: uploader.ID, Points: reward, TransactionID: entry.ID}
		return nil
	})
	return outcome, err
}

// BulkReject moves each pending item to rejected with the given reason. No
// points move.
func (e *Engine) BulkReject(ctx context.Context, caller identity.Identity, itemIDs []string, reason string) (*BulkResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := checkBatch("item_ids", itemIDs); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("reason", "is required")
	}
	if len(reason) > 500 {
		return nil, models.NewValidationError("reason", "must be at most 500 characters")
	}

	result := newBulkResult(len(itemIDs))
	for _, id := range itemIDs {
		if !validID(id) {
			result.invalid(id)
			continue
		}
		outcome, err := e.reject(ctx, caller, id, reason)
		if err != nil {
			result.record(id, err)
			continue
		}
		result.succeed(outcome)

		ev := events.New(events.ItemRejected)
		ev.ItemIDs = []string{id}
		ev.UserIDs = []string{outcome.UploaderID}
		e.runner.Announce(ctx, ev)
	}

	e.logger.InfoContext(ctx, "bulk rejection finished", "admin_id", caller.UserID, "summary", result.Summary)
	return result, nil
}

func (e *Engine) reject(ctx context.Context, caller identity.Identity, itemID, reason string) (Outcome, error) {
	var outcome Outcome
	err := e.runner.Run(ctx, "moderation.reject", func() error {
		item, err := e.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := pendingItem(item); err != nil {
			return err
		}

		now := e.now()
		rejected := *item
		rejected.Status = models.ItemRejected
		rejected.RejectedBy = caller.UserID
		rejected.RejectedDate = &now
		rejected.RejectionReason = reason
		rejected.UpdatedAt = now

		if err := e.store.RejectItem(ctx, storage.RejectionSettlement{
			Item: storage.ItemChange{From: models.ItemPending, Item: rejected},
		}); err != nil {
			return err
		}
		outcome = Outcome{ID: item.ID, UploaderID: item.UploaderID}
		return nil
	})
	return outcome, err
}
