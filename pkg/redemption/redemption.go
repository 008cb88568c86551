// Package redemption exchanges a member's points for an available item.
package redemption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/google/uuid"
)

// Store is the storage the redemption engine needs.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	storage.RedemptionReader
	Redeem(ctx context.Context, s storage.RedemptionSettlement) error
}

// Engine settles redemptions.
type Engine struct {
	store  Store
	runner *settlement.Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a redemption Engine.
func NewEngine(store Store, runner *settlement.Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		runner: runner,
		logger: logger.With("service", "redemption"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Result is the outcome of a successful redemption.
type Result struct {
	Redemption  models.Redemption `json:"redemption"`
	Item        models.Item       `json:"item"`
	PointsSpent int64             `json:"points_spent"`
	NewBalance  int64             `json:"new_balance"`
}

// Redeem spends the caller's points on an available item. The item, both
// balances, both ledger entries and the redemption record are written in one
// settlement.
//
// Preconditions are checked in a fixed order and the first failure wins:
// the item must exist, be available, not belong to the caller, be affordable,
// and its uploader must still exist.
func (e *Engine) Redeem(ctx context.Context, caller identity.Identity, itemID string) (*Result, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	var result Result
	err := e.runner.Run(ctx, "redemption.redeem", func() error {
		item, err := e.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Status != models.ItemAvailable {
			return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status), Want: string(models.ItemAvailable)}
		}
		if item.UploaderID == caller.UserID {
			return models.ErrSelfRedemptionDenied
		}

		redeemer, err := e.store.GetUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if redeemer.Points < item.PointsValue {
			return &models.InsufficientFundsError{Required: item.PointsValue, Available: redeemer.Points}
		}

		uploader, err := e.store.GetUser(ctx, item.UploaderID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: uploader %s of item %s does not exist", models.ErrInternalInconsistency, item.UploaderID, item.ID)
		}
		if err != nil {
			return err
		}

		s, err := e.settle(*item, *redeemer, *uploader)
		if err != nil {
			return err
		}
		if err := e.store.Redeem(ctx, s); err != nil {
			return err
		}

		result = Result{
			Redemption:  s.Redemption,
			Item:        s.Item.Item,
			PointsSpent: item.PointsValue,
			NewBalance:  s.Debit.Entry.BalanceAfter,
		}
		result.Item.Version++
		return nil
	})
	if errors.Is(err, models.ErrInternalInconsistency) {
		e.logger.ErrorContext(ctx, "redemption blocked by inconsistent data", "item_id", itemID, "error", err)
	}
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "item redeemed",
		"redemption_id", result.Redemption.ID,
		"item_id", result.Item.ID,
		"redeemer_id", result.Redemption.UserID,
		"uploader_id", result.Redemption.UploaderID,
		"points", result.PointsSpent,
	)
	ev := events.New(events.ItemRedeemed)
	ev.RedemptionID = result.Redemption.ID
	ev.ItemIDs = []string{result.Item.ID}
	ev.UserIDs = []string{result.Redemption.UserID, result.Redemption.UploaderID}
	e.runner.Announce(ctx, ev)

	return &result, nil
}

// settle builds the writes of one redemption from validated snapshots.
func (e *Engine) settle(item models.Item, redeemer, uploader models.User) (storage.RedemptionSettlement, error) {
	now := e.now()
	redemptionID := uuid.NewString()
	price := item.PointsValue

	debit, err := ledger.NewEntry(redeemer, -price, models.TransactionRedeem,
		fmt.Sprintf("Redeemed %s", item.Title),
		ledger.Refs{ItemID: item.ID, RedemptionID: redemptionID}, now)
	if err != nil {
		return storage.RedemptionSettlement{}, err
	}
	credit, err := ledger.NewEntry(uploader, price, models.TransactionSwap,
		fmt.Sprintf("Points received for %s", item.Title),
		ledger.Refs{ItemID: item.ID, RedemptionID: redemptionID}, now)
	if err != nil {
		return storage.RedemptionSettlement{}, err
	}

	redeemed := item
	redeemed.Status = models.ItemRedeemed
	redeemed.RedeemedBy = redeemer.ID
	redeemed.RedemptionDate = &now
	redeemed.UpdatedAt = now

	return storage.RedemptionSettlement{
		Item: storage.ItemChange{From: models.ItemAvailable, Item: redeemed},
		Redemption: models.Redemption{
			ID:                  redemptionID,
			ItemID:              item.ID,
			UserID:              redeemer.ID,
			UploaderID:          uploader.ID,
			PointsSpent:         price,
			TransactionID:       debit.ID,
			CreditTransactionID: credit.ID,
			Status:              models.RedemptionCompleted,
			CreatedAt:           now,
		},
		Debit:  ledger.Change(redeemer, debit),
		Credit: ledger.Change(uploader, credit),
	}, nil
}

// Get returns a redemption. Only the redeemer, the uploader and admins may read it.
func (e *Engine) Get(ctx context.Context, caller identity.Identity, redemptionID string) (*models.Redemption, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	r, err := e.store.GetRedemption(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && caller.UserID != r.UserID && caller.UserID != r.UploaderID {
		return nil, models.ErrForbidden
	}
	return r, nil
}

// ListForUser returns the redemptions made by userID, newest first.
func (e *Engine) ListForUser(ctx context.Context, caller identity.Identity, userID string) ([]models.Redemption, error) {
	if err := caller.RequireSelfOrAdmin(userID); err != nil {
		return nil, err
	}
	return e.store.ListRedemptionsByUser(ctx, userID)
}
