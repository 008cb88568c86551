package items

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/validation"
	"github.com/google/uuid"
)

// Store is the storage the item lifecycle needs.
type Store interface {
	storage.ItemStore
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Service manages listings outside of settlements.
type Service struct {
	store    Store
	runner   *settlement.Runner
	validate *validation.Validator
	prices   models.PointsSchedule
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an item Service. prices is the redemption price schedule.
func NewService(store Store, runner *settlement.Runner, prices models.PointsSchedule, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		runner:   runner,
		validate: validation.New(),
		prices:   prices,
		logger:   logger.With("service", "items"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a pending listing owned by the caller and prices it by condition.
func (s *Service) Submit(ctx context.Context, caller identity.Identity, in SubmitInput) (*models.Item, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, caller.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	item, err := s.store.CreateItem(ctx, &models.Item{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Images:      in.Images,
		Category:    in.Category,
		Size:        in.Size,
		Condition:   in.Condition,
		Tags:        in.Tags,
		PointsValue: s.prices.For(in.Condition),
		Status:      models.ItemPending,
		UploaderID:  caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item submitted", "item_id", item.ID, "uploader_id", item.UploaderID, "points_value", item.PointsValue)
	return item, nil
}

// Edit changes a pending or available listing. Only the uploader may edit,
// admins included. An available listing goes back to pending for another review.
func (s *Service) Edit(ctx context.Context, caller identity.Identity, itemID string, in EditInput) (*models.Item, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	in.normalize()
	if in.empty() {
		return nil, models.NewValidationError("body", "at least one field must be set")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var updated models.Item
	err := s.runner.Run(ctx, "item.edit", func() error {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.UploaderID != caller.UserID {
			return fmt.Errorf("%w: only the uploader may edit item %s", models.ErrForbidden, item.ID)
		}
		if item.Status != models.ItemPending && item.Status != models.ItemAvailable {
			return &models.StateError{Entity: "item " + item.ID, Current: string(item.Status), Want: "pending or available"}
		}

		from := item.Status
		updated = *item
		if in.apply(&updated) {
			updated.PointsValue = s.prices.For(updated.Condition)
		}
		updated.Status = models.ItemPending
		updated.UpdatedAt = s.now()

		if err := s.store.UpdateItem(ctx, storage.ItemChange{From: from, Item: updated}); err != nil {
			return err
		}
		updated.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item edited", "item_id", updated.ID, "user_id", caller.UserID)
	return &updated, nil
}

// Delete soft-removes a listing that has not been exchanged.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, itemID string) (*models.Item, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	var removed models.Item
	err := s.runner.Run(ctx, "item.delete", func() error {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := caller.RequireSelfOrAdmin(item.UploaderID); err != nil {
			return err
		}
		if err := Transition(item, models.ItemRemoved); err != nil {
			return err
		}

		now := s.now()
		removed = *item
		removed.Status = models.ItemRemoved
		removed.RemovedBy = caller.UserID
		removed.RemovedDate = &now
		removed.RemovalReason = "Deleted by user"
		if caller.IsAdmin() && caller.UserID != item.UploaderID {
			removed.RemovalReason = "Removed by admin"
		}
		removed.UpdatedAt = now

		if err := s.store.UpdateItem(ctx, storage.ItemChange{From: item.Status, Item: removed}); err != nil {
			return err
		}
		removed.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed", "item_id", removed.ID, "removed_by", caller.UserID, "reason", removed.RemovalReason)
	ev := events.New(events.ItemRemoved)
	ev.ItemIDs = []string{removed.ID}
	ev.UserIDs = []string{removed.UploaderID}
	s.runner.Announce(ctx, ev)

	return &removed, nil
}

// Get returns an item. Listings that are not available are only visible to
// their owner and to admins.
func (s *Service) Get(ctx context.Context, caller identity.Identity, itemID string) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != models.ItemAvailable && !visibleTo(caller, item.UploaderID) {
		return nil, fmt.Errorf("item %s is not listed: %w", itemID, models.ErrNotFound)
	}
	return item, nil
}

// List returns items newest first. Members see available items and their own.
func (s *Service) List(ctx context.Context, caller identity.Identity, filter ListFilter) ([]models.Item, error) {
	if !caller.IsAdmin() {
		own := !caller.IsZero() && filter.UploaderID == caller.UserID
		switch {
		case own:
		case filter.Status == "":
			filter.Status = models.ItemAvailable
		case filter.Status != models.ItemAvailable:
			return nil, models.ErrForbidden
		}
	}
	return s.store.ListItems(ctx, storage.ItemFilter{
		Status:     filter.Status,
		UploaderID: filter.UploaderID,
		Limit:      filter.Limit,
	})
}

func visibleTo(caller identity.Identity, ownerID string) bool {
	return caller.IsAdmin() || (!caller.IsZero() && caller.UserID == ownerID)
}
