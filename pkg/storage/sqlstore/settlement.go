package sqlstore

import (
	"context"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"gorm.io/gorm"
)

// PostEntry applies a single ledger entry.
func (s *Store) PostEntry(ctx context.Context, p storage.PostSettlement) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyBalance(tx, p.Change)
	})
	if err != nil {
		return fmt.Errorf("failed to post ledger entry for user %s: %w", p.Change.User.ID, err)
	}
	return nil
}

// ApproveItem makes a pending item available and credits the uploader.
func (s *Store) ApproveItem(ctx context.Context, a storage.ApprovalSettlement) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyItem(tx, a.Item); err != nil {
			return err
		}
		return applyBalance(tx, a.Reward)
	})
	if err != nil {
		return fmt.Errorf("failed to approve item %s: %w", a.Item.Item.ID, err)
	}
	return nil
}

// RejectItem moves a pending item to rejected.
func (s *Store) RejectItem(ctx context.Context, r storage.RejectionSettlement) error {
	if err := applyItem(s.db.WithContext(ctx), r.Item); err != nil {
		return fmt.Errorf("failed to reject item %s: %w", r.Item.Item.ID, err)
	}
	return nil
}

// Redeem marks the item redeemed, debits the redeemer, credits the uploader
// and records the redemption.
func (s *Store) Redeem(ctx context.Context, r storage.RedemptionSettlement) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyItem(tx, r.Item); err != nil {
			return err
		}
		if err := applyBalance(tx, r.Debit); err != nil {
			return err
		}
		if err := applyBalance(tx, r.Credit); err != nil {
			return err
		}
		redemption := r.Redemption
		if err := tx.Create(&redemption).Error; err != nil {
			return fmt.Errorf("failed to record redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to redeem item %s: %w", r.Item.Item.ID, err)
	}
	return nil
}

// CreateSwap stores a new swap request. A partial unique index allows one
// pending swap per requester and requested item.
func (s *Store) CreateSwap(ctx context.Context, swap *models.Swap) error {
	if err := s.db.WithContext(ctx).Create(swap).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("pending swap for item %s by %s: %w", swap.RequestedItemID, swap.RequesterID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create swap: %w", err)
	}
	return nil
}

func applySwap(tx *gorm.DB, from models.SwapStatus, swap models.Swap) error {
	res := tx.Model(&models.Swap{ID: swap.ID}).
		Where("status = ?", from).
		Select("*").
		Updates(&swap)
	if res.Error != nil {
		return fmt.Errorf("failed to update swap %s: %w", swap.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("swap %s is no longer %s: %w", swap.ID, from, storage.ErrConflict)
	}
	return nil
}

// TransitionSwap applies an accept, reject or cancel together with its item changes.
func (s *Store) TransitionSwap(ctx context.Context, t storage.SwapTransition) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applySwap(tx, t.From, t.Swap); err != nil {
			return err
		}
		for _, change := range t.Items {
			if err := applyItem(tx, change); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to move swap %s to %s: %w", t.Swap.ID, t.Swap.Status, err)
	}
	return nil
}

// CompleteSwap transfers ownership of every swapped item and increments both
// parties' successful swap counters.
func (s *Store) CompleteSwap(ctx context.Context, c storage.SwapCompletion) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applySwap(tx, c.From, c.Swap); err != nil {
			return err
		}
		for _, change := range c.Items {
			if err := applyItem(tx, change); err != nil {
				return err
			}
		}
		for _, userID := range c.PartyIDs {
			res := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("successful_swaps", gorm.Expr("successful_swaps + 1"))
			if res.Error != nil {
				return fmt.Errorf("failed to count swap for user %s: %w", userID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("user %s disappeared: %w", userID, storage.ErrConflict)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete swap %s: %w", c.Swap.ID, err)
	}
	return nil
}

// CreateReport stores a new report. The unique index on item and reporter
// rejects a second report by the same reporter.
func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("report for item %s by %s: %w", report.ItemID, report.ReporterID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ResolveReport closes a pending report and, for removals, the reported item.
func (s *Store) ResolveReport(ctx context.Context, r storage.ReportResolution) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report := r.Report
		res := tx.Model(&models.Report{ID: report.ID}).
			Where("status = ?", models.ReportPending).
			Select("*").
			Updates(&report)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("report %s is no longer pending: %w", report.ID, storage.ErrConflict)
		}
		if r.Item != nil {
			return applyItem(tx, *r.Item)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to resolve report %s: %w", r.Report.ID, err)
	}
	return nil
}
