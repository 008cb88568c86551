package sqlstore

import (
	"context"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// GetSwap retrieves a swap by ID.
func (s *Store) GetSwap(ctx context.Context, swapID string) (*models.Swap, error) {
	var swap models.Swap
	if err := first(s.db.WithContext(ctx), "swap", swapID, &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// ListSwaps retrieves swaps newest first.
func (s *Store) ListSwaps(ctx context.Context, filter storage.SwapFilter) ([]models.Swap, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	switch {
	case filter.RequesterID != "" && filter.OwnerID != "":
		q = q.Where("requester_id = ? OR owner_id = ?", filter.RequesterID, filter.OwnerID)
	case filter.RequesterID != "":
		q = q.Where("requester_id = ?", filter.RequesterID)
	case filter.OwnerID != "":
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var swaps []models.Swap
	if err := q.Find(&swaps).Error; err != nil {
		return nil, fmt.Errorf("failed to query swaps: %w", err)
	}
	return swaps, nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	var report models.Report
	if err := first(s.db.WithContext(ctx), "report", reportID, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports retrieves reports newest first. An empty status matches all.
func (s *Store) ListReports(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []models.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	return reports, nil
}
