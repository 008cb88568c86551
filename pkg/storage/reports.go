package storage

import (
	"context"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// ReportReader defines the interface for reading item reports.
type ReportReader interface {
	GetReport(ctx context.Context, reportID string) (*models.Report, error)

	// ListReports retrieves reports newest first. An empty status matches all.
	ListReports(ctx context.Context, status models.ReportStatus) ([]models.Report, error)
}
