package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/google/uuid"
)

// ReportInput is a member's complaint about an item.
type ReportInput struct {
	Reason  models.ReportReason `json:"reason" validate:"report_reason"`
	Details string              `json:"details" validate:"max=500"`
}

// Report files a pending report against an item. A member may report an item
// once and never their own item.
func (e *Engine) Report(ctx context.Context, caller identity.Identity, itemID string, in ReportInput) (*models.Report, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	in.Details = strings.TrimSpace(in.Details)
	if err := e.validate.Struct(in); err != nil {
		return nil, err
	}

	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UploaderID == caller.UserID {
		return nil, models.ErrSelfReportDenied
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		ReporterID: caller.UserID,
		Reason:     in.Reason,
		Details:    in.Details,
		Status:     models.ReportPending,
		CreatedAt:  e.now(),
	}
	if err := e.store.CreateReport(ctx, report); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: item %s was already reported by %s", models.ErrDuplicateReport, item.ID, caller.UserID)
		}
		return nil, err
	}

	e.logger.InfoContext(ctx, "item reported", "report_id", report.ID, "item_id", item.ID, "reason", report.Reason)
	return report, nil
}

// Action is the decision taken on a report.
type Action string

const (
	ActionDismiss Action = "dismiss"
	ActionRemove  Action = "remove"
)

// ResolveReports closes each pending report. Removing also takes the reported
// item off the exchange in the same settlement, unless the item already left
// through another path.
func (e *Engine) ResolveReports(ctx context.Context, caller identity.Identity, reportIDs []string, action Action, notes string) (*BulkResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := checkBatch("report_ids", reportIDs); err != nil {
		return nil, err
	}
	if action != ActionDismiss && action != ActionRemove {
		return nil, models.NewValidationError("action", "must be dismiss or remove")
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > 1000 {
		return nil, models.NewValidationError("notes", "must be at most 1000 characters")
	}

	result := newBulkResult(len(reportIDs))
	for _, id := range reportIDs {
		if !validID(id) {
			result.invalid(id)
			continue
		}
		report, itemRemoved, err := e.resolve(ctx, caller, id, action, notes)
		if err != nil {
			result.record(id, err)
			continue
		}
		result.succeed(Outcome{ID: report.ID})

		ev := events.New(events.ReportResolved)
		ev.ReportID = report.ID
		ev.ItemIDs = []string{report.ItemID}
		e.runner.Announce(ctx, ev)
		if itemRemoved != nil {
			ev := events.New(events.ItemRemoved)
			ev.ReportID = report.ID
			ev.ItemIDs = []string{itemRemoved.ID}
			ev.UserIDs = []string{itemRemoved.UploaderID}
			e.runner.Announce(ctx, ev)
		}
	}

	e.logger.InfoContext(ctx, "reports resolved", "admin_id", caller.UserID, "action", action, "summary", result.Summary)
	return result, nil
}

func (e *Engine) resolve(ctx context.Context, caller identity.Identity, reportID string, action Action, notes string) (*models.Report, *models.Item, error) {
	var (
		resolved models.Report
		removed  *models.Item
	)
	err := e.runner.Run(ctx, "moderation.resolve_report", func() error {
		removed = nil
		report, err := e.store.GetReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report.Status != models.ReportPending {
			return &models.StateError{Entity: "report " + report.ID, Current: string(report.Status), Want: string(models.ReportPending)}
		}

		now := e.now()
		resolved = *report
		resolved.ReviewedBy = caller.UserID
		resolved.ReviewedDate = &now
		resolved.ReviewNotes = notes

		var change *storage.ItemChange
		switch action {
		case ActionDismiss:
			resolved.Status = models.ReportDismissed
			if resolved.ReviewNotes == "" {
				resolved.ReviewNotes = "Dismissed by admin"
			}
		case ActionRemove:
			resolved.Status = models.ReportRemoved
			if resolved.ReviewNotes == "" {
				resolved.ReviewNotes = "Item removed due to report"
			}
			item, err := e.store.GetItem(ctx, report.ItemID)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: item %s of report %s does not exist", models.ErrInternalInconsistency, report.ItemID, report.ID)
			}
			if err != nil {
				return err
			}
			if items.CanTransition(item.Status, models.ItemRemoved) {
				taken := *item
				taken.Status = models.ItemRemoved
				taken.RemovedBy = caller.UserID
				taken.RemovedDate = &now
				taken.RemovalReason = fmt.Sprintf("Removed due to report: %s", report.Reason)
				taken.UpdatedAt = now
				change = &storage.ItemChange{From: item.Status, Item: taken}
				removed = &taken
			}
		}

		return e.store.ResolveReport(ctx, storage.ReportResolution{Report: resolved, Item: change})
	})
	if err != nil {
		return nil, nil, err
	}
	return &resolved, removed, nil
}

// ReportList is a report listing with the number of reports in each status.
type ReportList struct {
	Reports []models.Report             `json:"reports"`
	Counts  map[models.ReportStatus]int `json:"counts"`
}

// ListReports returns reports newest first, optionally narrowed to one status.
// Counts always cover every report.
func (e *Engine) ListReports(ctx context.Context, caller identity.Identity, status models.ReportStatus) (*ReportList, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	all, err := e.store.ListReports(ctx, "")
	if err != nil {
		return nil, err
	}

	list := &ReportList{
		Reports: []models.Report{},
		Counts: map[models.ReportStatus]int{
			models.ReportPending:   0,
			models.ReportDismissed: 0,
			models.ReportRemoved:   0,
		},
	}
	for _, r := range all {
		list.Counts[r.Status]++
		if status == "" || r.Status == status {
			list.Reports = append(list.Reports, r)
		}
	}
	return list, nil
}
