package admin

import (
	"context"
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/respond"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/mapping"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
)

// Moderator settles admin review decisions.
type Moderator interface {
	BulkApprove(ctx context.Context, caller identity.Identity, itemIDs []string, pointsOverrides map[string]int64) (*moderation.BulkResult, error)
	BulkReject(ctx context.Context, caller identity.Identity, itemIDs []string, reason string) (*moderation.BulkResult, error)
	ResolveReports(ctx context.Context, caller identity.Identity, reportIDs []string, action moderation.Action, notes string) (*moderation.BulkResult, error)
	ListReports(ctx context.Context, caller identity.Identity, status models.ReportStatus) (*moderation.ReportList, error)
}

// Ledger posts manual entries and audits balances.
type Ledger interface {
	Post(ctx context.Context, caller identity.Identity, in ledger.PostInput) (*models.PointTransaction, error)
	Recent(ctx context.Context, caller identity.Identity, limit int32) ([]models.PointTransaction, error)
	Audit(ctx context.Context, userIDs ...string) ([]ledger.AuditResult, error)
	AuditAll(ctx context.Context) ([]ledger.AuditResult, error)
}

// AuditObserver receives the number of inconsistent users after an audit of
// every user.
type AuditObserver interface {
	SetInconsistentUsers(n int)
}

// AdminHandler serves the /admin routes.
type AdminHandler struct {
	Moderator Moderator
	Ledger    Ledger
	Observer  AuditObserver
}

// NewAdminHandler creates a new AdminHandler. observer may be nil.
func NewAdminHandler(moderator Moderator, l Ledger, observer AuditObserver) *AdminHandler {
	return &AdminHandler{Moderator: moderator, Ledger: l, Observer: observer}
}

func (h *AdminHandler) ApproveItems(w http.ResponseWriter, r *http.Request) {
	var body api.BulkApprove
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	var overrides map[string]int64
	if body.PointsOverrides != nil {
		overrides = *body.PointsOverrides
	}

	result, err := h.Moderator.BulkApprove(r.Context(), identity.FromContext(r.Context()), body.ItemIds, overrides)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiBulkResult(result, mapping.BulkApproved))
}

func (h *AdminHandler) RejectItems(w http.ResponseWriter, r *http.Request) {
	var body api.BulkReject
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.Moderator.BulkReject(r.Context(), identity.FromContext(r.Context()), body.ItemIds, body.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiBulkResult(result, mapping.BulkRejected))
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request, params api.ListReportsParams) {
	var status models.ReportStatus
	if params.Status != nil {
		status = models.ReportStatus(*params.Status)
	}

	list, err := h.Moderator.ListReports(r.Context(), identity.FromContext(r.Context()), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiReportList(list))
}

func (h *AdminHandler) ResolveReports(w http.ResponseWriter, r *http.Request) {
	var body api.ResolveReports
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	notes := ""
	if body.Notes != nil {
		notes = *body.Notes
	}

	result, err := h.Moderator.ResolveReports(r.Context(), identity.FromContext(r.Context()), body.ReportIds, moderation.Action(body.Action), notes)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiBulkResult(result, mapping.BulkResolved))
}

func (h *AdminHandler) PostLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var body api.NewLedgerEntry
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	entry, err := h.Ledger.Post(r.Context(), identity.FromContext(r.Context()), mapping.ToDomainPostInput(&body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiPointTransaction(entry)
	respond.JSON(w, http.StatusCreated, &out)
}

func (h *AdminHandler) ListLedgerEntries(w http.ResponseWriter, r *http.Request, params api.ListLedgerEntriesParams) {
	var limit int32
	if params.Limit != nil {
		limit = *params.Limit
	}

	entries, err := h.Ledger.Recent(r.Context(), identity.FromContext(r.Context()), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiPointTransactionList(entries))
}

func (h *AdminHandler) AuditLedger(w http.ResponseWriter, r *http.Request, params api.AuditLedgerParams) {
	if err := identity.FromContext(r.Context()).RequireAdmin(); err != nil {
		respond.Error(w, r, err)
		return
	}

	var (
		results []ledger.AuditResult
		err     error
	)
	if params.UserId != nil && *params.UserId != "" {
		results, err = h.Ledger.Audit(r.Context(), *params.UserId)
	} else {
		results, err = h.Ledger.AuditAll(r.Context())
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	report := mapping.ToApiAuditReport(results)
	if params.UserId == nil && h.Observer != nil {
		h.Observer.SetInconsistentUsers(report.Inconsistent)
	}
	respond.JSON(w, http.StatusOK, report)
}
