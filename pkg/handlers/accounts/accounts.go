package accounts

import (
	"context"
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/respond"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/mapping"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Ledger is the part of the ledger service the account routes use.
type Ledger interface {
	RegisterUser(ctx context.Context, caller identity.Identity, name, email string) (*models.User, error)
	Summary(ctx context.Context, caller identity.Identity, userID string) (*ledger.Summary, error)
	History(ctx context.Context, caller identity.Identity, userID string, limit int) ([]models.PointTransaction, error)
}

// Redemptions reads redemption records.
type Redemptions interface {
	Get(ctx context.Context, caller identity.Identity, redemptionID string) (*models.Redemption, error)
	ListForUser(ctx context.Context, caller identity.Identity, userID string) ([]models.Redemption, error)
}

// AccountsHandler serves the caller's own account routes.
type AccountsHandler struct {
	Ledger      Ledger
	Redemptions Redemptions
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(l Ledger, r Redemptions) *AccountsHandler {
	return &AccountsHandler{Ledger: l, Redemptions: r}
}

func (h *AccountsHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterUser
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	email := ""
	if body.Email != nil {
		email = *body.Email
	}

	user, err := h.Ledger.RegisterUser(r.Context(), identity.FromContext(r.Context()), body.Name, email)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(user))
}

func (h *AccountsHandler) GetMyPoints(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := caller.Require(); err != nil {
		respond.Error(w, r, err)
		return
	}

	summary, err := h.Ledger.Summary(r.Context(), caller, caller.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiPointsSummary(summary))
}

func (h *AccountsHandler) ListMyTransactions(w http.ResponseWriter, r *http.Request, params api.ListMyTransactionsParams) {
	caller := identity.FromContext(r.Context())
	if err := caller.Require(); err != nil {
		respond.Error(w, r, err)
		return
	}
	limit := 0
	if params.Limit != nil {
		if *params.Limit < 0 {
			respond.Error(w, r, models.NewValidationError("limit", "must not be negative"))
			return
		}
		limit = int(*params.Limit)
	}

	entries, err := h.Ledger.History(r.Context(), caller, caller.UserID, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiPointTransactionList(entries))
}

func (h *AccountsHandler) ListMyRedemptions(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := caller.Require(); err != nil {
		respond.Error(w, r, err)
		return
	}

	list, err := h.Redemptions.ListForUser(r.Context(), caller, caller.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRedemptionList(list))
}

func (h *AccountsHandler) GetRedemption(w http.ResponseWriter, r *http.Request, redemptionId openapi_types.UUID) {
	redemption, err := h.Redemptions.Get(r.Context(), identity.FromContext(r.Context()), redemptionId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiRedemption(redemption)
	respond.JSON(w, http.StatusOK, &out)
}
