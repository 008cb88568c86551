package items

import (
	"context"
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/respond"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	itemsvc "github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/mapping"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
	"github.com/chris/clothing-swap-settlement/pkg/redemption"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const defaultListLimit = int32(50)

// Catalog manages listings.
type Catalog interface {
	Submit(ctx context.Context, caller identity.Identity, in itemsvc.SubmitInput) (*models.Item, error)
	Edit(ctx context.Context, caller identity.Identity, itemID string, in itemsvc.EditInput) (*models.Item, error)
	Delete(ctx context.Context, caller identity.Identity, itemID string) (*models.Item, error)
	Get(ctx context.Context, caller identity.Identity, itemID string) (*models.Item, error)
	List(ctx context.Context, caller identity.Identity, filter itemsvc.ListFilter) ([]models.Item, error)
}

// Redeemer settles point redemptions.
type Redeemer interface {
	Redeem(ctx context.Context, caller identity.Identity, itemID string) (*redemption.Result, error)
}

// Reporter files item reports.
type Reporter interface {
	Report(ctx context.Context, caller identity.Identity, itemID string, in moderation.ReportInput) (*models.Report, error)
}

// ItemsHandler serves the /items routes.
type ItemsHandler struct {
	Catalog  Catalog
	Redeemer Redeemer
	Reporter Reporter
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(catalog Catalog, redeemer Redeemer, reporter Reporter) *ItemsHandler {
	return &ItemsHandler{Catalog: catalog, Redeemer: redeemer, Reporter: reporter}
}

func (h *ItemsHandler) SubmitItem(w http.ResponseWriter, r *http.Request) {
	var body api.NewItem
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	item, err := h.Catalog.Submit(r.Context(), identity.FromContext(r.Context()), mapping.ToDomainSubmitInput(&body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiItem(item)
	respond.JSON(w, http.StatusCreated, &out)
}

func (h *ItemsHandler) ListItems(w http.ResponseWriter, r *http.Request, params api.ListItemsParams) {
	filter := itemsvc.ListFilter{Limit: defaultListLimit}
	if params.Status != nil {
		filter.Status = models.ItemStatus(*params.Status)
	}
	if params.UploaderId != nil {
		filter.UploaderID = *params.UploaderId
	}
	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > 100 {
			respond.Error(w, r, models.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		filter.Limit = *params.Limit
	}

	list, err := h.Catalog.List(r.Context(), identity.FromContext(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiItemList(list))
}

func (h *ItemsHandler) GetItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID) {
	item, err := h.Catalog.Get(r.Context(), identity.FromContext(r.Context()), itemId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiItem(item)
	respond.JSON(w, http.StatusOK, &out)
}

func (h *ItemsHandler) EditItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID) {
	var body api.ItemUpdate
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	item, err := h.Catalog.Edit(r.Context(), identity.FromContext(r.Context()), itemId.String(), mapping.ToDomainEditInput(&body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiItem(item)
	respond.JSON(w, http.StatusOK, &out)
}

func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID) {
	if _, err := h.Catalog.Delete(r.Context(), identity.FromContext(r.Context()), itemId.String()); err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemsHandler) RedeemItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID) {
	result, err := h.Redeemer.Redeem(r.Context(), identity.FromContext(r.Context()), itemId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiRedemptionResult(result))
}

func (h *ItemsHandler) ReportItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID) {
	var body api.NewReport
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	in := moderation.ReportInput{Reason: models.ReportReason(body.Reason)}
	if body.Details != nil {
		in.Details = *body.Details
	}

	report, err := h.Reporter.Report(r.Context(), identity.FromContext(r.Context()), itemId.String(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiReport(report)
	respond.JSON(w, http.StatusCreated, &out)
}
