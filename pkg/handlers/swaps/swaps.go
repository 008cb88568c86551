package swaps

import (
	"context"
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/respond"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/mapping"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	swapsvc "github.com/chris/clothing-swap-settlement/pkg/swaps"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Exchange runs the swap lifecycle.
type Exchange interface {
	Propose(ctx context.Context, caller identity.Identity, in swapsvc.ProposeInput) (*models.Swap, error)
	Accept(ctx context.Context, caller identity.Identity, swapID, response string) (*models.Swap, error)
	Reject(ctx context.Context, caller identity.Identity, swapID, response string) (*models.Swap, error)
	Cancel(ctx context.Context, caller identity.Identity, swapID, message string) (*models.Swap, error)
	Complete(ctx context.Context, caller identity.Identity, swapID string) (*models.Swap, error)
	Get(ctx context.Context, caller identity.Identity, swapID string) (*models.Swap, error)
	List(ctx context.Context, caller identity.Identity, filter swapsvc.ListFilter) ([]models.Swap, error)
}

// SwapsHandler serves the /swaps routes.
type SwapsHandler struct {
	Exchange Exchange
}

// NewSwapsHandler creates a new SwapsHandler.
func NewSwapsHandler(exchange Exchange) *SwapsHandler {
	return &SwapsHandler{Exchange: exchange}
}

func (h *SwapsHandler) ProposeSwap(w http.ResponseWriter, r *http.Request) {
	var body api.NewSwap
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	in := swapsvc.ProposeInput{RequestedItemID: body.RequestedItemId, OfferedItemIDs: body.OfferedItemIds}
	if body.Message != nil {
		in.Message = *body.Message
	}

	swap, err := h.Exchange.Propose(r.Context(), identity.FromContext(r.Context()), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiSwap(swap)
	respond.JSON(w, http.StatusCreated, &out)
}

func (h *SwapsHandler) ListSwaps(w http.ResponseWriter, r *http.Request, params api.ListSwapsParams) {
	var filter swapsvc.ListFilter
	if params.Role != nil {
		filter.Role = swapsvc.Role(*params.Role)
	}
	if params.Status != nil {
		filter.Status = models.SwapStatus(*params.Status)
	}

	list, err := h.Exchange.List(r.Context(), identity.FromContext(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiSwapList(list))
}

func (h *SwapsHandler) GetSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID) {
	swap, err := h.Exchange.Get(r.Context(), identity.FromContext(r.Context()), swapId.String())
	h.write(w, r, swap, err)
}

func (h *SwapsHandler) AcceptSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID) {
	message, ok := optionalMessage(w, r)
	if !ok {
		return
	}
	swap, err := h.Exchange.Accept(r.Context(), identity.FromContext(r.Context()), swapId.String(), message)
	h.write(w, r, swap, err)
}

func (h *SwapsHandler) RejectSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID) {
	message, ok := optionalMessage(w, r)
	if !ok {
		return
	}
	swap, err := h.Exchange.Reject(r.Context(), identity.FromContext(r.Context()), swapId.String(), message)
	h.write(w, r, swap, err)
}

func (h *SwapsHandler) CancelSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID) {
	message, ok := optionalMessage(w, r)
	if !ok {
		return
	}
	swap, err := h.Exchange.Cancel(r.Context(), identity.FromContext(r.Context()), swapId.String(), message)
	h.write(w, r, swap, err)
}

func (h *SwapsHandler) CompleteSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID) {
	swap, err := h.Exchange.Complete(r.Context(), identity.FromContext(r.Context()), swapId.String())
	h.write(w, r, swap, err)
}

func (h *SwapsHandler) write(w http.ResponseWriter, r *http.Request, swap *models.Swap, err error) {
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := mapping.ToApiSwap(swap)
	respond.JSON(w, http.StatusOK, &out)
}

// optionalMessage reads the optional action body. An empty body is allowed.
func optionalMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", true
	}
	var body api.SwapResponse
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return "", false
	}
	if body.Message == nil {
		return "", true
	}
	return *body.Message, true
}
