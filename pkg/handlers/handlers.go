// Package handlers implements api.ServerInterface by composing the handlers
// of each API area.
package handlers

import (
	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/accounts"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/admin"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/items"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/swaps"
	itemsvc "github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/metrics"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
	"github.com/chris/clothing-swap-settlement/pkg/redemption"
	swapsvc "github.com/chris/clothing-swap-settlement/pkg/swaps"
)

// ApiHandler implements the server interface. Each embedded handler serves
// one area of the API.
type ApiHandler struct {
	*accounts.AccountsHandler
	*items.ItemsHandler
	*swaps.SwapsHandler
	*admin.AdminHandler
}

// Services are the engines behind the API.
type Services struct {
	Ledger     *ledger.Service
	Items      *itemsvc.Service
	Redemption *redemption.Engine
	Swaps      *swapsvc.Engine
	Moderation *moderation.Engine
	Metrics    *metrics.Collector
}

// NewApiHandler wires the area handlers to the engines.
func NewApiHandler(s Services) *ApiHandler {
	var observer admin.AuditObserver
	if s.Metrics != nil {
		observer = s.Metrics
	}
	return &ApiHandler{
		AccountsHandler: accounts.NewAccountsHandler(s.Ledger, s.Redemption),
		ItemsHandler:    items.NewItemsHandler(s.Items, s.Redemption, s.Moderation),
		SwapsHandler:    swaps.NewSwapsHandler(s.Swaps),
		AdminHandler:    admin.NewAdminHandler(s.Moderation, s.Ledger, observer),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)
