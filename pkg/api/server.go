package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Register the caller's points account
	// (PUT /users/me)
	RegisterUser(w http.ResponseWriter, r *http.Request)
	// Points balance and recent transactions of the caller
	// (GET /users/me/points)
	GetMyPoints(w http.ResponseWriter, r *http.Request)
	// Ledger entries of the caller
	// (GET /users/me/transactions)
	ListMyTransactions(w http.ResponseWriter, r *http.Request, params ListMyTransactionsParams)
	// Redemptions made by the caller
	// (GET /users/me/redemptions)
	ListMyRedemptions(w http.ResponseWriter, r *http.Request)
	// Get a redemption
	// (GET /redemptions/{redemptionId})
	GetRedemption(w http.ResponseWriter, r *http.Request, redemptionId openapi_types.UUID)
	// Submit an item for review
	// (POST /items)
	SubmitItem(w http.ResponseWriter, r *http.Request)
	// List items
	// (GET /items)
	ListItems(w http.ResponseWriter, r *http.Request, params ListItemsParams)
	// Get an item
	// (GET /items/{itemId})
	GetItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID)
	// Edit an item
	// (PUT /items/{itemId})
	EditItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID)
	// Withdraw an item
	// (DELETE /items/{itemId})
	DeleteItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID)
	// Redeem an item with points
	// (POST /items/{itemId}/redeem)
	RedeemItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID)
	// Report an item
	// (POST /items/{itemId}/reports)
	ReportItem(w http.ResponseWriter, r *http.Request, itemId openapi_types.UUID)
	// Propose a swap
	// (POST /swaps)
	ProposeSwap(w http.ResponseWriter, r *http.Request)
	// List the caller's swaps
	// (GET /swaps)
	ListSwaps(w http.ResponseWriter, r *http.Request, params ListSwapsParams)
	// Get a swap
	// (GET /swaps/{swapId})
	GetSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID)
	// Accept a swap
	// (POST /swaps/{swapId}/accept)
	AcceptSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID)
	// Reject a swap
	// (POST /swaps/{swapId}/reject)
	RejectSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID)
	// Complete an accepted swap
	// (POST /swaps/{swapId}/complete)
	CompleteSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID)
	// Cancel a pending swap
	// (POST /swaps/{swapId}/cancel)
	CancelSwap(w http.ResponseWriter, r *http.Request, swapId openapi_types.UUID)
	// Approve pending items
	// (POST /admin/items/approve)
	ApproveItems(w http.ResponseWriter, r *http.Request)
	// Reject pending items
	// (POST /admin/items/reject)
	RejectItems(w http.ResponseWriter, r *http.Request)
	// List reports
	// (GET /admin/reports)
	ListReports(w http.ResponseWriter, r *http.Request, params ListReportsParams)
	// Resolve reports
	// (POST /admin/reports/resolve)
	ResolveReports(w http.ResponseWriter, r *http.Request)
	// Post a manual ledger entry
	// (POST /admin/ledger/entries)
	PostLedgerEntry(w http.ResponseWriter, r *http.Request)
	// Newest ledger entries across all users
	// (GET /admin/ledger/entries)
	ListLedgerEntries(w http.ResponseWriter, r *http.Request, params ListLedgerEntriesParams)
	// Replay ledgers against balances
	// (GET /admin/ledger/audit)
	AuditLedger(w http.ResponseWriter, r *http.Request, params AuditLedgerParams)
}

// InvalidParamFormatError is passed to the error handler when a path or query
// parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts requests to the typed parameters of ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest *openapi_types.UUID) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// RegisterUser operation middleware
func (siw *ServerInterfaceWrapper) RegisterUser(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RegisterUser(w, r)
	})
}

// GetMyPoints operation middleware
func (siw *ServerInterfaceWrapper) GetMyPoints(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetMyPoints(w, r)
	})
}

// ListMyTransactions operation middleware
func (siw *ServerInterfaceWrapper) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	var err error
	var params ListMyTransactionsParams

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListMyTransactions(w, r, params)
	})
}

// ListMyRedemptions operation middleware
func (siw *ServerInterfaceWrapper) ListMyRedemptions(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListMyRedemptions(w, r)
	})
}

// GetRedemption operation middleware
func (siw *ServerInterfaceWrapper) GetRedemption(w http.ResponseWriter, r *http.Request) {
	var redemptionId openapi_types.UUID
	if !siw.bindPath(w, r, "redemptionId", &redemptionId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRedemption(w, r, redemptionId)
	})
}

// SubmitItem operation middleware
func (siw *ServerInterfaceWrapper) SubmitItem(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SubmitItem(w, r)
	})
}

// ListItems operation middleware
func (siw *ServerInterfaceWrapper) ListItems(w http.ResponseWriter, r *http.Request) {
	var err error
	var params ListItemsParams

	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	// ------------- Optional query parameter "uploaderId" -------------

	err = runtime.BindQueryParameter("form", true, false, "uploaderId", r.URL.Query(), &params.UploaderId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "uploaderId", Err: err})
		return
	}

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListItems(w, r, params)
	})
}

// GetItem operation middleware
func (siw *ServerInterfaceWrapper) GetItem(w http.ResponseWriter, r *http.Request) {
	var itemId openapi_types.UUID
	if !siw.bindPath(w, r, "itemId", &itemId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetItem(w, r, itemId)
	})
}

// EditItem operation middleware
func (siw *ServerInterfaceWrapper) EditItem(w http.ResponseWriter, r *http.Request) {
	var itemId openapi_types.UUID
	if !siw.bindPath(w, r, "itemId", &itemId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.EditItem(w, r, itemId)
	})
}

// DeleteItem operation middleware
func (siw *ServerInterfaceWrapper) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var itemId openapi_types.UUID
	if !siw.bindPath(w, r, "itemId", &itemId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteItem(w, r, itemId)
	})
}

// RedeemItem operation middleware
func (siw *ServerInterfaceWrapper) RedeemItem(w http.ResponseWriter, r *http.Request) {
	var itemId openapi_types.UUID
	if !siw.bindPath(w, r, "itemId", &itemId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RedeemItem(w, r, itemId)
	})
}

// ReportItem operation middleware
func (siw *ServerInterfaceWrapper) ReportItem(w http.ResponseWriter, r *http.Request) {
	var itemId openapi_types.UUID
	if !siw.bindPath(w, r, "itemId", &itemId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ReportItem(w, r, itemId)
	})
}

// ProposeSwap operation middleware
func (siw *ServerInterfaceWrapper) ProposeSwap(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ProposeSwap(w, r)
	})
}

// ListSwaps operation middleware
func (siw *ServerInterfaceWrapper) ListSwaps(w http.ResponseWriter, r *http.Request) {
	var err error
	var params ListSwapsParams

	// ------------- Optional query parameter "role" -------------

	err = runtime.BindQueryParameter("form", true, false, "role", r.URL.Query(), &params.Role)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "role", Err: err})
		return
	}

	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListSwaps(w, r, params)
	})
}

// GetSwap operation middleware
func (siw *ServerInterfaceWrapper) GetSwap(w http.ResponseWriter, r *http.Request) {
	var swapId openapi_types.UUID
	if !siw.bindPath(w, r, "swapId", &swapId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSwap(w, r, swapId)
	})
}

// AcceptSwap operation middleware
func (siw *ServerInterfaceWrapper) AcceptSwap(w http.ResponseWriter, r *http.Request) {
	var swapId openapi_types.UUID
	if !siw.bindPath(w, r, "swapId", &swapId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AcceptSwap(w, r, swapId)
	})
}

// RejectSwap operation middleware
func (siw *ServerInterfaceWrapper) RejectSwap(w http.ResponseWriter, r *http.Request) {
	var swapId openapi_types.UUID
	if !siw.bindPath(w, r, "swapId", &swapId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RejectSwap(w, r, swapId)
	})
}

// CompleteSwap operation middleware
func (siw *ServerInterfaceWrapper) CompleteSwap(w http.ResponseWriter, r *http.Request) {
	var swapId openapi_types.UUID
	if !siw.bindPath(w, r, "swapId", &swapId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CompleteSwap(w, r, swapId)
	})
}

// CancelSwap operation middleware
func (siw *ServerInterfaceWrapper) CancelSwap(w http.ResponseWriter, r *http.Request) {
	var swapId openapi_types.UUID
	if !siw.bindPath(w, r, "swapId", &swapId) {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CancelSwap(w, r, swapId)
	})
}

// ApproveItems operation middleware
func (siw *ServerInterfaceWrapper) ApproveItems(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ApproveItems(w, r)
	})
}

// RejectItems operation middleware
func (siw *ServerInterfaceWrapper) RejectItems(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RejectItems(w, r)
	})
}

// ListReports operation middleware
func (siw *ServerInterfaceWrapper) ListReports(w http.ResponseWriter, r *http.Request) {
	var err error
	var params ListReportsParams

	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListReports(w, r, params)
	})
}

// ResolveReports operation middleware
func (siw *ServerInterfaceWrapper) ResolveReports(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ResolveReports(w, r)
	})
}

// PostLedgerEntry operation middleware
func (siw *ServerInterfaceWrapper) PostLedgerEntry(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostLedgerEntry(w, r)
	})
}

// ListLedgerEntries operation middleware
func (siw *ServerInterfaceWrapper) ListLedgerEntries(w http.ResponseWriter, r *http.Request) {
	var err error
	var params ListLedgerEntriesParams

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListLedgerEntries(w, r, params)
	})
}

// AuditLedger operation middleware
func (siw *ServerInterfaceWrapper) AuditLedger(w http.ResponseWriter, r *http.Request) {
	var err error
	var params AuditLedgerParams

	// ------------- Optional query parameter "userId" -------------

	err = runtime.BindQueryParameter("form", true, false, "userId", r.URL.Query(), &params.UserId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userId", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AuditLedger(w, r, params)
	})
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching the API on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/users/me", wrapper.RegisterUser)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/me/points", wrapper.GetMyPoints)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/me/transactions", wrapper.ListMyTransactions)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/me/redemptions", wrapper.ListMyRedemptions)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/redemptions/{redemptionId}", wrapper.GetRedemption)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/items", wrapper.SubmitItem)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/items", wrapper.ListItems)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/items/{itemId}", wrapper.GetItem)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/items/{itemId}", wrapper.EditItem)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/items/{itemId}", wrapper.DeleteItem)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/items/{itemId}/redeem", wrapper.RedeemItem)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/items/{itemId}/reports", wrapper.ReportItem)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/swaps", wrapper.ProposeSwap)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/swaps", wrapper.ListSwaps)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/swaps/{swapId}", wrapper.GetSwap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/swaps/{swapId}/accept", wrapper.AcceptSwap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/swaps/{swapId}/reject", wrapper.RejectSwap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/swaps/{swapId}/complete", wrapper.CompleteSwap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/swaps/{swapId}/cancel", wrapper.CancelSwap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/admin/items/approve", wrapper.ApproveItems)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/admin/items/reject", wrapper.RejectItems)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/admin/reports", wrapper.ListReports)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/admin/reports/resolve", wrapper.ResolveReports)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/admin/ledger/entries", wrapper.PostLedgerEntry)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/admin/ledger/entries", wrapper.ListLedgerEntries)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/admin/ledger/audit", wrapper.AuditLedger)
	})

	return r
}
