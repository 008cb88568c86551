// Package respond writes JSON responses and maps domain errors to HTTP.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Decode reads a JSON request body into v. Unknown fields are rejected.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return models.NewValidationError("body", fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// Status maps an error kind to its HTTP status.
func Status(kind string) int {
	switch kind {
	case models.KindValidation, models.KindInvalidID:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden, models.KindSelfActionDenied, models.KindSelfRedemptionDenied, models.KindSelfReportDenied:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInvalidState, models.KindAlreadyProcessed, models.KindDuplicateReport, models.KindDuplicateSwap:
		return http.StatusConflict
	case models.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case models.KindTransactionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as the standard error envelope. Internal failures are
// logged and their details withheld from the caller.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := models.ErrorKind(err)
	status := Status(kind)
	body := api.Error{Kind: kind, Message: err.Error()}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		body.Message = "request validation failed"
		for _, fe := range validationErr.Errors {
			body.Details = append(body.Details, api.FieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	var fundsErr *models.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		shortfall := fundsErr.Shortfall()
		body.Shortfall = &shortfall
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "kind", kind, "error", err, "path", r.URL.Path)
		body.Message = "internal error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	JSON(w, status, api.ErrorResponse{Error: body})
}

// ParamError is the api.ChiServerOptions error handler for unbindable path and
// query parameters.
func ParamError(w http.ResponseWriter, r *http.Request, err error) {
	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) && (paramErr.ParamName == "itemId" || paramErr.ParamName == "swapId" || paramErr.ParamName == "redemptionId") {
		Error(w, r, fmt.Errorf("%w: %s is not a valid id", models.ErrInvalidID, paramErr.ParamName))
		return
	}
	Error(w, r, models.NewValidationError("query", err.Error()))
}
