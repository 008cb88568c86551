package models

import (
	"errors"
	"fmt"
	"strings"
)

// Precondition and access failures. None of them leave partial state behind.
var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrInvalidState          = errors.New("invalid state")
	ErrSelfActionDenied      = errors.New("self action denied")
	ErrDuplicateReport       = errors.New("duplicate report")
	ErrDuplicateSwap         = errors.New("duplicate swap request")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrAlreadyProcessed      = errors.New("already processed")
	ErrInvalidID             = errors.New("invalid id")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrTransactionFailed     = errors.New("settlement transaction failed")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

var (
	ErrSelfRedemptionDenied = fmt.Errorf("%w: cannot redeem your own item", ErrSelfActionDenied)
	ErrSelfReportDenied     = fmt.Errorf("%w: cannot report your own item", ErrSelfActionDenied)
	ErrSelfSwapDenied       = fmt.Errorf("%w: cannot request a swap for your own item", ErrSelfActionDenied)
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors. It unwraps to ErrValidation.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StateError reports an entity that is not in a status the operation accepts.
type StateError struct {
	Entity  string
	Current string
	Want    string
}

func (e *StateError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("%s is %s, expected %s", e.Entity, e.Current, e.Want)
	}
	return fmt.Sprintf("%s is %s", e.Entity, e.Current)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// InsufficientFundsError carries the shortfall of a failed debit.
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Shortfall() int64 { return e.Required - e.Available }

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient points: required %d, available %d, shortfall %d", e.Required, e.Available, e.Shortfall())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// Error kinds returned to callers. They are stable across releases.
const (
	KindValidation            = "ValidationError"
	KindNotFound              = "NotFound"
	KindInvalidState          = "InvalidState"
	KindSelfRedemptionDenied  = "SelfRedemptionDenied"
	KindSelfReportDenied      = "SelfReportDenied"
	KindSelfActionDenied      = "SelfActionDenied"
	KindDuplicateReport       = "DuplicateReport"
	KindDuplicateSwap         = "DuplicateSwap"
	KindInsufficientFunds     = "InsufficientFunds"
	KindAlreadyProcessed      = "AlreadyProcessed"
	KindInvalidID             = "InvalidId"
	KindUnauthorized          = "Unauthorized"
	KindForbidden             = "Forbidden"
	KindTransactionFailed     = "TransactionFailure"
	KindInternalInconsistency = "InternalInconsistency"
	KindInternal              = "Internal"
)

// ErrorKind maps err to its stable kind string.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrSelfRedemptionDenied):
		return KindSelfRedemptionDenied
	case errors.Is(err, ErrSelfReportDenied):
		return KindSelfReportDenied
	case errors.Is(err, ErrSelfActionDenied):
		return KindSelfActionDenied
	case errors.Is(err, ErrDuplicateReport):
		return KindDuplicateReport
	case errors.Is(err, ErrDuplicateSwap):
		return KindDuplicateSwap
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrAlreadyProcessed):
		return KindAlreadyProcessed
	case errors.Is(err, ErrInvalidID):
		return KindInvalidID
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrTransactionFailed):
		return KindTransactionFailed
	case errors.Is(err, ErrInternalInconsistency):
		return KindInternalInconsistency
	default:
		return KindInternal
	}
}
