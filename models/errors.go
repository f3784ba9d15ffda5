package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation        = NewAppError("VALIDATION_ERROR", "invalid request", http.StatusBadRequest)
	ErrInvalidAmount     = NewAppError("INVALID_AMOUNT", "amount must be greater than zero", http.StatusBadRequest)
	ErrTransactionClosed = NewAppError("TRANSACTION_CLOSED", "transaction does not accept payments", http.StatusBadRequest)
	ErrNotFound          = NewAppError("NOT_FOUND", "record not found", http.StatusNotFound)
	ErrWrongPaymentFlow  = NewAppError("WRONG_PAYMENT_FLOW", "payment method does not match this payment flow", http.StatusBadRequest)
	ErrMethodMismatch    = NewAppError("METHOD_MISMATCH", "payment method mismatch", http.StatusBadRequest)
	ErrInvalidReference  = NewAppError("INVALID_REFERENCE", "referenced record not found", http.StatusBadRequest)
	ErrConflict          = NewAppError("CONFLICT", "transaction was modified concurrently, retry", http.StatusConflict)
	ErrUnauthorized      = NewAppError("UNAUTHORIZED", "unauthorized", http.StatusUnauthorized)
	ErrForbidden         = NewAppError("FORBIDDEN", "forbidden", http.StatusForbidden)
	ErrPersistence       = NewAppError("PERSISTENCE_ERROR", "failed to access the data store", http.StatusInternalServerError)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors.Is(err, ErrNotFound)
// works on copies produced by WithError/Withf.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable is true for errors a client may resolve by resubmitting.
func (e *AppError) Retryable() bool {
	return e.Code == ErrConflict.Code
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func (e *AppError) Withf(format string, args ...any) *AppError {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
