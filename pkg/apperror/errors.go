// Package apperror defines the engine's tagged error kinds (spec.md §7)
// and their HTTP mapping, following the donor's AppError{Code,Message,
// HTTPStatus,Err} shape generalized to carry an engine Kind instead of a
// payment-gateway-specific code namespace.
package apperror

import (
	"fmt"
	"net/http"
)

// Kind is one of the nine engine error kinds spec.md §7 names.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindNoConversion          Kind = "no_conversion"
	KindUnderspecified        Kind = "underspecified"
	KindOverpay               Kind = "overpay"
	KindInvoiceComplete       Kind = "invoice_complete"
	KindNotRefundable         Kind = "not_refundable"
	KindDecryptionError       Kind = "decryption_error"
	KindSerializationConflict Kind = "serialization_conflict"
	KindInternal              Kind = "internal"

	// Ambient kinds: HTTP-boundary concerns that sit outside the nine
	// engine kinds above (spec.md §7 names only the engine's own set).
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
)

// AppError is a structured error that maps to an HTTP response at the
// response boundary.
type AppError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with no wrapped cause.
func New(kind Kind, message string, httpStatus int) *AppError {
	return &AppError{Kind: kind, Message: message, HTTPStatus: httpStatus}
}

// Wrap creates a new AppError around an internal cause.
func Wrap(kind Kind, message string, httpStatus int, err error) *AppError {
	return &AppError{Kind: kind, Message: message, HTTPStatus: httpStatus, Err: err}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(entity string) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// NoConversion reports that two currencies are not connected in the
// conversion graph.
func NoConversion() *AppError {
	return New(KindNoConversion, "no conversion path between currencies", http.StatusUnprocessableEntity)
}

// Underspecified reports that neither amount nor effective_amount was supplied.
func Underspecified() *AppError {
	return New(KindUnderspecified, "exactly one of amount or effective_amount must be supplied", http.StatusBadRequest)
}

// Overpay reports that a transaction would exceed the invoice's unpaid amount.
func Overpay() *AppError {
	return New(KindOverpay, "effective amount exceeds invoice unpaid amount", http.StatusUnprocessableEntity)
}

// InvoiceComplete reports an operation that requires a non-complete invoice.
func InvoiceComplete() *AppError {
	return New(KindInvoiceComplete, "invoice is already complete", http.StatusConflict)
}

// NotRefundable reports a refund attempted on a non-success transaction.
func NotRefundable() *AppError {
	return New(KindNotRefundable, "transaction is not refundable", http.StatusBadRequest)
}

// DecryptionError reports an inauthentic or malformed webhook ciphertext.
func DecryptionError(err error) *AppError {
	return Wrap(KindDecryptionError, "webhook payload failed authentication", http.StatusInternalServerError, err)
}

// SerializationConflict reports a retryable serializable-transaction abort.
func SerializationConflict(err error) *AppError {
	return Wrap(KindSerializationConflict, "transaction aborted, retry", http.StatusConflict, err)
}

// Internal wraps an unexpected error, returned as HTTP 500 with type + message.
func Internal(err error) *AppError {
	return Wrap(KindInternal, "internal error", http.StatusInternalServerError, err)
}

// Validation reports a malformed or invalid request body/parameter.
func Validation(message string) *AppError {
	return New(KindValidation, message, http.StatusBadRequest)
}

// Unauthorized reports missing or incorrect request credentials.
func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message, http.StatusUnauthorized)
}
