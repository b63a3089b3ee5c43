package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes surfaced to callers. ConcurrencyConflict is the only code a
// caller may retry (bounded, with backoff); everything else is terminal for
// the request.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeReceiptOverflow     = "RECEIPT_OVERFLOW"
	CodeReturnOverflow      = "RETURN_OVERFLOW"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
)

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidTransition creates an INVALID_TRANSITION error naming the current
// and attempted state
func NewInvalidTransition(entity, from, to string) *DomainError {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("%s cannot transition from %s to %s", entity, from, to))
}

// NewReceiptOverflow creates a RECEIPT_OVERFLOW error
func NewReceiptOverflow(message string) *DomainError {
	return NewDomainError(CodeReceiptOverflow, message)
}

// NewReturnOverflow creates a RETURN_OVERFLOW error
func NewReturnOverflow(message string) *DomainError {
	return NewDomainError(CodeReturnOverflow, message)
}

// NewUpstreamUnavailable creates an UPSTREAM_UNAVAILABLE error for a named collaborator
func NewUpstreamUnavailable(service string) *DomainError {
	return NewDomainError(CodeUpstreamUnavailable,
		fmt.Sprintf("upstream service %s is unavailable", service))
}

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the domain error code, or empty string for non-domain errors
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
