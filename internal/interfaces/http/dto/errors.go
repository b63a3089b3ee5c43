package dto

import (
	"net/http"

	"github.com/inventra/backend/internal/domain/shared"
)

// Error codes surfaced by the HTTP layer itself
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeReceiptOverflow:     http.StatusUnprocessableEntity,
	shared.CodeReturnOverflow:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:   http.StatusUnprocessableEntity,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeUnauthorized:        http.StatusUnauthorized,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeUpstreamUnavailable: http.StatusServiceUnavailable,
	ErrCodeBadRequest:              http.StatusBadRequest,
	ErrCodeInternal:                http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes
// map to 500 so an unclassified failure never leaks as a client error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
