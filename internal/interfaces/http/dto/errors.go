package dto

import (
	"net/http"

	"github.com/erp/connector/internal/domain/shared"
)

// Codes raised by the HTTP layer itself. Domain codes live in package shared.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "INVALID_TOKEN"
	ErrCodeTokenRevoked     = "TOKEN_REVOKED"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Lookup
	shared.CodeNotFound:   http.StatusNotFound,
	shared.CodeNotInState: http.StatusNotFound,

	// Conflicts
	shared.CodeInvalidState:  http.StatusConflict,
	shared.CodeAlreadyExists: http.StatusConflict,
	ErrCodeDuplicateRequest:  http.StatusConflict,

	// Client errors, including ledger rejections
	shared.CodeInvalidInput:       http.StatusBadRequest,
	ErrCodeValidation:             http.StatusBadRequest,
	shared.CodeBackendRejected:    http.StatusBadRequest,
	shared.CodeConfirmationFailed: http.StatusBadRequest,

	// Auth
	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,

	shared.CodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,

	// Server side
	shared.CodeBackendUnavailable: http.StatusInternalServerError,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusFor picks the status for a domain error: the code table first, then
// the kind, where only transport failures are server errors.
func StatusFor(err *shared.DomainError) int {
	if status, ok := ErrorCodeHTTPStatus[err.Code]; ok {
		return status
	}
	if err.Kind == shared.KindTransport {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
