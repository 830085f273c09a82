package shared

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into the three families every caller branches on.
type Kind int

const (
	// KindValidation is a locally detected precondition failure.
	KindValidation Kind = iota + 1
	// KindBackend means the ledger understood the request and declined it.
	KindBackend
	// KindTransport means the ledger was unreachable or answered garbage.
	KindTransport
)

// String returns the kind name used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_rejected"
	case KindBackend:
		return "backend_rejected"
	case KindTransport:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Error codes shared by every accessor and orchestrator
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNotInState         = "NOT_IN_STATE"
	CodeInvalidState       = "INVALID_STATE"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeBackendRejected    = "BACKEND_REJECTED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeConfirmationFailed = "CONFIRMATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRequestTooLarge    = "REQUEST_TOO_LARGE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
	// Data carries structured detail, e.g. the raw ledger error object
	Data  any   `json:"data,omitempty"`
	cause error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel comparisons survive re-wording
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithData returns a copy carrying the given detail payload
func (e *DomainError) WithData(data any) *DomainError {
	cp := *e
	cp.Data = data
	return &cp
}

// WithCause returns a copy wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.cause = cause
	return &cp
}

// NewDomainError creates a new validation-class domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewBackendError creates a backend-rejection error
func NewBackendError(message string, data any) *DomainError {
	return &DomainError{
		Code:    CodeBackendRejected,
		Message: message,
		Kind:    KindBackend,
		Data:    data,
	}
}

// NewTransportError creates a transport-failure error wrapping cause
func NewTransportError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeBackendUnavailable,
		Message: message,
		Kind:    KindTransport,
		cause:   cause,
	}
}

// NotFound builds a NOT_FOUND error for a ledger entity
func NotFound(entity string, id int64) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
}

// NotInState builds the error returned when an entity exists but is in another state
func NotInState(entity string, id int64, want, got string) *DomainError {
	return NewDomainError(CodeNotInState,
		fmt.Sprintf("%s %d is not in state %s (current state: %s)", entity, id, want, got))
}

// InvalidInput builds an INVALID_INPUT error
func InvalidInput(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrNotInState   = NewDomainError(CodeNotInState, "Resource not found in the requested state")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrUnauthorized = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden    = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
)

// KindOf returns the failure family of err. Errors that are not domain errors
// are treated as transport failures since nothing upstream can explain them.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransport
}

// CodeOf returns the domain error code of err, or an empty string
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is a plain NOT_FOUND
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
