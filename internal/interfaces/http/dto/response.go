package dto

import "net/http"

// GenericServerError replaces 5xx messages outside development
const GenericServerError = "The ledger request could not be completed"

// Envelope is the body of every response
type Envelope struct {
	StatusCode int                `json:"statusCode"`
	Message    string             `json:"message"`
	Data       any                `json:"data"`
	Code       string             `json:"code,omitempty"`
	RequestID  string             `json:"requestId,omitempty"`
	Details    []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccess creates a success envelope
func NewSuccess(status int, data any) Envelope {
	return Envelope{StatusCode: status, Message: http.StatusText(status), Data: data}
}

// NewError creates a failure envelope. data may carry what the
// orchestration produced before failing.
func NewError(status int, code, message, requestID string, data any) Envelope {
	return Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Code:       code,
		RequestID:  requestID,
	}
}

// NewValidationError creates a 400 envelope with per-field details
func NewValidationError(message, requestID string, details []ValidationDetail) Envelope {
	return Envelope{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Code:       ErrCodeValidation,
		RequestID:  requestID,
		Details:    details,
	}
}
