package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/connector/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeNotInState, http.StatusNotFound},
		{shared.CodeInvalidState, http.StatusConflict},
		{shared.CodeAlreadyExists, http.StatusConflict},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{shared.CodeBackendRejected, http.StatusBadRequest},
		{shared.CodeConfirmationFailed, http.StatusBadRequest},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{shared.CodeForbidden, http.StatusForbidden},
		{shared.CodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{shared.CodeBackendUnavailable, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestStatusFor_FallsBackByKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(shared.NewDomainError("SOMETHING_LOCAL", "x")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(&shared.DomainError{Code: "ODD", Kind: shared.KindBackend}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&shared.DomainError{Code: "ODD", Kind: shared.KindTransport}))
	assert.Equal(t, http.StatusNotFound, StatusFor(shared.NotFound("partner", 4)))
}

func TestEnvelope_JSON(t *testing.T) {
	t.Run("success omits code and request id", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccess(http.StatusCreated, map[string]int{"id": 4}))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, float64(201), got["statusCode"])
		assert.Equal(t, "Created", got["message"])
		assert.NotContains(t, got, "code")
		assert.NotContains(t, got, "requestId")
	})

	t.Run("failure keeps partial data", func(t *testing.T) {
		raw, err := json.Marshal(NewError(http.StatusNotFound, shared.CodeNotFound, "company 9 not found", "req-1", map[string]int{"id": 4}))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "NOT_FOUND", got["code"])
		assert.Equal(t, "req-1", got["requestId"])
		assert.Equal(t, map[string]any{"id": float64(4)}, got["data"])
	})

	t.Run("validation details", func(t *testing.T) {
		env := NewValidationError("Request validation failed", "", []ValidationDetail{{Field: "name", Message: "This field is required"}})
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Equal(t, ErrCodeValidation, env.Code)
		assert.Len(t, env.Details, 1)
	})
}
