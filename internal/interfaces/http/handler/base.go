// Package handler holds the gin handlers that expose the connector's
// orchestrators over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"github.com/erp/connector/internal/interfaces/http/dto"
	"github.com/erp/connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// production hides 5xx messages behind dto.GenericServerError
	production bool
}

// NewBaseHandler creates a BaseHandler
func NewBaseHandler(production bool) BaseHandler {
	return BaseHandler{production: production}
}

// Success sends a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccess(http.StatusOK, data))
}

// Created sends a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccess(http.StatusCreated, data))
}

// Error sends an error envelope with the given status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string, data any) {
	if status >= http.StatusInternalServerError && h.production {
		message = dto.GenericServerError
	}
	c.AbortWithStatusJSON(status, dto.NewError(status, code, message, middleware.GetRequestID(c), data))
}

// HandleError maps err onto an error envelope. data is the partial result
// to report; when nil the domain error's own data is used.
func (h *BaseHandler) HandleError(c *gin.Context, err error, data any) {
	if err == nil {
		return
	}
	log := logger.L(c.Request.Context())

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		log.Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred", data)
		return
	}

	status := dto.StatusFor(domainErr)
	if data == nil {
		data = domainErr.Data
	}
	if status >= http.StatusInternalServerError {
		log.Error("Ledger request failed", zap.String("code", domainErr.Code), zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("code", domainErr.Code), zap.String("reason", domainErr.Message))
	}
	h.Error(c, status, domainErr.Code, domainErr.Message, data)
}

// Render writes an orchestrator outcome: the value on success, or the error
// envelope carrying whatever was created before the failure.
func (h *BaseHandler) Render(c *gin.Context, out shared.Outcome, status int) {
	if err := out.Err(); err != nil {
		h.HandleError(c, err, out.Payload())
		return
	}
	c.JSON(status, dto.NewSuccess(status, out.Payload()))
}

// credential returns the bearer's ledger credential, answering 401 when the
// JWT middleware did not run
func (h *BaseHandler) credential(c *gin.Context) (identity.Credential, bool) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized, nil)
	}
	return cred, ok
}

// pathID parses the id path parameter name. An id that cannot name a record
// answers 404 for entity without a lookup.
func (h *BaseHandler) pathID(c *gin.Context, name, entity string) (int64, bool) {
	id, ok := shared.ParseID(c.Param(name))
	if !ok {
		h.HandleError(c, shared.NotFound(entity, 0), nil)
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the body, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds and validates query parameters, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// queryID parses an optional id filter; empty is zero. Any other value that
// cannot name a record answers 400.
func (h *BaseHandler) queryID(c *gin.Context, name, raw string) (int64, bool) {
	if raw == "" {
		return 0, true
	}
	id, ok := shared.ParseID(raw)
	if !ok {
		h.HandleError(c, shared.InvalidInput("%s %s is not a valid id", name, raw), nil)
		return 0, false
	}
	return id, true
}
