package handler

import (
	"context"
	"net/http"

	appidentity "github.com/erp/connector/internal/application/identity"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/auth"
	"github.com/erp/connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthService is the login and token lifecycle used by AuthHandler
type AuthService interface {
	Login(ctx context.Context, req appidentity.LoginRequest) shared.Result[*appidentity.LoginResult]
	Logout(ctx context.Context, claims *auth.Claims) shared.Result[bool]
	LogoutAll(ctx context.Context, claims *auth.Claims) shared.Result[bool]
	Me(ctx context.Context, cred identity.Credential) shared.Result[*appidentity.CurrentUser]
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base BaseHandler, authService AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, authService: authService}
}

// Login godoc
// @Summary      Ledger login
// @Description  Verify ledger credentials and issue a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Ledger credentials"
// @Success      200 {object} dto.Envelope{data=appidentity.LoginResult}
// @Failure      400 {object} dto.Envelope
// @Failure      401 {object} dto.Envelope
// @Failure      500 {object} dto.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.authService.Login(c.Request.Context(), req), http.StatusOK)
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the presented bearer token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Envelope
// @Failure      401 {object} dto.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	h.Render(c, h.authService.Logout(c.Request.Context(), claims), http.StatusOK)
}

// LogoutAll godoc
// @Summary      Logout everywhere
// @Description  Revoke every token issued to the bearer's ledger user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Envelope
// @Failure      401 {object} dto.Envelope
// @Router       /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	h.Render(c, h.authService.LogoutAll(c.Request.Context(), claims), http.StatusOK)
}

// Me godoc
// @Summary      Current user
// @Description  Return the bearer's ledger identity and visible companies
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Envelope{data=appidentity.CurrentUser}
// @Failure      401 {object} dto.Envelope
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	h.Render(c, h.authService.Me(c.Request.Context(), cred), http.StatusOK)
}

func (h *AuthHandler) claims(c *gin.Context) (*auth.Claims, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.HandleError(c, shared.ErrUnauthorized, nil)
		return nil, false
	}
	return claims, true
}
