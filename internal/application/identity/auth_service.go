// Package identity handles login against the ledger and token lifecycle.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// LoginRequest represents a login request
type LoginRequest struct {
	DB       string `json:"db" binding:"required,min=1,max=100"`
	Username string `json:"username" binding:"required,min=1,max=200"`
	Password string `json:"password" binding:"required,min=1,max=200"`
}

// UserInfo describes the authenticated ledger user
type UserInfo struct {
	Username string `json:"username"`
	DB       string `json:"db"`
	UID      int64  `json:"uid"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// CurrentUser is the bearer's identity plus the companies it can see
type CurrentUser struct {
	UserInfo
	Companies []identity.Company `json:"companies"`
}

// AuthService handles authentication operations
type AuthService struct {
	authenticator identity.Authenticator
	companies     identity.CompanyRepository
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	authenticator identity.Authenticator,
	companies identity.CompanyRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		authenticator: authenticator,
		companies:     companies,
		jwtService:    jwtService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Login verifies the credentials with the ledger and issues a bearer token
// carrying the sealed ledger password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) shared.Result[*LoginResult] {
	db := strings.TrimSpace(req.DB)
	username := strings.TrimSpace(req.Username)
	s.logger.Info("Login attempt", zap.String("username", username), zap.String("db", db))

	uid, err := s.authenticator.Login(ctx, db, username, req.Password)
	if err != nil {
		s.logger.Warn("Ledger rejected login", zap.String("username", username), zap.String("db", db), zap.Error(err))
		return shared.ResultOf[*LoginResult](nil, err)
	}

	cred, err := identity.NewCredential(username, db, uid, req.Password)
	if err != nil {
		return shared.Rejected[*LoginResult](shared.NewDomainError(shared.CodeUnauthorized, err.Error()))
	}
	token, err := s.jwtService.Issue(cred)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.String("username", username), zap.Error(err))
		return shared.Failed[*LoginResult](err)
	}

	s.logger.Info("Login successful", zap.String("username", username), zap.String("db", db), zap.Int64("uid", uid))
	return shared.Ok(&LoginResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        UserInfo{Username: username, DB: db, UID: uid},
	})
}

// Logout revokes the presented token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) shared.Result[bool] {
	if claims == nil || claims.ID == "" {
		return shared.Rejected[bool](shared.ErrUnauthorized)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		return shared.Failed[bool](err)
	}
	s.logger.Info("Token revoked", zap.String("subject", claims.SubjectKey()))
	return shared.Ok(true)
}

// LogoutAll revokes every token issued to the bearer's ledger user so far
func (s *AuthService) LogoutAll(ctx context.Context, claims *auth.Claims) shared.Result[bool] {
	if claims == nil {
		return shared.Rejected[bool](shared.ErrUnauthorized)
	}
	if err := s.blacklist.RevokeSubject(ctx, claims.SubjectKey(), s.jwtService.Expiration()); err != nil {
		s.logger.Error("Failed to revoke subject", zap.String("subject", claims.SubjectKey()), zap.Error(err))
		return shared.Failed[bool](err)
	}
	s.logger.Info("All tokens revoked", zap.String("subject", claims.SubjectKey()))
	return shared.Ok(true)
}

// Me returns the bearer's identity and visible companies
func (s *AuthService) Me(ctx context.Context, cred identity.Credential) shared.Result[*CurrentUser] {
	companies, err := s.companies.FindAll(ctx, cred)
	if err != nil {
		return shared.ResultOf[*CurrentUser](nil, err)
	}
	return shared.Ok(&CurrentUser{
		UserInfo:  UserInfo{Username: cred.Username(), DB: cred.DB(), UID: cred.UID()},
		Companies: companies,
	})
}
