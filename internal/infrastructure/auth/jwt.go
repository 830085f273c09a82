package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/infrastructure/config"
)

// DefaultExpiration is the token lifetime when none is configured
const DefaultExpiration = 4 * time.Hour

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims carries the ledger identity of the bearer. The ledger password
// travels sealed; it is only opened to build the request credential.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	DB       string `json:"db"`
	UID      int64  `json:"uid"`
	Sealed   string `json:"sealed"`
}

// SubjectKey identifies the ledger user across tokens, username@db
func (c *Claims) SubjectKey() string {
	return c.Username + "@" + c.DB
}

// Token is an issued bearer token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	sealer     *Sealer
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret is required")
	}
	sealer, err := NewSealer([]byte(cfg.Secret))
	if err != nil {
		return nil, err
	}
	expiration := cfg.Expiration
	if expiration == 0 {
		expiration = DefaultExpiration
	}
	return &JWTService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: expiration,
		sealer:     sealer,
		now:        time.Now,
	}, nil
}

// Issue signs a token for cred
func (s *JWTService) Issue(cred identity.Credential) (*Token, error) {
	if cred.IsZero() {
		return nil, ErrInvalidClaims
	}
	sealed, err := s.sealer.Seal(cred.Password())
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", cred.UID()),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: cred.Username(),
		DB:       cred.DB(),
		UID:      cred.UID(),
		Sealed:   sealed,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// Validate verifies the signature and lifetime and returns the claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.DB == "" || claims.UID <= 0 || claims.Sealed == "" || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Credential opens the sealed password and rebuilds the request credential
func (s *JWTService) Credential(claims *Claims) (identity.Credential, error) {
	password, err := s.sealer.Open(claims.Sealed)
	if err != nil {
		return identity.Credential{}, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	return identity.NewCredential(claims.Username, claims.DB, claims.UID, password)
}

// Expiration returns the configured token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// GetIssuedAtTime returns the token's issued-at time as time.Time
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
