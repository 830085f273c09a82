package router

import (
	"time"

	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/auth"
	"github.com/erp/connector/internal/infrastructure/config"
	"github.com/erp/connector/internal/infrastructure/logger"
	"github.com/erp/connector/internal/interfaces/http/handler"
	"github.com/erp/connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the API exposes
type Handlers struct {
	Auth       *handler.AuthHandler
	Health     *handler.HealthHandler
	Partner    *handler.PartnerHandler
	Bank       *handler.BankHandler
	Product    *handler.ProductHandler
	Bill       *handler.BillHandler
	Attachment *handler.AttachmentHandler
}

// Config carries what the engine needs besides the handlers. Optional
// pieces are disabled when nil.
type Config struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	Production  bool
	ServiceName string

	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist

	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	RateLimiter    *middleware.RateLimiter

	TracingEnabled   bool
	Meter            metric.Meter
	ProfilingEnabled bool
}

// attachmentsPath is exempt from the global body limit; the upload handler
// applies the larger attachment limit itself
const attachmentsPath = "/attachments"

// New builds the engine with the middleware chain and every route mounted
// under /api/v1
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r := NewRouter(engine, WithAPIVersion("v1"))

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(corsConfig(cfg.HTTP)),
		middleware.SecureWithConfig(securityConfig(cfg.Production)),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanAttributes(),
	)
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter))
	}
	if cfg.ProfilingEnabled {
		engine.Use(middleware.Profiling(middleware.ProfilingConfig{Enabled: true, SkipPaths: []string{r.BasePath() + "/health"}}))
	}
	if cfg.HTTP.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes, r.BasePath()+attachmentsPath))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	jwt := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWT,
		TokenBlacklist: cfg.Blacklist,
		Logger:         log,
	})
	var idem gin.HandlerFunc
	if cfg.Idempotency != nil {
		idem = middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL)
	}

	r.Register(
		NewDomainGroup("system", "").
			GET("/health", h.Health.Health),

		NewDomainGroup("login", "/auth").
			POST("/login", h.Auth.Login),

		NewDomainGroup("auth", "/auth").Use(jwt).
			POST("/logout", h.Auth.Logout).
			POST("/logout-all", h.Auth.LogoutAll).
			GET("/me", h.Auth.Me),

		NewDomainGroup("partners", "/partners").Use(jwt).
			POST("", idem, h.Partner.Create).
			POST("/clients", idem, h.Partner.CreateClient).
			POST("/providers", idem, h.Partner.CreateProvider).
			GET("/clients", h.Partner.ListClients).
			GET("/providers", h.Partner.ListProviders).
			GET("/clients/:id", h.Partner.GetClient).
			GET("/providers/:id", h.Partner.GetProvider).
			PUT("/clients/:id", h.Partner.UpdateClient).
			PUT("/providers/:id", h.Partner.UpdateProvider).
			DELETE("/:id", h.Partner.Archive).
			GET("/:id/bank-accounts", h.Partner.ListBankAccounts).
			POST("/:id/bank-accounts", idem, h.Partner.AddBankAccount).
			DELETE("/:id/bank-accounts/:accountId", h.Partner.RemoveBankAccount),

		NewDomainGroup("banks", "/banks").Use(jwt).
			POST("", idem, h.Bank.CreateBank).
			GET("", h.Bank.ListBanks),

		NewDomainGroup("bank-accounts", "/bank-accounts").Use(jwt).
			POST("", idem, h.Bank.CreateBankAccount),

		NewDomainGroup("products", "/products").Use(jwt).
			POST("", idem, h.Product.Create).
			GET("", h.Product.List).
			GET("/:id", h.Product.Get).
			PUT("/:id", h.Product.Update),

		NewDomainGroup("bills", "/bills").Use(jwt).
			POST("", idem, h.Bill.Create).
			GET("", h.Bill.List).
			GET("/:id", h.Bill.Get).
			PUT("/:id", h.Bill.Update).
			POST("/:id/lines", idem, h.Bill.AddLine).
			DELETE("/:id/lines/:lineId", h.Bill.DeleteLine).
			POST("/:id/confirm", h.Bill.Confirm),

		NewDomainGroup("attachments", attachmentsPath).Use(jwt).
			POST("", idem, h.Attachment.Upload).
			GET("", h.Attachment.List).
			GET("/:id", h.Attachment.Get).
			DELETE("/:id", h.Attachment.Delete),
	)
	r.Setup()
	return engine
}

func corsConfig(httpCfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = httpCfg.CORSAllowOrigins
	if len(httpCfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = httpCfg.CORSAllowMethods
	}
	if len(httpCfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = httpCfg.CORSAllowHeaders
	}
	return cors
}

func securityConfig(production bool) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	sec.HSTSEnabled = production
	return sec
}
