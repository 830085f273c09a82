package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	attachmentapp "github.com/erp/connector/internal/application/attachment"
	billingapp "github.com/erp/connector/internal/application/billing"
	catalogapp "github.com/erp/connector/internal/application/catalog"
	identityapp "github.com/erp/connector/internal/application/identity"
	partnerapp "github.com/erp/connector/internal/application/partner"
	"github.com/erp/connector/internal/infrastructure/auth"
	"github.com/erp/connector/internal/infrastructure/cache"
	"github.com/erp/connector/internal/infrastructure/config"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/logger"
	"github.com/erp/connector/internal/infrastructure/persistence"
	"github.com/erp/connector/internal/infrastructure/storage"
	"github.com/erp/connector/internal/infrastructure/telemetry"
	"github.com/erp/connector/internal/interfaces/http/handler"
	"github.com/erp/connector/internal/interfaces/http/middleware"
	"github.com/erp/connector/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

//	@title			Ledger Connector API
//	@version		1.0
//	@description	Orchestrates partner, bank account and vendor bill workflows against a JSON-RPC ledger

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, telemetryConfig(cfg), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if cfg.Telemetry.LogsEnabled {
		level, _ := logger.ParseLevel(cfg.Log.Level)
		if withOTel, err := logger.New(logCfg, tel.ZapCore(level)); err == nil {
			log = withOTel
		} else {
			log.Warn("Failed to attach OpenTelemetry log core", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("ledger_url", cfg.Ledger.URL),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	client, err := ledger.NewClient(ledger.Config{
		URL:              cfg.Ledger.URL,
		Timeout:          cfg.Ledger.Timeout,
		MaxResponseBytes: cfg.Ledger.MaxResponseBytes,
	}, ledger.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create ledger client", zap.Error(err))
	}

	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create token and idempotency stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("Failed to close stores", zap.Error(err))
		}
	}()

	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to create JWT service", zap.Error(err))
	}

	partners := persistence.NewLedgerPartnerRepository(client)
	banks := persistence.NewLedgerBankRepository(client)
	accounts := persistence.NewLedgerBankAccountRepository(client)
	companies := persistence.NewLedgerCompanyRepository(client)
	products := persistence.NewLedgerProductRepository(client)
	bills := persistence.NewLedgerBillRepository(client)
	attachments := persistence.NewLedgerAttachmentRepository(client)

	hook := telemetry.PipelineHook(log)
	partnerService := partnerapp.NewService(partners, banks, accounts, companies, partnerapp.WithStepHooks(hook))
	billService := billingapp.NewService(bills, partners, products, companies,
		billingapp.WithLineConcurrency(cfg.Billing.LineConcurrency),
		billingapp.WithStepHooks(hook),
	)
	productService := catalogapp.NewProductService(products, companies)
	authService := identityapp.NewAuthService(client, companies, jwtService, stores.Blacklist, log)

	attachmentOpts := []attachmentapp.Option{
		attachmentapp.WithMaxBytes(cfg.HTTP.MaxUploadBytes),
		attachmentapp.WithLogger(log),
	}
	if cfg.Storage.Enabled {
		mirror, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if err := mirror.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare attachment bucket", zap.Error(err), zap.String("bucket", mirror.Bucket()))
		}
		attachmentOpts = append(attachmentOpts, attachmentapp.WithObjectStore(mirror))
	}
	attachmentService := attachmentapp.NewService(attachments, attachmentOpts...)

	base := handler.NewBaseHandler(cfg.App.IsProduction())
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(base, authService),
		Health:     handler.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Partner:    handler.NewPartnerHandler(base, partnerService),
		Bank:       handler.NewBankHandler(base, partnerService),
		Product:    handler.NewProductHandler(base, productService),
		Bill:       handler.NewBillHandler(base, billService),
		Attachment: handler.NewAttachmentHandler(base, attachmentService),
	}

	routerCfg := router.Config{
		Logger:           log,
		HTTP:             cfg.HTTP,
		Production:       cfg.App.IsProduction(),
		ServiceName:      cfg.Telemetry.ServiceName,
		JWT:              jwtService,
		Blacklist:        stores.Blacklist,
		TracingEnabled:   tel.IsEnabled(),
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
	}
	if cfg.Idempotency.Enabled {
		routerCfg.Idempotency = stores.Idempotency
		routerCfg.IdempotencyTTL = cfg.Idempotency.TTL
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled {
		routerCfg.Meter = meter(cfg.Telemetry.ServiceName)
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		routerCfg.RateLimiter = limiter
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router.New(routerCfg, handlers),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited")
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		Profiling: telemetry.ProfilerConfig{
			Enabled:           cfg.Telemetry.ProfilingEnabled,
			ServerAddress:     cfg.Telemetry.ProfilingAddress,
			ApplicationName:   cfg.Telemetry.ServiceName,
			ProfileMemory:     true,
			ProfileGoroutines: true,
		},
	}
}

func meter(name string) metric.Meter {
	return otel.GetMeterProvider().Meter(name)
}
