package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/shopfront/backend/docs"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	contactapp "github.com/shopfront/backend/internal/application/contact"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/application/notification"
	partnerapp "github.com/shopfront/backend/internal/application/partner"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/mail"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/pricelist"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

//	@title			Shopfront API
//	@version		1.0
//	@description	Marketplace backend: partners publish price lists, buyers order across shops.

//	@contact.name	API Support
//	@contact.url	https://github.com/shopfront/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// Version is set at build time
var Version = "dev"

const (
	shutdownTimeout      = 30 * time.Second
	tokenPurgeInterval   = time.Hour
	memoryArchiveObjects = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting shopfront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if core := providers.LogCore(logger.ParseLevel(cfg.Log.Level)); core != nil {
		log = log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiler not started", zap.Error(err))
	} else {
		defer func() { _ = profiler.Stop() }()
		if profiler.Enabled() {
			providers.EnableSpanProfiles()
		}
	}
	meter := providers.Meter("shopfront")

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if providers.Enabled() {
		if err := telemetry.InstrumentDB(db.DB, meter, telemetry.DBConfig{DBName: cfg.Database.DBName}, log); err != nil {
			log.Warn("Database instrumentation failed", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis backed locks, blacklist and rate limiting, or in-process fallbacks
	backends := cache.NewBackends(ctx, cfg.Redis, log)
	defer func() { _ = backends.Close() }()

	var (
		blacklist auth.TokenBlacklist
		limiter   middleware.Limiter
	)
	if backends.Distributed() {
		blacklist = auth.NewRedisTokenBlacklist(backends.Client)
		if cfg.HTTP.RateLimitEnabled {
			limiter = middleware.NewRedisRateLimiter(backends.Client, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		if cfg.HTTP.RateLimitEnabled {
			limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meter,
		Logger:          log,
		CatalogProvider: telemetry.NewGormCatalogMetricsProvider(db.DB),
	})
	if err != nil {
		return fmt.Errorf("business metrics: %w", err)
	}
	defer businessMetrics.Stop()

	mailer, err := mail.New(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	notification.Register(eventBus,
		notification.NewEmailConfirmationHandler(tokenRepo, mailer, log),
		notification.NewPasswordResetHandler(mailer, log),
		notification.NewOrderStatusHandler(userRepo, mailer, log),
	)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, tokenRepo, jwtService, blacklist, log)
	authService.SetEventPublisher(eventBus)
	authService.SetBusinessMetrics(businessMetrics)
	userService := identityapp.NewUserService(userRepo, log)
	contactService := contactapp.NewContactService(contactRepo, log)
	catalogService := catalogapp.NewCatalogService(categoryRepo, productRepo, log)
	shopService := partnerapp.NewShopService(shopRepo, userRepo, orderRepo, log)

	tradeScope := persistence.NewGormTradeTransactionScope(db.DB)
	basketService := tradeapp.NewBasketService(orderRepo, userRepo, tradeScope, log)
	basketService.SetBusinessMetrics(businessMetrics)
	orderService := tradeapp.NewOrderService(orderRepo, contactRepo, userRepo, shopRepo, tradeScope, log)
	orderService.SetEventPublisher(eventBus)
	orderService.SetBusinessMetrics(businessMetrics)

	// Price list imports
	importService := partnerapp.NewImportService(
		pricelist.NewHTTPFetcher(cfg.Import, log),
		persistence.NewGormImportTransactionScope(db.DB),
		log,
	)
	archive, err := newArchive(cfg, log)
	if err != nil {
		return err
	}
	importService.SetArchive(archive)

	updateService := partnerapp.NewUpdateService(userRepo, backends.Locker, cfg.Import, log)
	updateService.SetBusinessMetrics(businessMetrics)
	importScheduler, err := scheduler.NewScheduler(scheduler.ConfigFromImport(cfg.Import), importService, updateService, log)
	if err != nil {
		return fmt.Errorf("import scheduler: %w", err)
	}
	updateService.SetJobQueue(importScheduler)

	cron := scheduler.NewCronTrigger(log, scheduler.Task{
		Name:     "purge_expired_tokens",
		Interval: tokenPurgeInterval,
		Run:      authService.PurgeExpiredTokens,
	})

	// HTTP
	health := handler.NewHealthHandler(Version).AddCheck("database", db)
	if backends.Distributed() {
		health.AddCheck("redis", backends)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Config:      cfg,
		Logger:      log,
		JWTService:  jwtService,
		Blacklist:   blacklist,
		RateLimiter: limiter,
		Meter:       meter,
		Health:      health,
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService),
		Contact: handler.NewContactHandler(contactService),
		Partner: handler.NewPartnerHandler(shopService, updateService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Basket:  handler.NewBasketHandler(basketService),
		Order:   handler.NewOrderHandler(orderService),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	// workers outlive the signal and are stopped below with the shutdown
	// deadline
	workerCtx := context.WithoutCancel(ctx)
	if err := importScheduler.Start(workerCtx); err != nil {
		return fmt.Errorf("import scheduler: %w", err)
	}
	if err := cron.Start(workerCtx); err != nil {
		return fmt.Errorf("cron trigger: %w", err)
	}
	businessMetrics.StartPeriodicCollection(ctx, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
		if err := cron.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("cron trigger: %w", err))
		}
		if err := importScheduler.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("import scheduler: %w", err))
		}
		// drains queued notifications
		if err := eventBus.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newArchive returns S3 storage when configured and a bounded in-memory
// archive otherwise
func newArchive(cfg *config.Config, log *zap.Logger) (storage.ObjectStorage, error) {
	if !cfg.Storage.Enabled {
		return storage.NewMemoryObjectStorage(memoryArchiveObjects), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	log.Info("Archiving price lists to object storage", zap.String("bucket", cfg.Storage.Bucket))
	return s3, nil
}
