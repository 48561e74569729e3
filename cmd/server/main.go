package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcart "github.com/marketplace/backend/internal/application/cart"
	apporder "github.com/marketplace/backend/internal/application/order"
	appsettings "github.com/marketplace/backend/internal/application/settings"
	appshipping "github.com/marketplace/backend/internal/application/shipping"
	appwallet "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/event"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/marketplace/backend/internal/interfaces/http/router"
)

//	@title			Marketplace Checkout API
//	@version		1.0
//	@description	Cart validation, checkout, seller wallets and shipping quotes for a multi-seller marketplace

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	// Bootstrap logger for telemetry setup; replaced once the OTLP log core exists
	log := logger.New(logCfg)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log = logger.New(logCfg, loggerProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
		ProfileMutex:      true,
		ProfileBlock:      true,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	}
	if profiler != nil && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.DBName = cfg.Database.DBName
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Warn("Database tracing not registered", zap.Error(err))
	}

	// Repositories
	cartRepo := persistence.NewGormCartRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	rateRepo := persistence.NewGormShippingRateRepository(db.DB)
	walletRepo := persistence.NewGormWalletRepository(db.DB)
	walletTxRepo := persistence.NewGormWalletTransactionRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	serializer := event.NewOrderEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer)

	// Redis backs idempotency keys, order number counters and the settings
	// snapshot. Each has an in-process or database fallback.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	var (
		sequence      apporder.SequenceSource = persistence.NewDBSequence(orderRepo)
		snapshotCache appsettings.SnapshotCache
		healthChecks  = []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, order numbers come from the database", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			sequence = cache.NewFallbackSequence(cache.NewRedisSequence(redisClient), sequence, log)
			snapshotCache = cache.NewRedisSnapshotCache(redisClient)
			healthChecks = append(healthChecks, handler.HealthCheck{
				Name:  "redis",
				Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			})
		}
	}

	settingsProvider := appsettings.NewCachedProvider(
		settingsRepo,
		snapshotCache,
		settings.Marketplace{
			MarketplaceFeeRate:      cfg.Marketplace.MarketplaceFeeRate,
			WithholdingTaxRate:      cfg.Marketplace.WithholdingTaxRate,
			OrderNumberPrefix:       cfg.Marketplace.OrderNumberPrefix,
			DefaultShippingProvider: cfg.Marketplace.DefaultShippingProvider,
			EarningsReleaseDays:     cfg.Marketplace.EarningsReleaseDays,
		},
		cfg.Marketplace.SettingsCacheTTL,
		log,
	)

	// Application services
	cartService := appcart.NewService(cartRepo, offerRepo)
	shippingService := appshipping.NewService(rateRepo, settingsProvider)
	orderScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)
	orderService := apporder.NewService(
		orderScope,
		orderRepo,
		settingsProvider,
		shippingService,
		apporder.NewNumberGenerator(sequence),
		log,
	)
	orderService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
		Enabled: true,
		TTL:     cfg.Marketplace.IdempotencyTTL,
	})
	releaseService := apporder.NewEarningsReleaseService(orderScope, orderRepo, settingsProvider, log)
	if cfg.Scheduler.EarningsReleaseBatch > 0 {
		releaseService.SetBatchSize(cfg.Scheduler.EarningsReleaseBatch)
	}
	ledgerService := appwallet.NewLedgerService(
		persistence.NewGormWalletTransactionScope(db.DB),
		walletRepo,
		walletTxRepo,
		log,
	)

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meterProvider.Meter("marketplace-checkout"),
			Logger:         log,
			OutboxProvider: telemetry.NewGormOutboxMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
			businessMetrics = nil
		}
	}
	if businessMetrics != nil {
		orderService.SetBusinessMetrics(businessMetrics)
		releaseService.SetBusinessMetrics(businessMetrics)
		ledgerService.SetBusinessMetrics(businessMetrics)
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
	}

	// Outbox relay: Kafka when configured, otherwise events are only logged
	var (
		relayPublisher shared.EventPublisher = event.NewLogPublisher(log)
		kafkaPublisher *event.KafkaPublisher
	)
	if cfg.Kafka.Enabled {
		kafkaPublisher = event.NewKafkaPublisher(event.NewKafkaWriter(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			RequiredAcks: cfg.Kafka.RequiredAcks,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
		}, log))
		relayPublisher = kafkaPublisher
		log.Info("Outbox relay publishing to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	var outboxProcessor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		outboxProcessor = event.NewOutboxProcessor(outboxRepo, relayPublisher, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
		}, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	var releaseJob *scheduler.EarningsReleaseJob
	if cfg.Scheduler.Enabled {
		releaseJob = scheduler.NewEarningsReleaseJob(releaseService, cfg.Scheduler, log)
		if err := releaseJob.Start(); err != nil {
			log.Fatal("Failed to schedule earnings release", zap.Error(err))
		}
	}

	// HTTP
	middleware.SetupValidator()

	var writeLimiter *middleware.RateLimiter
	if cfg.HTTP.WriteRateLimit > 0 {
		writeLimiter = middleware.NewRateLimiter(cfg.HTTP.WriteRateLimit, cfg.HTTP.WriteRateWindow)
	}

	engine := router.NewEngine(router.Options{
		Logger:       log,
		HTTP:         cfg.HTTP,
		JWT:          auth.NewJWTService(cfg.JWT),
		Meter:        meterProvider,
		ServiceName:  cfg.Telemetry.ServiceName,
		Tracing:      tracerProvider.IsEnabled(),
		Profiling:    profiler != nil && profiler.IsEnabled(),
		WriteLimiter: writeLimiter,
	}, router.Handlers{
		Cart:     handler.NewCartHandler(cartService),
		Order:    handler.NewOrderHandler(orderService),
		Wallet:   handler.NewWalletHandler(ledgerService),
		Shipping: handler.NewShippingHandler(shippingService),
		Settings: handler.NewSettingsHandler(settingsProvider),
		Health:   handler.NewHealthHandler(buildVersion(), healthChecks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if writeLimiter != nil {
		g.Go(func() error {
			writeLimiter.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	serveErr := g.Wait()
	if serveErr != nil {
		log.Error("Server stopped with error", zap.Error(serveErr))
	}

	// Background workers stop after the listener so in-flight checkouts can
	// still write their outbox rows.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if releaseJob != nil {
		if err := releaseJob.Stop(shutdownCtx); err != nil {
			log.Warn("Earnings release job did not stop cleanly", zap.Error(err))
		}
	}
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Warn("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Warn("Error closing Kafka writer", zap.Error(err))
		}
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log exporter", zap.Error(err))
	}

	if serveErr != nil {
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// buildVersion prefers the linker-provided version and falls back to the
// module version recorded in the binary
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
