// Package app wires the storefront dependencies together and runs the HTTP
// server and event consumers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/config"
	"github.com/dungpham-npc/storefront/internal/event"
	handler "github.com/dungpham-npc/storefront/internal/handler/http"
	"github.com/dungpham-npc/storefront/internal/mail"
	"github.com/dungpham-npc/storefront/internal/migrations"
	"github.com/dungpham-npc/storefront/internal/repository/postgres"
	redisrepo "github.com/dungpham-npc/storefront/internal/repository/redis"
	"github.com/dungpham-npc/storefront/internal/service"
	"github.com/dungpham-npc/storefront/pkg/database"
	"github.com/dungpham-npc/storefront/pkg/health"
	pkgkafka "github.com/dungpham-npc/storefront/pkg/kafka"
	"github.com/dungpham-npc/storefront/pkg/middleware"
	"github.com/dungpham-npc/storefront/pkg/tracing"
)

// ServiceName identifies the storefront in logs, traces and metrics.
const ServiceName = "storefront"

// Version is set at build time.
var Version = "dev"

const (
	startupTimeout     = 30 * time.Second
	healthCheckTimeout = 2 * time.Second
	rateLimiterIdleTTL = 10 * time.Minute
	processedEventTTL  = 24 * time.Hour
	tracerFlushTimeout = 3 * time.Second
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	rateLimiter    *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
// On error every resource opened so far is released.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracingCfg := cfg.Tracing
	tracingCfg.ServiceName = ServiceName
	tracingCfg.ServiceVersion = Version
	a.tracerShutdown, err = tracing.Init(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize PostgreSQL connection pool.
	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RegisterPoolMetrics(reg, a.pool); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	a.redis, err = database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Outbound mail and event plumbing.
	sender, err := newMailSender(cfg, logger)
	if err != nil {
		return nil, err
	}
	events := a.initEvents(reg, sender)

	// Product images and search.
	assets, err := newAssetStore(cfg, reg, logger)
	if err != nil {
		return nil, err
	}
	index, esIndex, err := newProductIndex(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Build the dependency graph.
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTokenTTL, redisrepo.NewRevocationStore(a.redis), logger)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	userRepo := postgres.NewUserRepository(a.pool)
	productRepo := postgres.NewProductRepository(a.pool)
	categoryRepo := postgres.NewCategoryRepository(a.pool)

	authService := service.NewAuthService(userRepo, hasher, tokens, events, logger)
	userService := service.NewUserService(userRepo, postgres.NewRoleRepository(a.pool), hasher, logger)
	recipientService := service.NewRecipientService(postgres.NewRecipientRepository(a.pool), logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(service.ProductDeps{
		Products:   productRepo,
		Images:     postgres.NewProductImageRepository(a.pool),
		Ratings:    postgres.NewRatingRepository(a.pool),
		Categories: categoryRepo,
		Assets:     assets,
		Index:      index,
		Events:     events,
	}, logger)
	cartService := service.NewCartService(postgres.NewCartRepository(a.pool), productRepo, events, logger)

	if cfg.AdminEmail != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	// The in-memory index starts empty on every boot.
	if cfg.SearchBackend == config.SearchMemory {
		n, err := productService.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("build search index: %w", err)
		}
		logger.Info("search index built", slog.Int("products", n))
	}

	// Health checks.
	healthHandler := health.NewHandler(healthCheckTimeout)
	healthHandler.RegisterCritical("postgres", a.pool.Ping)
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}
	if esIndex != nil {
		healthHandler.RegisterOptional("elasticsearch", esIndex.Ping)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, rateLimiterIdleTTL, logger)

	// HTTP router.
	router := handler.NewRouter(handler.Services{
		Auth:       authService,
		Users:      userService,
		Recipients: recipientService,
		Categories: categoryService,
		Products:   productService,
		Cart:       cartService,
	}, handler.RouterConfig{
		Validate:       tokens.Validator(),
		Health:         healthHandler,
		Metrics:        middleware.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimiter:    a.rateLimiter,
		CORS:           corsCfg,
		RequestTimeout: cfg.HTTPRequestTimeout,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HTTPRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initEvents sets up the Kafka producer, dead letter producer and the
// notification consumers. Without brokers events are dropped.
func (a *App) initEvents(reg prometheus.Registerer, sender mail.Sender) service.EventPublisher {
	if !a.cfg.KafkaEnabled() {
		a.logger.Warn("no kafka brokers configured, domain events are dropped")
		return event.NewProducer(dropPublisher{logger: a.logger}, a.logger)
	}

	metrics := pkgkafka.NewMetrics(reg)
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), metrics, a.logger)
	a.dlq = pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)
	a.consumers = event.NewConsumers(
		a.cfg.KafkaBrokers,
		a.cfg.KafkaConsumerGroup,
		event.NewNotificationHandler(sender, a.logger),
		a.logger,
		pkgkafka.WithDeadLetter(a.dlq),
		pkgkafka.WithMetrics(metrics),
		pkgkafka.WithIdempotency(redisrepo.NewIdempotencyStore(a.redis, processedEventTTL)),
	)
	a.logger.Info("kafka initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	return event.NewProducer(a.producer, a.logger)
}

// Run starts the HTTP server and consumers and blocks until the context is
// canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.rateLimiter.Run(runCtx)
	}()

	for _, c := range a.consumers {
		wg.Add(1)
		go func(c *pkgkafka.Consumer) {
			defer wg.Done()
			if err := c.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("kafka consumer stopped",
					slog.String("topic", c.Topic()),
					slog.String("error", err.Error()),
				)
			}
		}(c)
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	// Consumers and the limiter janitor exit on runCtx before anything
	// they use is closed.
	stop()
	wg.Wait()
	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// consumers, producers, then the stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.close())

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases everything except the HTTP server. Nil members are skipped
// so it also cleans up after a partial NewApp.
func (a *App) close() error {
	var errs []error
	record := func(what string, err error) {
		if err != nil {
			a.logger.Error(what+" error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracerFlushTimeout)
		record("tracer shutdown", a.tracerShutdown(ctx))
		cancel()
	}
	for _, c := range a.consumers {
		record("kafka consumer close", c.Close())
	}
	if a.producer != nil {
		record("kafka producer close", a.producer.Close())
	}
	if a.dlq != nil {
		record("kafka dlq producer close", a.dlq.Close())
	}
	if a.redis != nil {
		record("redis close", a.redis.Close())
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

// dropPublisher stands in for Kafka when no brokers are configured.
type dropPublisher struct {
	logger *slog.Logger
}

func (d dropPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	d.logger.DebugContext(ctx, "event dropped",
		slog.String("topic", topic),
		slog.String("event_id", e.EventID),
	)
	return nil
}
