package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/modacart/backend/internal/catalog"
	"github.com/modacart/backend/internal/config"
	"github.com/modacart/backend/internal/event"
	handler "github.com/modacart/backend/internal/handler/http"
	mongorepo "github.com/modacart/backend/internal/repository/mongo"
	"github.com/modacart/backend/internal/service"
	"github.com/modacart/backend/pkg/database"
	"github.com/modacart/backend/pkg/health"
	pkgkafka "github.com/modacart/backend/pkg/kafka"
	"github.com/modacart/backend/pkg/tracing"
)

// App wires together all dependencies and runs the backend.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	db              *mongo.Database
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	tracingShutdown func(context.Context) error
	httpServer      *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracingCfg := tracing.Config{
		ServiceName:    "modacart-backend",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSample,
		Enabled:        cfg.TracingEnabled,
	}
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// MongoDB.
	mongoCfg := database.DefaultMongoConfig()
	mongoCfg.URI = cfg.MongoURI
	mongoCfg.Database = cfg.MongoDatabase
	db, err := database.ConnectMongo(ctx, mongoCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("connected to MongoDB",
		slog.String("database", cfg.MongoDatabase),
	)

	// Redis client for the catalog display cache.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	lines := mongorepo.NewCartLineRepository(db)
	removed := mongorepo.NewRemovedLineRepository(db)
	products := mongorepo.NewProductRepository(db)
	sizes := mongorepo.NewSizeRepository(db)
	users := mongorepo.NewUserRepository(db)

	cacheTTL := time.Duration(cfg.CatalogCacheTTL) * time.Second
	catalogService := catalog.NewService(products, sizes, catalog.NewCache(rdb, cacheTTL), logger)
	eventProducer := event.NewProducer(producer, logger)
	cartService := service.NewCartService(lines, removed, catalogService, eventProducer, logger)
	adminService := service.NewAdminService(lines, removed, users, catalogService, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("mongo", func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(cartService, adminService, healthHandler, logger, cfg.PprofCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		rdb:             rdb,
		producer:        producer,
		tracingShutdown: tracingShutdown,
		httpServer:      httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.db.Client().Disconnect(shutdownCtx); err != nil {
		a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
