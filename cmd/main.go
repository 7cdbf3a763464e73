package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advertisement-service/internal/config"
	"advertisement-service/internal/delivery/router"
	"advertisement-service/internal/infrastructure/cache"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/repository"
	"advertisement-service/internal/service"
	"advertisement-service/pkg/database"
	"advertisement-service/pkg/logger"
	"advertisement-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	redisClient "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	cfg := config.MustLoadConfig()

	loggers, err := logger.SetupLogger(logger.Options{
		Level:      cfg.Logger.Level,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer loggers.Sync()
	loggers.InfoLogger.Info("Logger initialized")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	handlerMetrics := metrics.NewHandlerMetrics(registry)
	serviceMetrics := metrics.NewServiceMetrics(registry)
	repositoryMetrics := metrics.NewRepositoryMetrics(registry)
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	tracerProvider := setupTracer(cfg, loggers)
	defer shutdownTracer(tracerProvider, loggers)

	adRepo, cleanupStorage := setupStorage(cfg, loggers, repositoryMetrics)
	defer cleanupStorage()

	adRepo, cleanupCache := setupCache(cfg, loggers, adRepo, repositoryMetrics)
	defer cleanupCache()

	adService := service.NewAdvertisementService(adRepo, serviceMetrics)
	loggers.InfoLogger.Info("Service and repository layers initialized")

	r := chi.NewRouter()
	router.SetupMiddleware(r, cfg.HTTP, loggers)
	router.SetupAdvertisementRoutes(r, adService, loggers, handlerMetrics)
	router.SetupOperationalRoutes(r, handlerMetrics)
	loggers.InfoLogger.Info("Router and routes initialized")

	server := startServer(cfg, r, loggers)

	waitForShutdown(server, cfg.HTTP.ShutdownTimeout, loggers)
}

func setupStorage(cfg *config.Config, loggers *logger.Loggers, m *metrics.RepositoryMetrics) (repository.AdvertisementRepository, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		loggers.InfoLogger.Infow("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryAdRepository(), func() {}
	}

	dialect, err := repository.DialectFor(cfg.Database.Driver)
	if err != nil {
		loggers.ErrorLogger.Errorw("Unsupported database driver", utils.Err(err))
		os.Exit(1)
	}

	db, cleanupDB := setupDatabase(cfg, loggers)

	repo := repository.NewSQLAdRepository(db, dialect, m)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		loggers.ErrorLogger.Errorw("Failed to initialize schema", utils.Err(err))
		cleanupDB()
		os.Exit(1)
	}
	loggers.InfoLogger.Infow("Database schema ready", "driver", dialect.Name)

	return repo, cleanupDB
}

func setupDatabase(cfg *config.Config, loggers *logger.Loggers) (*sql.DB, func()) {
	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		loggers.ErrorLogger.Errorw("Failed to connect to database", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Infow("Connected to database", "driver", cfg.Database.Driver)

	cleanup := func() {
		if err := db.Close(); err != nil {
			loggers.ErrorLogger.Errorw("Failed to close database connection", utils.Err(err))
		}
	}

	return db, cleanup
}

func setupCache(cfg *config.Config, loggers *logger.Loggers, next repository.AdvertisementRepository, m *metrics.RepositoryMetrics) (repository.AdvertisementRepository, func()) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		redisCache, cleanup := setupRedis(cfg, loggers)
		return repository.NewCachedAdRepository(next, redisCache, cfg.Cache.TTL, m), cleanup
	case config.CacheMemory:
		loggers.InfoLogger.Infow("Using in-process cache", "ttl", cfg.Cache.TTL.String())
		memoryCache := cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
		return repository.NewCachedAdRepository(next, memoryCache, cfg.Cache.TTL, m), func() {}
	default:
		return next, func() {}
	}
}

func setupRedis(cfg *config.Config, loggers *logger.Loggers) (cache.Cache, func()) {
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		loggers.ErrorLogger.Errorw("Failed to connect to Redis", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Infow("Connected to Redis", "addr", cfg.Redis.Addr)

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			loggers.ErrorLogger.Errorw("Failed to close Redis client", utils.Err(err))
		}
	}

	return cache.NewRedisCache(rdb), cleanup
}

func setupTracer(cfg *config.Config, loggers *logger.Loggers) *sdktrace.TracerProvider {
	if !cfg.Tracing.Enabled {
		return nil
	}

	tracerProvider, err := metrics.InitTracer(context.Background(), metrics.TracerOptions{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Version:     cfg.Tracing.Version,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		loggers.ErrorLogger.Errorw("Failed to initialize tracer", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Infow("OpenTelemetry tracer initialized", "endpoint", cfg.Tracing.Endpoint)
	return tracerProvider
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		loggers.ErrorLogger.Errorw("Failed to shut down tracer provider", utils.Err(err))
	}
}

func startServer(cfg *config.Config, handler http.Handler, loggers *logger.Loggers) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}

	go func() {
		loggers.InfoLogger.Infow("Starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggers.ErrorLogger.Errorw("Failed to start server", utils.Err(err))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, timeout time.Duration, loggers *logger.Loggers) {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	<-shutdownCh
	loggers.InfoLogger.Info("Shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Errorw("Server forced to shutdown", utils.Err(err))
	} else {
		loggers.InfoLogger.Info("Server shutdown gracefully")
	}
}
