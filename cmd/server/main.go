package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencysearch/internal/config"
	"agencysearch/internal/handler"
	"agencysearch/internal/logging"
	"agencysearch/internal/model"
	"agencysearch/internal/monitor"
	"agencysearch/internal/repository"
	"agencysearch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const serviceName = "agency-directory"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Agency Directory",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("environment", cfg.Environment))
	for _, w := range cfg.Warnings {
		logger.Warn("Configuration fallback", zap.String("detail", w))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open data store", zap.Error(err))
	}
	defer closeStore()

	// Metrics and monitoring
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mon := monitor.New(monitor.Options{
		Target:    cfg.Performance.Target,
		WarnRatio: cfg.Performance.WarnRatio,
	}, monitor.NewMetrics(registry), logger.Named("monitor"))

	// Initialize services
	fetcher := service.NewFetcher(service.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		Multiplier:   cfg.Retry.Multiplier,
	}, logger.Named("fetcher"))
	directory := service.NewDirectoryService(store, fetcher, logger.Named("directory"))

	logger.Info("Services initialized",
		zap.Int("retry_max_attempts", cfg.Retry.MaxAttempts),
		zap.Duration("retry_initial_delay", cfg.Retry.InitialDelay),
		zap.Duration("latency_target", cfg.Performance.Target))

	// Initialize handlers
	agencyHandler := handler.NewAgencyHandler(directory, mon, handler.AgencyOptions{
		Limits: service.Limits{
			DefaultLimit:    cfg.Search.DefaultLimit,
			MaxLimit:        cfg.Search.MaxLimit,
			MaxFilterValues: cfg.Search.MaxFilterValues,
			MaxSearchLength: cfg.Search.MaxSearchLength,
		},
		MaxAgeSeconds: cfg.Cache.MaxAgeSeconds,
		ExposeDetails: !cfg.IsProduction(),
	}, logger.Named("agencies"))
	systemHandler := handler.NewSystemHandler(directory, mon, serviceName, Version, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(
		handler.RequestID(),
		handler.RequestLogger(logger.Named("http")),
		handler.Recovery(logger),
	)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = cfg.Server.AllowedMethods
	corsConfig.AllowHeaders = cfg.Server.AllowedHeaders
	corsConfig.ExposeHeaders = []string{"ETag", "X-Request-ID", "X-Response-Time"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", systemHandler.Health)

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/agencies", agencyHandler.List)
		apiV1.GET("/agencies/stats", systemHandler.ErrorRates)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: model.ErrorBody{
			Code:    "NOT_FOUND",
			Message: "API endpoint not found",
		}})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// openStore connects the configured data store and returns its closer
func openStore(cfg *config.Config, logger *zap.Logger) (service.Store, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		repo, err := repository.NewMemoryRepositoryFromFile(cfg.Store.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using in-memory directory", zap.String("seed_file", cfg.Store.SeedFile))
		return repo, func() {}, nil
	case "postgres":
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to PostgreSQL database")
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
