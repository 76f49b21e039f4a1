package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"urlshortener/internal/config"
	httpHandler "urlshortener/internal/handler/http"
	"urlshortener/internal/repository"
	"urlshortener/internal/repository/memory"
	"urlshortener/internal/repository/postgres"
	redisCache "urlshortener/internal/repository/redis"
	"urlshortener/internal/service"
	"urlshortener/pkg/logger"
	"urlshortener/pkg/validator"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("url shortener: %v", err)
	}
}

func run() error {
	// ========================================================================
	// CONFIGURATION AND LOGGING
	// ========================================================================
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.App.LogLevel, cfg.App.LogEncoding)
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting URL Shortener",
		zap.String("environment", cfg.App.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// MAPPING STORE
	// ========================================================================
	// Postgres when DATABASE_URL is set, otherwise a process-local store
	var urlRepo repository.URLRepository
	if cfg.Database.URL != "" {
		pool, db, err := postgres.InitDB(ctx,
			cfg.Database.URL,
			cfg.Database.MaxConns,
			cfg.Database.MinConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		urlRepo = postgres.NewURLRepository(db, appLogger.Logger)
		appLogger.Info("Database connection established")
	} else {
		urlRepo = memory.NewURLRepository()
		appLogger.Warn("DATABASE_URL not set, mappings are kept in memory")
	}

	// ========================================================================
	// OPTIONAL REDIS CACHE
	// ========================================================================
	var cache service.Cache
	if cfg.Redis.Enabled {
		client, err := redisCache.InitRedis(ctx, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The cache only speeds up redirects; run without it
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer client.Close()
			cache = redisCache.NewCache(client, cfg.Redis.CacheTTL)
			appLogger.Info("Redis cache enabled", zap.String("addr", cfg.Redis.RedisAddr()))
		}
	}

	// ========================================================================
	// SERVICE AND HTTP
	// ========================================================================
	urlValidator := validator.NewURLValidator(net.DefaultResolver, cfg.Validation.ResolveTimeout, cfg.Validation.AllowedSchemes...)
	urlService := service.NewURLService(urlRepo, urlValidator, cache, appLogger.Logger)

	handler := httpHandler.NewHandler(urlService, appLogger.Logger, cfg.App.ViewsDir)
	router := httpHandler.NewRouter(handler, appLogger.Logger, httpHandler.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		EnableMetrics:  cfg.App.EnableMetrics,
		PublicDir:      cfg.App.PublicDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// ========================================================================
	// SERVE UNTIL SIGNALLED, THEN DRAIN
	// ========================================================================
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	appLogger.Info("Server exited gracefully")
	return nil
}

