package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/api"
	"github.com/andresuchdata/dpr-report/backend-go/internal/cache"
	"github.com/andresuchdata/dpr-report/backend-go/internal/config"
	"github.com/andresuchdata/dpr-report/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/dpr-report/backend-go/internal/service"
	"github.com/andresuchdata/dpr-report/backend-go/internal/storage"
	"github.com/andresuchdata/dpr-report/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	financialCache, err := cache.NewFinancialCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Financial cache unavailable, continuing without cache")
		financialCache = cache.NewNoopFinancialCache()
	}

	var opts []service.Option
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		opts = append(opts, service.WithArchive(store, cfg.Storage.Prefix))
	}

	// Initialize services
	financialService := service.NewFinancialService(postgres.NewFinancialRepository(db), financialCache, opts...)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{Financial: financialService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
