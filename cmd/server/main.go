// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowplan/backend-go/internal/api"
	"github.com/flowplan/backend-go/internal/cache"
	"github.com/flowplan/backend-go/internal/config"
	"github.com/flowplan/backend-go/internal/repository"
	"github.com/flowplan/backend-go/internal/repository/postgres"
	"github.com/flowplan/backend-go/internal/service"
	"github.com/flowplan/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
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

	// Initialize cache (noop when disabled)
	projectionCache, err := cache.NewProjectionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		projectionCache = cache.NewNoopProjectionCache()
	}

	// Initialize services
	repo := repository.NewPlanningRepository(db)
	projectionService := service.NewProjectionService(repo, projectionCache, cfg.Planning.WorkerLimit)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{ProjectionService: projectionService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Ops listener on its own port so probes bypass the API middleware
	opsSrv := &http.Server{
		Addr:    ":" + cfg.Server.OpsPort,
		Handler: opsRouter(db),
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	go func() {
		opsLog := logger.With("ops")
		opsLog.Info().Str("port", cfg.Server.OpsPort).Msg("Starting ops listener")
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			opsLog.Error().Err(err).Msg("Ops listener stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := opsSrv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Ops listener forced to shutdown")
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func opsRouter(db *postgres.DB) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return r
}
