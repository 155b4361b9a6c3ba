package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	internalhttp "github.com/fioprotocol/fio-provisioner/internal/api/http"
	"github.com/fioprotocol/fio-provisioner/internal/chain/eosclient"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/fioprotocol/fio-provisioner/internal/db"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/ledger"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("FIO Provisioner Server", "version", AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chainClient, err := eosclient.New(ctx, config.Chain)
	if err != nil {
		slog.Error("Failed to create chain client", "error", err)
		os.Exit(1)
	}

	claimStore := claims.NewStore(config.Claims.TTL)
	services := &internalhttp.Services{
		Claims:         claimStore,
		DefaultCreator: config.Creator,
	}

	var (
		recorder provisioning.Recorder
		pool     *pgxpool.Pool
	)
	if config.DB.Enabled() {
		if err := db.RunMigrations(ctx, config.DB); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		pool, err = db.InitDB(ctx, config.DB)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store := ledger.NewStore(pool)
		recorder = store
		services.Ledger = store
		services.DB = pool
	} else {
		slog.Warn("No database configured, provisioned accounts will not be recorded")
	}

	nameGen, err := names.NewGenerator(config.Provisioning.NameAlphabet)
	if err != nil {
		slog.Error("Invalid provisioning config", "error", err)
		os.Exit(1)
	}
	services.Provisioner = provisioning.NewService(
		config.Provisioning,
		chainClient,
		keys.NewGenerator(config.Chain.KeyPrefix),
		nameGen,
		recorder,
	)

	go claimStore.StartCleanup(ctx, config.Claims.CleanupInterval)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if len(config.Http.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  config.Http.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services, config.Http.AdminAPIKey)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Http.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	cancel()
	slog.Info("Shutdown complete")
}
