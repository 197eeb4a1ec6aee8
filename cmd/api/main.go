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

	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/config"
	"github.com/BarkinBalci/bi-warehouse/internal/handler"
	"github.com/BarkinBalci/bi-warehouse/internal/logger"
	"github.com/BarkinBalci/bi-warehouse/internal/report"
	"github.com/BarkinBalci/bi-warehouse/internal/repository/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	if err := run(cfg, log); err != nil {
		log.Error("API service failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run serves the report API until a shutdown signal arrives. The warehouse
// connection is closed on every return path.
func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting report API",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort),
		zap.String("driver", cfg.Warehouse.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := warehouse.NewClient(ctx, &cfg.Warehouse, &cfg.ClickHouse, log)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	repo := warehouse.NewRepository(client, cfg.Warehouse.LoadBatchSize, log)
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close warehouse", zap.Error(err))
		}
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	h := handler.NewHandler(report.NewEngine(repo, log), repo, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down API server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}
