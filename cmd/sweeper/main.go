package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/api/client"
	"github.com/feral-file/ff-fractions/internal/config"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "settlement-sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Settlement Sweeper")

	// Initialize API client
	httpClient := adapter.NewHTTPClient(cfg.Sweeper.HTTPTimeout)
	apiClient := client.New(cfg.Sweeper.APIURL, cfg.Sweeper.APIKey, httpClient)

	// Initialize settlement sweeper
	sweeperConfig := &sweeper.SettlementSweeperConfig{
		Schedule:       cfg.Sweeper.Schedule,
		BatchSize:      cfg.Sweeper.BatchSize,
		WorkerPoolSize: cfg.Sweeper.Worker.WorkerPoolSize,
		Keeper:         common.HexToAddress(cfg.Sweeper.KeeperAddress),
	}
	settlementSweeper := sweeper.NewSettlementSweeper(sweeperConfig, apiClient, adapter.NewClock())

	logger.InfoCtx(ctx, "Initialized settlement sweeper",
		zap.String("schedule", cfg.Sweeper.Schedule),
		zap.String("api_url", cfg.Sweeper.APIURL),
		zap.Int("batch_size", cfg.Sweeper.BatchSize),
		zap.Int("worker_pool_size", cfg.Sweeper.Worker.WorkerPoolSize),
		zap.String("keeper", sweeperConfig.Keeper.Hex()),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := settlementSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to finish the running cycle
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := settlementSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.Info("Sweeper stopped")
}
