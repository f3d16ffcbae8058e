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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/api/middleware"
	"github.com/feral-file/ff-fractions/internal/api/server"
	"github.com/feral-file/ff-fractions/internal/config"
	"github.com/feral-file/ff-fractions/internal/executor"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/providers/jetstream"
	"github.com/feral-file/ff-fractions/internal/registry"
	"github.com/feral-file/ff-fractions/internal/relay"
	"github.com/feral-file/ff-fractions/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "fractions-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Fractions API")

	// Initialize store
	var dataStore store.Store
	switch cfg.Store.Driver {
	case config.STORE_DRIVER_POSTGRES:
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
		}

		if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to database",
			zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
			zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		)
		dataStore = store.NewPGStore(db)
	default:
		logger.WarnCtx(ctx, "Using in-memory store, state is lost on restart")
		dataStore = store.NewMemoryStore()
	}

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()

	// Load allow list registry
	var allowList registry.AllowListRegistry
	if cfg.Protocol.AllowListPath != "" {
		allowList, err = registry.NewAllowListRegistryLoader(fs, jsonAdapter).Load(cfg.Protocol.AllowListPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load allow list registry",
				zap.Error(err),
				zap.String("path", cfg.Protocol.AllowListPath))
		}
		logger.InfoCtx(ctx, "Loaded allow list registry", zap.String("path", cfg.Protocol.AllowListPath))
	} else {
		logger.WarnCtx(ctx, "Allow list path not configured, no buyer is allowed until an admin adds one")
		allowList = registry.NewAllowListRegistry()
	}

	// Seed role registry
	roleSeed, err := cfg.Protocol.RoleSeed()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid role configuration", zap.Error(err))
	}
	roles, err := registry.NewRoleRegistry(roleSeed)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create role registry", zap.Error(err))
	}

	// Resolve manager accounts
	addrs := executor.DefaultAddresses()
	saleManager, buyoutManager, err := cfg.Protocol.ManagerAddresses()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid manager addresses", zap.Error(err))
	}
	if saleManager != (common.Address{}) {
		addrs.SaleManager = saleManager
	}
	if buyoutManager != (common.Address{}) {
		addrs.BuyoutManager = buyoutManager
	}
	logger.InfoCtx(ctx, "Resolved manager accounts",
		zap.String("sale_manager", addrs.SaleManager.Hex()),
		zap.String("buyout_manager", addrs.BuyoutManager.Hex()),
	)

	// Seed the in-memory ledger
	world := ledger.NewWorld()
	genesis, err := cfg.Protocol.GenesisSeed()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid genesis configuration", zap.Error(err))
	}
	if genesis.IsEmpty() {
		logger.WarnCtx(ctx, "Ledger genesis is empty, assets and balances come from the admin faucet only")
	} else {
		if err := genesis.Apply(ctx, world); err != nil {
			logger.FatalCtx(ctx, "Failed to apply ledger genesis", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Applied ledger genesis",
			zap.Int("assets", len(genesis.Assets)),
			zap.Int("balances", len(genesis.Balances)),
		)
	}

	// Create executor and apply bootstrap parameters
	exec := executor.NewWorldExecutor(world, dataStore, allowList, roles, addrs, clock)
	params, err := cfg.Protocol.Params()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid protocol parameters", zap.Error(err))
	}
	if err := exec.Bootstrap(ctx, params); err != nil {
		logger.FatalCtx(ctx, "Failed to bootstrap protocol parameters", zap.Error(err))
	}

	errCh := make(chan error, 2)

	// Start notification relay
	if cfg.Relay.Enabled {
		publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create notification publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL), zap.String("stream", cfg.NATS.StreamName))

		subscriber := relay.NewJournalSubscriber(dataStore, clock, cfg.Relay.PollInterval, cfg.Relay.BatchSize)
		notificationRelay := relay.NewRelay(subscriber, publisher, dataStore, relay.Config{
			CursorSaveFreq:    uint64(cfg.Relay.CursorSaveFreq),
			CursorSaveDelay:   cfg.Relay.CursorSaveDelay,
			MaxPublishElapsed: cfg.Relay.MaxPublishElapsed,
		}, clock)
		defer notificationRelay.Close()

		go func() {
			if err := notificationRelay.Run(ctx); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("relay stopped: %w", err)
			}
		}()
	} else {
		logger.InfoCtx(ctx, "Notification relay disabled")
	}

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, exec)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "api"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
