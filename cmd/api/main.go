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

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/api/middleware"
	"github.com/vicuna-trace/ledger/internal/api/server"
	"github.com/vicuna-trace/ledger/internal/api/shared/executor"
	"github.com/vicuna-trace/ledger/internal/config"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/messaging"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/providers/ethereum"
	"github.com/vicuna-trace/ledger/internal/providers/jetstream"
	"github.com/vicuna-trace/ledger/internal/ratelimit"
	"github.com/vicuna-trace/ledger/internal/store"
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
			"service": "ledger-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Vicuña Ledger API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Connect to the chain the tokenization contract lives on
	network, _ := cfg.Ethereum.Network()
	if !common.IsHexAddress(cfg.Ethereum.ContractAddress) {
		logger.FatalCtx(ctx, "Invalid contract address", zap.String("contract_address", cfg.Ethereum.ContractAddress))
	}
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Ethereum RPC", zap.Error(err))
	}
	wallet := ethereum.NewWallet(ethereum.WalletConfig{
		KeystoreDir: cfg.Wallet.KeystoreDir,
		Account:     cfg.Wallet.Account,
		Passphrase:  cfg.Wallet.Passphrase,
		PrivateKey:  cfg.Wallet.PrivateKey,
	}, adapter.NewKeyStoreOpener())
	chainClient := ethereum.NewClient(ethereum.Config{
		RequiredNetwork:     network,
		ContractAddress:     common.HexToAddress(cfg.Ethereum.ContractAddress),
		ReceiptPollInterval: cfg.Ethereum.ReceiptPollInterval,
		ConfirmationTimeout: cfg.Ethereum.ConfirmationTimeout,
	}, ethClient, wallet, clock)
	defer chainClient.Close()
	logger.InfoCtx(ctx, "Connected to Ethereum RPC",
		zap.String("network", network.CAIP2()),
		zap.String("contract_address", cfg.Ethereum.ContractAddress),
	)

	// Tokenization events are optional
	var publisher messaging.Publisher = messaging.NewNoopPublisher()
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, tokenization events will not be published")
	}
	defer publisher.Close()

	var defaultRecipient *common.Address
	if cfg.Wallet.Recipient != "" {
		if !common.IsHexAddress(cfg.Wallet.Recipient) {
			logger.FatalCtx(ctx, "Invalid recipient address", zap.String("recipient", cfg.Wallet.Recipient))
		}
		addr := common.HexToAddress(cfg.Wallet.Recipient)
		defaultRecipient = &addr
	}

	resolver := provenance.NewResolver(dataStore, provenance.Config{
		RequireTransformationDestination: cfg.Resolver.RequireTransformationDestination,
	})
	guard := minting.NewGuard(dataStore, chainClient)
	orchestrator := minting.NewOrchestrator(minting.Config{
		DefaultRecipient:       defaultRecipient,
		ConfirmationTimeout:    cfg.Ethereum.ConfirmationTimeout,
		MaxConfirmationTimeout: cfg.Ethereum.MaxConfirmationTimeout,
	}, resolver, chainClient, guard, minting.NewJournal(dataStore, jsonAdapter, clock), publisher, clock)

	// Mint and recheck spend gas, so they get a per-caller budget when Redis is configured
	var limiter ratelimit.Limiter
	if cfg.RateLimit.RedisAddr != "" {
		limiter, err = ratelimit.NewLimiter(ratelimit.Config{
			RedisKeyPrefix:      cfg.RateLimit.RedisKeyPrefix,
			RequestsPerMinute:   cfg.RateLimit.RequestsPerMinute,
			Burst:               cfg.RateLimit.Burst,
			EnableLocalFallback: cfg.RateLimit.EnableLocalFallback,
		}, adapter.NewRedisClient(adapter.RedisOptions{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		}), clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to initialize rate limiter", zap.Error(err))
		}
		defer func() { _ = limiter.Close() }()
	}

	srv := server.New(server.Config{
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
		RateLimiter: limiter,
	}, executor.NewExecutor(dataStore, resolver, orchestrator))

	errCh := make(chan error, 1)
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
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// In-flight mints may be waiting for confirmation
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.Info("API server stopped")
}
