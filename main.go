package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/config"
	"github.com/foresight-hq/foresight-settler/pkg/health"
	"github.com/foresight-hq/foresight-settler/pkg/ledger"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/querycache"
	"github.com/foresight-hq/foresight-settler/pkg/settler"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the settlement chain
	ledgerClient, err := ledger.NewClient(cfg.Chain, cfg.PrivateKey, cfg.SolverAddress, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to the ledger: %v", err)
	}
	defer ledgerClient.Close()

	// Refuse to start as an unregistered solver: the intent book would never
	// assign an intent to this address and the daemon would poll forever
	// doing nothing
	checkCtx, checkCancel := context.WithTimeout(ctx, 30*time.Second)
	registered, err := ledgerClient.IsSolverRegistered(checkCtx)
	checkCancel()
	if err != nil {
		log.Fatalf("Failed to check solver registration: %v", err)
	}
	if !registered {
		log.Fatalf("Solver %s is not registered with the intent book at %s",
			ledgerClient.Solver().Hex(), cfg.Chain.IntentBookAddress)
	}

	matchingClient := matching.New(cfg.MatchingEndpoint, appLogger)
	cache := querycache.New(cfg.Cache.TTL, cfg.CachePolicy(), appLogger)

	service := settler.NewService(cfg, ledgerClient, matchingClient, appLogger)

	// Start health monitoring server
	healthServer := health.NewServer(cfg.MetricsPort, cfg.Chain, ledgerClient, service, matchingClient, cache)
	go healthServer.Start()

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	// Start the service
	service.Start(ctx)
}
