package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/backoff"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/joho/godotenv"
)

// Config holds the configuration for the settler service
type Config struct {
	MatchingEndpoint string
	PollingInterval  time.Duration
	SweepInterval    time.Duration
	HealthInterval   time.Duration
	SolverAddress    string
	PrivateKey       string
	Chain            ChainConfig
	MaxInflight      int
	MetricsPort      string
	Retry            RetryConfig
	IntentExpiry     time.Duration
	Cache            CacheConfig
	LoggerConfig     LoggerConfig
}

// RetryConfig holds the retry schedule applied to failed intent processing
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	JitterWindow time.Duration
}

// CacheConfig holds the configuration for the market data cache
type CacheConfig struct {
	TTL           time.Duration
	MaxRetryDelay time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// ChainConfig holds the configuration for the settlement chain
type ChainConfig struct {
	ChainID           int
	RPCURL            string
	IntentBookAddress string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	matchingEndpoint, err := GetEnvMatchingEndpoint()
	if err != nil {
		return nil, err
	}

	pollingInterval, err := GetEnvPollingInterval()
	if err != nil {
		return nil, err
	}

	sweepInterval, err := GetEnvSweepInterval()
	if err != nil {
		return nil, err
	}

	healthInterval, err := GetEnvHealthInterval()
	if err != nil {
		return nil, err
	}

	solverAddress, err := GetEnvSolverAddress()
	if err != nil {
		return nil, err
	}

	maxInflight, err := GetEnvMaxInflight()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	maxAttempts, err := GetEnvMaxAttempts()
	if err != nil {
		return nil, err
	}

	initialRetryDelay, err := GetEnvInitialRetryDelay()
	if err != nil {
		return nil, err
	}

	maxRetryDelay, err := GetEnvMaxRetryDelay()
	if err != nil {
		return nil, err
	}

	backoffFactor, err := GetEnvBackoffFactor()
	if err != nil {
		return nil, err
	}

	jitterWindow, err := GetEnvJitterWindow()
	if err != nil {
		return nil, err
	}

	intentExpiry, err := GetEnvIntentExpiry()
	if err != nil {
		return nil, err
	}

	cacheTTL, err := GetEnvCacheTTL()
	if err != nil {
		return nil, err
	}

	cacheMaxRetryDelay, err := GetEnvCacheMaxRetryDelay()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	network, err := GetEnvNetwork()
	if err != nil {
		return nil, err
	}

	chainConfig, err := GetEnvChainConfig(network)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MatchingEndpoint: matchingEndpoint,
		PollingInterval:  pollingInterval,
		SweepInterval:    sweepInterval,
		HealthInterval:   healthInterval,
		SolverAddress:    solverAddress,
		PrivateKey:       os.Getenv("PRIVATE_KEY"),
		Chain:            chainConfig,
		MaxInflight:      maxInflight,
		MetricsPort:      metricsPort,
		Retry: RetryConfig{
			MaxAttempts:  maxAttempts,
			InitialDelay: initialRetryDelay,
			MaxDelay:     maxRetryDelay,
			Factor:       backoffFactor,
			JitterWindow: jitterWindow,
		},
		IntentExpiry: intentExpiry,
		Cache: CacheConfig{
			TTL:           cacheTTL,
			MaxRetryDelay: cacheMaxRetryDelay,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RetryPolicy returns the backoff policy applied to failed intent processing
func (c *Config) RetryPolicy() backoff.Policy {
	return backoff.Policy{
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Factor:       c.Retry.Factor,
		JitterWindow: c.Retry.JitterWindow,
	}
}

// CachePolicy returns the backoff policy applied to market data cache refreshes.
// It shares the retry curve with intent processing but saturates earlier, so a
// flapping data endpoint never parks quotes for a full minute.
func (c *Config) CachePolicy() backoff.Policy {
	return backoff.Policy{
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Cache.MaxRetryDelay,
		Factor:       c.Retry.Factor,
		JitterWindow: c.Retry.JitterWindow,
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY environment variable is required")
	}
	if cfg.Chain.RPCURL == "" {
		return fmt.Errorf("RPC_URL for chain %d is required", cfg.Chain.ChainID)
	}
	if cfg.Chain.IntentBookAddress == "" {
		return fmt.Errorf("INTENT_BOOK_ADDRESS for chain %d is required", cfg.Chain.ChainID)
	}
	if cfg.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be greater than 0")
	}
	if cfg.Retry.Factor <= 1 {
		return fmt.Errorf("BACKOFF_FACTOR must be greater than 1")
	}
	if cfg.Retry.InitialDelay > cfg.Retry.MaxDelay {
		return fmt.Errorf("INITIAL_RETRY_DELAY must not exceed MAX_RETRY_DELAY")
	}
	return nil
}
