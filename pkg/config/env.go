package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
)

const (
	mainnet = "mainnet"
	testnet = "testnet"

	// DefaultNetwork is the default blockchain network to connect to
	DefaultNetwork = mainnet

	// DefaultMatchingEndpoint defines the default endpoint for the matching engine
	DefaultMatchingEndpoint = "https://match.foresight.markets"

	// DefaultPollingInterval defines the default ledger polling interval in seconds
	DefaultPollingInterval = 10

	// DefaultSweepInterval defines the default retry and expiry sweep interval in seconds
	DefaultSweepInterval = 5

	// DefaultHealthInterval defines the default matching engine probe interval in seconds
	DefaultHealthInterval = 10

	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultSolverAddress defines the default solver address
	DefaultSolverAddress = "0x0000000000000000000000000000000000000000"

	// DefaultMaxInflight defines the default bound on concurrent intent processors, 0 means unbounded
	DefaultMaxInflight = 0

	// DefaultMaxAttempts defines the number of processing attempts before an intent is abandoned
	DefaultMaxAttempts = 5

	// DefaultInitialRetryDelay defines the first retry delay in seconds
	DefaultInitialRetryDelay = 1

	// DefaultMaxRetryDelay defines the retry delay ceiling in seconds
	DefaultMaxRetryDelay = 60

	// DefaultBackoffFactor defines the multiplier applied to the retry delay on each attempt
	DefaultBackoffFactor = 2.0

	// DefaultJitterWindow defines the random jitter added to retry delays in milliseconds
	DefaultJitterWindow = 500

	// DefaultIntentExpiry defines how long an intent may stay tracked before it is abandoned, in minutes
	DefaultIntentExpiry = 60

	// DefaultCacheTTL defines the freshness window for cached market data in seconds
	DefaultCacheTTL = 30

	// DefaultCacheMaxRetryDelay defines the refresh backoff ceiling for the market data cache in seconds
	DefaultCacheMaxRetryDelay = 30

	// Network specific values
	// Note: intent book address values are not prefixed with "Default"
	// These are the values to use but can still be overridden by environment variables for debugging purposes

	// Polygon

	PolygonMainnetChainID           = 137
	PolygonMainnetIntentBookAddress = "0x8A791620dd6260079BF849Dc5567aDC3F2FdC318"

	DefaultPolygonRPCURL = "https://polygon-rpc.com"

	// Amoy (Polygon testnet)

	AmoyChainID           = 80002
	AmoyIntentBookAddress = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"

	DefaultAmoyRPCURL = "https://rpc-amoy.polygon.technology"
)

// GetEnvNetwork returns the configured network from environment variables or defaults to mainnet
func GetEnvNetwork() (string, error) {
	network := os.Getenv("NETWORK")
	if network == "" {
		network = DefaultNetwork
	}

	if network != mainnet && network != testnet {
		return "", fmt.Errorf("invalid NETWORK value: %s, must be 'mainnet' or 'testnet'", network)
	}

	return network, nil
}

// GetEnvMatchingEndpoint returns the matching engine endpoint from environment variables
func GetEnvMatchingEndpoint() (string, error) {
	matchingEndpoint := os.Getenv("MATCHING_ENDPOINT")
	if matchingEndpoint == "" {
		return DefaultMatchingEndpoint, nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(matchingEndpoint); err != nil {
		return "", fmt.Errorf("invalid MATCHING_ENDPOINT value: %s, must be a valid URL", matchingEndpoint)
	}
	return matchingEndpoint, nil
}

// GetEnvPollingInterval returns the ledger polling interval in seconds from environment variables
func GetEnvPollingInterval() (time.Duration, error) {
	pollingInterval := os.Getenv("POLLING_INTERVAL")
	if pollingInterval == "" {
		return time.Duration(DefaultPollingInterval) * time.Second, nil
	}

	// use atoi
	interval, err := strconv.Atoi(pollingInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid POLLING_INTERVAL value: %s, must be an integer", pollingInterval)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("POLLING_INTERVAL must be greater than 0")
	}
	return time.Duration(interval) * time.Second, nil
}

// GetEnvSweepInterval returns the retry and expiry sweep interval in seconds from environment variables
func GetEnvSweepInterval() (time.Duration, error) {
	sweepInterval := os.Getenv("SWEEP_INTERVAL")
	if sweepInterval == "" {
		return time.Duration(DefaultSweepInterval) * time.Second, nil
	}

	// use atoi
	interval, err := strconv.Atoi(sweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid SWEEP_INTERVAL value: %s, must be an integer", sweepInterval)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("SWEEP_INTERVAL must be greater than 0")
	}
	return time.Duration(interval) * time.Second, nil
}

// GetEnvHealthInterval returns the matching engine probe interval in seconds from environment variables
func GetEnvHealthInterval() (time.Duration, error) {
	healthInterval := os.Getenv("HEALTH_INTERVAL")
	if healthInterval == "" {
		return time.Duration(DefaultHealthInterval) * time.Second, nil
	}

	// use atoi
	interval, err := strconv.Atoi(healthInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid HEALTH_INTERVAL value: %s, must be an integer", healthInterval)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("HEALTH_INTERVAL must be greater than 0")
	}
	return time.Duration(interval) * time.Second, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvSolverAddress returns the solver address from environment variables
func GetEnvSolverAddress() (string, error) {
	solverAddress := os.Getenv("SOLVER_ADDRESS")
	if solverAddress == "" {
		return DefaultSolverAddress, nil
	}

	// Validate Ethereum address format
	if !common.IsHexAddress(solverAddress) {
		return "", fmt.Errorf("invalid SOLVER_ADDRESS value: %s, must be a valid Ethereum address", solverAddress)
	}
	return solverAddress, nil
}

// GetEnvMaxInflight returns the bound on concurrent intent processors from environment variables
func GetEnvMaxInflight() (int, error) {
	maxInflight := os.Getenv("MAX_INFLIGHT")
	if maxInflight == "" {
		return DefaultMaxInflight, nil
	}

	maxInflightInt, err := strconv.Atoi(maxInflight)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_INFLIGHT value: %s, must be an integer", maxInflight)
	}
	if maxInflightInt < 0 {
		return 0, fmt.Errorf("MAX_INFLIGHT must be greater than or equal to 0")
	}
	return maxInflightInt, nil
}

// GetEnvMaxAttempts returns the processing attempt budget per intent from environment variables
func GetEnvMaxAttempts() (int, error) {
	maxAttempts := os.Getenv("MAX_ATTEMPTS")
	if maxAttempts == "" {
		return DefaultMaxAttempts, nil
	}

	maxAttemptsInt, err := strconv.Atoi(maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_ATTEMPTS value: %s, must be an integer", maxAttempts)
	}
	if maxAttemptsInt <= 0 {
		return 0, fmt.Errorf("MAX_ATTEMPTS must be greater than 0")
	}
	return maxAttemptsInt, nil
}

// GetEnvInitialRetryDelay returns the first retry delay from environment variables
func GetEnvInitialRetryDelay() (time.Duration, error) {
	initialRetryDelay := os.Getenv("INITIAL_RETRY_DELAY")
	if initialRetryDelay == "" {
		return DefaultInitialRetryDelay * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(initialRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid INITIAL_RETRY_DELAY value: %s, must be a valid duration string", initialRetryDelay)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("INITIAL_RETRY_DELAY must be greater than 0")
	}
	return parsed, nil
}

// GetEnvMaxRetryDelay returns the retry delay ceiling from environment variables
func GetEnvMaxRetryDelay() (time.Duration, error) {
	maxRetryDelay := os.Getenv("MAX_RETRY_DELAY")
	if maxRetryDelay == "" {
		return DefaultMaxRetryDelay * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(maxRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_RETRY_DELAY value: %s, must be a valid duration string", maxRetryDelay)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("MAX_RETRY_DELAY must be greater than 0")
	}
	return parsed, nil
}

// GetEnvBackoffFactor returns the retry delay multiplier from environment variables
func GetEnvBackoffFactor() (float64, error) {
	backoffFactor := os.Getenv("BACKOFF_FACTOR")
	if backoffFactor == "" {
		return DefaultBackoffFactor, nil
	}

	factor, err := strconv.ParseFloat(backoffFactor, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid BACKOFF_FACTOR value: %s, must be a number", backoffFactor)
	}
	if factor <= 1 {
		return 0, fmt.Errorf("BACKOFF_FACTOR must be greater than 1")
	}
	return factor, nil
}

// GetEnvJitterWindow returns the retry jitter window from environment variables
func GetEnvJitterWindow() (time.Duration, error) {
	jitterWindow := os.Getenv("RETRY_JITTER")
	if jitterWindow == "" {
		return DefaultJitterWindow * time.Millisecond, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(jitterWindow)
	if err != nil {
		return 0, fmt.Errorf("invalid RETRY_JITTER value: %s, must be a valid duration string", jitterWindow)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("RETRY_JITTER must be greater than or equal to 0")
	}
	return parsed, nil
}

// GetEnvIntentExpiry returns the intent age limit from environment variables
func GetEnvIntentExpiry() (time.Duration, error) {
	intentExpiry := os.Getenv("INTENT_EXPIRY")
	if intentExpiry == "" {
		return DefaultIntentExpiry * time.Minute, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(intentExpiry)
	if err != nil {
		return 0, fmt.Errorf("invalid INTENT_EXPIRY value: %s, must be a valid duration string", intentExpiry)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("INTENT_EXPIRY must be greater than 0")
	}
	return parsed, nil
}

// GetEnvCacheTTL returns the market data cache freshness window from environment variables
func GetEnvCacheTTL() (time.Duration, error) {
	cacheTTL := os.Getenv("CACHE_TTL")
	if cacheTTL == "" {
		return DefaultCacheTTL * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(cacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid CACHE_TTL value: %s, must be a valid duration string", cacheTTL)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("CACHE_TTL must be greater than 0")
	}
	return parsed, nil
}

// GetEnvCacheMaxRetryDelay returns the market data cache refresh backoff ceiling from environment variables
func GetEnvCacheMaxRetryDelay() (time.Duration, error) {
	cacheMaxRetryDelay := os.Getenv("CACHE_MAX_RETRY_DELAY")
	if cacheMaxRetryDelay == "" {
		return DefaultCacheMaxRetryDelay * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(cacheMaxRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid CACHE_MAX_RETRY_DELAY value: %s, must be a valid duration string", cacheMaxRetryDelay)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("CACHE_MAX_RETRY_DELAY must be greater than 0")
	}
	return parsed, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		return logger.InfoLevel, nil
	}

	switch logLevel {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}

	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be 'debug', 'info', 'notice' or 'error'", logLevel)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}

// GetEnvChainConfig returns the settlement chain configuration based on the environment variables and network type
func GetEnvChainConfig(network string) (ChainConfig, error) {
	if network == testnet {
		rpc := os.Getenv("RPC_URL")
		if rpc == "" {
			rpc = DefaultAmoyRPCURL
		}
		intentBook := os.Getenv("INTENT_BOOK_ADDRESS")
		if intentBook == "" {
			intentBook = AmoyIntentBookAddress
		}
		return ChainConfig{
			ChainID:           AmoyChainID,
			RPCURL:            rpc,
			IntentBookAddress: intentBook,
		}, nil
	}

	rpc := os.Getenv("RPC_URL")
	if rpc == "" {
		rpc = DefaultPolygonRPCURL
	}
	intentBook := os.Getenv("INTENT_BOOK_ADDRESS")
	if intentBook == "" {
		intentBook = PolygonMainnetIntentBookAddress
	}
	return ChainConfig{
		ChainID:           PolygonMainnetChainID,
		RPCURL:            rpc,
		IntentBookAddress: intentBook,
	}, nil
}
