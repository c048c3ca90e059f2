package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/foresight-hq/foresight-settler/pkg/config"
	"github.com/foresight-hq/foresight-settler/pkg/ledger"
	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/querycache"
	"github.com/foresight-hq/foresight-settler/pkg/settler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, status, admin and market-data endpoints
// alongside the Prometheus metrics handler
type Server struct {
	port          string
	chain         config.ChainConfig
	ledger        *ledger.Client
	service       *settler.Service
	matching      *matching.Client
	cache         *querycache.Cache
	metricsAPIKey string
}

// NewServer creates the health and metrics server
func NewServer(port string, chain config.ChainConfig, ledgerClient *ledger.Client, service *settler.Service, matchingClient *matching.Client, cache *querycache.Cache) *Server {
	return &Server{
		port:          port,
		chain:         chain,
		ledger:        ledgerClient,
		service:       service,
		matching:      matchingClient,
		cache:         cache,
		metricsAPIKey: os.Getenv("METRICS_API_KEY"),
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server
func (s *Server) Start() {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness requires a connected ledger client and a registered solver:
	// an unregistered solver would poll forever without ever being assigned
	// an intent
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if s.ledger == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Ledger client not connected"))
			return
		}

		registered, err := s.ledger.IsSolverRegistered(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("Solver registration check failed: %v", err)))
			return
		}
		if !registered {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Solver not registered"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	http.HandleFunc("/status", s.handleStatus)

	// Admin control: force the gateway-recovery drain without waiting for
	// the next health probe edge
	http.HandleFunc("POST /drain", func(w http.ResponseWriter, r *http.Request) {
		drained := s.service.DrainParked(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf("Re-dispatched %d parked intents", drained)))
	})

	// Market data reads go through the resilient cache so a flapping
	// matching engine serves stale quotes instead of request storms
	http.HandleFunc("GET /price/{market}/{outcome}", s.handlePrice)
	http.HandleFunc("GET /orderbook/{market}/{outcome}", s.handleOrderbook)

	// Expose Prometheus metrics with API key authentication
	http.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	log.Printf("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, nil); err != nil {
		log.Printf("Health server error: %v", err)
	}
}

// handleStatus reports a point-in-time view of the whole daemon
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	chainID := s.ledger.ChainID()
	chainStatus := map[string]interface{}{
		"chain_id":             chainID,
		"name":                 config.GetChainName(chainID),
		"rpc_url":              s.chain.RPCURL,
		"intent_book":          s.chain.IntentBookAddress,
		"solver":               s.ledger.Solver().Hex(),
		"pending_transactions": s.ledger.PendingTransactions(),
		"collateral":           config.GetCollateralAddress(chainID),
		"conditional_tokens":   config.GetConditionalTokensAddress(chainID),
	}
	if head, err := s.ledger.ChainHead(r.Context()); err == nil {
		chainStatus["latest_block"] = head
	}

	cacheEntries, cacheTTL := s.cache.Stats()

	status := map[string]interface{}{
		"chain":   chainStatus,
		"gateway": s.service.Monitor().GetState(),
		"registry": map[string]interface{}{
			"stats":   s.service.Registry().Stats(),
			"intents": s.service.Registry().Snapshot(),
		},
		"settlement": map[string]interface{}{
			"depth":  s.service.Settlement().Depth(),
			"recent": s.service.Settlement().Settled(),
		},
		"cache": map[string]interface{}{
			"entries": cacheEntries,
			"ttl":     cacheTTL.String(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("Error encoding status JSON: %v", err)
	}
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	market := r.PathValue("market")
	outcome, err := parseOutcome(r.PathValue("outcome"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.cache.Lookup(r.Context(), querycache.Key("price", market, outcome),
		func(ctx context.Context) (interface{}, error) {
			return s.matching.GetPrice(ctx, market, outcome)
		})
	if err != nil {
		http.Error(w, "price lookup failed", http.StatusBadGateway)
		return
	}
	writeMarketData(w, data)
}

func (s *Server) handleOrderbook(w http.ResponseWriter, r *http.Request) {
	market := r.PathValue("market")
	outcome, err := parseOutcome(r.PathValue("outcome"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.cache.Lookup(r.Context(), querycache.Key("orderbook", market, outcome),
		func(ctx context.Context) (interface{}, error) {
			return s.matching.GetOrderbook(ctx, market, outcome)
		})
	if err != nil {
		http.Error(w, "orderbook lookup failed", http.StatusBadGateway)
		return
	}
	writeMarketData(w, data)
}

// writeMarketData renders a cache lookup result; a nil value is the cached
// "no data yet" answer for a brand-new market
func writeMarketData(w http.ResponseWriter, data interface{}) {
	if data == nil {
		http.Error(w, "no data for this market", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding market data JSON: %v", err)
	}
}

func parseOutcome(value string) (uint8, error) {
	outcome, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid outcome index: %s", value)
	}
	return uint8(outcome), nil
}
