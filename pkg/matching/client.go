// Package matching provides a client for the Foresight matching engine API.
package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

// SubmitResponse represents the matching engine's answer to an order submission
type SubmitResponse struct {
	OrderID string         `json:"order_id"`
	Status  string         `json:"status"`
	Trades  []models.Trade `json:"trades,omitempty"`
}

// Client represents a matching engine API client
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a new matching engine API client
func New(endpoint string, logger logger.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: createHTTPClient(),
		logger:     logger,
	}
}

// Health probes the matching engine health endpoint. Any non-2xx answer or
// transport failure is reported as an error.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodGet, "/health", nil); err != nil {
		return fmt.Errorf("health probe failed: %v", err)
	}
	return nil
}

// SubmitOrder places an order with the matching engine and returns the fills
// executed against it
func (c *Client) SubmitOrder(ctx context.Context, order *models.Order) ([]models.Trade, error) {
	bodyBytes, err := c.doRequest(ctx, http.MethodPost, "/api/v1/orders", order)
	if err != nil {
		return nil, err
	}

	var submitResp SubmitResponse
	if err := json.Unmarshal(bodyBytes, &submitResp); err != nil {
		return nil, &DecodeError{Err: err, Body: string(bodyBytes)}
	}

	c.logger.DebugWithComp(logger.Matching, "Order %s for intent %s accepted with status %s (%d fills)",
		submitResp.OrderID, order.IntentID, submitResp.Status, len(submitResp.Trades))

	return submitResp.Trades, nil
}

// GetPrice fetches price data for a market outcome. Returns ErrNotFound when
// the engine has no data for the market yet.
func (c *Client) GetPrice(ctx context.Context, marketID string, outcome uint8) (*models.PriceData, error) {
	path := fmt.Sprintf("/api/v1/price/%s/%d", marketID, outcome)
	bodyBytes, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var price models.PriceData
	if err := json.Unmarshal(bodyBytes, &price); err != nil {
		return nil, &DecodeError{Err: err, Body: string(bodyBytes)}
	}
	return &price, nil
}

// GetOrderbook fetches an orderbook snapshot for a market outcome. Returns
// ErrNotFound when the engine has no book for the market yet.
func (c *Client) GetOrderbook(ctx context.Context, marketID string, outcome uint8) (*models.OrderbookSnapshot, error) {
	path := fmt.Sprintf("/api/v1/orderbook/%s/%d", marketID, outcome)
	bodyBytes, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var snapshot models.OrderbookSnapshot
	if err := json.Unmarshal(bodyBytes, &snapshot); err != nil {
		return nil, &DecodeError{Err: err, Body: string(bodyBytes)}
	}
	return &snapshot, nil
}

// doRequest issues a request and maps the response status onto the error
// taxonomy: 404 → ErrNotFound, 429 → RateLimitError, other non-2xx →
// StatusError. The body is returned for 2xx answers.
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)

	// Read the response body regardless of status code
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	return bodyBytes, nil
}

// parseRetryAfter parses a Retry-After header given in seconds
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Helper function to create an HTTP client with timeouts
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
