// Package platform wraps the opaque trading-platform backend behind typed
// request functions. All dashboard modules and the order-entry core go
// through this client instead of issuing their own HTTP calls.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// requestTimeout bounds every backend call so a hung request cannot wedge
// the single-flight submit guard.
const requestTimeout = 30 * time.Second

// BackendError carries the backend's own error message for an HTTP failure.
// The Detail string is surfaced to the user verbatim.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return e.Detail
}

// errorBody is the backend's error response shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// genericErrorMessage is used when an error body cannot be parsed.
const genericErrorMessage = "request failed"

// Client for the trading-platform backend API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new platform backend client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		log: log.With().Str("client", "platform").Logger(),
	}
}

// get makes a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

// post makes a POST request with a JSON body and decodes the response into out.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// do executes the request and maps non-2xx responses to *BackendError.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.backendError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// backendError extracts the backend's detail message, falling back to a
// generic string when the body is unparsable.
func (c *Client) backendError(status int, body []byte) *BackendError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Detail == "" {
		c.log.Debug().Int("status", status).Msg("Backend error body unparsable, using generic message")
		return &BackendError{StatusCode: status, Detail: genericErrorMessage}
	}
	return &BackendError{StatusCode: status, Detail: parsed.Detail}
}

// LoadOrderTypes fetches the advanced order-type registry.
func (c *Client) LoadOrderTypes(ctx context.Context) ([]OrderType, error) {
	var result OrderTypesResponse
	if err := c.get(ctx, "/advanced-orders/types/available", &result); err != nil {
		return nil, fmt.Errorf("failed to load order types: %w", err)
	}
	return result.OrderTypes, nil
}

// SubmitAdvancedOrder posts a validated order payload to the route for its
// order type (stop-loss, bracket, oco, ...). The payload is submitted once;
// retries are the caller's explicit decision, never automatic.
func (c *Client) SubmitAdvancedOrder(ctx context.Context, route string, payload map[string]interface{}) (*SubmittedOrder, error) {
	var result SubmittedOrder
	if err := c.post(ctx, "/advanced-orders/"+route, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListBacktests fetches backtest run summaries.
func (c *Client) ListBacktests(ctx context.Context, limit int) ([]BacktestSummary, error) {
	var result BacktestsResponse
	endpoint := fmt.Sprintf("/backtests?limit=%d", limit)
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to list backtests: %w", err)
	}
	return result.Backtests, nil
}

// GetBacktest fetches one backtest result with its equity curve.
func (c *Client) GetBacktest(ctx context.Context, id string) (*BacktestDetail, error) {
	var result BacktestDetail
	if err := c.get(ctx, "/backtests/"+url.PathEscape(id), &result); err != nil {
		return nil, fmt.Errorf("failed to get backtest: %w", err)
	}
	return &result, nil
}

// GetOptionsChain fetches the options chain for an underlying, optionally
// filtered to one expiry.
func (c *Client) GetOptionsChain(ctx context.Context, symbol, expiry string) (*OptionsChainResponse, error) {
	endpoint := "/options/chain/" + url.PathEscape(symbol)
	if expiry != "" {
		endpoint += "?expiry=" + url.QueryEscape(expiry)
	}

	var result OptionsChainResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to get options chain: %w", err)
	}
	return &result, nil
}

// GetGreeks fetches the backend-computed greeks for one contract.
func (c *Client) GetGreeks(ctx context.Context, contractSymbol string) (*Greeks, error) {
	var result Greeks
	if err := c.get(ctx, "/options/greeks/"+url.PathEscape(contractSymbol), &result); err != nil {
		return nil, fmt.Errorf("failed to get greeks: %w", err)
	}
	return &result, nil
}

// GetPortfolioSummary fetches current positions and cash.
func (c *Client) GetPortfolioSummary(ctx context.Context) (*PortfolioSummary, error) {
	var result PortfolioSummary
	if err := c.get(ctx, "/portfolio/summary", &result); err != nil {
		return nil, fmt.Errorf("failed to get portfolio summary: %w", err)
	}
	return &result, nil
}

// GetPerformanceHistory fetches the portfolio value series for the last n days.
func (c *Client) GetPerformanceHistory(ctx context.Context, days int) ([]PerformancePoint, error) {
	var result PerformanceHistoryResponse
	endpoint := fmt.Sprintf("/portfolio/performance?days=%d", days)
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to get performance history: %w", err)
	}
	return result.History, nil
}

// GetSocialFeed fetches a page of the social trading feed.
func (c *Client) GetSocialFeed(ctx context.Context, limit, offset int) (*SocialFeedResponse, error) {
	var result SocialFeedResponse
	endpoint := fmt.Sprintf("/social/feed?limit=%d&offset=%d", limit, offset)
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to get social feed: %w", err)
	}
	return &result, nil
}

// GetQuote gets current quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var result Quote
	if err := c.get(ctx, "/market/quotes/"+url.PathEscape(symbol), &result); err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &result, nil
}

// Health reports whether the backend is reachable.
func (c *Client) Health(ctx context.Context) bool {
	if err := c.get(ctx, "/health", nil); err != nil {
		c.log.Debug().Err(err).Msg("Backend health check failed")
		return false
	}
	return true
}
