// Package polygon provides a client for the Polygon.io REST API, covering
// the EOD and minute pricing tiers for non-Indian tickers.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/models"
)

const (
	DefaultBaseURL   = "https://api.polygon.io"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// referenceTicker is probed to determine the last completed trading day.
	referenceTicker = "SPY"
)

// Client implements the EODClient interface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Polygon client. apiKey may be empty, in which
// case HasCredentials reports false and callers skip this provider.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// APIError represents an API error.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polygon API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("endpoint", path).Msg("Polygon API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type aggsResponse struct {
	Ticker  string `json:"ticker"`
	Results []struct {
		Ticker    string  `json:"T"`
		Close     float64 `json:"c"`
		Timestamp int64   `json:"t"` // ms since epoch
	} `json:"results"`
}

// GetPreviousCloseDate probes the reference ticker's previous-close bar
// and returns the calendar day it belongs to.
func (c *Client) GetPreviousCloseDate(ctx context.Context) (time.Time, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/prev", referenceTicker)

	params := url.Values{}
	params.Set("adjusted", "true")

	var resp aggsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return time.Time{}, err
	}
	if len(resp.Results) == 0 {
		return time.Time{}, fmt.Errorf("no previous close bar for %s", referenceTicker)
	}

	ts := time.UnixMilli(resp.Results[0].Timestamp).UTC()
	return ts.Truncate(24 * time.Hour), nil
}

// GetGroupedDailyCloses bulk-fetches every ticker's close for one trading
// day into a single map.
func (c *Client) GetGroupedDailyCloses(ctx context.Context, day time.Time) (map[string]float64, error) {
	path := fmt.Sprintf("/v2/aggs/grouped/locale/us/market/stocks/%s", day.Format("2006-01-02"))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("include_otc", "false")

	var resp aggsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(resp.Results))
	for _, r := range resp.Results {
		prices[r.Ticker] = r.Close
	}

	c.logger.Debug().Str("day", day.Format("2006-01-02")).Int("tickers", len(prices)).Msg("Grouped daily closes fetched")

	return prices, nil
}

type snapshotResponse struct {
	Ticker struct {
		Ticker string `json:"ticker"`
		Min    struct {
			Close float64 `json:"c"`
		} `json:"min"`
		PrevDay struct {
			Close float64 `json:"c"`
		} `json:"prevDay"`
	} `json:"ticker"`
}

// GetSnapshot retrieves the delayed live snapshot for one ticker.
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.TickerSnapshot, error) {
	path := fmt.Sprintf("/v2/snapshot/locale/us/markets/stocks/tickers/%s", url.PathEscape(ticker))

	var resp snapshotResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	return &models.TickerSnapshot{
		Ticker:       ticker,
		MinuteClose:  resp.Ticker.Min.Close,
		PrevDayClose: resp.Ticker.PrevDay.Close,
	}, nil
}

type marketStatusResponse struct {
	Market string `json:"market"`
}

// IsMarketOpen reports the exchange market status. Without credentials or
// on any error the market is assumed open.
func (c *Client) IsMarketOpen(ctx context.Context) bool {
	if !c.HasCredentials() {
		return true
	}

	var resp marketStatusResponse
	if err := c.get(ctx, "/v1/marketstatus/now", nil, &resp); err != nil {
		return true
	}
	return resp.Market == "open"
}

// Ensure Client implements EODClient.
var _ interfaces.EODClient = (*Client)(nil)
