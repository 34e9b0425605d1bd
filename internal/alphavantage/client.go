package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Alphavantage is a Stock and ETF API that fetches listings, company
// overviews and ETF constituents.
// https://www.alphavantage.co/documentation/
const defaultBaseURL = "https://www.alphavantage.co/query"

// DefaultRequestsPerMinute matches the entry premium plan
const DefaultRequestsPerMinute = 75

// ErrNoData is returned when the API answers with an empty document,
// which it does for unknown symbols.
var ErrNoData = errors.New("no data returned")

// ErrThrottled is returned when the API answers 200 with a quota notice
// instead of data.
var ErrThrottled = errors.New("request throttled by AlphaVantage")

// apiNotice is the JSON document AlphaVantage sends in place of data when a
// call is rejected.
type apiNotice struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// Client is an HTTP client for the AlphaVantage API.
// Requests share one rate limiter, so concurrent callers stay within quota.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithRateLimit caps the client at requestsPerMinute, allowing bursts of
// the same size. Zero or less disables the limit.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(requestsPerMinute)
	}
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
}

// NewClient creates a new AlphaVantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, opts...)
}

// NewClientWithBaseURL creates a new AlphaVantage client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: newLimiter(DefaultRequestsPerMinute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCompanyOverview fetches the reference record of one symbol
func (c *Client) GetCompanyOverview(ctx context.Context, symbol string) (*CompanyOverview, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var overview CompanyOverview
	if err := json.Unmarshal(body, &overview); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if overview.Symbol == "" && overview.Name == "" {
		return nil, fmt.Errorf("overview %s: %w", symbol, ErrNoData)
	}

	return &overview, nil
}

// GetETFHoldings fetches the holdings of an ETF
func (c *Client) GetETFHoldings(ctx context.Context, symbol string) ([]ParsedETFHolding, error) {
	params := url.Values{}
	params.Set("function", "ETF_PROFILE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var etfResp ETFProfileResponse
	if err := json.Unmarshal(body, &etfResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(etfResp.Holdings) == 0 {
		return nil, fmt.Errorf("etf profile %s: %w", symbol, ErrNoData)
	}

	holdings := make([]ParsedETFHolding, 0, len(etfResp.Holdings))
	for _, h := range etfResp.Holdings {
		weight, _ := strconv.ParseFloat(h.Weight, 64)
		holdings = append(holdings, ParsedETFHolding{
			Symbol:     h.Symbol,
			Name:       h.Name,
			Percentage: weight,
		})
	}

	return holdings, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if err := checkNotice(body); err != nil {
		return nil, fmt.Errorf("%s: %w", params.Get("function"), err)
	}
	return body, nil
}

// checkNotice turns a rejection document into an error. CSV bodies and
// regular JSON documents pass through.
func checkNotice(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var notice apiNotice
	if err := json.Unmarshal(trimmed, &notice); err != nil {
		return nil
	}
	switch {
	case notice.ErrorMessage != "":
		return fmt.Errorf("api error: %s", notice.ErrorMessage)
	case notice.Note != "":
		return fmt.Errorf("%w: %s", ErrThrottled, notice.Note)
	case notice.Information != "":
		return fmt.Errorf("%w: %s", ErrThrottled, notice.Information)
	}
	return nil
}
