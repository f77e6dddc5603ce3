package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/observability"
)

// Default client configuration values.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 100
	MaxPages        = 100 // hard stop against runaway pagination
)

// providerActivityTypes maps provider labels to domain labels. Unknown
// labels pass through unchanged and are rejected downstream.
var providerActivityTypes = map[string]string{
	"ACTIVITY_TOKEN_SWAP":     domain.ActivityTypeSwap,
	"ACTIVITY_AGG_TOKEN_SWAP": domain.ActivityTypeAggSwap,
}

// Client fetches wallet swap activity from a Solscan-style HTTP API with
// page-based pagination.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	pageSize int
	exec     Executor
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = d }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithAPIKey sets the provider API token header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithPageSize sets how many records are requested per page.
func WithPageSize(n int) ClientOption {
	return func(c *Client) { c.pageSize = n }
}

// WithExecutor sets the resilience policy wrapping each page request.
func WithExecutor(e Executor) ClientOption {
	return func(c *Client) { c.exec = e }
}

// NewClient creates a provider client for the given API base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: DefaultTimeout},
		pageSize: DefaultPageSize,
		exec:     NewRetryExecutor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireActivity is one record as the provider serializes it.
type wireActivity struct {
	TransID      string      `json:"trans_id"`
	BlockTime    int64       `json:"block_time"`
	ActivityType string      `json:"activity_type"`
	Platform     string      `json:"platform"`
	Routers      *wireRouter `json:"routers"`
}

type wireRouter struct {
	Token1         string  `json:"token1"`
	Token1Decimals int     `json:"token1_decimals"`
	Amount1        float64 `json:"amount1"`
	Token2         string  `json:"token2"`
	Token2Decimals int     `json:"token2_decimals"`
	Amount2        float64 `json:"amount2"`
}

type wirePage struct {
	Success bool           `json:"success"`
	Data    []wireActivity `json:"data"`
}

// WalletActivities pages through the provider's activity feed for one
// wallet until a short page arrives. Records are returned in provider
// order.
func (c *Client) WalletActivities(ctx context.Context, wallet string) ([]domain.RawActivity, error) {
	var out []domain.RawActivity

	for page := 1; page <= MaxPages; page++ {
		records, err := c.fetchPage(ctx, wallet, page)
		if err != nil {
			return nil, fmt.Errorf("fetch activities page %d: %w", page, err)
		}
		for i := range records {
			out = append(out, toRawActivity(&records[i]))
		}
		if len(records) < c.pageSize {
			break
		}
	}

	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, wallet string, page int) ([]wireActivity, error) {
	q := url.Values{}
	q.Set("address", wallet)
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(c.pageSize))
	reqURL := c.baseURL + "/account/defi/activities?" + q.Encode()

	var records []wireActivity
	start := time.Now()
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return Permanent(fmt.Errorf("create request: %w", err))
		}
		if c.apiKey != "" {
			req.Header.Set("token", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("rate limited (429)")
		case resp.StatusCode >= 500:
			return fmt.Errorf("provider error %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
		}

		var parsed wirePage
		if err := json.Unmarshal(body, &parsed); err != nil {
			return Permanent(fmt.Errorf("unmarshal response: %w", err))
		}
		if !parsed.Success {
			return fmt.Errorf("provider reported failure")
		}
		records = parsed.Data
		return nil
	})
	observability.RecordFetch("activities", time.Since(start).Seconds(), err)
	return records, err
}

// toRawActivity converts a provider record. Token1 is what the wallet
// paid, token2 what it received.
func toRawActivity(w *wireActivity) domain.RawActivity {
	a := domain.RawActivity{
		Signature: w.TransID,
		Timestamp: w.BlockTime,
		Type:      w.ActivityType,
		Source:    w.Platform,
	}
	if mapped, ok := providerActivityTypes[w.ActivityType]; ok {
		a.Type = mapped
	}
	if w.Routers != nil {
		a.Swap = &domain.SwapInfo{
			MintIn:      w.Routers.Token1,
			AmountIn:    w.Routers.Amount1,
			DecimalsIn:  w.Routers.Token1Decimals,
			MintOut:     w.Routers.Token2,
			AmountOut:   w.Routers.Amount2,
			DecimalsOut: w.Routers.Token2Decimals,
		}
	}
	return a
}
