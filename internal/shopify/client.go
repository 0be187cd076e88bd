// Package shopify is a small Shopify Admin REST client for order lookup.
package shopify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Aman-CERP/storekb/internal/config"
	"github.com/Aman-CERP/storekb/internal/errors"
)

const (
	// DefaultAPIVersion is the Admin API version used when none is configured.
	DefaultAPIVersion = "2024-01"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 20 * time.Second

	// DefaultOrderScanLimit is how many recent orders GetOrderByNumber scans.
	DefaultOrderScanLimit = 50

	// MaxPageSize is the Admin API's largest page.
	MaxPageSize = 250

	// bodyPreviewRunes caps the response body quoted in errors.
	bodyPreviewRunes = 400

	maxBodyBytes = 8 << 20

	headerAccessToken = "X-Shopify-Access-Token"
	headerCallLimit   = "X-Shopify-Shop-Api-Call-Limit"
	headerRetryAfter  = "Retry-After"
)

// Client talks to one store's Admin REST API.
type Client struct {
	storeName  string
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      errors.RetryConfig
	breaker    *errors.CircuitBreaker
	scanLimit  int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the https://<store>.myshopify.com/admin/api/<version>
// endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIVersion selects the Admin API version.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.baseURL = fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", c.storeName, v)
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles requests to rps with a burst of one.
// Zero or negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetry sets the retry policy. Only retryable errors are retried.
func WithRetry(cfg errors.RetryConfig) Option {
	return func(c *Client) {
		cfg.ShouldRetry = errors.IsRetryable
		c.retry = cfg
	}
}

// WithCircuitBreaker replaces the breaker guarding the API.
func WithCircuitBreaker(cb *errors.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithOrderScanLimit sets how many recent orders an order-number lookup scans.
func WithOrderScanLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.scanLimit = min(n, MaxPageSize)
		}
	}
}

// NewClient creates a client for storeName, which may be a bare handle, a
// myshopify.com host or a full URL.
func NewClient(storeName, accessToken string, opts ...Option) (*Client, error) {
	store := NormalizeStoreName(storeName)
	if store == "" || strings.TrimSpace(accessToken) == "" {
		return nil, errors.New(errors.ErrCodeCredentialsMissing, "Shopify store name and access token are required", nil).
			WithSuggestion("Set SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN, or shopify.store_name and shopify.access_token in the config")
	}

	c := &Client{
		storeName:  store,
		baseURL:    fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", store, DefaultAPIVersion),
		token:      strings.TrimSpace(accessToken),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		retry: errors.RetryConfig{
			MaxRetries:   1,
			InitialDelay: time.Second,
			MaxDelay:     4 * time.Second,
			Multiplier:   2,
			Jitter:       true,
			ShouldRetry:  errors.IsRetryable,
		},
		scanLimit: DefaultOrderScanLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = errors.NewCircuitBreaker("shopify",
			errors.WithMaxFailures(5),
			errors.WithResetTimeout(30*time.Second),
			errors.WithTripOn(tripsBreaker))
	}
	return c, nil
}

// NewClientFromConfig creates a client from the shopify config section.
func NewClientFromConfig(cfg config.ShopifyConfig) (*Client, error) {
	retry := errors.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	retry.MaxDelay = 4 * time.Second
	retry.Jitter = true

	return NewClient(cfg.StoreName, cfg.AccessToken,
		WithAPIVersion(cfg.APIVersion),
		WithTimeout(cfg.Timeout),
		WithRateLimit(cfg.RequestsPerSecond),
		WithRetry(retry),
		WithOrderScanLimit(cfg.OrderScanLimit))
}

// NormalizeStoreName reduces "my-store", "my-store.myshopify.com" and
// "https://my-store.myshopify.com/" to "my-store".
func NormalizeStoreName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSuffix(s, ".myshopify.com")
}

// StoreName returns the normalized store handle.
func (c *Client) StoreName() string { return c.storeName }

// BaseURL returns the API endpoint requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() errors.State { return c.breaker.State() }

// tripsBreaker counts only upstream health failures against the breaker.
func tripsBreaker(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeNetworkTimeout, errors.ErrCodeNetworkUnavailable,
		errors.ErrCodeUpstreamUnavailable, errors.ErrCodeUpstreamRateLimited:
		return true
	}
	return false
}

// getJSON issues GET path?params and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	start := time.Now()

	err := c.breaker.Execute(func() error {
		return errors.Retry(ctx, c.retry, func() error {
			return c.doOnce(ctx, path, params, out)
		})
	})
	if stderrors.Is(err, errors.ErrCircuitOpen) {
		err = errors.New(errors.ErrCodeUpstreamUnavailable, "Shopify API is temporarily unavailable", err).
			WithRetryable(false).
			WithSuggestion("Recent requests failed; try again in a minute")
	}

	if err != nil {
		attrs := append([]any{slog.String("path", path), slog.Duration("duration", time.Since(start))}, errors.LogAttrs(err)...)
		slog.Warn("shopify_request_failed", attrs...)
		return err
	}

	slog.Debug("shopify_request_complete",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (c *Client) doOnce(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.InternalError("failed to build Shopify request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAccessToken, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		code := errors.ErrCodeNetworkUnavailable
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			code = errors.ErrCodeNetworkTimeout
		}
		return errors.New(code, fmt.Sprintf("Shopify API GET %s failed (network/timeout)", path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.New(errors.ErrCodeNetworkUnavailable, fmt.Sprintf("Shopify API GET %s: reading body failed", path), err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(path, resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.New(errors.ErrCodeUpstreamBadResponse, "Shopify API returned invalid JSON", err).
			WithDetail("path", path)
	}
	return nil
}

// statusError describes a non-200 response.
func statusError(path string, resp *http.Response, body []byte) *errors.StoreError {
	var code string
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = errors.ErrCodeUpstreamAuth
	case resp.StatusCode == http.StatusNotFound:
		code = errors.ErrCodeOrderNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		code = errors.ErrCodeUpstreamRateLimited
	case resp.StatusCode >= 500:
		code = errors.ErrCodeUpstreamUnavailable
	default:
		code = errors.ErrCodeUpstreamStatus
	}

	limit := resp.Header.Get(headerCallLimit)
	retryAfter := resp.Header.Get(headerRetryAfter)
	preview := bodyPreview(body)

	var msg strings.Builder
	fmt.Fprintf(&msg, "Shopify API GET %s failed: HTTP %d", path, resp.StatusCode)
	if limit != "" {
		fmt.Fprintf(&msg, ", call-limit=%s", limit)
	}
	if retryAfter != "" {
		fmt.Fprintf(&msg, ", retry-after=%s", retryAfter)
	}
	if preview != "" {
		fmt.Fprintf(&msg, ", body=%s", preview)
	}

	err := errors.New(code, msg.String(), nil).
		WithDetail("status", strconv.Itoa(resp.StatusCode)).
		WithDetail("path", path)
	if limit != "" {
		err.WithDetail("call_limit", limit)
	}
	if retryAfter != "" {
		err.WithDetail("retry_after", retryAfter)
	}
	if code == errors.ErrCodeUpstreamAuth {
		err.WithSuggestion("Check the Admin API access token and its read_orders scope")
	}
	return err
}

// bodyPreview flattens whitespace and truncates to bodyPreviewRunes.
func bodyPreview(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	runes := []rune(s)
	if len(runes) > bodyPreviewRunes {
		return string(runes[:bodyPreviewRunes]) + "…"
	}
	return s
}
