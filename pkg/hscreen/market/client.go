// Package market fetches statement series, profile fields and exchange rates
// from Yahoo Finance. Profile and chart data go through yf-go; the
// fundamentals-timeseries endpoint, which yf-go does not cover, is called
// directly.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://query2.finance.yahoo.com"
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 1
	// requests per second
	DefaultRateLimit = 5

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client is a Yahoo Finance client. It satisfies ratio.Provider.
type Client struct {
	yf         *yfgo.Client
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	limiter    *rate.Limiter
	backoff    time.Duration
	log        zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets the fundamentals-timeseries host, e.g. for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client shared with yf-go. A cookie jar is
// added if missing.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each individual request attempt.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many extra attempts follow a transient failure.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithBackoff sets the pause before a retry.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.backoff = d }
}

// WithLogger sets a logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		backoff: 500 * time.Millisecond,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	// Results are cached one level up, per ticker.
	c.yf = yfgo.NewClient(yfgo.WithHTTPClient(c.httpClient), yfgo.WithCacheDisabled())
	return c
}

// APIError is a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error { return e.Err }

// yfError is the error object embedded in Yahoo JSON envelopes.
type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yfError) notFound() bool {
	return e != nil && strings.EqualFold(e.Code, "Not Found")
}

func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// yf-go reports HTTP failures as text, e.g. "yahoo finance error: 503 Service Unavailable: ...".
var yfStatusRe = regexp.MustCompile(`^(?:yahoo finance error|getcrumb failed): (\d{3})\b`)

// yfErr turns a yf-go error into an *APIError when it carries a status code.
func yfErr(endpoint string, err error) error {
	m := yfStatusRe.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	status, _ := strconv.Atoi(m[1])
	return &APIError{StatusCode: status, Message: http.StatusText(status), Endpoint: endpoint, Err: err}
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return transient(apiErr.StatusCode)
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

// call runs fn under the rate limiter with a per-attempt timeout. Transport
// errors, 429 and 5xx are retried up to c.retries times.
func (c *Client) call(ctx context.Context, endpoint string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Debug().Str("endpoint", endpoint).Int("attempt", attempt).Err(lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		actx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := fn(actx)
		cancel()
		c.log.Debug().Str("endpoint", endpoint).Dur("took", time.Since(start)).Err(err).Msg("yahoo request")
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// getJSON GETs path on the base URL and decodes the body into dest.
// A 404 body is still decoded so callers can inspect the Yahoo error object.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	return c.call(ctx, path, func(ctx context.Context) error {
		status, body, err := c.get(ctx, path, params)
		if err != nil {
			return err
		}
		if status != http.StatusOK && status != http.StatusNotFound {
			return &APIError{StatusCode: status, Message: http.StatusText(status), Endpoint: path}
		}
		if err := json.Unmarshal(body, dest); err != nil {
			if status == http.StatusNotFound {
				return &APIError{StatusCode: status, Message: "not found", Endpoint: path}
			}
			return fmt.Errorf("parse JSON %s: %w", path, err)
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// errNotFound builds the provider-level not found error for a symbol.
func errNotFound(sym string, base error) error {
	return fmt.Errorf("%s: %w", sym, base)
}

func isNotFoundStatus(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
