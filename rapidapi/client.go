package rapidapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/afford-api/internal/afford"
)

const (
	ZillowHost = "zillow56.p.rapidapi.com"
	IncomeHost = "household-income-by-zip-code.p.rapidapi.com"
)

var (
	ErrDailyLimitExceeded = errors.New("rapidapi quota exceeded")
	ErrMissingKey         = errors.New("rapidapi key not configured")
)

// Client talks to the RapidAPI Zillow search and household income APIs with one key.
type Client struct {
	key        string
	listingURL string
	incomeURL  string
	http       *retryablehttp.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURLs points the client at other hosts (tests, proxies).
func WithBaseURLs(listingURL, incomeURL string) Option {
	return func(c *Client) { c.listingURL, c.incomeURL = listingURL, incomeURL }
}

func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRateLimit caps outgoing requests per second; rps <= 0 disables the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil
	// hand the final response back so status codes can be classified
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		key:        apiKey,
		listingURL: "https://" + ZillowHost,
		incomeURL:  "https://" + IncomeHost,
		http:       rc,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithKey returns a client using another key; transport and limiter are shared.
func (c *Client) WithKey(apiKey string) *Client {
	if apiKey == "" || apiKey == c.key {
		return c
	}
	cp := *c
	cp.key = apiKey
	return &cp
}

func (c *Client) get(ctx context.Context, host, u string) ([]byte, error) {
	if c.key == "" {
		return nil, ErrMissingKey
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", host)

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
		return nil, statusError(host, resp.StatusCode, body)
	}
	return ioReadAllLimit(resp.Body, 4<<20) // 4MB guard
}

func statusError(host string, status int, body map[string]any) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s status %d: %w", host, status, ErrDailyLimitExceeded)
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s status %d %v: %w", host, status, body, afford.ErrInvalidLocation)
	default:
		return fmt.Errorf("%s status %d: %v", host, status, body)
	}
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
