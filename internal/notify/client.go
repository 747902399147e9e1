package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientConfig tunes the HTTP client used by outbound sinks
type ClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is the sustained requests per second; zero means unlimited
	RateLimit float64
	// BreakerThreshold consecutive failed deliveries open the breaker; zero disables it
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultClientConfig suits one race result every few minutes
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          10 * time.Second,
		MaxRetries:       3,
		RetryWaitMin:     100 * time.Millisecond,
		RetryWaitMax:     2 * time.Second,
		RateLimit:        5,
		BreakerThreshold: 5,
		BreakerCooldown:  time.Minute,
	}
}

// Client posts race events with retries, a rate limit and a circuit breaker
type Client struct {
	http    *retryablehttp.Client
	limiter *rate.Limiter
	breaker *breaker
	logger  *logrus.Entry
}

// NewClient builds a client from cfg
func NewClient(cfg ClientConfig, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.CheckRetry = retryTransient
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		http:    rc,
		limiter: rate.NewLimiter(limit, 1),
		breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		logger:  log.WithField("component", "notify"),
	}
}

// Post sends body to url. A 5xx after retries counts against the breaker.
func (c *Client) Post(ctx context.Context, url string, headers http.Header, body []byte) (*http.Response, error) {
	if err := c.breaker.allow(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	switch {
	case err != nil:
		c.failed(err)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.failed(fmt.Errorf("status %d from %s", resp.StatusCode, url))
	default:
		c.breaker.succeeded()
	}
	return resp, err
}

func (c *Client) failed(err error) {
	if c.breaker.failed(err) {
		c.logger.WithError(err).Warn("Circuit breaker opened")
	}
}

// Close releases idle connections
func (c *Client) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

// retryTransient retries network errors, 429 and 5xx gateway errors, never a cancelled request
func retryTransient(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
