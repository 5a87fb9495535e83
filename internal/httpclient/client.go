package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/camilorojas87/mixtaped/internal/constants"
)

// Client wraps an http.Client to provide rate limiting and automatic retries.
type Client struct {
	httpClient *http.Client

	minRequestInterval time.Duration
	lastRequest        time.Time
	mu                 sync.Mutex
}

// NewClient creates a new rate-limited, retrying HTTP client.
func NewClient(httpClient *http.Client, minRequestInterval time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	return &Client{
		httpClient:         httpClient,
		minRequestInterval: minRequestInterval,
	}
}

// Do executes an HTTP request with rate-limiting and retries. Retries are
// attempted on transport errors and on 429/503 responses, honoring a
// Retry-After header when present.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		if err := c.waitTurn(ctx); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode != http.StatusServiceUnavailable && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		backoff := time.Duration(attempt+1) * constants.DefaultRetryBase
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
			if retryAfter := parseRetryAfter(resp); retryAfter > backoff {
				backoff = retryAfter
			}
			_ = resp.Body.Close()
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// waitTurn claims the next request slot, sleeping when requests come faster
// than minRequestInterval.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	nextAllowed := c.lastRequest.Add(c.minRequestInterval)
	var wait time.Duration
	if now.Before(nextAllowed) {
		wait = nextAllowed.Sub(now)
		c.lastRequest = nextAllowed
	} else {
		c.lastRequest = now
	}
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
