package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/scoutfeed/internal/constants"
)

// Client wraps an http.Client to provide rate limiting and automatic retries.
// Transient responses (429, 503) are retried with backoff; everything else is
// returned to the caller.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new rate-limited, retrying HTTP client.
func NewClient(httpClient *http.Client, rps float64, burst int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultConnectorTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	if rps <= 0 {
		rps = constants.DefaultConnectorRate
	}
	if burst <= 0 {
		burst = constants.DefaultConnectorBurst
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Do executes an HTTP request with rate-limiting and retries.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			req.Body = body
		}

		resp, err := c.httpClient.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
		} else if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)

			backoffWait := time.Duration(attempt+1) * constants.DefaultRetryBase
			if retryAfter > backoffWait {
				backoffWait = retryAfter
			}
			if !sleep(ctx, backoffWait) {
				return nil, ctx.Err()
			}
			continue
		} else {
			return resp, nil
		}

		if !sleep(ctx, time.Duration(attempt+1)*constants.DefaultRetryBase) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// GetUnderlyingClient returns the underlying *http.Client.
func (c *Client) GetUnderlyingClient() *http.Client {
	return c.httpClient
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
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
