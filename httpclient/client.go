// Package httpclient wraps http.Client with retry and exponential backoff.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"
)

// StatusError is returned for a non-2xx response that was not retried, or
// that still failed after the last attempt.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	HTTPClient *http.Client
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Headers    map[string]string
}

type Client struct {
	http       *http.Client
	maxRetries uint64
	baseDelay  time.Duration
	maxDelay   time.Duration
	headers    map[string]string
}

func New(opts Options) *Client {
	c := &Client{
		http:       opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		maxDelay:   opts.MaxDelay,
		headers:    opts.Headers,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if c.maxRetries == 0 {
		c.maxRetries = 3
	}
	if c.baseDelay <= 0 {
		c.baseDelay = 200 * time.Millisecond
	}
	if c.maxDelay <= 0 {
		c.maxDelay = 5 * time.Second
	}
	return c
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.baseDelay)
	b = retry.WithJitterPercent(10, b)
	b = retry.WithCappedDuration(c.maxDelay, b)
	return retry.WithMaxRetries(c.maxRetries, b)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Do sends the request built by newReq, retrying transport errors, 429 and
// 5xx responses. newReq is called once per attempt so bodies can be replayed.
// On success the caller owns the response body.
func (c *Client) Do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		req, err := newReq(ctx)
		if err != nil {
			return err
		}
		for k, v := range c.headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}

		r, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(err)
		}
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			resp = r
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		r.Body.Close()
		statusErr := &StatusError{StatusCode: r.StatusCode, Body: string(body)}
		if retryable(r.StatusCode) {
			return retry.RetryableError(statusErr)
		}
		return statusErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// PostJSON posts body as JSON and decodes a JSON response into out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
