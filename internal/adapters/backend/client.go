// Package backend is the typed client for the gym REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"gymfront/internal/adapters/metrics"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

type tokenKey struct{}

// WithToken returns a context whose backend calls carry the bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token carried by ctx, if any.
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	LoginPath  string
	HTTPClient *http.Client
	Metrics    *metrics.Collector
	// Breaker overrides the default circuit breaker settings. Name is always "backend".
	Breaker *gobreaker.Settings
}

// Client performs JSON calls against the backend behind a circuit breaker.
type Client struct {
	baseURL   string
	loginPath string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Collector
}

// New creates a Client.
// PRE: opts.BaseURL is an absolute URL
// POST: Returns a client whose breaker opens after 3 consecutive server or transport failures
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/token/"
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		loginPath: loginPath,
		http:      hc,
		metrics:   opts.Metrics,
	}

	settings := gobreaker.Settings{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	if opts.Breaker != nil {
		settings = *opts.Breaker
	}
	settings.Name = "backend"
	settings.IsSuccessful = breakerSuccess
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("breaker_state_change", "name", name, "from", from.String(), "to", to.String())
		c.metrics.SetBreakerState(name, breakerGauge(to))
	}
	c.breaker = gobreaker.NewCircuitBreaker(settings)
	c.metrics.SetBreakerState(settings.Name, metrics.BreakerClosed)
	return c
}

// breakerSuccess decides which errors count against the backend's health.
// Client errors (4xx) and caller cancellations are the caller's problem, not the backend's.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind != KindTransport && apiErr.Status < 500
	}
	return false
}

func breakerGauge(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	}
	return metrics.BreakerClosed
}

// BreakerState reports the circuit breaker state ("closed", "open" or "half-open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Do performs one call. body is JSON-encoded when non-nil; out is decoded when non-nil.
// PRE: path starts with "/"
// POST: Any failure is an *APIError (or a decode error for a malformed success body)
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	var status int
	_, err := c.breaker.Execute(func() (interface{}, error) {
		s, err := c.roundTrip(ctx, method, path, query, body, out)
		status = s
		return nil, err
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = transportError(err)
	}
	c.metrics.ObserveBackend(method, path, outcome(status, err), time.Since(start))

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == KindTransport || apiErr.Status >= 500) {
			slog.Error("backend_call_failed", "method", method, "path", path, "status", status, "error", errorCause(apiErr))
		}
	}
	return err
}

func outcome(status int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status == 0:
		return "transport"
	}
	return "decode"
}

func errorCause(e *APIError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := TokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, transportError(err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, normalize(resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}
