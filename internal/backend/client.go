// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/metrics"
)

// maxResponseBodySize limits how much of a backend response is read.
const maxResponseBodySize = 8 << 20 // 8MB

// DefaultTimeout applies when ClientConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ClientConfig configures a Client. Everything the client needs is passed
// here explicitly; there is no package-level state.
type ClientConfig struct {
	// Name identifies the service in logs, metrics and the breaker.
	Name    string
	BaseURL string
	Timeout time.Duration

	// TokenProvider may be nil for unauthenticated backends.
	TokenProvider TokenProvider

	// RateLimit of 0 disables client-side rate limiting.
	RateLimit rate.Limit
	RateBurst int

	Breaker config.CircuitBreakerConfig

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to one backend service.
//
// Every request passes through a token bucket and a circuit breaker, carries
// the bearer token and is bounded by the configured timeout.
//
// Thread Safety: Safe for concurrent use.
type Client struct {
	name       string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[interface{}]
}

// response is a completed HTTP exchange.
type response struct {
	status int
	body   []byte
}

// NewClient creates a Client for one backend service.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return &Client{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		tokens:     cfg.TokenProvider,
		limiter:    limiter,
		cb:         newCircuitBreaker(cfg.Name, cfg.Breaker),
	}
}

// Name returns the service name.
func (c *Client) Name() string {
	return c.name
}

// BreakerState returns the breaker state as closed, half-open or open.
func (c *Client) BreakerState() string {
	return stateToString(c.cb.State())
}

// Do performs one request and converts the outcome into a Result. It never
// returns a Go error.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body interface{}) Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed(0, nil, fmt.Errorf("rate limiter: %w", err))
		}
	}

	token, err := c.token(ctx)
	if err != nil {
		return failed(0, nil, err)
	}

	raw, err := c.execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, path, params, body, token)
	})

	if err != nil && isRejected(err) {
		return Result{
			OK:      false,
			Status:  http.StatusServiceUnavailable,
			Message: fmt.Sprintf("%s service unavailable: circuit breaker open", c.name),
		}
	}

	resp, ok := castResult[response](raw)
	if !ok {
		if err == nil {
			err = errors.New("no response")
		}
		return failed(0, nil, err)
	}

	if resp.status >= 200 && resp.status < 300 {
		return succeeded(resp.status, resp.body)
	}
	return failed(resp.status, resp.body, nil)
}

// roundTrip sends the request. It returns an error for transport failures
// and 5xx statuses, which are the only outcomes the breaker counts.
func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, body interface{}, token string) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, params, body, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(c.name, method, 0, time.Since(start))
		logging.Ctx(ctx).Debug().Err(err).Str("service", c.name).Str("method", method).Str("path", path).Msg("Backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	metrics.RecordBackendRequest(c.name, method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	out := &response{status: resp.StatusCode, body: data}
	if resp.StatusCode >= 500 {
		return out, &errServerStatus{status: resp.StatusCode}
	}
	return out, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get auth token: %w", err)
	}
	return token, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body interface{}, token string) (*http.Request, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
