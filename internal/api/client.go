// Package api is the HTTP client for the HireHub REST service.
//
// Every authenticated call carries the current access token as a bearer
// credential. A 401 on an authenticated call gets one refresh-then-retry
// attempt; if that does not recover, the OnUnauthorized callbacks fire and
// the call returns ErrUnauthorized without decoding a body.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

// Credentials supplies the access token for authenticated calls
type Credentials interface {
	AccessToken() string
}

// Refresher exchanges the stored refresh token for a new token pair
type Refresher interface {
	RefreshToken(ctx context.Context) bool
}

// UnauthorizedEvent describes the call that was rejected. Token is the
// access token the final attempt carried.
type UnauthorizedEvent struct {
	Method string
	Path   string
	Token  string
}

// Client represents an HTTP client for the HireHub API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu             sync.RWMutex
	credentials    Credentials
	refresher      Refresher
	onUnauthorized []func(context.Context, UnauthorizedEvent)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "api_client").Logger()
	}
}

// New creates a new API client rooted at baseURL (e.g. http://localhost:5000/api)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetCredentials installs the access token source
func (c *Client) SetCredentials(credentials Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials = credentials
}

// SetRefresher installs the refresh-then-retry hook
func (c *Client) SetRefresher(refresher Refresher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresher = refresher
}

// OnUnauthorized registers fn to run whenever an authenticated call ends in
// 401. fn receives the context of the rejected call.
func (c *Client) OnUnauthorized(fn func(context.Context, UnauthorizedEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	credentials := c.credentials
	c.mu.RUnlock()

	if credentials == nil {
		return ""
	}
	return credentials.AccessToken()
}

// call describes a single API request
type call struct {
	method string
	path   string
	body   any
	// auth attaches the bearer token and enables the 401 interceptor
	auth bool
	// lifecycle calls (verify, logout) skip refresh-then-retry
	lifecycle bool
	headers   map[string]string
}

// do sends the call and decodes a 2xx body into out (which may be nil)
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	token := ""
	if cl.auth {
		token = c.accessToken()
	}

	resp, err := c.send(ctx, cl, payload, token)
	if err != nil {
		return err
	}

	if cl.auth && resp.StatusCode == http.StatusUnauthorized {
		discard(resp)

		if cl.lifecycle || !c.canRetry(ctx, token) {
			c.unauthorized(ctx, cl, token)
			return ErrUnauthorized
		}

		token = c.accessToken()
		resp, err = c.send(ctx, cl, payload, token)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			discard(resp)
			c.unauthorized(ctx, cl, token)
			return ErrUnauthorized
		}
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

// send performs one HTTP round trip
func (c *Client) send(ctx context.Context, cl call, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, ulid.Make().String())
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	for name, value := range cl.headers {
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", cl.method).
			Str("path", cl.path).
			Msg("API request failed")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("API request")

	return resp, nil
}

// canRetry decides whether a 401 can be retried. A token that changed while
// the request was in flight is retried as-is; otherwise the refresher runs once.
func (c *Client) canRetry(ctx context.Context, usedToken string) bool {
	if current := c.accessToken(); current != "" && current != usedToken {
		return true
	}

	c.mu.RLock()
	refresher := c.refresher
	c.mu.RUnlock()

	if refresher == nil {
		return false
	}

	if !refresher.RefreshToken(ctx) {
		return false
	}
	return c.accessToken() != ""
}

func (c *Client) unauthorized(ctx context.Context, cl call, token string) {
	c.logger.Warn().
		Str("method", cl.method).
		Str("path", cl.path).
		Msg("Authorization denied; invalidating session")

	c.mu.RLock()
	callbacks := append([]func(context.Context, UnauthorizedEvent){}, c.onUnauthorized...)
	c.mu.RUnlock()

	event := UnauthorizedEvent{Method: cl.method, Path: cl.path, Token: token}
	for _, fn := range callbacks {
		fn(ctx, event)
	}
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return newError(resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
