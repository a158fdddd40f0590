// Package rest is the HTTP transport between the entity containers and the
// garage REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/braude/garage/pkg/types"
)

// Header names used on the wire.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderRequestID  = "X-Request-ID"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// Client sends requests to one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	header     http.Header
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout. It is applied to a copy of the HTTP
// client, so a shared client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithClock sets the time source for cache-buster values.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		header:     http.Header{},
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// response is a fully read HTTP response.
type response struct {
	method string
	url    string
	status int
	header http.Header
	body   []byte
}

// do sends one request and reads the whole response. Network failures and
// non-2xx statuses come back as *types.RequestFailed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	failed := &types.RequestFailed{Method: method, URL: fullURL}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			failed.Err = fmt.Errorf("encode body: %w", err)
			return nil, failed
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		failed.Err = fmt.Errorf("create request: %w", err)
		return nil, failed
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := req.Header.Get(HeaderRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
		req.Header.Set(HeaderRequestID, reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("url", fullURL).Str("request_id", reqID).Err(err).Msg("request failed")
		failed.Err = err
		return nil, failed
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	c.log.Debug().
		Str("method", method).
		Str("url", fullURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", reqID).
		Msg("request")
	if err != nil {
		failed.StatusCode = resp.StatusCode
		failed.Err = fmt.Errorf("read body: %w", err)
		return nil, failed
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failed.StatusCode = resp.StatusCode
		failed.Body = data
		return nil, failed
	}
	return &response{method: method, url: fullURL, status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// decode unmarshals a successful response body into v.
func (r *response) decode(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return &types.RequestFailed{
			Method:     r.method,
			URL:        r.url,
			StatusCode: r.status,
			Body:       r.body,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}
