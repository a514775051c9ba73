// Package client talks to the DataMorph HTTP API: uploads with progress,
// login, signup, and the file and profile endpoints behind them.
//
// A Client is stateless apart from its configuration. It never stores
// tokens, caches responses or retries; each call is one round trip and
// returns either a complete value or a single error.
package client

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the local development API.
	DefaultBaseURL = "http://localhost:8000"
	// Version is reported in the User-Agent header.
	Version = "0.1.0"

	// RequestIDHeader carries a per-request id the server echoes back.
	RequestIDHeader = "X-Request-ID"
)

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	log       zerolog.Logger
	metrics   *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New returns a Client for the API at baseURL. An empty baseURL means
// DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: want http(s)://host", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		// No Timeout: callers bound calls through their context.
		http:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		userAgent: "datamorph-go/" + Version,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call is one request/response round trip.
type call struct {
	op     string
	method string
	path   string
	token  string

	body          io.Reader
	contentType   string
	contentLength int64

	fail failure
	// out receives the decoded 2xx body; nil discards it.
	out any
}

func jsonCall(op, method, path string, in any, fail failure, out any) (call, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return call{}, fmt.Errorf("encode %s request: %w", op, err)
	}
	return call{
		op:            op,
		method:        method,
		path:          path,
		body:          bytes.NewReader(b),
		contentType:   "application/json",
		contentLength: int64(len(b)),
		fail:          fail,
		out:           out,
	}, nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	rid := uuid.NewString()

	body := cl.body
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", cl.op, err)
	}
	if cl.body != nil {
		req.ContentLength = cl.contentLength
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, rid)
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.finish(cl, rid, 0, start, outcomeNetwork, err)
		return &NetworkError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.finish(cl, rid, resp.StatusCode, start, outcomeNetwork, err)
		return &NetworkError{Op: cl.op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw, cl.fail)
		apiErr.RequestID = resp.Header.Get(RequestIDHeader)
		if apiErr.RequestID == "" {
			apiErr.RequestID = rid
		}
		c.finish(cl, rid, resp.StatusCode, start, outcomeAPIError, apiErr)
		return apiErr
	}

	if cl.out != nil {
		err := json.Unmarshal(raw, cl.out)
		if err == nil && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			err = errNullBody
		}
		if err != nil {
			c.finish(cl, rid, resp.StatusCode, start, outcomeDecodeError, err)
			return &DecodeError{Op: cl.op, StatusCode: resp.StatusCode, Err: err}
		}
	}
	c.finish(cl, rid, resp.StatusCode, start, outcomeSuccess, nil)
	return nil
}

func (c *Client) finish(cl call, rid string, status int, start time.Time, outcome string, err error) {
	elapsed := time.Since(start)
	c.metrics.observe(cl.op, outcome, elapsed)

	ev := c.log.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("op", cl.op).
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", status).
		Str("outcome", outcome).
		Str("request_id", rid).
		Float64("latency_ms", float64(elapsed.Microseconds())/1000).
		Msg("api_call")
}
