// Package openproject implements a client for the OpenProject API v3.
//
// The client owns a single long-lived connection pool shared by all
// requests, normalizes failures into classified errors (see Kind), and
// keeps a small TTL cache in front of the near-static metadata
// endpoints (types, statuses, priorities). It performs no retries:
// retry policy belongs to callers, where idempotency is known.
package openproject

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Version identifies the client in the User-Agent header.
var Version = "dev"

const (
	apiRoot        = "/api/v3"
	defaultTimeout = 30 * time.Second
)

// Client is an OpenProject API v3 client. The zero value is not usable;
// construct with New. A Client is safe for concurrent use; Close it
// exactly once when done (Close is idempotent).
type Client struct {
	baseURL    string
	authHeader string
	userAgent  string
	log        zerolog.Logger

	sess *session
	meta *metadataCache
}

// Option configures a Client.
type Option func(*options)

type options struct {
	proxy    *url.URL
	timeout  time.Duration
	cacheTTL time.Duration
	log      zerolog.Logger
}

// WithProxy routes all requests through the given outbound proxy.
func WithProxy(proxy *url.URL) Option {
	return func(o *options) { o.proxy = proxy }
}

// WithTimeout overrides the fixed per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCacheTTL overrides the metadata cache freshness window
// (default 300s).
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) { o.cacheTTL = d }
}

// WithLogger sets the client logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New creates a client for the OpenProject instance at baseURL,
// authenticating with apiKey. The connection pool is initialized
// lazily on the first request; call Close on shutdown.
func New(baseURL, apiKey string, opts ...Option) *Client {
	o := options{
		timeout:  defaultTimeout,
		cacheTTL: defaultCacheTTL,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	// OpenProject uses Basic auth with the literal user "apikey".
	// Encoded once here; every request reuses the header value.
	credential := base64.StdEncoding.EncodeToString([]byte("apikey:" + apiKey))

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + credential,
		userAgent:  "opmcp/" + Version,
		log:        o.log,
		sess:       newSession(o.proxy, o.timeout),
		meta:       newMetadataCache(o.cacheTTL),
	}
	c.log.Info().Str("base_url", c.baseURL).Msg("OpenProject client initialized")
	return c
}

// Open eagerly initializes the connection pool. Optional: the first
// request opens the session on demand. Idempotent.
func (c *Client) Open() error {
	return c.sess.open()
}

// Close releases all pooled connections. Idempotent; any request
// issued afterwards fails with a SessionClosed error.
func (c *Client) Close() {
	c.sess.close()
}

// do issues one authenticated request and returns the decoded JSON
// body, or nil for bodyless successes (204). Non-2xx responses are
// classified (see errors.go); transport failures map to Connectivity.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	httpc, err := c.sess.client()
	if err != nil {
		return nil, err
	}

	u := c.baseURL + apiRoot + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("url", u).Msg("API request")

	resp, err := httpc.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", u).Msg("network error")
		return nil, connectivityError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectivityError(err)
	}

	c.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classify(resp.StatusCode, data)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// decodeInto decodes a raw response body into a typed record. Decoding
// happens once here, at the executor boundary; nothing downstream pokes
// at untyped JSON.
func decodeInto[T any](raw json.RawMessage) (*T, error) {
	var v T
	if raw == nil {
		return &v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &v, nil
}
