package openproject

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Connection pool bounds. The client talks to a single host, so the
// per-host limit is the effective one; the total bound is a safety net
// should the base URL ever redirect elsewhere.
const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 30
	idleConnTimeout     = 90 * time.Second
	dnsCacheTTL         = 5 * time.Minute
)

// session owns the reusable HTTP connection pool and TLS context.
// It is created once per Client and shared by all in-flight requests;
// the pool itself serializes connection checkout.
type session struct {
	mu     sync.Mutex
	httpc  *http.Client
	opened bool
	closed bool

	proxy   *url.URL
	timeout time.Duration
}

func newSession(proxy *url.URL, timeout time.Duration) *session {
	return &session{proxy: proxy, timeout: timeout}
}

// open constructs the pool exactly once. Subsequent calls are no-ops.
// Opening a closed session fails with a SessionClosed error.
func (s *session) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSessionClosed()
	}
	if s.opened {
		return nil
	}

	dialer := newCachingDialer(dnsCacheTTL)

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		ExpectContinueTimeout: time.Second,
	}
	if s.proxy != nil {
		transport.Proxy = http.ProxyURL(s.proxy)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	s.httpc = &http.Client{
		Transport: transport,
		Timeout:   s.timeout,
	}
	s.opened = true
	return nil
}

// close releases all pooled connections. Idempotent, and safe even if
// the session was never opened.
func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.httpc != nil {
		s.httpc.CloseIdleConnections()
	}
}

// client returns the pooled HTTP client, opening the session lazily on
// first use.
func (s *session) client() (*http.Client, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errSessionClosed()
	}
	opened := s.opened
	s.mu.Unlock()

	if !opened {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSessionClosed()
	}
	return s.httpc, nil
}

// cachingDialer resolves hostnames through a small TTL'd cache so that
// a connection churn burst doesn't hammer the resolver. Entries are
// replaced wholesale on expiry.
type cachingDialer struct {
	dialer *net.Dialer
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]dnsEntry
}

type dnsEntry struct {
	addrs   []string
	expires time.Time
}

func newCachingDialer(ttl time.Duration) *cachingDialer {
	return &cachingDialer{
		dialer: &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second},
		ttl:    ttl,
		cache:  make(map[string]dnsEntry),
	}
}

func (d *cachingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return d.dialer.DialContext(ctx, network, address)
	}
	if net.ParseIP(host) != nil {
		return d.dialer.DialContext(ctx, network, address)
	}

	addrs, err := d.lookup(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		conn, err := d.dialer.DialContext(ctx, network, net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (d *cachingDialer) lookup(ctx context.Context, host string) ([]string, error) {
	d.mu.Lock()
	entry, ok := d.cache[host]
	d.mu.Unlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.addrs, nil
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cache[host] = dnsEntry{addrs: addrs, expires: time.Now().Add(d.ttl)}
	d.mu.Unlock()
	return addrs, nil
}
