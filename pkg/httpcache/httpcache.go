// Package httpcache fetches career pages and turns them into documents.
//
// HTTP status codes are part of the result contract: callers probing for a
// profile inspect FetchError.StatusCode to tell "not found" from "unreachable".
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/owcareer/pkg/document"
	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// UserAgent is the browser User-Agent sent with every request.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

// maxBodySize bounds how much of a career page is read.
const maxBodySize = 8 << 20

// Fetcher fetches a URL and parses it into a document.
// Implementations return *FetchError for transport failures and non-200 statuses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*document.Document, error)
}

// FetchError is returned for transport failures (StatusCode 0) and for
// responses other than 200 OK.
type FetchError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transport reports whether the request never produced an HTTP response.
func (e *FetchError) Transport() bool { return e.StatusCode == 0 }

// StatusCode returns the HTTP status carried by err, 200 for a nil error,
// and 0 when err is not a *FetchError or is a transport failure.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsTransport reports whether err is a fetch that got no HTTP response at all.
func IsTransport(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transport()
}

// Cacher stores response bodies keyed by URL.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache is an in-process response cache. Nothing is persisted, so cached
// pages never outlive the process.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// NewMemory creates a Cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) (*Cache, error) {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte](), sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a cache key using SHA256 hash.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// Client is the HTTP-backed Fetcher.
type Client struct {
	httpClient *http.Client
	cache      Cacher
	limiter    *DomainRateLimiter
	logger     *slog.Logger
	retries    uint
}

// Option configures a Client.
type Option func(*config)

type config struct {
	httpClient *http.Client
	cache      Cacher
	logger     *slog.Logger
	timeout    time.Duration
	minDelay   time.Duration
	retries    uint
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithCache enables response caching. Only 200 responses are stored.
func WithCache(cache Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMinDelay enforces a minimum delay between requests to the same host.
func WithMinDelay(d time.Duration) Option {
	return func(c *config) { c.minDelay = d }
}

// WithRetries retries transient failures (transport errors, 429 and 5xx) up
// to n extra times. The default is no retries.
func WithRetries(n uint) Option {
	return func(c *config) { c.retries = n }
}

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := &config{logger: slog.Default(), timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		httpClient: hc,
		cache:      cfg.cache,
		limiter:    NewDomainRateLimiter(cfg.minDelay),
		logger:     cfg.logger,
		retries:    cfg.retries,
	}
}

// Fetch retrieves url and parses the body.
func (c *Client) Fetch(ctx context.Context, url string) (*document.Document, error) {
	body, err := c.fetchBody(ctx, url)
	if err != nil {
		return nil, err
	}
	return document.ParseBytes(body, url)
}

func (c *Client) fetchBody(ctx context.Context, url string) ([]byte, error) {
	if c.cache == nil {
		return c.doFetch(ctx, url)
	}

	var wasFetched bool
	body, err := c.cache.GetSet(ctx, URLToKey(url), func(ctx context.Context) ([]byte, error) {
		wasFetched = true
		c.logger.DebugContext(ctx, "cache miss", "url", url)
		return c.doFetch(ctx, url)
	}, c.cache.TTL())
	if !wasFetched && err == nil {
		c.logger.DebugContext(ctx, "cache hit", "url", url)
	}
	return body, err
}

func (c *Client) doFetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			b, err := c.once(ctx, url)
			lastErr = err
			return b, err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(250*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "retrying request", "attempt", n+1, "url", url, "error", err)
		}),
	)
	if err == nil {
		return body, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &FetchError{URL: url, Err: err}
}

func (c *Client) once(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, url, c.logger); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // intentional

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// isRetryable returns true for transient errors. A 404 is never retried:
// it is the signal probing depends on.
func isRetryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return true
	}
	if fe.Transport() {
		return !errors.Is(fe.Err, context.Canceled) && !errors.Is(fe.Err, context.DeadlineExceeded)
	}
	switch fe.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
