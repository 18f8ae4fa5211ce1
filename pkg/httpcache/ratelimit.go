package httpcache

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// DomainRateLimiter enforces a minimum delay between requests to the same host.
// It is safe for concurrent use from multiple goroutines.
type DomainRateLimiter struct {
	lastRequest sync.Map // map[string]time.Time
	mu          sync.Map // map[string]*sync.Mutex - per-host locks
	minDelay    time.Duration
}

// NewDomainRateLimiter creates a rate limiter that enforces minDelay between
// requests to the same host. A zero delay disables limiting.
func NewDomainRateLimiter(minDelay time.Duration) *DomainRateLimiter {
	return &DomainRateLimiter{minDelay: minDelay}
}

// Wait blocks until it's safe to make a request to the given URL's host, or
// until ctx is done.
func (r *DomainRateLimiter) Wait(ctx context.Context, rawURL string, logger *slog.Logger) error {
	if r.minDelay <= 0 {
		return ctx.Err()
	}
	domain := extractDomain(rawURL)
	if domain == "" {
		return ctx.Err()
	}

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < r.minDelay {
				wait := r.minDelay - elapsed
				if logger != nil {
					logger.DebugContext(ctx, "rate limit pause", "domain", domain, "wait", wait.Round(time.Millisecond))
				}
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
	return nil
}

// extractDomain returns the host portion of a URL, or empty string on error.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
