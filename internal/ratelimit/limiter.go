package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound requests, typically per host, so neither the
// rendering proxy nor the target site sees request bursts.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow checks if a request for the given URL can proceed immediately
	// without blocking.
	Allow(urlStr string) bool
}

// DomainLimiter provides per-domain rate limiting using the token bucket algorithm.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a new rate limiter with the specified per-host rate
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 2
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed according to rate limits
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	domain := extractDomain(urlStr)
	if domain == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}

	return dl.getLimiter(domain).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	domain := extractDomain(urlStr)
	if domain == "" {
		return true
	}

	return dl.getLimiter(domain).Allow()
}

// getLimiter returns or creates a rate limiter for the given domain
func (dl *DomainLimiter) getLimiter(domain string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[domain]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := dl.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[domain] = limiter

	return limiter
}

// extractDomain extracts the domain from a URL string
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
