package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// rateLimiter is a fixed-window per-IP counter held in memory.
type rateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// allow records one request from ip and reports whether it fits the budget,
// the requests left, and when the current window resets.
func (l *rateLimiter) allow(ip string) (bool, int, time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[ip]
	if !ok || now.Sub(entry.windowStart) >= l.window {
		entry = &rateLimitEntry{windowStart: now}
		l.entries[ip] = entry
	}
	entry.count++
	reset := entry.windowStart.Add(l.window)
	if entry.count > l.maxRequests {
		return false, 0, reset
	}
	return true, l.maxRequests - entry.count, reset
}

// sweep drops entries whose window ended at least one window ago.
func (l *rateLimiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window*2 {
			delete(l.entries, ip)
		}
	}
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within each window. Exceeding the limit yields 429 with Retry-After.
// Expired entries are swept once a minute until ctx is cancelled.
func RateLimit(ctx context.Context, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	l := &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()

	return l.middleware
}

func (l *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, remaining, reset := l.allow(c.RealIP())

		h := c.Response().Header()
		h.Set(HeaderRateLimitLimit, strconv.Itoa(l.maxRequests))
		h.Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
		if !ok {
			wait := int(reset.Sub(l.now()).Seconds() + 0.999)
			h.Set(echo.HeaderRetryAfter, strconv.Itoa(max(wait, 1)))
			return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		}
		return next(c)
	}
}
