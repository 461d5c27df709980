package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/horiachyir/sindipro-backend/internal/httpx"
)

const defaultMaxEntries = 10000

type windowCount struct {
	count      int
	windowEnds time.Time
}

// IPRateLimiter is a fixed-window limiter keyed by client IP.
type IPRateLimiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	maxEntries int
	entries    map[string]windowCount
	now        func() time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return NewIPRateLimiterWithMaxEntries(limit, window, defaultMaxEntries)
}

func NewIPRateLimiterWithMaxEntries(limit int, window time.Duration, maxEntries int) *IPRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &IPRateLimiter{
		limit:      limit,
		window:     window,
		maxEntries: maxEntries,
		entries:    map[string]windowCount{},
		now:        time.Now,
	}
}

func (rl *IPRateLimiter) Middleware(message string) func(http.Handler) http.Handler {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r.RemoteAddr)) {
				w.Header().Set("Retry-After", "60")
				httpx.WriteError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", message, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *IPRateLimiter) allow(ip string) bool {
	if ip == "" {
		ip = "unknown"
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[ip]
	if !ok && len(rl.entries) >= rl.maxEntries {
		rl.evictExpired(now)
		if len(rl.entries) >= rl.maxEntries {
			// Still full: drop an arbitrary entry so the map stays bounded.
			for key := range rl.entries {
				delete(rl.entries, key)
				break
			}
		}
	}
	if entry.windowEnds.Before(now) {
		entry = windowCount{windowEnds: now.Add(rl.window)}
	}
	entry.count++
	rl.entries[ip] = entry
	return entry.count <= rl.limit
}

func (rl *IPRateLimiter) evictExpired(now time.Time) {
	for key, entry := range rl.entries {
		if entry.windowEnds.Before(now) {
			delete(rl.entries, key)
		}
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
