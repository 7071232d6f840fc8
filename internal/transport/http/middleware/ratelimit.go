package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"outlethr/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per key. A bucket refills limit tokens
// per window; buckets idle for a full window are swept because they would be
// full again anyway.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	every     rate.Limit
	keyFn     RateLimitKeyFunc
	trusted   []netip.Prefix
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// WithTrustedProxies makes the limiter key on X-Forwarded-For, but only for
// connections arriving from one of prefixes.
func WithTrustedProxies(prefixes []netip.Prefix) RateLimitOption {
	return func(rl *rateLimiter) {
		rl.trusted = prefixes
	}
}

// RateLimit allows limit requests per key within each window.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ComputeRateLimit throttles payroll computations harder than reads. A full
// month recompute touches every input table.
func ComputeRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	byIP := newRateLimiter(max(baseLimit/4, 1), window, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isComputeRequest(r) && !byIP.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isComputeRequest(r *http.Request) bool {
	if r == nil || r.Method != http.MethodPost {
		return false
	}
	path := normalizedAPIPath(r.URL.Path)
	return path == "/payroll/compute" || path == "/payroll/runs"
}

func newRateLimiter(limit int, window time.Duration, opts ...RateLimitOption) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		clients: map[string]*clientLimiter{},
		now:     time.Now,
	}
	if limit > 0 && window > 0 {
		rl.every = rate.Every(window / time.Duration(limit))
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

func (rl *rateLimiter) clientKey(r *http.Request) string {
	if rl.keyFn != nil {
		if key := rl.keyFn(r); key != "" {
			return key
		}
	}
	remote := remoteHost(r)
	if len(rl.trusted) == 0 {
		return remote
	}
	addr, err := netip.ParseAddr(remote)
	if err != nil || !rl.isTrusted(addr.Unmap()) {
		return remote
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if value := strings.TrimSpace(parts[0]); value != "" {
			return value
		}
	}
	return remote
}

func (rl *rateLimiter) isTrusted(addr netip.Addr) bool {
	for _, prefix := range rl.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// bucket returns the limiter for key, sweeping idle buckets at most once per
// window. Callers hold rl.mu.
func (rl *rateLimiter) bucket(key string, now time.Time) *rate.Limiter {
	if now.Sub(rl.lastSweep) >= rl.window {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) >= rl.window {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 || rl.window <= 0 {
		return true
	}

	key := rl.clientKey(r)
	now := rl.now()

	rl.mu.Lock()
	limiter := rl.bucket(key, now)
	allowed := limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)
	rl.mu.Unlock()

	missing := float64(rl.limit) - tokens
	resetIn := durationSeconds(time.Duration(missing * float64(time.Second) / float64(rl.every)))

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(math.Floor(tokens)), 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if !allowed {
		// Seconds until the next single token.
		retryIn := durationSeconds(time.Duration((1 - tokens) * float64(time.Second) / float64(rl.every)))
		w.Header().Set("Retry-After", strconv.Itoa(max(retryIn, 1)))
		slog.Warn("rate limit exceeded",
			"key", key,
			"path", r.URL.Path,
			"method", r.Method,
			"limit", rl.limit,
			"windowSec", int(rl.window.Seconds()),
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	seconds := int(math.Ceil(d.Seconds()))
	if seconds <= 0 {
		return 1
	}
	return seconds
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(path), "/api/v1")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return strings.TrimSuffix(cleaned, "/")
}
