package api

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hooplens/hooplens/internal/api/respond"
)

// --------------------------------------------------------------------------
// Request timing middleware
// --------------------------------------------------------------------------

// TimingMiddleware adds X-Process-Time header to all responses.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.2fms", float64(elapsed.Microseconds())/1000.0))
	})
}

// --------------------------------------------------------------------------
// Rate limiting middleware (per-client token buckets)
// --------------------------------------------------------------------------

// visitorLimiters hands out one token bucket per client IP. Buckets are
// kept for the process lifetime; the map is bounded by the distinct
// client population.
type visitorLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func (v *visitorLimiters) bucketFor(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.buckets[ip]
	if !ok {
		b = rate.NewLimiter(v.limit, v.burst)
		v.buckets[ip] = b
	}
	return b
}

// clientIP extracts the client address, tolerating a bare host without
// a port (RealIP middleware rewrites RemoteAddr that way).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware returns middleware that rate-limits by client IP,
// refilling requestsPerWindow tokens over each window with half a window's
// worth of burst headroom.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration) func(http.Handler) http.Handler {
	burst := requestsPerWindow / 2
	if burst < 1 {
		burst = 1
	}
	limiters := &visitorLimiters{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:   burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.bucketFor(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				respond.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
