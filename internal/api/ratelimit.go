// internal/api/ratelimit.go
package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a token bucket rate limiter with per-IP buckets.
type RateLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*bucket
	rate     float64 // tokens per second
	burst    int     // bucket capacity
	cleanup  time.Duration
	stopChan chan struct{}
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewRateLimiter creates a rate limiter allowing rate requests per second
// with bursts up to burst. A background goroutine drops idle buckets; call
// Stop to release it.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		burst:    burst,
		cleanup:  5 * time.Minute,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow reports whether a request from the given IP may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{
			tokens:     float64(rl.burst) - 1,
			lastUpdate: now,
		}
		return true
	}

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens += elapsed * rl.rate
	b.lastUpdate = now

	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.removeStale()
		case <-rl.stopChan:
			return
		}
	}
}

// removeStale drops buckets that have not been touched for a full cleanup
// interval, bounding memory under churning client IPs.
func (rl *RateLimiter) removeStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-rl.cleanup)
	for ip, b := range rl.buckets {
		if b.lastUpdate.Before(threshold) {
			delete(rl.buckets, ip)
		}
	}
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

// Stats returns current rate limiter statistics.
func (rl *RateLimiter) Stats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return map[string]interface{}{
		"active_clients": len(rl.buckets),
		"rate_per_sec":   rl.rate,
		"burst_size":     rl.burst,
	}
}

// getClientIP extracts the client IP from the request. Proxy headers
// (X-Forwarded-For, X-Real-IP) are trusted only when the direct peer is
// loopback; otherwise clients could spoof them to bypass per-IP limits.
func getClientIP(r *http.Request) string {
	remoteIPStr := strings.TrimSpace(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteIPStr)
	if remoteIP == nil {
		if host, _, err := net.SplitHostPort(remoteIPStr); err == nil {
			remoteIP = net.ParseIP(host)
		}
	}

	if remoteIP != nil && remoteIP.IsLoopback() {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			first := xff
			if idx := strings.IndexByte(xff, ','); idx >= 0 {
				first = xff[:idx]
			}
			first = strings.TrimSpace(first)
			if ip := net.ParseIP(first); ip != nil {
				return first
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			if ip := net.ParseIP(xri); ip != nil {
				return xri
			}
		}
	}

	if remoteIP != nil {
		return remoteIP.String()
	}
	if host, _, err := net.SplitHostPort(remoteIPStr); err == nil {
		return host
	}
	return remoteIPStr
}

// WithRateLimit applies per-IP rate limiting. A nil limiter passes every
// request through.
func WithRateLimit(rl *RateLimiter) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if rl == nil || r.Method == http.MethodOptions {
				next(w, r)
				return
			}

			ip := getClientIP(r)
			if !rl.Allow(ip) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next(w, r)
		}
	}
}
