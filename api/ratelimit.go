/*
ratelimit.go - Per-client rate limiting for expensive endpoints

PURPOSE:
  A company payslip run reads and aggregates every employee of a company.
  The limiter keeps one token bucket per client address so a single client
  cannot keep the store busy with back-to-back runs.

LIMITS:
  requestsPerMinute tokens refill per minute, with a burst of the same size
  capped at DefaultBurstSize. Idle buckets are dropped after LimiterTTL.
*/
package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBurstSize caps the burst of a client bucket
	DefaultBurstSize = 5
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter keeps a token bucket per client key.
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	perMinute int
	rateLimit rate.Limit
	burstSize int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute per client and
// starts its cleanup goroutine. Call Stop to release it.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	burst := requestsPerMinute
	if burst > DefaultBurstSize {
		burst = DefaultBurstSize
	}
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		perMinute: requestsPerMinute,
		rateLimit: rate.Limit(float64(requestsPerMinute) / 60.0),
		burstSize: burst,
		stopCh:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether the client may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rateLimit, rl.burstSize)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// retryAfter estimates when the client's next token is available.
func (rl *RateLimiter) retryAfter() time.Duration {
	if rl.rateLimit <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / float64(rl.rateLimit))
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, entry := range rl.limiters {
				if now.Sub(entry.lastSeen) > LimiterTTL {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the limit with 429. Clients are keyed by
// their address, so it belongs after middleware.RealIP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))

		if !rl.Allow(key) {
			retry := int(rl.retryAfter().Seconds())
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))

			hlog.FromRequest(r).Warn().
				Str("client", key).
				Int("retry_after", retry).
				Msg("Rate limit exceeded")

			writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Please retry after %d seconds.", retry), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
