package middleware

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/crypteax/crypteax-be/internal/http/respond"
)

// limiterIdleTTL is how long a client may stay silent before its bucket is dropped.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	lim  *rate.Limiter
	seen atomic.Int64
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than the TTL are swept when new clients arrive.
type RateLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows rps requests per second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		limit:     rate.Limit(rps),
		burst:     burst,
		idle:      limiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	cl, ok := rl.limiters[key]
	if ok {
		cl.seen.Store(now.UnixNano())
	}
	rl.mu.RUnlock()
	if ok {
		return cl.lim
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}
	if cl, ok := rl.limiters[key]; ok {
		cl.seen.Store(now.UnixNano())
		return cl.lim
	}
	cl = &clientLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)}
	cl.seen.Store(now.UnixNano())
	rl.limiters[key] = cl
	return cl.lim
}

// sweep drops buckets not seen within the idle TTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.idle).UnixNano()
	for key, cl := range rl.limiters {
		if cl.seen.Load() < cutoff {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects requests beyond the client's budget with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			respond.Error(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP expects RemoteAddr to have been rewritten by chi's RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
