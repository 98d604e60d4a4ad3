package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/critiquest/critiquest/internal/logger"
)

// ClientRateLimiter hands out one token bucket per client IP.
// Idle buckets expire so the map stays bounded.
type ClientRateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewClientRateLimiter creates a limiter allowing rps requests per second with the given burst
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](RateLimiterCacheSize, nil, RateLimiterIdleTTL),
	}
}

// Allow reports whether the client may proceed now
func (c *ClientRateLimiter) Allow(ip string) bool {
	return c.limiterFor(ip).Allow()
}

func (c *ClientRateLimiter) limiterFor(ip string) *rate.Limiter {
	if l, ok := c.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(c.limit, c.burst)
	// Concurrent first requests may race here; the loser's bucket is dropped, which only loosens the limit once
	c.limiters.Add(ip, l)
	return l
}

// RateLimitMiddleware rejects clients that exceed their token bucket. A non-positive rps disables it.
func RateLimitMiddleware(limiter *ClientRateLimiter, trustedProxies []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limiter.limit <= 0 {
			return next
		}
		retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(limiter.limit))))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ip := extractIP(r, trustedProxies)
			if !limiter.Allow(ip) {
				logger.FromContext(r.Context()).Warn(LogMsgRateLimited, "ip", ip, "path", r.URL.Path)
				w.Header().Set(HeaderRetryAfter, retryAfter)
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
