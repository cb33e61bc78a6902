package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit allows each caller the configured number of requests per minute.
// Callers are told apart by SubjectKey, so it must run after Auth. Requests
// without a subject are keyed by client IP.
func (m *Middleware) RateLimit() gin.HandlerFunc {
	perMinute := m.config.RateLimit.PerMinute
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newLimiterStore(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	limit := strconv.Itoa(perMinute)

	return func(c *gin.Context) {
		key := c.GetString(SubjectKey)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		limiter := limiters.get(key)

		c.Header("X-RateLimit-Limit", limit)
		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too Many Attempts.",
			})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, int(limiter.Tokens()))))
		c.Next()
	}
}

// limiterStore holds one token bucket per caller.
type limiterStore struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newLimiterStore(limit rate.Limit, burst int) *limiterStore {
	return &limiterStore{
		limit:    limit,
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	return limiter
}
