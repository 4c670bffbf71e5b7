package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowday/api/internal/constants"
	"github.com/glowday/api/pkg/logger"
	"github.com/glowday/api/pkg/redis"
	"go.uber.org/zap"
)

type rateLimiter struct {
	tokens     map[string][]time.Time
	maxRequest int
	duration   time.Duration
	mu         sync.Mutex
}

func (rl *rateLimiter) cleanup(now time.Time) {
	for ip, tokens := range rl.tokens {
		var valid []time.Time
		for _, t := range tokens {
			if now.Sub(t) <= rl.duration {
				valid = append(valid, t)
			}
		}
		if len(valid) > 0 {
			rl.tokens[ip] = valid
		} else {
			delete(rl.tokens, ip)
		}
	}
}

func (rl *rateLimiter) take(ip string, now time.Time) (int, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)

	tokens := rl.tokens[ip]
	if len(tokens) >= rl.maxRequest {
		return len(tokens), false
	}
	rl.tokens[ip] = append(tokens, now)
	return len(tokens) + 1, true
}

// RateLimit throttles per client IP over a sliding window. When redis is
// available the counter lives there so the limit holds across instances;
// otherwise it falls back to in-process state.
func RateLimit(maxRequest int, duration time.Duration, rdb *redis.Client) gin.HandlerFunc {
	limiter := &rateLimiter{
		tokens:     make(map[string][]time.Time),
		maxRequest: maxRequest,
		duration:   duration,
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		var used int
		allowed := true

		if rdb.Enabled() {
			key := fmt.Sprintf("ratelimit:%s", ip)
			count, err := rdb.CountRequest(c.Request.Context(), key, duration)
			if err != nil {
				logger.GetLogger().Warn("Rate limit backend unavailable", zap.Error(err))
				used, allowed = limiter.take(ip, now)
			} else {
				used = int(count)
				allowed = count <= int64(maxRequest)
			}
		} else {
			used, allowed = limiter.take(ip, now)
		}

		if !allowed {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", maxRequest),
			)
			constants.RespondError(c, http.StatusTooManyRequests,
				http.StatusText(http.StatusTooManyRequests),
				[]string{"Rate limit exceeded"},
			)
			c.Abort()
			return
		}

		remaining := maxRequest - used
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(duration).Unix()))

		c.Next()
	}
}
