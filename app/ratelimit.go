// app/ratelimit.go
package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Limit struct {
	Name    string // key namespace, e.g. "api" or "auth"
	Max     int
	Window  time.Duration
	Message string
}

const (
	APILimitMessage  = "Too many requests from this IP, please try again after 15 minutes"
	AuthLimitMessage = "Too many login attempts from this IP, please try again after an hour"
)

// RateLimit counts requests per client IP in a fixed window stored in Redis.
// When Redis is unreachable the request is let through.
func RateLimit(rdb *redis.Client, l Limit, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "app:rl:" + l.Name + ":" + c.ClientIP()

		// SET NX PX opens the window with its TTL in the same transaction as INCR
		pipe := rdb.TxPipeline()
		pipe.SetNX(c, key, 0, l.Window)
		incr := pipe.Incr(c, key)
		ttl := pipe.PTTL(c, key)
		if _, err := pipe.Exec(c); err != nil {
			logger.Warn().Err(err).Str("limit", l.Name).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		left := ttl.Val()
		if left <= 0 {
			left = l.Window
		}

		n := int(incr.Val())
		remaining := l.Max - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int((left+time.Second-1)/time.Second)))

		if n > l.Max {
			Fail(c, http.StatusTooManyRequests, l.Message)
			return
		}
		c.Next()
	}
}
