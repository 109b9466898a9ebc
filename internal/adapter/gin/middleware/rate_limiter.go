package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter takes one token for a scope and client
type Limiter interface {
	Allow(ctx context.Context, scope, client string) (bool, error)
	RetryAfter() time.Duration
}

// RateLimiter returns a Gin middleware rejecting requests once the client's bucket is empty.
// Buckets are per method, route and client IP. Limiter errors let the request through.
func RateLimiter(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		scope := c.Request.Method + ":" + path
		clientIP := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), scope, clientIP)
		if err != nil {
			log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			retry := int(math.Ceil(limiter.RetryAfter().Seconds()))
			if retry < 1 {
				retry = 1
			}
			log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("scope", scope),
				zap.String("request_id", GetRequestID(c)),
			)
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Rate limit exceeded, retry later",
			})
			return
		}

		c.Next()
	}
}
