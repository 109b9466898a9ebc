package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64 // Refill rate of the bucket
	BurstCapacity     int     // Bucket size
	Enabled           bool
}

// tokenBucket refills the bucket stored at KEYS[1] and takes one token when available.
// ARGV: refill rate per second, capacity, now in milliseconds. Returns 1 when allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local tokens = capacity
local ts = now
local state = redis.call('HMGET', key, 'tokens', 'ts')
if state[1] and state[2] then
	tokens = tonumber(state[1])
	ts = tonumber(state[2])
end

local elapsed = math.max(0, now - ts) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'ts', tostring(now))
redis.call('PEXPIRE', key, math.ceil(capacity / rate * 1000) + 1000)
return allowed
`)

// RateLimiter implements a Redis-backed token bucket shared by the gRPC and HTTP transports.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether requests are being limited.
func (rl *RateLimiter) Enabled() bool {
	return rl.config.Enabled
}

// RetryAfter is the time needed to refill one token.
func (rl *RateLimiter) RetryAfter() time.Duration {
	if rl.config.RequestsPerSecond <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(float64(time.Second) / rl.config.RequestsPerSecond))
}

// Allow takes one token from the bucket of scope and client.
// Redis errors are returned together with allowed=true so callers fail open.
func (rl *RateLimiter) Allow(ctx context.Context, scope, client string) (bool, error) {
	if !rl.config.Enabled {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:tb:%s:%s", scope, client)
	allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
		rl.config.RequestsPerSecond, rl.config.BurstCapacity, rl.now().UnixMilli()).Int64()
	if err != nil {
		return true, err
	}
	return allowed == 1, nil
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		// Skip rate limiting if disabled
		if !rl.config.Enabled {
			return handler(ctx, req)
		}

		clientIP := rl.getClientIP(ctx)

		allowed, err := rl.Allow(ctx, info.FullMethod, clientIP)
		if err != nil {
			// On Redis error, allow request to proceed (fail open)
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if !allowed {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Float64("limit", rl.config.RequestsPerSecond),
				zap.Int("burst", rl.config.BurstCapacity),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded (limit: %g req/s, burst: %d)",
				rl.config.RequestsPerSecond, rl.config.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// getClientIP extracts the client IP address from the gRPC context.
func (rl *RateLimiter) getClientIP(ctx context.Context) string {
	// Proxies in front of the server forward the original address
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			// the first hop is the original client
			first, _, _ := strings.Cut(xff[0], ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 && xri[0] != "" {
			return strings.TrimSpace(xri[0])
		}
	}

	// Fallback to peer address
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
