package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-openapi-service/cmd/api/infrastructure"
	"user-openapi-service/internal/adapter/cache"
	"user-openapi-service/internal/adapter/db/audit"
	ginhandler "user-openapi-service/internal/adapter/gin/handler"
	grpcadapter "user-openapi-service/internal/adapter/grpc"
	"user-openapi-service/internal/adapter/grpc/middleware"
	"user-openapi-service/internal/config"
	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/usecase/user"
	redisclient "user-openapi-service/pkg/redis"
	"user-openapi-service/pkg/uid"
)

// Container holds all application dependencies.
// RedisClient, RateLimiter, DB, Recorder and Registry are nil when their feature is off.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Style       domain.FieldStyle
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Recorder    *audit.Recorder
	RateLimiter *middleware.RateLimiter
	Registry    *prometheus.Registry
	UserUC      user.Usecase
	GinHandler  *ginhandler.UserHandler
	GRPCService *grpcadapter.UserServiceServer
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	style, err := domain.ParseFieldStyle(cfg.App.FieldStyle)
	if err != nil {
		return nil, err
	}

	ids, err := uid.New(cfg.App.IDScheme)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: l,
		Style:  style,
	}

	var opts []user.Option

	c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	if c.RedisClient != nil {
		opts = append(opts, user.WithIdempotencyCache(cache.NewRedisIdempotencyCache(
			c.RedisClient.Client,
			time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second,
			l,
		)))

		if cfg.RateLimit.Enabled {
			c.RateLimiter = middleware.NewRateLimiter(
				c.RedisClient.Client,
				middleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
					Enabled:           true,
				},
				l,
			)
		}
	}

	c.DB, err = infrastructure.NewDatabase(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if c.DB != nil {
		c.Recorder = audit.NewRecorder(c.DB, l)

		migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := c.Recorder.Migrate(migrateCtx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to migrate audit database: %w", err)
		}
		opts = append(opts, user.WithCreationRecorder(c.Recorder))
	}

	if cfg.Metrics.Enabled {
		c.Registry = prometheus.NewRegistry()
		c.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c.UserUC = user.New(ids, l, opts...)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, style, l)
	c.GRPCService = grpcadapter.NewUserServiceServer(c.UserUC, style, l)

	l.Info("container initialized",
		zap.String("field_style", string(style)),
		zap.String("id_scheme", cfg.App.IDScheme),
		zap.Bool("idempotency", c.RedisClient != nil),
		zap.Bool("rate_limit", c.RateLimiter != nil),
		zap.String("audit_driver", cfg.DB.Driver),
		zap.Bool("metrics", c.Registry != nil),
	)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
