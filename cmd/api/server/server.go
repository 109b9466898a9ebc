package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"user-openapi-service/cmd/api/di"
	ginrouter "user-openapi-service/internal/adapter/gin/router"
	"user-openapi-service/internal/openapi"
)

// Server struct holds all server dependencies.
// GRPC is nil unless GRPC_ENABLED is set.
type Server struct {
	Logger   *zap.Logger
	Gin      *http.Server
	GRPC     *grpc.Server
	httpAddr string
	grpcAddr string
}

// New builds the HTTP server and, when enabled, the gRPC server from the container
func New(c *di.Container) (*Server, error) {
	cfg := c.Config

	opts := ginrouter.Options{
		ServiceName: cfg.Logger.ServiceName,
		OpenAPI:     cfg.Docs.OpenAPIVersion,
		Docs: openapi.Info{
			Title:   cfg.Docs.Title,
			Version: cfg.Docs.Version,
		},
		Registry: c.Registry,
	}
	// Only assign a live limiter; a typed nil would pass the router's nil check
	if c.RateLimiter != nil {
		opts.Limiter = c.RateLimiter
	}

	s := &Server{
		Logger:   c.Logger,
		httpAddr: ":" + cfg.App.HTTPPort,
		grpcAddr: ":" + cfg.App.GRPCPort,
	}

	var err error
	s.Gin, err = SetupGinServer(c.GinHandler, opts, s.httpAddr, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up HTTP server: %w", err)
	}

	if cfg.App.GRPCEnabled {
		s.GRPC = SetupGRPC(c.GRPCService, c.RateLimiter, c.Logger)
	}

	return s, nil
}

// Start binds the listeners and serves until a server fails or is shut down.
// A graceful shutdown is not reported as an error.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig

	httpLis, err := lc.Listen(ctx, "tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpAddr, err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		grpcLis, err = lc.Listen(ctx, "tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.grpcAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// One server failing takes the other down; a canceled ctx is left to the graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			_ = s.Gin.Close()
			if s.GRPC != nil {
				s.GRPC.Stop()
			}
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("Server is running on http://localhost" + portOf(httpLis))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		g.Go(func() error {
			s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
			if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func portOf(lis net.Listener) string {
	if addr, ok := lis.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf(":%d", addr.Port)
	}
	return ""
}
