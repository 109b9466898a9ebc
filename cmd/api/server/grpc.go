package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "user-openapi-service/internal/adapter/grpc"
	"user-openapi-service/internal/adapter/grpc/middleware"
	"user-openapi-service/pkg/logger"
)

// SetupGRPC creates the gRPC server with the user service and the standard health service.
// rateLimiter may be nil.
func SetupGRPC(svc grpcadapter.UserService, rateLimiter *middleware.RateLimiter, l *zap.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{logger.RequestIDInterceptor()}
	if rateLimiter != nil {
		interceptors = append(interceptors, rateLimiter.UnaryInterceptor())
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	grpcadapter.RegisterUserServiceServer(grpcServer, svc)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	l.Info("gRPC server configured",
		zap.String("service", grpcadapter.ServiceName),
		zap.Bool("rate_limit", rateLimiter != nil),
	)

	return grpcServer
}
