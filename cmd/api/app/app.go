package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"user-openapi-service/cmd/api/di"
	"user-openapi-service/cmd/api/server"
	"user-openapi-service/internal/config"
	"user-openapi-service/pkg/logger"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New creates a new application instance
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := InitLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	srv, err := server.New(container)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    srv,
		Container: container,
	}, nil
}

// Run serves until ctx is canceled or a server fails, then shuts down
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("panic recovered in application",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", getEnvironment()),
		zap.Bool("grpc_enabled", a.Config.App.GRPCEnabled),
	)

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()

		errChan <- a.Server.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errChan:
		if err != nil {
			_ = a.shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return a.shutdown()
	}
}

// shutdownStep is one resource released during shutdown, in order
type shutdownStep struct {
	name string
	run  func(ctx context.Context) error
}

// shutdown stops the servers, then releases the container and flushes the logger
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown", zap.Duration("timeout", timeout))

	var steps []shutdownStep
	if a.Server.Gin != nil {
		steps = append(steps, shutdownStep{"HTTP server", a.Server.Gin.Shutdown})
	}
	if a.Server.GRPC != nil {
		steps = append(steps, shutdownStep{"gRPC server", a.stopGRPC})
	}
	if a.Container != nil {
		steps = append(steps, shutdownStep{"container", func(context.Context) error { return a.Container.Close() }})
	}

	var errs []error
	for _, step := range steps {
		a.Logger.Info("shutting down", zap.String("component", step.name))
		if err := step.run(ctx); err != nil {
			a.Logger.Error("shutdown step failed", zap.String("component", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	a.Logger.Info("application shutdown complete")

	if err := a.Logger.Sync(); err != nil && !isStdSyncError(err) {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	return errors.Join(errs...)
}

// stopGRPC drains in-flight RPCs, forcing a stop once ctx expires
func (a *App) stopGRPC(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		a.Server.GRPC.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		a.Server.GRPC.Stop()
		return ctx.Err()
	}
}

// isStdSyncError reports the error zap returns when syncing a terminal
func isStdSyncError(err error) bool {
	msg := err.Error()
	return msg == "sync /dev/stdout: invalid argument" || msg == "sync /dev/stderr: invalid argument"
}

// LoadConfig loads configuration from CONFIG_PATH, the working directory by default
func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(getConfigPath())
}

// InitLogger builds the application logger from cfg
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      getEnvironment(),
	})
}

func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

func getEnvironment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
