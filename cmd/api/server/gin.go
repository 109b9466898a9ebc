package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-openapi-service/internal/adapter/gin/handler"
	ginrouter "user-openapi-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	opts ginrouter.Options,
	ginAddr string,
	l *zap.Logger,
) (*http.Server, error) {
	// Setup Gin router with all middleware, the user routes and their documentation
	router, err := ginrouter.SetupRouter(handler, opts, l)
	if err != nil {
		return nil, err
	}

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}
