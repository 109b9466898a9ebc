package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-openapi-service/internal/adapter/gin/handler"
	"user-openapi-service/internal/adapter/gin/middleware"
	"user-openapi-service/internal/openapi"
)

// Options configures the router
type Options struct {
	ServiceName string
	Docs        openapi.Info
	OpenAPI     string

	// Limiter enables rate limiting on the user routes when non-nil
	Limiter middleware.Limiter

	// Registry enables GET /metrics when non-nil
	Registry *prometheus.Registry
}

// BuildDocument assembles the OpenAPI document from the user routes
func BuildDocument(userHandler *handler.UserHandler, openapiVersion string, info openapi.Info) (*openapi.Document, error) {
	return buildDocument(userHandler.Routes(), userHandler, openapiVersion, info)
}

func buildDocument(routes []handler.Route, userHandler *handler.UserHandler, openapiVersion string, info openapi.Info) (*openapi.Document, error) {
	b := openapi.NewBuilder(openapiVersion, info)
	for name, schema := range userHandler.Schemas() {
		b.AddSchema(name, schema)
	}

	for _, r := range routes {
		if err := b.AddRoute(r.Spec); err != nil {
			return nil, fmt.Errorf("failed to document route: %w", err)
		}
	}
	return b.Build(), nil
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// The user routes are registered from the same declarations that make up GET /doc.
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	if opts.Registry != nil {
		router.Use(middleware.NewMetrics(opts.Registry).Middleware())
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	routes := userHandler.Routes()
	doc, err := buildDocument(routes, userHandler, opts.OpenAPI, opts.Docs)
	if err != nil {
		return nil, err
	}

	docsHandler, err := handler.NewDocsHandler(doc)
	if err != nil {
		return nil, err
	}
	docsHandler.Register(router)

	users := router.Group("")
	if opts.Limiter != nil {
		users.Use(middleware.RateLimiter(opts.Limiter, log))
	}
	for _, r := range routes {
		users.Handle(r.Spec.Method, r.Spec.GinPath(), r.Handler)
	}

	return router, nil
}
