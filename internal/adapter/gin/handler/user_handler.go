package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/usecase/user"
	"user-openapi-service/pkg/logger"
	"user-openapi-service/pkg/security"
)

// Headers used by the user routes
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc    user.Usecase
	style domain.FieldStyle
	codec codec
	log   *zap.Logger
}

// NewUserHandler creates a new UserHandler serving the given field style
func NewUserHandler(uc user.Usecase, style domain.FieldStyle, log *zap.Logger) *UserHandler {
	registerTagNames()

	return &UserHandler{
		uc:    uc,
		style: style,
		codec: codecFor(style),
		log:   log,
	}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	req, err := h.codec.bindCreate(c)
	if err != nil {
		log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindErrorResponse(err))
		return
	}
	req.Transport = user.TransportHTTP

	if raw := c.GetHeader(HeaderIdempotencyKey); raw != "" {
		key, err := security.ValidateIdempotencyKey(raw)
		if err != nil {
			log.Warn("Invalid idempotency key", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Details: []ErrorDetail{{Field: HeaderIdempotencyKey, Message: err.Error()}},
			})
			return
		}
		req.IdempotencyKey = key
	}

	resp, err := h.uc.CreateUser(ctx, req)
	if err != nil {
		log.Error("Gin CreateUser failed", zap.Error(err))
		handleError(c, err)
		return
	}

	if resp.Replayed {
		c.Header(HeaderReplayed, strconv.FormatBool(true))
	}
	c.JSON(http.StatusOK, h.codec.render(resp))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := h.codec.bindGet(c)
	if err != nil {
		logger.WithContext(ctx, h.log).Warn("Invalid user ID", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindErrorResponse(err))
		return
	}

	resp, err := h.uc.GetUser(ctx, user.GetUserRequest{ID: id})
	if err != nil {
		logger.WithContext(ctx, h.log).Error("Gin GetUser failed", zap.Error(err))
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.codec.render(resp))
}
