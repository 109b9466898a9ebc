package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/usecase/user"
)

// CreateUserRequest represents the HTTP request body for creating a user.
// Pointers let "" and 0 through while a missing field fails "required".
type CreateUserRequest struct {
	Name *string  `json:"name" binding:"required"`
	Age  *float64 `json:"age" binding:"required"`
}

// GetUserURI holds the path parameter of GET /users/{id}
type GetUserURI struct {
	ID string `uri:"id" binding:"required,min=3"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Age  float64 `json:"age"`
}

// CreateUserLongRequest is CreateUserRequest in the long field style
type CreateUserLongRequest struct {
	FullName *string  `json:"fullName" binding:"required"`
	Age      *float64 `json:"age" binding:"required"`
}

// GetUserLongURI holds the path parameter of GET /users/{userId}
type GetUserLongURI struct {
	UserID string `uri:"userId" binding:"required,min=3"`
}

// UserLongResponse is UserResponse in the long field style
type UserLongResponse struct {
	UserID   string  `json:"userId"`
	FullName string  `json:"fullName"`
	Age      float64 `json:"age"`
}

// codec binds requests and renders responses for one field style
type codec interface {
	bindCreate(c *gin.Context) (user.CreateUserRequest, error)
	bindGet(c *gin.Context) (string, error)
	render(u *user.UserResponse) any
}

var errInvalidJSON = errors.New("request body is not valid JSON")

// bindJSONBody binds the whole request body. Trailing data after the first JSON value is rejected.
func bindJSONBody(c *gin.Context, obj any) error {
	data, err := c.GetRawData()
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return errInvalidJSON
	}
	return binding.JSON.BindBody(data, obj)
}

func codecFor(style domain.FieldStyle) codec {
	if style == domain.StyleLong {
		return longCodec{}
	}
	return shortCodec{}
}

type shortCodec struct{}

func (shortCodec) bindCreate(c *gin.Context) (user.CreateUserRequest, error) {
	var req CreateUserRequest
	if err := bindJSONBody(c, &req); err != nil {
		return user.CreateUserRequest{}, err
	}
	return user.CreateUserRequest{Name: req.Name, Age: req.Age}, nil
}

func (shortCodec) bindGet(c *gin.Context) (string, error) {
	var uri GetUserURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", err
	}
	return uri.ID, nil
}

func (shortCodec) render(u *user.UserResponse) any {
	return UserResponse{ID: u.ID, Name: u.Name, Age: u.Age}
}

type longCodec struct{}

func (longCodec) bindCreate(c *gin.Context) (user.CreateUserRequest, error) {
	var req CreateUserLongRequest
	if err := bindJSONBody(c, &req); err != nil {
		return user.CreateUserRequest{}, err
	}
	return user.CreateUserRequest{Name: req.FullName, Age: req.Age}, nil
}

func (longCodec) bindGet(c *gin.Context) (string, error) {
	var uri GetUserLongURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", err
	}
	return uri.UserID, nil
}

func (longCodec) render(u *user.UserResponse) any {
	return UserLongResponse{UserID: u.ID, FullName: u.Name, Age: u.Age}
}
