package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgerrors "user-openapi-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail describes one invalid field
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagNamesOnce sync.Once

// registerTagNames makes gin's validator report json and uri names instead of Go field names.
func registerTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "uri"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bindErrorResponse converts a binding failure into a 400 body.
func bindErrorResponse(err error) ErrorResponse {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &typeErr):
		detail := ErrorDetail{Field: typeErr.Field, Message: "must be " + jsonKind(typeErr.Type)}
		if detail.Field == "" {
			detail.Field = "body"
		}
		return ErrorResponse{
			Error:   "validation_error",
			Message: detail.Field + " " + detail.Message,
			Details: []ErrorDetail{detail},
		}
	case errors.Is(err, errInvalidJSON), errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be a valid JSON object",
		}
	}

	var verrs *pkgerrors.ValidationErrors
	if errors.As(pkgerrors.FromValidator(err), &verrs) {
		return validationResponse(verrs)
	}

	return ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	}
}

func validationResponse(verrs *pkgerrors.ValidationErrors) ErrorResponse {
	details := make([]ErrorDetail, 0, len(verrs.Fields))
	for _, f := range verrs.Fields {
		details = append(details, ErrorDetail{Field: f.Field, Message: f.Message})
	}
	return ErrorResponse{
		Error:   "validation_error",
		Message: verrs.Error(),
		Details: details,
	}
}

// jsonKind names the JSON type expected for t.
func jsonKind(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "valid"
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "valid"
	}
}

// handleError converts usecase errors to appropriate HTTP responses
func handleError(c *gin.Context, err error) {
	var (
		verrs  *pkgerrors.ValidationErrors
		verr   *pkgerrors.ValidationError
		exists *pkgerrors.AlreadyExistsError
	)

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, validationResponse(verrs))
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Details: []ErrorDetail{{Field: verr.Field, Message: verr.Message}},
		})
	case errors.As(err, &exists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_exists",
			Message: exists.Error(),
		})
	default:
		c.JSON(pkgerrors.HTTPStatusOf(err), ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
