package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sample struct {
	ID   string  `validate:"required,min=3"`
	Name *string `validate:"required"`
}

func TestFromValidator(t *testing.T) {
	v := validator.New()

	err := v.Struct(sample{ID: "ab"})
	require.Error(t, err)

	converted := FromValidator(err)
	var verrs *ValidationErrors
	require.ErrorAs(t, converted, &verrs)
	require.Len(t, verrs.Fields, 2)

	assert.Equal(t, "ID", verrs.Fields[0].Field)
	assert.Equal(t, "must be at least 3 characters", verrs.Fields[0].Message)
	assert.Equal(t, "Name", verrs.Fields[1].Field)
	assert.Equal(t, "is required", verrs.Fields[1].Message)
	assert.Contains(t, verrs.Error(), "ID must be at least 3 characters")
}

func TestFromValidator_PassesThroughOtherErrors(t *testing.T) {
	plain := fmt.Errorf("boom")
	assert.Same(t, plain, FromValidator(plain))
}

func TestHTTPStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("id", "too short"), http.StatusBadRequest},
		{"validation aggregate", &ValidationErrors{}, http.StatusBadRequest},
		{"already exists", NewAlreadyExistsError("idempotency key", ""), http.StatusConflict},
		{"internal", NewInternalError("failed", nil), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NewValidationError("", "bad")), http.StatusBadRequest},
		{"plain", fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusOf(tt.err))
		})
	}
}

func TestGRPCStatus(t *testing.T) {
	st, ok := status.FromError(NewValidationError("age", "is required"))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "validation failed: age - is required", st.Message())

	st, ok = status.FromError(NewAlreadyExistsError("user", ""))
	require.True(t, ok)
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.Equal(t, "user already exists", st.Message())
}

func TestToGRPC(t *testing.T) {
	assert.NoError(t, ToGRPC(nil))

	st, _ := status.FromError(ToGRPC(fmt.Errorf("create: %w", NewAlreadyExistsError("idempotency key", ""))))
	assert.Equal(t, codes.AlreadyExists, st.Code())

	st, _ = status.FromError(ToGRPC(fmt.Errorf("redis: connection refused")))
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("redis down")
	err := NewInternalError("cache failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cache failed: redis down", err.Error())
}
