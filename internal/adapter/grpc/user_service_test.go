package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"user-openapi-service/internal/adapter/cache"
	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/usecase/user"
	"user-openapi-service/pkg/logger"
	"user-openapi-service/pkg/uid"
)

// startServer serves the user service over an in-memory listener and returns a client.
func startServer(t testing.TB, style domain.FieldStyle, opts ...user.Option) *UserServiceClient {
	t.Helper()
	log := zaptest.NewLogger(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logger.RequestIDInterceptor()))
	uc := user.New(uid.NewUUIDv7(), log, opts...)
	RegisterUserServiceServer(srv, NewUserServiceServer(uc, style, log))

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewUserServiceClient(conn)
}

func TestUserService_GetUser(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	var header metadata.MD
	out, err := client.GetUser(context.Background(), wrapperspb.String("42x"), grpc.Header(&header))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"id": "42x", "name": "Ultra-man", "age": float64(20)}, out.AsMap())
	assert.NotEmpty(t, header.Get("x-request-id"))
}

func TestUserService_GetUser_TooShort(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	_, err := client.GetUser(context.Background(), wrapperspb.String("4"))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "id must be at least 3 characters")
}

func TestUserService_CreateUser(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	in, err := structpb.NewStruct(map[string]any{"name": "Ada", "age": 37})
	require.NoError(t, err)

	out, err := client.CreateUser(context.Background(), in)
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, float64(37), got["age"])
	assert.NotEmpty(t, got["id"])
}

func TestUserService_CreateUser_LongStyle(t *testing.T) {
	client := startServer(t, domain.StyleLong)

	in, err := structpb.NewStruct(map[string]any{"fullName": "Ada", "age": 37.5})
	require.NoError(t, err)

	out, err := client.CreateUser(context.Background(), in)
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, "Ada", got["fullName"])
	assert.Equal(t, 37.5, got["age"])
	assert.NotEmpty(t, got["userId"])
	assert.NotContains(t, got, "id")
}

func TestUserService_CreateUser_Invalid(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	tests := []struct {
		name    string
		payload map[string]any
		message string
	}{
		{name: "missing fields", payload: map[string]any{}, message: "name is required"},
		{name: "missing age", payload: map[string]any{"name": "Ada"}, message: "age is required"},
		{name: "name not a string", payload: map[string]any{"name": 1, "age": 2}, message: "name must be a string"},
		{name: "age not a number", payload: map[string]any{"name": "Ada", "age": "old"}, message: "age must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(tt.payload)
			require.NoError(t, err)

			_, err = client.CreateUser(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Contains(t, status.Convert(err).Message(), tt.message)
		})
	}
}

func TestUserService_RequestIDPropagated(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "trace-me")
	var header metadata.MD
	_, err := client.GetUser(ctx, wrapperspb.String("123"), grpc.Header(&header))
	require.NoError(t, err)

	assert.Equal(t, []string{"trace-me"}, header.Get("x-request-id"))
}

func TestUserService_CreateUser_InvalidIdempotencyKey(t *testing.T) {
	client := startServer(t, domain.StyleShort)

	in, err := structpb.NewStruct(map[string]any{"name": "Ada", "age": 37})
	require.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), IdempotencyKeyMetadata, "   ")
	_, err = client.CreateUser(ctx, in)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func idempotencyCache(t *testing.T, log *zap.Logger) user.Option {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return user.WithIdempotencyCache(cache.NewRedisIdempotencyCache(client, time.Hour, log))
}

func TestUserService_CreateUser_ReplayedHeader(t *testing.T) {
	client := startServer(t, domain.StyleShort, idempotencyCache(t, zaptest.NewLogger(t)))

	in, err := structpb.NewStruct(map[string]any{"name": "Ada", "age": 37})
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), IdempotencyKeyMetadata, "abc")

	var header metadata.MD
	first, err := client.CreateUser(ctx, in, grpc.Header(&header))
	require.NoError(t, err)
	assert.Empty(t, header.Get(ReplayedMetadata))

	second, err := client.CreateUser(ctx, in, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, header.Get(ReplayedMetadata))
	assert.Equal(t, first.GetFields()["id"].GetStringValue(), second.GetFields()["id"].GetStringValue())
}

func TestUserService_CreateUser_ReplayedHeaderFailureLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)
	uc := user.New(uid.NewUUIDv7(), log, idempotencyCache(t, log))
	svc := NewUserServiceServer(uc, domain.StyleShort, log)

	in, err := structpb.NewStruct(map[string]any{"name": "Ada", "age": 37})
	require.NoError(t, err)

	// No server stream in ctx, so the header cannot be sent
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(IdempotencyKeyMetadata, "abc"))
	_, err = svc.CreateUser(ctx, in)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("failed to set replayed header").Len())

	out, err := svc.CreateUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.GetFields()["name"].GetStringValue())
	assert.Equal(t, 1, logs.FilterMessage("failed to set replayed header").Len())
}
