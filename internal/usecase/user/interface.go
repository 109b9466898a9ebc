package user

import "context"

// Usecase defines the interface for user operations shared by the HTTP and gRPC transports.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*UserResponse, error)
}
