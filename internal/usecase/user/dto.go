package user

// Transports recorded on creation events.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// CreateUserRequest represents the request payload for creating a new user.
// Name and Age are pointers so that presence is checked, not value: "" and 0 are valid.
type CreateUserRequest struct {
	Name           *string  `json:"name" validate:"required"`
	Age            *float64 `json:"age" validate:"required"`
	IdempotencyKey string   `json:"idempotencyKey" validate:"omitempty,max=128,printascii"`
	Transport      string   `json:"-"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `json:"id" validate:"required,min=3"`
}

// UserResponse represents a user returned by the use case.
type UserResponse struct {
	ID   string
	Name string
	Age  float64

	// Replayed is set when the response was served from the idempotency cache.
	Replayed bool
}
