package user

import "time"

// Placeholder values returned for every user lookup.
const (
	PlaceholderName = "Ultra-man"
	PlaceholderAge  = 20
)

// User represents a user entity. Users are built per request and never stored.
type User struct {
	ID   string  `json:"id"`   // ID is the time-ordered identifier, or the requested one on lookup
	Name string  `json:"name"` // Name is the display name of the user
	Age  float64 `json:"age"`  // Age is any JSON number
}

// Placeholder returns the synthesized user for a lookup of id.
func Placeholder(id string) User {
	return User{
		ID:   id,
		Name: PlaceholderName,
		Age:  PlaceholderAge,
	}
}

// CreationEvent records that a user was created. It never carries the user's name or age.
type CreationEvent struct {
	UserID    string
	Transport string // http or grpc
	RequestID string
	CreatedAt time.Time
}
