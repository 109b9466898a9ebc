// Package uid generates time-ordered unique identifiers.
//
// Two schemes are supported, both sortable by creation time:
//   - uuidv7: RFC 9562 UUID version 7 strings.
//   - ulid: 26-character Crockford base32 ULIDs.
package uid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Supported identifier schemes.
const (
	SchemeUUIDv7 = "uuidv7"
	SchemeULID   = "ulid"
)

// StringID generates unique string identifiers.
type StringID interface {
	// Generate generates a unique identifier as a string.
	Generate() string
}

// UUIDv7 generates UUID version 7 strings.
type UUIDv7 struct{}

// NewUUIDv7 returns a UUIDv7 generator.
func NewUUIDv7() *UUIDv7 {
	return &UUIDv7{}
}

// Generate returns a new UUIDv7 string.
func (u *UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ULID generates ULID strings with monotonic entropy.
type ULID struct{}

// NewULID returns a ULID generator.
func NewULID() *ULID {
	return &ULID{}
}

// Generate returns a new ULID string.
func (u *ULID) Generate() string {
	return ulid.Make().String()
}

// New returns the generator for scheme.
func New(scheme string) (StringID, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeUUIDv7:
		return NewUUIDv7(), nil
	case SchemeULID:
		return NewULID(), nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}
