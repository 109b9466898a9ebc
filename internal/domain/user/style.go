package user

import (
	"fmt"
	"strings"
)

// FieldStyle selects the wire names used for the user fields.
type FieldStyle string

const (
	// StyleShort uses id, name and age.
	StyleShort FieldStyle = "short"
	// StyleLong uses userId, fullName and age.
	StyleLong FieldStyle = "long"
)

// FieldNames holds the wire names of the user fields for one style.
type FieldNames struct {
	ID   string
	Name string
	Age  string
}

// ParseFieldStyle parses a configured style name.
func ParseFieldStyle(s string) (FieldStyle, error) {
	switch FieldStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleShort:
		return StyleShort, nil
	case StyleLong:
		return StyleLong, nil
	default:
		return "", fmt.Errorf("unknown field style %q", s)
	}
}

// Names returns the wire names for s. Unknown styles fall back to StyleShort.
func (s FieldStyle) Names() FieldNames {
	if s == StyleLong {
		return FieldNames{ID: "userId", Name: "fullName", Age: "age"}
	}
	return FieldNames{ID: "id", Name: "name", Age: "age"}
}
