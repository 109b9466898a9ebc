package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxRequestIDLength defines the maximum accepted length for client supplied request IDs
	MaxRequestIDLength = 128
	// MaxIdempotencyKeyLength defines the maximum accepted length for idempotency keys
	MaxIdempotencyKeyLength = 128
)

// NormalizeRequestID trims a client supplied request ID and drops it when it could be
// used for header or log injection. An empty result means the caller should generate one.
func NormalizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	if strings.ContainsAny(id, "\r\n") {
		return ""
	}

	for _, char := range id {
		if !isPrintableASCII(char) {
			return ""
		}
	}

	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}

	return id
}

// ValidateIdempotencyKey validates a client supplied idempotency key.
func ValidateIdempotencyKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("idempotency key is empty")
	}

	if len(key) > MaxIdempotencyKeyLength {
		return "", errors.New("idempotency key too long")
	}

	for _, char := range key {
		if !isPrintableASCII(char) {
			return "", errors.New("idempotency key contains invalid characters")
		}
	}

	return key, nil
}

// isPrintableASCII reports whether char is a visible ASCII character or a space
func isPrintableASCII(char rune) bool {
	return char <= unicode.MaxASCII && unicode.IsPrint(char)
}
