package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequestID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
		{
			name:     "simple id",
			input:    "req-123",
			expected: "req-123",
		},
		{
			name:     "trimmed",
			input:    "  req-123  ",
			expected: "req-123",
		},
		{
			name:     "header injection",
			input:    "req\r\nSet-Cookie: a=b",
			expected: "",
		},
		{
			name:     "non ascii",
			input:    "req-ü",
			expected: "",
		},
		{
			name:     "truncated",
			input:    strings.Repeat("a", MaxRequestIDLength+10),
			expected: strings.Repeat("a", MaxRequestIDLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRequestID(tt.input))
		})
	}
}

func TestValidateIdempotencyKey(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		expectError bool
		errorMsg    string
		expected    string
	}{
		{
			name:     "valid key",
			key:      "order-42",
			expected: "order-42",
		},
		{
			name:     "valid key with spaces trimmed",
			key:      "  order-42 ",
			expected: "order-42",
		},
		{
			name:        "empty key",
			key:         "",
			expectError: true,
			errorMsg:    "idempotency key is empty",
		},
		{
			name:        "too long",
			key:         strings.Repeat("k", MaxIdempotencyKeyLength+1),
			expectError: true,
			errorMsg:    "idempotency key too long",
		},
		{
			name:        "control characters",
			key:         "key\x00",
			expectError: true,
			errorMsg:    "idempotency key contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateIdempotencyKey(tt.key)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Empty(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
