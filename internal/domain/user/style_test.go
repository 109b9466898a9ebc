package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldStyle(t *testing.T) {
	s, err := ParseFieldStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleShort, s)

	s, err = ParseFieldStyle(" LONG ")
	require.NoError(t, err)
	assert.Equal(t, StyleLong, s)

	_, err = ParseFieldStyle("camel")
	assert.Error(t, err)
}

func TestFieldStyle_Names(t *testing.T) {
	assert.Equal(t, FieldNames{ID: "id", Name: "name", Age: "age"}, StyleShort.Names())
	assert.Equal(t, FieldNames{ID: "userId", Name: "fullName", Age: "age"}, StyleLong.Names())
}

func TestPlaceholder(t *testing.T) {
	u := Placeholder("42x")
	assert.Equal(t, User{ID: "42x", Name: "Ultra-man", Age: 20}, u)
}
