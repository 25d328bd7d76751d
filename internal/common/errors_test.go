package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKind(t *testing.T) {
	err := NewError(ErrorUnauthorized, "invalid credentials")

	assert.True(t, errors.Is(err, ErrorUnauthorized))
	assert.False(t, errors.Is(err, ErrorConflict))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("login: %w", NewError(ErrorUnauthorized, "invalid credentials"))

	assert.True(t, errors.Is(err, ErrorUnauthorized))
	assert.Equal(t, "invalid credentials", Message(err, "fallback"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("db down"), "internal error"))
}
