package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewResourceNotFoundError("session 42 not found"))

	assert.ErrorIs(t, err, ErrResourceNotFound)
	msg, ok := MessageOf(err)
	assert.True(t, ok)
	assert.Equal(t, "session 42 not found", msg)
}

func TestIsMatchesAnyOfList(t *testing.T) {
	err := fmt.Errorf("%w: slot busy", ErrUploadPending)

	assert.True(t, Is(err, ErrConflict, ErrUploadRejected, ErrUploadPending))
	assert.False(t, Is(err, ErrConflict, ErrUploadRejected))
}

func TestMessageOfPlainError(t *testing.T) {
	_, ok := MessageOf(ErrBadRequest)
	assert.False(t, ok)
}
