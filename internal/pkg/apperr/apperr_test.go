package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	base := InvalidInput("USER_EXISTS", "User already exists")
	wrapped := fmt.Errorf("register: %w", base)

	assert.ErrorIs(t, wrapped, InvalidInput("USER_EXISTS", "different text"))
	assert.False(t, errors.Is(wrapped, InvalidInput("MISSING_EMAIL", "Missing email")))
	assert.Equal(t, KindInvalidInput, KindOf(wrapped))
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	cause := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(cause))

	e := As(cause)
	assert.Equal(t, "INTERNAL_ERROR", e.Code)
	assert.ErrorIs(t, e, cause)
}
