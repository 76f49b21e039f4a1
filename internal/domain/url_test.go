package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewURL(t *testing.T) {
	u := NewURL("https://www.freecodecamp.org", 1)

	assert.Equal(t, "https://www.freecodecamp.org", u.OriginalURL)
	assert.Equal(t, int64(1), u.ShortCode)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestInvalidURLError(t *testing.T) {
	tests := []struct {
		name   string
		reason error
	}{
		{name: "malformed", reason: ErrMalformedURL},
		{name: "unresolvable", reason: fmt.Errorf("lookup example.invalid: %w", ErrUnresolvableHost)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error = &InvalidURLError{Raw: "x", Reason: tt.reason}
			wrapped := fmt.Errorf("shorten: %w", err)

			assert.True(t, errors.Is(wrapped, ErrInvalidURL))
			assert.True(t, errors.Is(wrapped, tt.reason))
			assert.False(t, errors.Is(wrapped, ErrConflict))

			var target *InvalidURLError
			assert.True(t, errors.As(wrapped, &target))
			assert.Equal(t, "x", target.Raw)
		})
	}
}
