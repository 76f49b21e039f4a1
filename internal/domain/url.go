package domain

import (
	"errors"
	"fmt"
	"time"
)

// URL represents one stored mapping between a long URL and its short code.
// Records are created once and never mutated or deleted.
type URL struct {
	OriginalURL string    `json:"original_url"` // Normalized long URL, unique across records
	ShortCode   int64     `json:"short_url"`    // Positive, unique, assigned 1, 2, 3, ...
	CreatedAt   time.Time `json:"created_at"`
}

// NewURL is a constructor function that creates a mapping for an already
// validated URL and an allocated short code.
func NewURL(originalURL string, shortCode int64) *URL {
	return &URL{
		OriginalURL: originalURL,
		ShortCode:   shortCode,
		CreatedAt:   time.Now(),
	}
}

// Domain errors - callers check for them with errors.Is
var (
	// ErrInvalidURL is the umbrella for every validation failure.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrMalformedURL means the input is not an absolute URL with a scheme and host.
	ErrMalformedURL = errors.New("malformed URL")

	// ErrUnresolvableHost means the host did not resolve (or resolution timed out).
	ErrUnresolvableHost = errors.New("unresolvable host")

	// ErrConflict is returned when a concurrent submission claimed the computed
	// short code and the single re-read did not find our URL.
	ErrConflict = errors.New("short code allocation conflict")

	// ErrMalformedCode means the short code is not an integer literal.
	ErrMalformedCode = errors.New("malformed short code")

	// ErrNotFound means no mapping exists for the given short code.
	ErrNotFound = errors.New("short URL not found")

	// ErrStoreFailure wraps unclassified storage or connectivity failures.
	ErrStoreFailure = errors.New("store failure")
)

// InvalidURLError carries the validation sub-reason for a rejected submission.
type InvalidURLError struct {
	Raw    string // Input as submitted
	Reason error  // ErrMalformedURL or ErrUnresolvableHost, possibly wrapped
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %v", e.Raw, e.Reason)
}

// Unwrap exposes the sub-reason so errors.Is(err, ErrUnresolvableHost) works.
func (e *InvalidURLError) Unwrap() error {
	return e.Reason
}

// Is makes every InvalidURLError match ErrInvalidURL.
func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidURL
}
