package repository

import (
	"context"
	"errors"
	"fmt"

	"urlshortener/internal/domain"
)

// URLRepository defines the mapping store.
//
// Both OriginalURL and ShortCode are unique. Implementations enforce the two
// constraints atomically inside Insert; that check is the only serialization
// point for short code assignment, no caller holds a lock around it.
type URLRepository interface {
	// FindByURL returns the mapping for an original URL or ErrNotFound
	FindByURL(ctx context.Context, originalURL string) (*domain.URL, error)

	// FindByCode returns the mapping for a short code or ErrNotFound
	FindByCode(ctx context.Context, shortCode int64) (*domain.URL, error)

	// Count returns the total number of stored mappings
	Count(ctx context.Context) (int64, error)

	// Insert stores a new mapping. It fails with an error matching ErrDuplicate
	// when either the URL or the code is already taken.
	Insert(ctx context.Context, originalURL string, shortCode int64) (*domain.URL, error)

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}

// Error kinds shared by every URLRepository implementation.
// Callers match them with errors.Is and never look at driver-specific errors.
var (
	ErrNotFound    = errors.New("[repository]: record not found")
	ErrDuplicate   = errors.New("[repository]: duplicate key")
	ErrUnavailable = errors.New("[repository]: store unavailable")
)

// Field names a unique column of the mapping store.
type Field string

const (
	FieldOriginalURL Field = "original_url"
	FieldShortCode   Field = "short_code"
)

// DuplicateError reports which uniqueness constraint an Insert violated.
type DuplicateError struct {
	Field Field
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s %q already exists", ErrDuplicate, e.Field, e.Value)
}

// Is makes every DuplicateError match ErrDuplicate.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
