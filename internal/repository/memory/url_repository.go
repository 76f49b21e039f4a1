// Package memory provides an in-process mapping store.
// It is used when no database is configured and as the reference store in tests.
package memory

import (
	"context"
	"strconv"
	"sync"

	"urlshortener/internal/domain"
	"urlshortener/internal/repository"
)

type urlRepository struct {
	mu     sync.RWMutex
	byURL  map[string]*domain.URL
	byCode map[int64]*domain.URL
}

// NewURLRepository creates an empty in-memory mapping store.
func NewURLRepository() repository.URLRepository {
	return &urlRepository{
		byURL:  make(map[string]*domain.URL),
		byCode: make(map[int64]*domain.URL),
	}
}

func (r *urlRepository) FindByURL(ctx context.Context, originalURL string) (*domain.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.byURL[originalURL]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(url), nil
}

func (r *urlRepository) FindByCode(ctx context.Context, shortCode int64) (*domain.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.byCode[shortCode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(url), nil
}

func (r *urlRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byCode)), nil
}

// Insert checks both unique indexes and writes under a single lock.
func (r *urlRepository) Insert(ctx context.Context, originalURL string, shortCode int64) (*domain.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[originalURL]; ok {
		return nil, &repository.DuplicateError{Field: repository.FieldOriginalURL, Value: originalURL}
	}
	if _, ok := r.byCode[shortCode]; ok {
		return nil, &repository.DuplicateError{Field: repository.FieldShortCode, Value: strconv.FormatInt(shortCode, 10)}
	}

	url := domain.NewURL(originalURL, shortCode)
	r.byURL[originalURL] = url
	r.byCode[shortCode] = url

	return clone(url), nil
}

func (r *urlRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func clone(u *domain.URL) *domain.URL {
	c := *u
	return &c
}
