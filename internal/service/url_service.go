package service

import (
	"context"
	"fmt"

	"urlshortener/internal/domain"
	"urlshortener/internal/repository"
	"urlshortener/pkg/logger"

	"go.uber.org/zap"
)

// Validator checks a submitted URL and returns its normalized form.
// Errors wrap domain.ErrMalformedURL or domain.ErrUnresolvableHost.
type Validator interface {
	Validate(ctx context.Context, candidate string) (string, error)
}

// Cache is an optional read-through cache for the redirect path.
// GetURL returns nil, nil on a miss.
type Cache interface {
	GetURL(ctx context.Context, shortCode int64) (*domain.URL, error)
	SetURL(ctx context.Context, url *domain.URL) error
}

// URLService orchestrates shortening and resolution on top of the mapping store.
// It keeps no mutable state of its own; concurrent calls only meet inside the
// repository.
type URLService struct {
	urlRepo   repository.URLRepository
	validator Validator
	cache     Cache
	logger    *zap.Logger
}

// NewURLService creates a new URL service. cache may be nil.
func NewURLService(urlRepo repository.URLRepository, validator Validator, cache Cache, logger *zap.Logger) *URLService {
	if cache == nil {
		cache = noopCache{}
	}
	return &URLService{
		urlRepo:   urlRepo,
		validator: validator,
		cache:     cache,
		logger:    logger.With(zap.String("module", "service/url")),
	}
}

// Ping reports whether the mapping store is reachable
func (s *URLService) Ping(ctx context.Context) error {
	return s.urlRepo.Ping(ctx)
}

// storeFailure logs an unclassified repository error and wraps it
func (s *URLService) storeFailure(ctx context.Context, operation string, err error) error {
	s.logger.Error("store operation failed",
		logger.RequestID(ctx),
		zap.String("operation", operation),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, operation, err)
}

type noopCache struct{}

func (noopCache) GetURL(context.Context, int64) (*domain.URL, error) { return nil, nil }
func (noopCache) SetURL(context.Context, *domain.URL) error          { return nil }
