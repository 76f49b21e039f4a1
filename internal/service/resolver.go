package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"urlshortener/internal/domain"
	"urlshortener/internal/metrics"
	"urlshortener/internal/repository"
	"urlshortener/pkg/logger"

	"go.uber.org/zap"
)

var codePattern = regexp.MustCompile(`^[0-9]+$`)

// Resolve returns the original URL for a short code given as a path segment.
//
// Non-numeric input fails with domain.ErrMalformedCode before any store
// access. Unknown codes fail with domain.ErrNotFound.
func (s *URLService) Resolve(ctx context.Context, code string) (string, error) {
	if !codePattern.MatchString(code) {
		return "", domain.ErrMalformedCode
	}

	shortCode, err := strconv.ParseInt(code, 10, 64)
	if err != nil || shortCode < 1 {
		// Out of int64 range or zero: no record can carry this code
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, code)
	}

	cached, err := s.cache.GetURL(ctx, shortCode)
	if err != nil {
		s.logger.Warn("cache lookup failed", logger.RequestID(ctx), zap.Int64("short_code", shortCode), zap.Error(err))
	} else if cached != nil {
		metrics.RecordRedirect()
		return cached.OriginalURL, nil
	}

	url, err := s.urlRepo.FindByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %d", domain.ErrNotFound, shortCode)
		}
		return "", s.storeFailure(ctx, "find by code", err)
	}

	if err := s.cache.SetURL(ctx, url); err != nil {
		s.logger.Warn("failed to cache URL", logger.RequestID(ctx), zap.Int64("short_code", shortCode), zap.Error(err))
	}

	metrics.RecordRedirect()
	return url.OriginalURL, nil
}
