package service

import (
	"context"
	"errors"
	"fmt"

	"urlshortener/internal/domain"
	"urlshortener/internal/metrics"
	"urlshortener/internal/repository"
	"urlshortener/pkg/logger"

	"go.uber.org/zap"
)

// Shorten returns the mapping for rawURL, creating it if needed.
//
// Submitting a URL that is already stored returns the existing mapping and
// writes nothing. At most one record is created per call.
func (s *URLService) Shorten(ctx context.Context, rawURL string) (*domain.URL, error) {
	normalized, err := s.validator.Validate(ctx, rawURL)
	if err != nil {
		recordValidationFailure(err)
		s.logger.Debug("rejected URL", logger.RequestID(ctx), zap.String("url", rawURL), zap.Error(err))
		return nil, &domain.InvalidURLError{Raw: rawURL, Reason: err}
	}

	existing, err := s.urlRepo.FindByURL(ctx, normalized)
	if err == nil {
		metrics.RecordDedupHit()
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storeFailure(ctx, "find by url", err)
	}

	count, err := s.urlRepo.Count(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "count", err)
	}

	code := NextCode(count)
	created, err := s.urlRepo.Insert(ctx, normalized, code)
	if err == nil {
		metrics.RecordURLCreated()
		s.logger.Info("URL shortened",
			logger.RequestID(ctx),
			zap.String("original_url", created.OriginalURL),
			zap.Int64("short_code", created.ShortCode),
		)
		return created, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, s.storeFailure(ctx, "insert", err)
	}

	return s.recoverDuplicate(ctx, normalized, code, err)
}

// recoverDuplicate handles an Insert rejected by a uniqueness constraint.
// Another submission won the race, either for the same URL or for the same
// code. The URL is re-read exactly once; the winner is returned only if it is
// the same URL, otherwise the caller gets domain.ErrConflict.
func (s *URLService) recoverDuplicate(ctx context.Context, normalized string, code int64, insertErr error) (*domain.URL, error) {
	winner, err := s.urlRepo.FindByURL(ctx, normalized)
	switch {
	case err == nil && winner.OriginalURL == normalized:
		metrics.RecordInsertRace("recovered")
		return winner, nil
	case err == nil, errors.Is(err, repository.ErrNotFound):
		metrics.RecordInsertRace("conflict")
		s.logger.Warn("short code allocation conflict",
			logger.RequestID(ctx),
			zap.String("original_url", normalized),
			zap.Int64("short_code", code),
			zap.Error(insertErr),
		)
		return nil, fmt.Errorf("%w: code %d: %w", domain.ErrConflict, code, insertErr)
	default:
		return nil, s.storeFailure(ctx, "find by url after duplicate", err)
	}
}

func recordValidationFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrUnresolvableHost):
		metrics.RecordValidationFailure("unresolvable")
	default:
		metrics.RecordValidationFailure("malformed")
	}
}
