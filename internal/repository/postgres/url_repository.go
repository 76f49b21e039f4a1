package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"urlshortener/internal/domain"
	"urlshortener/internal/metrics"
	"urlshortener/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Constraint names created by Migrate. Insert maps a unique violation back to
// the column through them.
const (
	constraintOriginalURL = "short_urls_original_url_key"
	constraintShortCode   = "short_urls_short_code_key"
)

const schema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		short_code   BIGINT      NOT NULL,
		original_url TEXT        NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT short_urls_short_code_key UNIQUE (short_code),
		CONSTRAINT short_urls_original_url_key UNIQUE (original_url),
		CONSTRAINT short_urls_short_code_positive CHECK (short_code > 0)
	)
`

// urlRepository is the PostgreSQL implementation of repository.URLRepository.
// The two UNIQUE constraints make Insert the serialization point for codes.
type urlRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewURLRepository creates a new PostgreSQL URL repository
func NewURLRepository(db *sql.DB, logger *zap.Logger) repository.URLRepository {
	return &urlRepository{
		db:     db,
		logger: logger.With(zap.String("module", "repository/postgres")),
	}
}

// FindByURL retrieves a mapping by its original URL
func (r *urlRepository) FindByURL(ctx context.Context, originalURL string) (*domain.URL, error) {
	query := `
		SELECT short_code, original_url, created_at
		FROM short_urls
		WHERE original_url = $1
	`

	defer observe("find_by_url", time.Now())

	url := &domain.URL{}
	err := r.db.QueryRowContext(ctx, query, originalURL).Scan(
		&url.ShortCode,
		&url.OriginalURL,
		&url.CreatedAt,
	)
	if err != nil {
		return nil, r.convertError("find_by_url", err)
	}

	return url, nil
}

// FindByCode retrieves a mapping by its short code
func (r *urlRepository) FindByCode(ctx context.Context, shortCode int64) (*domain.URL, error) {
	query := `
		SELECT short_code, original_url, created_at
		FROM short_urls
		WHERE short_code = $1
	`

	defer observe("find_by_code", time.Now())

	url := &domain.URL{}
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(
		&url.ShortCode,
		&url.OriginalURL,
		&url.CreatedAt,
	)
	if err != nil {
		return nil, r.convertError("find_by_code", err)
	}

	return url, nil
}

// Count returns the number of stored mappings
func (r *urlRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM short_urls`

	defer observe("count", time.Now())

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, r.convertError("count", err)
	}

	return count, nil
}

// Insert stores a new mapping. A unique violation on either column is
// reported as *repository.DuplicateError.
func (r *urlRepository) Insert(ctx context.Context, originalURL string, shortCode int64) (*domain.URL, error) {
	query := `
		INSERT INTO short_urls (short_code, original_url)
		VALUES ($1, $2)
		RETURNING short_code, original_url, created_at
	`

	defer observe("insert", time.Now())

	url := &domain.URL{}
	err := r.db.QueryRowContext(ctx, query, shortCode, originalURL).Scan(
		&url.ShortCode,
		&url.OriginalURL,
		&url.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case constraintShortCode:
				return nil, &repository.DuplicateError{Field: repository.FieldShortCode, Value: strconv.FormatInt(shortCode, 10)}
			case constraintOriginalURL:
				return nil, &repository.DuplicateError{Field: repository.FieldOriginalURL, Value: originalURL}
			default:
				r.logger.Warn("unique violation on unknown constraint", zap.String("constraint", pgErr.ConstraintName))
				return nil, &repository.DuplicateError{Field: repository.FieldOriginalURL, Value: originalURL}
			}
		}
		return nil, r.convertError("insert", err)
	}

	return url, nil
}

// Ping checks database connectivity
func (r *urlRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return nil
}

// convertError maps driver errors onto the repository error kinds
func (r *urlRepository) convertError(operation string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	metrics.RecordDatabaseError(operation)
	r.logger.Error("query failed", zap.String("operation", operation), zap.Error(err))

	return fmt.Errorf("%w: %s: %w", repository.ErrUnavailable, operation, err)
}

func observe(operation string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// InitDB initializes the pgx connection pool and exposes it as *sql.DB.
// The returned pool must be closed after the *sql.DB.
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, *sql.DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, stdlib.OpenDBFromPool(pool), nil
}

// Migrate creates the mapping table and its unique constraints if missing
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
