package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"urlshortener/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupMockDB creates a sqlmock-backed repository
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, repository.URLRepository) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock, NewURLRepository(db, zap.NewNop())
}

var (
	selectByURL  = regexp.QuoteMeta(`SELECT short_code, original_url, created_at FROM short_urls WHERE original_url = $1`)
	selectByCode = regexp.QuoteMeta(`SELECT short_code, original_url, created_at FROM short_urls WHERE short_code = $1`)
	selectCount  = regexp.QuoteMeta(`SELECT COUNT(*) FROM short_urls`)
	insertURL    = `INSERT INTO short_urls`
)

// The repository formats queries over several lines; sqlmock's regexp
// matcher compares them with whitespace collapsed.

func TestFindByURL(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectByURL).
		WithArgs("https://www.freecodecamp.org").
		WillReturnRows(sqlmock.NewRows([]string{"short_code", "original_url", "created_at"}).
			AddRow(int64(1), "https://www.freecodecamp.org", createdAt))

	url, err := repo.FindByURL(context.Background(), "https://www.freecodecamp.org")

	require.NoError(t, err)
	assert.Equal(t, int64(1), url.ShortCode)
	assert.Equal(t, "https://www.freecodecamp.org", url.OriginalURL)
	assert.Equal(t, createdAt, url.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCode_NotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(selectByCode).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	url, err := repo.FindByCode(context.Background(), 99)

	assert.Nil(t, url)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCode_ConnectionFailure(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(selectByCode).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindByCode(context.Background(), 1)

	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(selectCount).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(41)))

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(41), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	createdAt := time.Now().UTC()

	mock.ExpectQuery(insertURL).
		WithArgs(int64(2), "https://www.freecodecamp.org/learn").
		WillReturnRows(sqlmock.NewRows([]string{"short_code", "original_url", "created_at"}).
			AddRow(int64(2), "https://www.freecodecamp.org/learn", createdAt))

	url, err := repo.Insert(context.Background(), "https://www.freecodecamp.org/learn", 2)

	require.NoError(t, err)
	assert.Equal(t, int64(2), url.ShortCode)
	assert.Equal(t, "https://www.freecodecamp.org/learn", url.OriginalURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		field      repository.Field
	}{
		{name: "Short code taken", constraint: constraintShortCode, field: repository.FieldShortCode},
		{name: "URL taken", constraint: constraintOriginalURL, field: repository.FieldOriginalURL},
		{name: "Unknown constraint", constraint: "something_else", field: repository.FieldOriginalURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, repo := setupMockDB(t)

			mock.ExpectQuery(insertURL).
				WithArgs(int64(1), "https://example.com").
				WillReturnError(&pgconn.PgError{
					Code:           pgerrcode.UniqueViolation,
					ConstraintName: tt.constraint,
				})

			_, err := repo.Insert(context.Background(), "https://example.com", 1)

			assert.ErrorIs(t, err, repository.ErrDuplicate)
			var dup *repository.DuplicateError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.field, dup.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsert_OtherPgError(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(insertURL).
		WithArgs(int64(1), "https://example.com").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation})

	_, err := repo.Insert(context.Background(), "https://example.com", 1)

	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.NotErrorIs(t, err, repository.ErrDuplicate)
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	repo := NewURLRepository(db, zap.NewNop())

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.ErrorIs(t, repo.Ping(context.Background()), repository.ErrUnavailable)
}

func TestMigrate(t *testing.T) {
	db, mock, _ := setupMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS short_urls`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
