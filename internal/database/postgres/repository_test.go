package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/ivanmolchanov/shorturl/internal/database"
	"github.com/ivanmolchanov/shorturl/internal/models"
)

var (
	errUnknown      = errors.New("unknown error")
	errAffectedRows = errors.New("affected rows error")
)

var columns = []string{"id", "short_code", "original_url", "visit_count", "created_at"}

func setupURLRepository(t testing.TB) (*URLRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewURLRepository(db)

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return repo, mock
}

func TestURLRepository_Create(t *testing.T) {
	t.Run("insert error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnError(errUnknown)
		mock.ExpectRollback()

		url, err := repo.Create(context.TODO(), "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code update error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("1", int64(1)).
			WillReturnError(errUnknown)
		mock.ExpectRollback()

		url, err := repo.Create(context.TODO(), "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(columns).
			AddRow(int64(1), "1", "https://example.com", int64(0), time.Time{})

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("1", int64(1)).
			WillReturnRows(rows)
		mock.ExpectCommit()

		wantURL := models.URL{
			ID:          1,
			ShortCode:   "1",
			OriginalURL: "https://example.com",
		}

		url, err := repo.Create(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, wantURL, *url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code derived from assigned id", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		// Id 125 encodes to "21" in base62.
		rows := sqlmock.NewRows(columns).
			AddRow(int64(125), "21", "https://example.com", int64(0), time.Time{})

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(125)))
		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("21", int64(125)).
			WillReturnRows(rows)
		mock.ExpectCommit()

		url, err := repo.Create(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, "21", url.ShortCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_GetByShortCode(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WithArgs("zzzzzz").
			WillReturnError(sql.ErrNoRows)

		url, err := repo.GetByShortCode(context.TODO(), "zzzzzz")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WithArgs("1").
			WillReturnError(errUnknown)

		url, err := repo.GetByShortCode(context.TODO(), "1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(columns).
			AddRow(int64(1), "1", "https://example.com", int64(4), time.Time{})

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WithArgs("1").
			WillReturnRows(rows)

		wantURL := models.URL{
			ID:          1,
			ShortCode:   "1",
			OriginalURL: "https://example.com",
			VisitCount:  4,
		}

		url, err := repo.GetByShortCode(context.TODO(), "1")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, wantURL, *url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_IncrementVisits(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectExec(`UPDATE urls`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.IncrementVisits(context.TODO(), 42)

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectExec(`UPDATE urls`).
			WithArgs(int64(1)).
			WillReturnError(errUnknown)

		err := repo.IncrementVisits(context.TODO(), 1)

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("affected rows error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectExec(`UPDATE urls`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewErrorResult(errAffectedRows))

		err := repo.IncrementVisits(context.TODO(), 1)

		assert.Error(t, err)
		assert.ErrorIs(t, err, errAffectedRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectExec(`UPDATE urls`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.IncrementVisits(context.TODO(), 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_GetAll(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WillReturnError(errUnknown)

		urls, err := repo.GetAll(context.TODO())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, urls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(columns).
			AddRow(int64(1), "1", "https://example.com", int64(2), time.Time{}).
			AddRow(int64(2), "2", "https://example.org", int64(0), time.Time{})

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WillReturnRows(rows)

		urls, err := repo.GetAll(context.TODO())

		assert.NoError(t, err)
		assert.Len(t, urls, 2)
		assert.Equal(t, "1", urls[0].ShortCode)
		assert.Equal(t, int64(2), urls[0].VisitCount)
		assert.Equal(t, "https://example.org", urls[1].OriginalURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
