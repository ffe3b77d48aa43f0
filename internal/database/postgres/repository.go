package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ivanmolchanov/shorturl/internal/database"
	"github.com/ivanmolchanov/shorturl/internal/models"
	"github.com/ivanmolchanov/shorturl/pkg/base62"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	VisitCount  int64     `db:"visit_count"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		VisitCount:  r.VisitCount,
		CreatedAt:   r.CreatedAt,
	}
}

// URLRepository persists URL mappings in PostgreSQL.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new mapping and derives its short code from the id the
// database assigned. Both steps run in one transaction, so a committed record
// always carries its short code and id allocation is left entirely to the
// database sequence.
func (r *URLRepository) Create(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var id int64
	query := `INSERT INTO urls(original_url)
		VALUES ($1)
		RETURNING id`

	if err := tx.GetContext(ctx, &id, query, originalURL); err != nil {
		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	rec := new(urlRecord)
	query = `UPDATE urls
		SET short_code = $1
		WHERE id = $2
		RETURNING *`

	if err := tx.GetContext(ctx, rec, query, base62.Encode(uint64(id)), id); err != nil {
		return nil, fmt.Errorf("%s: failed to set short code: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByShortCode retrieves a mapping by exact short code match. The visit
// counter is not touched here; incrementing is a separate operation.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// IncrementVisits bumps the visit counter of a mapping with a single atomic
// UPDATE, so concurrent redirects never lose updates.
func (r *URLRepository) IncrementVisits(ctx context.Context, id int64) error {
	const op = "database.postgres.URLRepository.IncrementVisits"

	query := `UPDATE urls
		SET visit_count = visit_count + 1
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to increment visit count: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

// GetAll lists every stored mapping ordered by id.
func (r *URLRepository) GetAll(ctx context.Context) ([]models.URL, error) {
	const op = "database.postgres.URLRepository.GetAll"

	var recs []urlRecord
	query := `SELECT * FROM urls ORDER BY id`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]models.URL, len(recs))
	for i := range recs {
		urls[i] = *recs[i].ToURL()
	}

	return urls, nil
}
