package searchmetric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dialectPostgres = "postgres"
	tableMetrics    = "search_metrics"

	colID         = "id"
	colSearchTerm = "search_term"
	colCount      = "count"
	colPosterURL  = "poster_url"
	colBookID     = "book_id"
	colTitle      = "title"
	colUpdatedAt  = "updated_at"
)

var metricColumns = []any{colID, colSearchTerm, colCount, colPosterURL, colBookID, colTitle, colUpdatedAt}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
	builder goqu.DialectWrapper
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout, builder: goqu.Dialect(dialectPostgres)}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) findByTermSQL(term string) (string, []any, error) {
	return r.builder.
		From(tableMetrics).
		Select(metricColumns...).
		Where(goqu.C(colSearchTerm).Eq(term)).
		Limit(1).
		Prepared(true).
		ToSQL()
}

func (r *PostgresRepo) incrementSQL(id string) (string, []any, error) {
	return r.builder.
		Update(tableMetrics).
		Set(goqu.Record{
			colCount:     goqu.L(`"count" + 1`),
			colUpdatedAt: goqu.L("NOW()"),
		}).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
}

// createSQL upserts so two first searches of a term racing each other both
// count.
func (r *PostgresRepo) createSQL(m *Metric) (string, []any, error) {
	return r.builder.
		Insert(tableMetrics).
		Rows(goqu.Record{
			colSearchTerm: m.SearchTerm,
			colCount:      m.Count,
			colPosterURL:  m.PosterURL,
			colBookID:     m.BookID,
			colTitle:      m.Title,
		}).
		OnConflict(goqu.DoUpdate(colSearchTerm, goqu.Record{
			colCount:     goqu.L(`"search_metrics"."count" + 1`),
			colUpdatedAt: goqu.L("NOW()"),
		})).
		Returning(colID, colCount, colUpdatedAt).
		Prepared(true).
		ToSQL()
}

func (r *PostgresRepo) topSQL(limit int) (string, []any, error) {
	return r.builder.
		From(tableMetrics).
		Select(metricColumns...).
		Order(goqu.C(colCount).Desc(), goqu.C(colUpdatedAt).Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
}

func (r *PostgresRepo) FindByTerm(ctx context.Context, term string) (Metric, error) {
	query, args, err := r.findByTermSQL(term)
	if err != nil {
		return Metric{}, fmt.Errorf("build find query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m Metric
	err = r.db.QueryRow(timeoutCtx, query, args...).Scan(
		&m.ID, &m.SearchTerm, &m.Count, &m.PosterURL, &m.BookID, &m.Title, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Metric{}, ErrNotFound
		}
		return Metric{}, err
	}
	return m, nil
}

func (r *PostgresRepo) Increment(ctx context.Context, id string) error {
	query, args, err := r.incrementSQL(id)
	if err != nil {
		return fmt.Errorf("build increment query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, m *Metric) error {
	query, args, err := r.createSQL(m)
	if err != nil {
		return fmt.Errorf("build create query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.QueryRow(timeoutCtx, query, args...).Scan(&m.ID, &m.Count, &m.UpdatedAt)
}

func (r *PostgresRepo) Top(ctx context.Context, limit int) ([]Metric, error) {
	query, args, err := r.topSQL(limit)
	if err != nil {
		return nil, fmt.Errorf("build top query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := []Metric{}
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.ID, &m.SearchTerm, &m.Count, &m.PosterURL, &m.BookID, &m.Title, &m.UpdatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
