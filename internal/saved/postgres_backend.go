package saved

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores account-scoped lists in the saved_lists table.
type PostgresBackend struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresBackend(db *pgxpool.Pool, timeout time.Duration) *PostgresBackend {
	return &PostgresBackend{db: db, timeout: timeout}
}

func (r *PostgresBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT payload FROM saved_lists WHERE list_key = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var payload []byte
	if err := r.db.QueryRow(timeoutCtx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (r *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	const upsertSQL = `
		INSERT INTO saved_lists (list_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (list_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, upsertSQL, key, value)
	return err
}

func (r *PostgresBackend) Delete(ctx context.Context, key string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, `DELETE FROM saved_lists WHERE list_key = $1`, key)
	return err
}
