package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// IdempotencyCacheEntry is a stored response for a (key, scope) pair. Scope
// is the tenant the write targeted.
type IdempotencyCacheEntry struct {
	Key          string    `db:"idempotency_key"`
	Scope        string    `db:"scope"`
	RequestHash  string    `db:"request_hash"`
	StatusCode   int       `db:"status_code"`
	ResponseBody []byte    `db:"response_body"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

const idempotencyColumns = `idempotency_key, scope, request_hash, status_code, response_body, created_at, expires_at`

type IdempotencyRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewIdempotencyRepository(db *sqlx.DB, timeout time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{db: db, timeout: timeout}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, scope string) (*IdempotencyCacheEntry, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var e IdempotencyCacheEntry
	err := r.db.GetContext(ctx, &e,
		`SELECT `+idempotencyColumns+` FROM idempotency_cache
		WHERE idempotency_key = $1 AND scope = $2 AND expires_at > now()`,
		key, scope,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &e, nil
}

func (r *IdempotencyRepository) Set(ctx context.Context, entry *IdempotencyCacheEntry) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO idempotency_cache (`+idempotencyColumns+`)
		VALUES (:idempotency_key, :scope, :request_hash, :status_code, :response_body, :created_at, :expires_at)
		ON CONFLICT (idempotency_key, scope) DO NOTHING`,
		entry,
	)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) CleanExpired(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}
