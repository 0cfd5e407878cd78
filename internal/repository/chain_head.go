package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

const chainHeadColumns = `id, tenant_id, block_height, root_hash, event_id, created_at`

type chainHeadRow struct {
	ID          uuid.UUID      `db:"id"`
	TenantID    sql.NullString `db:"tenant_id"`
	BlockHeight int            `db:"block_height"`
	RootHash    string         `db:"root_hash"`
	EventID     sql.NullString `db:"event_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

// ChainHeadRepository is the Postgres chain head log. Rows are only ever
// inserted; there is no update or delete path.
type ChainHeadRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewChainHeadRepository(db *sqlx.DB, timeout time.Duration) *ChainHeadRepository {
	return &ChainHeadRepository{db: db, timeout: timeout}
}

func (r *ChainHeadRepository) Append(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rec := prepareSnapshot(snap)
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO chain_heads (id, tenant_id, block_height, root_hash, event_id, created_at)
		VALUES (:id, :tenant_id, :block_height, :root_hash, :event_id, :created_at)`,
		toChainHeadRow(rec),
	)
	if err != nil {
		return nil, fmt.Errorf("Append: tenant %s: %w: %w", rec.TenantID, domain.ErrStorage, err)
	}
	return rec, nil
}

func (r *ChainHeadRepository) Latest(ctx context.Context) (*domain.ChainHeadSnapshot, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row chainHeadRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+chainHeadColumns+` FROM chain_heads ORDER BY created_at DESC, seq DESC LIMIT 1`,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Latest: %w: %w", domain.ErrStorage, err)
	}
	return row.toDomain(), nil
}

func (r *ChainHeadRepository) LatestForTenant(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row chainHeadRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+chainHeadColumns+` FROM chain_heads
		WHERE tenant_id = $1 ORDER BY created_at DESC, seq DESC LIMIT 1`, tenantID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestForTenant: tenant %s: %w: %w", tenantID, domain.ErrStorage, err)
	}
	return row.toDomain(), nil
}

func (r *ChainHeadRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rows []chainHeadRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+chainHeadColumns+` FROM chain_heads
		WHERE tenant_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2`, tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: tenant %s: %w: %w", tenantID, domain.ErrStorage, err)
	}

	snaps := make([]domain.ChainHeadSnapshot, len(rows))
	for i := range rows {
		snaps[i] = *rows[i].toDomain()
	}
	return snaps, nil
}

// prepareSnapshot assigns the store-owned fields. Timestamps are truncated to
// the microsecond precision Postgres keeps so the returned value equals what
// a later read yields.
func prepareSnapshot(snap *domain.ChainHeadSnapshot) *domain.ChainHeadSnapshot {
	rec := *snap
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Timestamp = rec.Timestamp.UTC().Truncate(time.Microsecond)
	return &rec
}

func toChainHeadRow(s *domain.ChainHeadSnapshot) chainHeadRow {
	return chainHeadRow{
		ID:          s.ID,
		TenantID:    sql.NullString{String: s.TenantID, Valid: s.TenantID != ""},
		BlockHeight: s.BlockHeight,
		RootHash:    s.RootHash,
		EventID:     sql.NullString{String: domain.Deref(s.EventID), Valid: s.EventID != nil},
		CreatedAt:   s.Timestamp,
	}
}

func (row chainHeadRow) toDomain() *domain.ChainHeadSnapshot {
	s := &domain.ChainHeadSnapshot{
		ID:          row.ID,
		TenantID:    row.TenantID.String,
		BlockHeight: row.BlockHeight,
		RootHash:    row.RootHash,
		Timestamp:   row.CreatedAt.UTC(),
	}
	if row.EventID.Valid {
		s.EventID = domain.StringPtr(row.EventID.String)
	}
	return s
}
