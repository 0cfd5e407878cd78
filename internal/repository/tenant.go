package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type TenantRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTenantRepository(db *sqlx.DB, timeout time.Duration) *TenantRepository {
	return &TenantRepository{db: db, timeout: timeout}
}

func (r *TenantRepository) Upsert(ctx context.Context, t *domain.Tenant) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, full_name, legal_name, property_name, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			legal_name = EXCLUDED.legal_name,
			property_name = EXCLUDED.property_name,
			unit = EXCLUDED.unit`,
		t.ID, t.FullName, t.LegalName, t.PropertyName, t.Unit,
	)
	if err != nil {
		return fmt.Errorf("Upsert: tenant %s: %w", t.ID, err)
	}
	return nil
}
