package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

func SeedTenant(t *testing.T, db *sqlx.DB, id, fullName, propertyName, unit string) *domain.Tenant {
	t.Helper()

	tenant := &domain.Tenant{
		ID:           id,
		FullName:     optional(fullName),
		PropertyName: optional(propertyName),
		Unit:         optional(unit),
	}
	_, err := db.Exec(
		`INSERT INTO tenants (id, full_name, property_name, unit) VALUES ($1, $2, $3, $4)`,
		tenant.ID, tenant.FullName, tenant.PropertyName, tenant.Unit,
	)
	if err != nil {
		t.Fatalf("seed tenant %s: %v", id, err)
	}
	return tenant
}

func SeedLedgerEvent(t *testing.T, db *sqlx.DB, tenantID, id, eventType, date, amount string) {
	t.Helper()

	var amt decimal.NullDecimal
	if amount != "" {
		amt = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	_, err := db.Exec(
		`INSERT INTO ledger_events (id, tenant_id, event_type, event_date, amount) VALUES ($1, $2, $3, $4, $5)`,
		id, tenantID, eventType, optional(date), amt,
	)
	if err != nil {
		t.Fatalf("seed ledger event %s for tenant %s: %v", id, tenantID, err)
	}
}

func CountChainHeads(t *testing.T, db *sqlx.DB, tenantID string) int {
	t.Helper()

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM chain_heads WHERE tenant_id = $1`, tenantID); err != nil {
		t.Fatalf("count chain heads for tenant %s: %v", tenantID, err)
	}
	return count
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
