package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

const ledgerEventSelect = `SELECT e.id, e.tenant_id, e.event_type, e.event_date, e.amount, e.method, e.notes,
	t.full_name, t.legal_name, t.property_name, t.unit
	FROM ledger_events e
	JOIN tenants t ON t.id = e.tenant_id`

type ledgerEventRow struct {
	ID           string              `db:"id"`
	TenantID     string              `db:"tenant_id"`
	EventType    sql.NullString      `db:"event_type"`
	EventDate    sql.NullString      `db:"event_date"`
	Amount       decimal.NullDecimal `db:"amount"`
	Method       sql.NullString      `db:"method"`
	Notes        sql.NullString      `db:"notes"`
	FullName     sql.NullString      `db:"full_name"`
	LegalName    sql.NullString      `db:"legal_name"`
	PropertyName sql.NullString      `db:"property_name"`
	Unit         sql.NullString      `db:"unit"`
}

// LedgerEventRepository is the Postgres-backed event source. Events are
// joined with their tenant so the denormalized display fields are filled in
// before hashing.
type LedgerEventRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewLedgerEventRepository(db *sqlx.DB, timeout time.Duration) *LedgerEventRepository {
	return &LedgerEventRepository{db: db, timeout: timeout}
}

func (r *LedgerEventRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.LedgerEvent, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rows []ledgerEventRow
	err := r.db.SelectContext(ctx, &rows, ledgerEventSelect+` WHERE e.tenant_id = $1 ORDER BY e.seq`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: tenant %s: %w: %w", tenantID, domain.ErrUpstreamFetch, err)
	}
	return toLedgerEvents(rows), nil
}

func (r *LedgerEventRepository) ListAll(ctx context.Context) ([]domain.LedgerEvent, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rows []ledgerEventRow
	err := r.db.SelectContext(ctx, &rows, ledgerEventSelect+` ORDER BY e.tenant_id, e.seq`)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w: %w", domain.ErrUpstreamFetch, err)
	}
	return toLedgerEvents(rows), nil
}

// Create inserts a new event for ev.TenantID. A reused id maps to
// ErrDuplicateEvent and an unknown tenant to ErrNotFound.
func (r *LedgerEventRepository) Create(ctx context.Context, ev *domain.LedgerEvent) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_events (id, tenant_id, event_type, event_date, amount, method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		domain.Deref(ev.ID), domain.Deref(ev.TenantID), ev.Type, ev.Date, ev.Amount, ev.Method, ev.Notes,
	)
	switch pgErrorCode(err) {
	case "":
	case pgUniqueViolation:
		return fmt.Errorf("Create: event %s: %w", domain.Deref(ev.ID), domain.ErrDuplicateEvent)
	case pgForeignKeyViolation:
		return fmt.Errorf("Create: tenant %s: %w", domain.Deref(ev.TenantID), domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("Create: event %s: %w", domain.Deref(ev.ID), err)
	}
	return nil
}

func toLedgerEvents(rows []ledgerEventRow) []domain.LedgerEvent {
	events := make([]domain.LedgerEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toDomain()
	}
	return events
}

func (row ledgerEventRow) toDomain() domain.LedgerEvent {
	tenant := domain.Tenant{
		ID:        row.TenantID,
		FullName:  nullString(row.FullName),
		LegalName: nullString(row.LegalName),
	}

	ev := domain.LedgerEvent{
		ID:           domain.StringPtr(row.ID),
		Type:         domain.EventTypeUnknown,
		Date:         nullString(row.EventDate),
		TenantID:     domain.StringPtr(row.TenantID),
		TenantName:   domain.StringPtr(tenant.DisplayName()),
		PropertyName: domain.StringPtr(domain.UnknownPropertyName),
		Unit:         nullString(row.Unit),
		Amount:       row.Amount,
		Method:       nullString(row.Method),
		Notes:        nullString(row.Notes),
	}
	if row.EventType.Valid && row.EventType.String != "" {
		ev.Type = row.EventType.String
	}
	if row.PropertyName.Valid {
		ev.PropertyName = domain.StringPtr(row.PropertyName.String)
	}
	return ev
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return domain.StringPtr(ns.String)
}
