package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

var ledgerEventCols = []string{
	"id", "tenant_id", "event_type", "event_date", "amount", "method", "notes",
	"full_name", "legal_name", "property_name", "unit",
}

func TestLedgerEventRepository_ListByTenant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerEventRepository(db, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.tenant_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(ledgerEventCols).
			AddRow("e1", "t1", "RentCharge", "2025-01-01", "1200.00", nil, "Jan", "Ada Obi", nil, "Maple Court", "4B").
			AddRow("e2", "t1", nil, nil, nil, "card", nil, nil, "Obi Holdings", nil, nil))

	events, err := repo.ListByTenant(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "e1", domain.Deref(first.ID))
	assert.Equal(t, "RentCharge", first.Type)
	assert.Equal(t, "Ada Obi", domain.Deref(first.TenantName))
	assert.Equal(t, "Maple Court", domain.Deref(first.PropertyName))
	assert.Equal(t, "4B", domain.Deref(first.Unit))
	require.True(t, first.Amount.Valid)
	assert.True(t, first.Amount.Decimal.Equal(decimal.NewFromInt(1200)))
	assert.Nil(t, first.Method)

	second := events[1]
	assert.Equal(t, domain.EventTypeUnknown, second.Type)
	assert.Nil(t, second.Date)
	assert.Equal(t, "Obi Holdings", domain.Deref(second.TenantName))
	assert.Equal(t, domain.UnknownPropertyName, domain.Deref(second.PropertyName))
	assert.Nil(t, second.Unit)
	assert.False(t, second.Amount.Valid)
}

func TestLedgerEventRepository_UnknownTenantName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerEventRepository(db, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.tenant_id, e.seq")).
		WillReturnRows(sqlmock.NewRows(ledgerEventCols).
			AddRow("e1", "t9", "LateFee", "2025-02-06", "50", nil, nil, "", nil, nil, nil))

	events, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.UnknownTenantName, domain.Deref(events[0].TenantName))
}

func TestLedgerEventRepository_ListFailureWrapsUpstream(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerEventRepository(db, time.Second)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("timeout"))

	_, err := repo.ListByTenant(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestLedgerEventRepository_Create(t *testing.T) {
	ev := &domain.LedgerEvent{
		ID:       domain.StringPtr("e1"),
		Type:     domain.EventTypeRentCharge,
		Date:     domain.StringPtr("2025-01-01"),
		TenantID: domain.StringPtr("t1"),
		Amount:   decimal.NewNullDecimal(decimal.NewFromInt(1200)),
	}

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "inserted"},
		{name: "duplicate id", dbErr: &pq.Error{Code: pgUniqueViolation}, wantErr: domain.ErrDuplicateEvent},
		{name: "unknown tenant", dbErr: &pq.Error{Code: pgForeignKeyViolation}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewLedgerEventRepository(db, time.Second)

			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_events")).
				WithArgs("e1", "t1", "RentCharge", "2025-01-01", sqlmock.AnyArg(), nil, nil)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Create(context.Background(), ev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
