package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

func TestTenantRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTenantRepository(db, time.Second)

	tenant := &domain.Tenant{
		ID:           "t1",
		FullName:     domain.StringPtr("Ada Okafor"),
		PropertyName: domain.StringPtr("Harbour View"),
	}

	mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs("t1", "Ada Okafor", nil, "Harbour View", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Upsert(context.Background(), tenant))

	mock.ExpectExec(`INSERT INTO tenants`).
		WillReturnError(errors.New("connection reset"))
	err := repo.Upsert(context.Background(), tenant)
	assert.ErrorContains(t, err, "Upsert: tenant t1")

	require.NoError(t, mock.ExpectationsWereMet())
}
