// Package eventsource supplies ledger events to the chain builder. A
// Source may be the local ledger tables or a remote ledger API; both apply
// the same display defaults so the hashed payload does not depend on where
// events came from.
package eventsource

import (
	"context"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type Source interface {
	// ListByTenant returns every event of one tenant. An unknown tenant
	// yields an empty slice, not an error.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.LedgerEvent, error)
	// ListAll returns every event across all tenants.
	ListAll(ctx context.Context) ([]domain.LedgerEvent, error)
}
