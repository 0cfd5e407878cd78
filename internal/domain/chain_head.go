package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChainHeadSnapshot is an append-only checkpoint of a tenant chain's last
// block. TenantID is empty only for legacy rows written before it existed.
type ChainHeadSnapshot struct {
	ID          uuid.UUID
	TenantID    string
	BlockHeight int
	RootHash    string
	EventID     *string
	Timestamp   time.Time
}

func (s *ChainHeadSnapshot) HasTenant() bool {
	return s.TenantID != ""
}
