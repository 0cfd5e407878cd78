package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
)

type RecordEventRequest struct {
	ID     *string
	Type   string
	Date   *string
	Amount decimal.NullDecimal
	Method *string
	Notes  *string
}

type RecordEventResult struct {
	Event domain.LedgerEvent
	// Checkpoint is nil when the checkpoint could not be written; the event
	// itself is already stored and the next checkpoint covers it.
	Checkpoint *domain.ChainHeadSnapshot
}

// LedgerService records ledger events and checkpoints the tenant's chain
// after every write.
type LedgerService struct {
	events      ledgerEventWriter
	checkpoints checkpointer
}

func NewLedgerService(events ledgerEventWriter, checkpoints checkpointer) *LedgerService {
	return &LedgerService{events: events, checkpoints: checkpoints}
}

func (s *LedgerService) RecordEvent(ctx context.Context, tenantID string, req RecordEventRequest) (*RecordEventResult, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("RecordEvent: %w: %w", domain.ErrInvalidRequest, domain.ErrMissingTenantID)
	}
	if strings.TrimSpace(req.Type) == "" {
		return nil, fmt.Errorf("RecordEvent: %w: %w", domain.ErrInvalidRequest, domain.ErrMissingEventType)
	}
	if req.Amount.Valid {
		// Amounts hash as float64 text; one that overflows would hash as null.
		if f, _ := req.Amount.Decimal.Float64(); math.IsInf(f, 0) {
			return nil, fmt.Errorf("RecordEvent: %w: %w", domain.ErrInvalidRequest, domain.ErrInvalidAmount)
		}
	}
	ctx, log := logging.WithTenant(ctx, tenantID)

	id := req.ID
	if id == nil || *id == "" {
		id = domain.StringPtr(uuid.NewString())
	}

	ev := domain.LedgerEvent{
		ID:       id,
		Type:     req.Type,
		Date:     req.Date,
		TenantID: domain.StringPtr(tenantID),
		Amount:   req.Amount,
		Method:   req.Method,
		Notes:    req.Notes,
	}
	if err := s.events.Create(ctx, &ev); err != nil {
		return nil, fmt.Errorf("RecordEvent: tenant %s: %w", tenantID, err)
	}
	log.Info("ledger event recorded", "event_id", *id, "event_type", ev.Type)

	snap, err := s.checkpoints.Checkpoint(ctx, tenantID)
	if err != nil {
		log.Error("checkpoint after ledger write failed", "event_id", *id, "error", err)
		return &RecordEventResult{Event: ev}, nil
	}
	return &RecordEventResult{Event: ev, Checkpoint: snap}, nil
}
