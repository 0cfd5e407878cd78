package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
	"github.com/josh-kwaku/rentchain-audit/internal/metrics"
)

// VerificationService rebuilds a tenant's chain from current ledger data and
// compares it with a stored chain head. It never writes.
type VerificationService struct {
	events  eventSource
	heads   chainHeadStore
	builder *chain.Builder
	metrics chainMetrics
}

func NewVerificationService(events eventSource, heads chainHeadStore, builder *chain.Builder, m chainMetrics) *VerificationService {
	return &VerificationService{events: events, heads: heads, builder: builder, metrics: metricsOrNoop(m)}
}

// Verify checks the most recent snapshot in the whole store, whichever
// tenant it belongs to.
func (s *VerificationService) Verify(ctx context.Context) (*domain.VerificationResult, error) {
	snap, err := s.heads.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("Verify: %w", err)
	}

	res, err := s.verifySnapshot(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("Verify: %w", err)
	}
	return res, nil
}

// VerifyTenant checks the most recent snapshot of one tenant.
func (s *VerificationService) VerifyTenant(ctx context.Context, tenantID string) (*domain.VerificationResult, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("VerifyTenant: %w: %w", domain.ErrInvalidRequest, domain.ErrMissingTenantID)
	}

	snap, err := s.heads.LatestForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("VerifyTenant: tenant %s: %w", tenantID, err)
	}

	res, err := s.verifySnapshot(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("VerifyTenant: tenant %s: %w", tenantID, err)
	}
	if res.TenantID == "" {
		res.TenantID = tenantID
	}
	return res, nil
}

func (s *VerificationService) verifySnapshot(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.VerificationResult, error) {
	res, err := s.evaluate(ctx, snap)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveVerification(string(res.Outcome))
	log := logging.FromContext(ctx)
	if res.IsDiscrepancy() {
		log.Warn("chain head verification failed",
			"tenant_id", res.TenantID,
			"outcome", res.Outcome,
			"snapshot_id", snap.ID,
		)
	} else {
		log.Debug("chain head verification finished", "tenant_id", res.TenantID, "outcome", res.Outcome)
	}
	return res, nil
}

// evaluate compares hash before height: a hash match with a height
// mismatch can only come from a malformed snapshot.
func (s *VerificationService) evaluate(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.VerificationResult, error) {
	if snap == nil {
		return &domain.VerificationResult{Outcome: domain.OutcomeNoSnapshotsYet}, nil
	}
	if !snap.HasTenant() {
		return &domain.VerificationResult{Outcome: domain.OutcomeMissingTenantReference, Snapshot: snap}, nil
	}

	tenantID := snap.TenantID
	events, err := s.events.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	if len(events) == 0 {
		return &domain.VerificationResult{Outcome: domain.OutcomeNoEventsForTenant, TenantID: tenantID, Snapshot: snap}, nil
	}

	start := time.Now()
	blocks := s.builder.Build(events)
	s.metrics.ObserveBuild(metrics.ScopeTenant, time.Since(start), len(blocks))

	head, ok := chain.Head(blocks)
	if !ok {
		return &domain.VerificationResult{Outcome: domain.OutcomeEmptyChain, TenantID: tenantID, Snapshot: snap}, nil
	}

	if head.Hash != snap.RootHash {
		return &domain.VerificationResult{
			Outcome:      domain.OutcomeHashMismatch,
			TenantID:     tenantID,
			Snapshot:     snap,
			ExpectedHash: snap.RootHash,
			ActualHash:   head.Hash,
		}, nil
	}

	if head.Index != snap.BlockHeight {
		return &domain.VerificationResult{
			Outcome:        domain.OutcomeHeightMismatch,
			TenantID:       tenantID,
			Snapshot:       snap,
			ExpectedHeight: snap.BlockHeight,
			ActualHeight:   head.Index,
		}, nil
	}

	return &domain.VerificationResult{
		Outcome:     domain.OutcomeVerified,
		TenantID:    tenantID,
		Snapshot:    snap,
		BlockHeight: head.Index,
		RootHash:    head.Hash,
	}, nil
}
