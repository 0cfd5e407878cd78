package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/metrics"
)

const (
	DefaultChainHeadLimit = 20
	MaxChainHeadLimit     = 100
)

// ExplorerService serves freshly computed chains. Nothing it returns is
// persisted.
type ExplorerService struct {
	events  eventSource
	heads   chainHeadStore
	builder *chain.Builder
	metrics chainMetrics
}

func NewExplorerService(events eventSource, heads chainHeadStore, builder *chain.Builder, m chainMetrics) *ExplorerService {
	return &ExplorerService{events: events, heads: heads, builder: builder, metrics: metricsOrNoop(m)}
}

// GlobalChain merges every tenant's events into one ordering.
func (s *ExplorerService) GlobalChain(ctx context.Context) ([]domain.Block, error) {
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("GlobalChain: %w", err)
	}

	blocks, err := s.build(metrics.ScopeGlobal, events)
	if err != nil {
		return nil, fmt.Errorf("GlobalChain: %w", err)
	}
	return blocks, nil
}

func (s *ExplorerService) TenantChain(ctx context.Context, tenantID string) ([]domain.Block, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("TenantChain: %w: %w", domain.ErrInvalidRequest, domain.ErrMissingTenantID)
	}

	events, err := s.events.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("TenantChain: tenant %s: %w", tenantID, err)
	}

	blocks, err := s.build(metrics.ScopeTenant, events)
	if err != nil {
		return nil, fmt.Errorf("TenantChain: tenant %s: %w", tenantID, err)
	}
	return blocks, nil
}

// ChainHeads lists a tenant's snapshots newest first. limit is clamped to
// [1, MaxChainHeadLimit]; zero or less means DefaultChainHeadLimit.
func (s *ExplorerService) ChainHeads(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("ChainHeads: %w: %w", domain.ErrInvalidRequest, domain.ErrMissingTenantID)
	}
	if limit <= 0 {
		limit = DefaultChainHeadLimit
	}
	limit = min(limit, MaxChainHeadLimit)

	heads, err := s.heads.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("ChainHeads: tenant %s: %w", tenantID, err)
	}
	if heads == nil {
		heads = []domain.ChainHeadSnapshot{}
	}
	return heads, nil
}

func (s *ExplorerService) build(scope string, events []domain.LedgerEvent) ([]domain.Block, error) {
	start := time.Now()
	blocks := s.builder.Build(events)
	s.metrics.ObserveBuild(scope, time.Since(start), len(blocks))

	if err := chain.Validate(blocks); err != nil {
		return nil, fmt.Errorf("self-check: %w", err)
	}
	return blocks, nil
}
