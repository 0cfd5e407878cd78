package service

import (
	"context"
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type eventSource interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.LedgerEvent, error)
	ListAll(ctx context.Context) ([]domain.LedgerEvent, error)
}

type chainHeadStore interface {
	Append(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error)
	Latest(ctx context.Context) (*domain.ChainHeadSnapshot, error)
	LatestForTenant(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error)
}

type tenantLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type ledgerEventWriter interface {
	Create(ctx context.Context, ev *domain.LedgerEvent) error
}

type checkpointer interface {
	Checkpoint(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error)
}

type expiredEntryCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

type chainMetrics interface {
	ObserveCheckpoint(result string)
	ObserveVerification(outcome string)
	ObserveBuild(scope string, d time.Duration, length int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCheckpoint(string)                {}
func (noopMetrics) ObserveVerification(string)              {}
func (noopMetrics) ObserveBuild(string, time.Duration, int) {}

func metricsOrNoop(m chainMetrics) chainMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
