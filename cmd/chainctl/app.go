package main

import (
	"context"
	"fmt"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/config"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/eventsource"
	"github.com/josh-kwaku/rentchain-audit/internal/lock"
	"github.com/josh-kwaku/rentchain-audit/internal/repository"
	"github.com/josh-kwaku/rentchain-audit/internal/service"
)

type headStore interface {
	Append(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error)
	Latest(ctx context.Context) (*domain.ChainHeadSnapshot, error)
	LatestForTenant(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error)
}

type app struct {
	explorer    *service.ExplorerService
	verifier    *service.VerificationService
	checkpoints *service.CheckpointService
	close       func()
}

// openApp wires the services against the same stores and tenant locks as the
// API, so a CLI checkpoint cannot interleave with one the server is running.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return nil, fmt.Errorf("openApp: %w", err)
	}

	var source eventsource.Source = repository.NewLedgerEventRepository(db, cfg.StoreTimeout)
	if cfg.EventSourceURL != "" {
		source = eventsource.NewHTTPSource(cfg.EventSourceURL, cfg.EventSourceTimeout)
	}

	var (
		heads     headStore
		closeHead = func() {}
	)
	if cfg.HeadStore == config.HeadStoreFile {
		store, err := repository.OpenFileChainHeadStore(cfg.HeadStoreDir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("openApp: %w", err)
		}
		heads = store
		closeHead = func() { store.Close() }
	} else {
		heads = repository.NewChainHeadRepository(db, cfg.StoreTimeout)
	}

	locker, rdb, err := lock.Open(lock.Options{RedisURL: cfg.RedisURL, TTL: cfg.LockTTL, Retry: cfg.LockRetry})
	if err != nil {
		closeHead()
		db.Close()
		return nil, fmt.Errorf("openApp: %w", err)
	}

	builder := chain.NewBuilder()
	return &app{
		explorer:    service.NewExplorerService(source, heads, builder, nil),
		verifier:    service.NewVerificationService(source, heads, builder, nil),
		checkpoints: service.NewCheckpointService(source, heads, locker, builder, nil),
		close: func() {
			if rdb != nil {
				rdb.Close()
			}
			closeHead()
			db.Close()
		},
	}, nil
}
