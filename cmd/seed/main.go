// Command seed loads a demo tenant and its ledger into Postgres and records
// the first chain head snapshot. Re-running it is harmless.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/config"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/lock"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
	"github.com/josh-kwaku/rentchain-audit/internal/repository"
	"github.com/josh-kwaku/rentchain-audit/internal/service"
)

const demoTenantID = "tenant-demo-001"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init("rentchain-seed", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer db.Close()

	tenants := repository.NewTenantRepository(db, cfg.StoreTimeout)
	events := repository.NewLedgerEventRepository(db, cfg.StoreTimeout)
	heads := repository.NewChainHeadRepository(db, cfg.StoreTimeout)

	tenant := &domain.Tenant{
		ID:           demoTenantID,
		FullName:     domain.StringPtr("Ada Okafor"),
		PropertyName: domain.StringPtr("Harbour View"),
		Unit:         domain.StringPtr("4B"),
	}
	if err := tenants.Upsert(ctx, tenant); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	for _, ev := range demoEvents() {
		err := events.Create(ctx, &ev)
		switch {
		case errors.Is(err, domain.ErrDuplicateEvent):
			slog.Info("event already seeded", "event_id", domain.Deref(ev.ID))
		case err != nil:
			return fmt.Errorf("run: %w", err)
		default:
			slog.Info("event seeded", "event_id", domain.Deref(ev.ID), "type", ev.Type)
		}
	}

	locker, rdb, err := lock.Open(lock.Options{RedisURL: cfg.RedisURL, TTL: cfg.LockTTL, Retry: cfg.LockRetry})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	checkpoints := service.NewCheckpointService(events, heads, locker, chain.NewBuilder(), nil)
	snap, err := checkpoints.Checkpoint(ctx, demoTenantID)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	slog.Info("demo tenant seeded",
		"tenant_id", demoTenantID,
		"block_height", snap.BlockHeight,
		"root_hash", snap.RootHash,
	)
	return nil
}

func demoEvents() []domain.LedgerEvent {
	tenantID := domain.StringPtr(demoTenantID)
	amount := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
	}
	return []domain.LedgerEvent{
		{
			ID:       domain.StringPtr("seed-rent-2025-01"),
			Type:     domain.EventTypeRentCharge,
			Date:     domain.StringPtr("2025-01-01T00:00:00.000Z"),
			TenantID: tenantID,
			Amount:   amount("1200.00"),
			Notes:    domain.StringPtr("January rent"),
		},
		{
			ID:       domain.StringPtr("seed-payment-2025-01"),
			Type:     domain.EventTypePaymentReceived,
			Date:     domain.StringPtr("2025-01-03T09:15:00.000Z"),
			TenantID: tenantID,
			Amount:   amount("1200.00"),
			Method:   domain.StringPtr("bank_transfer"),
		},
		{
			ID:       domain.StringPtr("seed-latefee-2025-02"),
			Type:     domain.EventTypeLateFee,
			Date:     domain.StringPtr("2025-02-06T00:00:00.000Z"),
			TenantID: tenantID,
			Amount:   amount("75.50"),
			Notes:    domain.StringPtr("Paid after grace period"),
		},
	}
}
