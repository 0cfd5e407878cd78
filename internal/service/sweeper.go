package service

import (
	"context"
	"log/slog"
	"time"
)

// IdempotencySweeper periodically deletes expired idempotency entries.
type IdempotencySweeper struct {
	entries  expiredEntryCleaner
	logger   *slog.Logger
	interval time.Duration
}

func NewIdempotencySweeper(entries expiredEntryCleaner, logger *slog.Logger, interval time.Duration) *IdempotencySweeper {
	return &IdempotencySweeper{entries: entries, logger: logger, interval: interval}
}

func (s *IdempotencySweeper) Start(ctx context.Context) {
	s.logger.Info("idempotency sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("idempotency sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *IdempotencySweeper) sweep(ctx context.Context) {
	n, err := s.entries.CleanExpired(ctx)
	if err != nil {
		s.logger.Error("failed to clean expired idempotency entries", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired idempotency entries removed", "count", n)
	}
}
