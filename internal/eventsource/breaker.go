package eventsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
	// OnStateChange is called after every transition, e.g. to export the
	// state as a metric.
	OnStateChange func(name string, from, to gobreaker.State)
}

// Breaker short-circuits a failing Source. While open, calls fail fast with
// domain.ErrUpstreamUnavailable instead of waiting on a dead upstream.
type Breaker struct {
	next Source
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Source, cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("event source breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from, to)
			}
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) ListByTenant(ctx context.Context, tenantID string) ([]domain.LedgerEvent, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.ListByTenant(ctx, tenantID)
	})
	if err != nil {
		return nil, b.wrap("ListByTenant", err)
	}
	return out.([]domain.LedgerEvent), nil
}

func (b *Breaker) ListAll(ctx context.Context) ([]domain.LedgerEvent, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.ListAll(ctx)
	})
	if err != nil {
		return nil, b.wrap("ListAll", err)
	}
	return out.([]domain.LedgerEvent), nil
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
	}
	return err
}
