package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type mockEventSource struct {
	mu       sync.Mutex
	byTenant map[string][]domain.LedgerEvent
	err      error

	active  int32
	overlap atomic.Bool
	delay   time.Duration
}

func newMockEventSource() *mockEventSource {
	return &mockEventSource{byTenant: make(map[string][]domain.LedgerEvent)}
}

func (m *mockEventSource) add(tenantID string, events ...domain.LedgerEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		ev.TenantID = domain.StringPtr(tenantID)
		if ev.TenantName == nil {
			ev.TenantName = domain.StringPtr("Tenant " + tenantID)
		}
		if ev.PropertyName == nil {
			ev.PropertyName = domain.StringPtr(domain.UnknownPropertyName)
		}
		m.byTenant[tenantID] = append(m.byTenant[tenantID], ev)
	}
}

func (m *mockEventSource) ListByTenant(_ context.Context, tenantID string) ([]domain.LedgerEvent, error) {
	if atomic.AddInt32(&m.active, 1) > 1 {
		m.overlap.Store(true)
	}
	defer atomic.AddInt32(&m.active, -1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LedgerEvent(nil), m.byTenant[tenantID]...), nil
}

func (m *mockEventSource) ListAll(_ context.Context) ([]domain.LedgerEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.LedgerEvent
	for _, evs := range m.byTenant {
		all = append(all, evs...)
	}
	return all, nil
}

type mockHeadStore struct {
	mu        sync.Mutex
	heads     []domain.ChainHeadSnapshot
	appendErr error
	readErr   error
}

func (m *mockHeadStore) Append(_ context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *snap
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	m.heads = append(m.heads, rec)
	return &rec, nil
}

func (m *mockHeadStore) latest(match func(domain.ChainHeadSnapshot) bool) *domain.ChainHeadSnapshot {
	var best *domain.ChainHeadSnapshot
	for i := range m.heads {
		h := m.heads[i]
		if match(h) && (best == nil || !h.Timestamp.Before(best.Timestamp)) {
			best = &h
		}
	}
	return best
}

func (m *mockHeadStore) Latest(_ context.Context) (*domain.ChainHeadSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(func(domain.ChainHeadSnapshot) bool { return true }), nil
}

func (m *mockHeadStore) LatestForTenant(_ context.Context, tenantID string) (*domain.ChainHeadSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(func(h domain.ChainHeadSnapshot) bool { return h.TenantID == tenantID }), nil
}

func (m *mockHeadStore) ListByTenant(_ context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChainHeadSnapshot
	for i := len(m.heads) - 1; i >= 0 && len(out) < limit; i-- {
		if m.heads[i].TenantID == tenantID {
			out = append(out, m.heads[i])
		}
	}
	return out, nil
}

func (m *mockHeadStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.heads)
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, l.err
}

type mockLedgerWriter struct {
	created []domain.LedgerEvent
	err     error
	onWrite func(ev domain.LedgerEvent)
}

func (m *mockLedgerWriter) Create(_ context.Context, ev *domain.LedgerEvent) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, *ev)
	if m.onWrite != nil {
		m.onWrite(*ev)
	}
	return nil
}

type mockCleaner struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (m *mockCleaner) CleanExpired(context.Context) (int64, error) {
	m.calls.Add(1)
	return m.n, m.err
}

var errBoom = errors.New("boom")

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func event(id, typ, date string, amt int64) domain.LedgerEvent {
	return domain.LedgerEvent{
		ID:     domain.StringPtr(id),
		Type:   typ,
		Date:   domain.StringPtr(date),
		Amount: amount(amt),
	}
}
