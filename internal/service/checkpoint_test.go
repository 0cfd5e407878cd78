package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/lock"
	"github.com/josh-kwaku/rentchain-audit/internal/metrics"
)

// tickingClock returns a strictly increasing time on every call.
func tickingClock() func() time.Time {
	var (
		mu sync.Mutex
		t  = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newCheckpointService(src *mockEventSource, store *mockHeadStore) *CheckpointService {
	svc := NewCheckpointService(src, store, lock.NewKeyedMutex(), chain.NewBuilder(), metrics.New())
	svc.now = tickingClock()
	return svc
}

func TestCheckpoint_RecordsHeadOfChain(t *testing.T) {
	src := newMockEventSource()
	src.add("t1",
		event("e2", domain.EventTypePaymentReceived, "2025-01-05", -500),
		event("e1", domain.EventTypeRentCharge, "2025-01-01", 1200),
	)
	store := &mockHeadStore{}
	svc := newCheckpointService(src, store)

	snap, err := svc.Checkpoint(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, snap)

	events, _ := src.ListByTenant(context.Background(), "t1")
	blocks := chain.Build(events)
	require.Len(t, blocks, 2)

	assert.Equal(t, "t1", snap.TenantID)
	assert.Equal(t, 1, snap.BlockHeight)
	assert.Equal(t, blocks[1].Hash, snap.RootHash)
	assert.Equal(t, "e2", domain.Deref(snap.EventID))
	assert.False(t, snap.Timestamp.IsZero())
	assert.Equal(t, 1, store.count())
}

func TestCheckpoint_EmptyTenantWritesNothing(t *testing.T) {
	store := &mockHeadStore{}
	m := metrics.New()
	svc := NewCheckpointService(newMockEventSource(), store, lock.NewKeyedMutex(), chain.NewBuilder(), m)

	snap, err := svc.Checkpoint(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Equal(t, 0, store.count())
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Checkpoints.WithLabelValues(metrics.CheckpointEmpty)))
}

func TestCheckpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		setup    func(src *mockEventSource, store *mockHeadStore)
		locker   tenantLocker
		wantErr  error
	}{
		{
			name:     "blank tenant",
			tenantID: "  ",
			wantErr:  domain.ErrInvalidRequest,
		},
		{
			name:     "fetch failure",
			tenantID: "t1",
			setup: func(src *mockEventSource, _ *mockHeadStore) {
				src.err = fmt.Errorf("ListByTenant: %w: %w", domain.ErrUpstreamFetch, errBoom)
			},
			wantErr: domain.ErrUpstreamFetch,
		},
		{
			name:     "store failure",
			tenantID: "t1",
			setup: func(_ *mockEventSource, store *mockHeadStore) {
				store.appendErr = fmt.Errorf("Append: %w", domain.ErrStorage)
			},
			wantErr: domain.ErrStorage,
		},
		{
			name:     "lock not acquired",
			tenantID: "t1",
			locker:   failingLocker{err: fmt.Errorf("Lock: %w", domain.ErrLockNotAcquired)},
			wantErr:  domain.ErrLockNotAcquired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newMockEventSource()
			src.add("t1", event("e1", domain.EventTypeRentCharge, "2025-01-01", 1200))
			store := &mockHeadStore{}
			if tt.setup != nil {
				tt.setup(src, store)
			}
			var locker tenantLocker = lock.NewKeyedMutex()
			if tt.locker != nil {
				locker = tt.locker
			}
			svc := NewCheckpointService(src, store, locker, chain.NewBuilder(), nil)

			snap, err := svc.Checkpoint(context.Background(), tt.tenantID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, snap)
			if store.appendErr == nil {
				assert.Equal(t, 0, store.count())
			}
		})
	}
}

func TestCheckpoint_SerializedPerTenant(t *testing.T) {
	src := newMockEventSource()
	src.delay = 2 * time.Millisecond
	src.add("t1", event("e1", domain.EventTypeRentCharge, "2025-01-01", 1200))
	store := &mockHeadStore{}
	svc := newCheckpointService(src, store)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkpoint(context.Background(), "t1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, src.overlap.Load(), "checkpoints for one tenant overlapped")
	assert.Equal(t, 10, store.count())
}

func TestCheckpoint_IgnoresWallClockInHash(t *testing.T) {
	src := newMockEventSource()
	src.add("t1", event("e1", domain.EventTypeRentCharge, "2025-01-01", 1200))

	first := NewCheckpointService(src, &mockHeadStore{}, lock.NewKeyedMutex(),
		chain.NewBuilderWithClock(func() time.Time { return time.Unix(0, 0) }), nil)
	second := NewCheckpointService(src, &mockHeadStore{}, lock.NewKeyedMutex(),
		chain.NewBuilderWithClock(func() time.Time { return time.Unix(1_900_000_000, 0) }), nil)

	a, err := first.Checkpoint(context.Background(), "t1")
	require.NoError(t, err)
	b, err := second.Checkpoint(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, a.RootHash, b.RootHash)
}
