package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

func TestFileChainHeadStore_AppendAndLatest(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, tenant := range []string{"t1", "t2", "t1"} {
		_, err := store.Append(ctx, &domain.ChainHeadSnapshot{
			TenantID:    tenant,
			BlockHeight: i + 1,
			RootHash:    "h" + string(rune('a'+i)),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hc", latest.RootHash)

	t2, err := store.LatestForTenant(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "hb", t2.RootHash)

	none, err := store.LatestForTenant(ctx, "t3")
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := store.ListByTenant(ctx, "t1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hc", list[0].RootHash)
	assert.Equal(t, "ha", list[1].RootHash)
}

func TestFileChainHeadStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	written, err := store.Append(ctx, &domain.ChainHeadSnapshot{
		TenantID: "t1", BlockHeight: 2, RootHash: "abc", EventID: domain.StringPtr("e2"),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.LatestForTenant(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, written.ID, got.ID)
	assert.Equal(t, 2, got.BlockHeight)
	assert.Equal(t, "e2", domain.Deref(got.EventID))
	assert.True(t, written.Timestamp.Equal(got.Timestamp))
}

func TestFileChainHeadStore_DropsTornTail(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	_, err = store.Append(ctx, &domain.ChainHeadSnapshot{TenantID: "t1", BlockHeight: 1, RootHash: "first"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	path := filepath.Join(dir, chainHeadFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"00000000-0000-0000-0000-0000000000`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)

	got, err := reopened.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", got.RootHash)

	_, err = reopened.Append(ctx, &domain.ChainHeadSnapshot{TenantID: "t1", BlockHeight: 2, RootHash: "second"})
	require.NoError(t, err)
	require.NoError(t, reopened.Close())

	again, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { again.Close() })
	list, err := again.ListByTenant(ctx, "t1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestFileChainHeadStore_AppendAfterShortWriteInSameProcess(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	_, err = store.Append(ctx, &domain.ChainHeadSnapshot{TenantID: "t1", BlockHeight: 1, RootHash: "first", Timestamp: base})
	require.NoError(t, err)

	// Leftover bytes of a record whose write failed part way.
	_, err = store.f.Write([]byte(`{"id":"0000`))
	require.NoError(t, err)

	_, err = store.Append(ctx, &domain.ChainHeadSnapshot{TenantID: "t1", BlockHeight: 2, RootHash: "second", Timestamp: base.Add(time.Minute)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	raw, err := os.ReadFile(filepath.Join(dir, chainHeadFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `{"id":"0000{`)

	reopened, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	list, err := reopened.ListByTenant(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].RootHash)
	assert.Equal(t, "first", list[1].RootHash)
}

func TestFileChainHeadStore_LegacyRecordWithoutTenant(t *testing.T) {
	dir := t.TempDir()
	line := `{"id":"6f1c1c1e-8f43-4f7e-a8a4-0a0d1e5a9b11","tenantId":null,"blockHeight":3,"rootHash":"legacy","eventId":null,"timestamp":"2024-06-01T00:00:00Z"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, chainHeadFileName), []byte(line), 0o644))

	store, err := OpenFileChainHeadStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	got, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.HasTenant())
	assert.Equal(t, "legacy", got.RootHash)
}
