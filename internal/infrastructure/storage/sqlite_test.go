package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_market_overview/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fetch_log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &domain.FetchRecord{Total: 2400, Filtered: 310, Duration: 184, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveFetch(ctx, rec))
	assert.Equal(t, int64(1), rec.ID)

	failed := &domain.FetchRecord{Error: "timeout", Duration: 10000, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveFetch(ctx, failed))
	assert.Equal(t, int64(2), failed.ID)
}

func TestSQLiteStore_ListFetches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveFetch(ctx, &domain.FetchRecord{
			Total:     100 + i,
			Filtered:  i,
			Duration:  int64(i * 10),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := store.ListFetches(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(5), records[0].ID)
	assert.Equal(t, 104, records[0].Total)
	assert.Equal(t, int64(40), records[0].Duration)
	assert.True(t, base.Add(4*time.Minute).Equal(records[0].CreatedAt))
	assert.Equal(t, int64(3), records[2].ID)
}

func TestSQLiteStore_ListFetchesEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.ListFetches(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
