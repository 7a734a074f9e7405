package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencerdash/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCache_LoadsOnce(t *testing.T) {
	paths, _ := writeDataset(t)
	cache := NewCache(paths.DatasetFiles(), quietLogger(), nil)
	assert.False(t, cache.Loaded())

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.Loaded())
	assert.Equal(t, SourceDefault, first.Source)

	// Removing the files proves later calls do not touch the disk
	for _, path := range paths.DatasetFiles() {
		require.NoError(t, os.Remove(path))
	}

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCache_ConcurrentGetSharesSnapshot(t *testing.T) {
	paths, _ := writeDataset(t)
	cache := NewCache(paths.DatasetFiles(), quietLogger(), nil)

	const callers = 8
	results := make([]*Snapshot, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}
	wg.Wait()

	for _, snap := range results[1:] {
		assert.Same(t, results[0], snap)
	}
}

func TestCache_LoadSurvivesCallerCancellation(t *testing.T) {
	paths, tables := writeDataset(t)
	cache := NewCache(paths.DatasetFiles(), quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := cache.Get(ctx)
	require.NoError(t, err, "a disconnected first caller must not fail the shared load")
	assert.Len(t, snap.Tables.Tracking, len(tables.Tracking))
	assert.True(t, cache.Loaded())
}

func TestCache_FailureIsNotCached(t *testing.T) {
	paths, _ := writeDataset(t)
	payouts := paths.GetDatasetPath(domain.EntityPayouts)
	data, err := os.ReadFile(payouts)
	require.NoError(t, err)
	require.NoError(t, os.Remove(payouts))

	cache := NewCache(paths.DatasetFiles(), quietLogger(), nil)
	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrMissingFile)
	assert.False(t, cache.Loaded())

	require.NoError(t, os.WriteFile(payouts, data, 0644))
	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Tables.Payouts, 20)
}

func TestCache_ReloadBumpsVersion(t *testing.T) {
	paths, _ := writeDataset(t)
	cache := NewCache(paths.DatasetFiles(), quietLogger(), nil)

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Reload(context.Background())
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)
	assert.Equal(t, first.Tables, second.Tables)

	current, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestLoadUpload(t *testing.T) {
	snap, err := LoadUpload(context.Background(), readersFor(t, validContents()), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceUpload, snap.Source)
	assert.NotZero(t, snap.Version)
	assert.Len(t, snap.Tables.Tracking, 2)
}
