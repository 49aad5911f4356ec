package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/infra"
	"github.com/seenimoa/stockpulse/pkg/models"
)

var sample = []models.Holding{
	{Symbol: "AAPL", Shares: 10},
	{Symbol: "MSFT", Shares: 8.5},
	{Symbol: "BRK-B", Shares: 1},
}

// exercise runs the shared contract against any driver.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "fresh store has no state")

	require.NoError(t, s.Save(ctx, sample))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	// shrinking the list drops removed rows
	require.NoError(t, s.Save(ctx, sample[1:2]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Holding{{Symbol: "MSFT", Shares: 8.5}}, got)

	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got, "saved empty list is state")
	assert.Empty(t, got)
}

func TestJSONStore(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "nested", "holdings.json"))
	defer s.Close()
	exercise(t, s)
}

func TestJSONStoreFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	s := NewJSONStore(path)
	require.NoError(t, s.Save(context.Background(), sample[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"symbol":"AAPL","shares":10}]`, string(data))
}

func TestJSONStoreBlankFileIsNoState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	got, err := NewJSONStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewJSONStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir(), infra.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestBadgerStoreReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadgerStore(dir, infra.NopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sample))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir, infra.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestBadgerStoreFailedSaveKeepsPrevious(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir(), infra.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(context.Background(), sample))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Save(ctx, []models.Holding{{Symbol: "TSLA", Shares: 3}})
	require.ErrorIs(t, err, context.Canceled)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample, got, "cleared rows are rolled back with the failed write")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StorageConfig{Driver: "json", Path: filepath.Join(dir, "h.json")}, infra.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open(config.StorageConfig{Driver: "badger", Path: filepath.Join(dir, "h.json")}, infra.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())
	assert.DirExists(t, filepath.Join(dir, "h.badger"))

	_, err = Open(config.StorageConfig{Driver: "sqlite"}, infra.NopLogger())
	assert.Error(t, err)
}
