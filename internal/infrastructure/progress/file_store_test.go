package progress

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	state := syncprogress.Fresh(syncprogress.JobHistoryBackward, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	state.CurrentPage = 3
	state.TotalPages = 9
	state.CurrentDate = "2024-01-01..2024-01-07"
	state.ProcessedIDs.Add(42)
	state.ProcessedIDs.Add(7)
	state.Incr("imported", 2)
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, syncprogress.JobHistoryBackward)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.CurrentPage)
	assert.Equal(t, 9, loaded.TotalPages)
	assert.Equal(t, "2024-01-01..2024-01-07", loaded.CurrentDate)
	assert.Equal(t, []int64{42, 7}, loaded.ProcessedIDs.IDs())
	assert.True(t, loaded.ProcessedIDs.Has(7))
	assert.Equal(t, int64(2), loaded.Extra["imported"])

	raw, err := os.ReadFile(store.Path(syncprogress.JobHistoryBackward))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"processedIds"`)
}

func TestFileStore_MissingFileIsFresh(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	state, err := store.Load(context.Background(), syncprogress.JobStatsImport)
	require.NoError(t, err)
	assert.Equal(t, syncprogress.JobStatsImport, state.Job)
	assert.Zero(t, state.CurrentPage)
	assert.Zero(t, state.ProcessedIDs.Len())
}

func TestFileStore_CorruptFileFallsBackToFresh(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(syncprogress.JobHistoryForward), []byte("{not json"), 0o644))

	state, err := store.Load(context.Background(), syncprogress.JobHistoryForward)
	require.Error(t, err)
	assert.Equal(t, syncprogress.JobHistoryForward, state.Job)
	assert.NotNil(t, state.ProcessedIDs)
	assert.Zero(t, state.Processed)
}

func TestFileStore_SanitizesJobName(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "history_backward.json", filepath.Base(store.Path("history_backward")))
	assert.Equal(t, "___etc_passwd.json", filepath.Base(store.Path("../etc/passwd")))
}

func TestMemoryStore_CopiesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	state := syncprogress.Fresh("job", time.Now())
	state.ProcessedIDs.Add(1)
	require.NoError(t, store.Save(ctx, state))

	state.ProcessedIDs.Add(2)
	loaded, err := store.Load(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, loaded.ProcessedIDs.IDs())
	assert.Equal(t, 1, store.Saves())
}
