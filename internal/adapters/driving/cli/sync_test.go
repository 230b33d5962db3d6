package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

func TestSyncCmd(t *testing.T) {
	s := setupTestServices(t)
	s.library.SyncFunc = func(context.Context) (*driving.SyncReport, error) {
		return &driving.SyncReport{Added: 2, Removed: 1, Reindexed: 3}, nil
	}

	out, err := execute(t, "", "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "Added:     2")
	assert.Contains(t, out, "Removed:   1")
	assert.Contains(t, out, "Reindexed: 3")
	assert.NotContains(t, out, "Failed")
	assert.Contains(t, out, "Library synchronised.")
}

func TestSyncCmd_ReportsFailures(t *testing.T) {
	s := setupTestServices(t)
	s.library.SyncFunc = func(context.Context) (*driving.SyncReport, error) {
		return &driving.SyncReport{Failed: 4}, nil
	}

	out, err := execute(t, "", "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "Failed:    4")
}

func TestSyncCmd_Error(t *testing.T) {
	s := setupTestServices(t)
	s.library.SyncFunc = func(context.Context) (*driving.SyncReport, error) {
		return nil, errors.New("library directory missing")
	}

	_, err := execute(t, "", "sync")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed: library directory missing")
}

func TestPruneCmd(t *testing.T) {
	s := setupTestServices(t)
	s.library.ClearReadingFunc = func(context.Context) (int, error) { return 3, nil }

	out, err := execute(t, "", "prune")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 reading documents")
}

func TestWatchCmd(t *testing.T) {
	s := setupTestServices(t)
	watched := false
	s.library.WatchFunc = func(ctx context.Context) error {
		watched = true
		assert.NotNil(t, ctx)
		return nil
	}

	out, err := execute(t, "", "watch")

	require.NoError(t, err)
	assert.True(t, watched)
	assert.Contains(t, out, "Watching library.")
	assert.Contains(t, out, "Stopped watching.")
}

func TestWatchCmd_Error(t *testing.T) {
	s := setupTestServices(t)
	s.library.WatchFunc = func(context.Context) error { return errors.New("inotify limit") }

	_, err := execute(t, "", "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed")
}

func TestSyncCommands_NotConfigured(t *testing.T) {
	SetServices(nil)
	t.Cleanup(resetFlags)

	for _, name := range []string{"sync", "prune", "watch"} {
		_, err := execute(t, "", name)
		assert.ErrorIs(t, err, errLibraryNotConfigured, name)
	}
}
