package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplens/hooplens/internal/dataset"
)

func testTable(rows ...[]string) dataset.Table {
	t := dataset.NewTable("PLAYER_NAME", "PTS_PER_GAME", "season")
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func TestLocalStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir(), nil)

	ds := dataset.Dataset{
		"players": testTable(
			[]string{"LeBron James", "25.7", "2023-24"},
			[]string{"Stephen Curry", "26.4", "2023-24"},
		),
		"empty": dataset.NewTable("A", "B"),
	}

	require.NoError(t, store.Save(ctx, ds, "nba-data"))

	loaded, err := store.Load(ctx, "nba-data", true)
	require.NoError(t, err)

	// The empty table was skipped, so only one group exists.
	require.Len(t, loaded, 1)
	got := loaded["players"]
	assert.Equal(t, ds["players"].Columns, got.Columns)
	assert.Equal(t, ds["players"].Rows, got.Rows)
}

func TestLocalStore_SaveWritesBothEncodings(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store := NewLocalStore(base, nil)

	ds := dataset.Dataset{"players": testTable([]string{"Nikola Jokic", "26.4", "2023-24"})}
	require.NoError(t, store.Save(ctx, ds, "nba-data"))

	entries, err := os.ReadDir(filepath.Join(base, "nba-data"))
	require.NoError(t, err)

	var csvs, jsons int
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".csv":
			csvs++
		case ".json":
			jsons++
		}
	}
	assert.Equal(t, 1, csvs)
	assert.Equal(t, 1, jsons)
}

func TestLocalStore_LoadMissingPrefix(t *testing.T) {
	store := NewLocalStore(t.TempDir(), nil)

	ds, err := store.Load(context.Background(), "never-written", true)
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

// writeSnapshot drops a raw CSV artifact with a controlled mtime, to make
// latest-only selection deterministic.
func writeSnapshot(t *testing.T, dir, filename, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestLocalStore_LatestOnlyPicksMostRecent(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "nba-data")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Minute)
	writeSnapshot(t, dir, "players_20240101_000000.csv", "PLAYER_NAME\nOld Row\n", old)
	writeSnapshot(t, dir, "players_20240201_000000.csv", "PLAYER_NAME\nNew Row\n", recent)

	store := NewLocalStore(base, nil)
	ds, err := store.Load(context.Background(), "nba-data", true)
	require.NoError(t, err)

	require.Contains(t, ds, "players")
	require.Equal(t, 1, ds["players"].Len())
	assert.Equal(t, "New Row", ds["players"].Rows[0][0])
}

func TestLocalStore_GroupsByNameBeforeFirstUnderscore(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "nba-data")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	now := time.Now()
	writeSnapshot(t, dir, "player_stats_20240101_000000.csv", "PLAYER_NAME\nA\n", now)
	writeSnapshot(t, dir, "teams_20240101_000000.csv", "TEAM_NAME\nB\n", now)

	store := NewLocalStore(base, nil)
	ds, err := store.Load(context.Background(), "nba-data", true)
	require.NoError(t, err)

	// "player_stats_..." collapses to group "player" under the
	// first-underscore rule; "teams_..." stays "teams".
	assert.Contains(t, ds, "player")
	assert.Contains(t, ds, "teams")
	assert.NotContains(t, ds, "player_stats")
}

func TestLocalStore_Snapshots(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "nba-data")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	now := time.Now()
	writeSnapshot(t, dir, "players_20240101_000000.csv", "PLAYER_NAME\nA\n", now)
	writeSnapshot(t, dir, "players_20240201_000000.csv", "PLAYER_NAME\nB\n", now)
	writeSnapshot(t, dir, "players_20240201_000000.json", "[]", now)

	store := NewLocalStore(base, nil)
	snaps, err := store.Snapshots(context.Background(), "nba-data")
	require.NoError(t, err)

	// JSON companions are not listed, only row-oriented artifacts.
	assert.Len(t, snaps, 2)
	for _, s := range snaps {
		assert.Equal(t, "players", s.Table)
	}
}
