package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoringTable() Table {
	t := NewTable("PLAYER_NAME", "PTS_PER_GAME", "season")
	t.AppendRow([]string{"LeBron James", "25.7", "2023-24"})
	t.AppendRow([]string{"Stephen Curry", "26.4", "2023-24"})
	t.AppendRow([]string{"Luka Doncic", "33.9", "2023-24"})
	return t
}

func TestAppendRowPadsShortRows(t *testing.T) {
	table := NewTable("A", "B", "C")
	table.AppendRow([]string{"1"})
	table.AppendRow([]string{"1", "2", "3", "4"})

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
	// Extra cells beyond the column count are dropped.
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
}

func TestFilterPreservesColumns(t *testing.T) {
	table := scoringTable()
	idx := table.ColumnIndex("PTS_PER_GAME")
	require.GreaterOrEqual(t, idx, 0)

	out := table.Filter(func(row []string) bool {
		v, ok := table.Float(row, idx)
		return ok && v > 26
	})
	assert.Equal(t, table.Columns, out.Columns)
	assert.Equal(t, 2, out.Len())
	// Source table is untouched.
	assert.Equal(t, 3, table.Len())
}

func TestHeadBounds(t *testing.T) {
	table := scoringTable()
	assert.Equal(t, 2, table.Head(2).Len())
	assert.Equal(t, 3, table.Head(10).Len())
	assert.Equal(t, 0, table.Head(0).Len())
}

func TestFloatRejectsBadCells(t *testing.T) {
	table := NewTable("X")
	table.AppendRow([]string{" 1.5 "})
	table.AppendRow([]string{"DNP"})

	v, ok := table.Float(table.Rows[0], 0)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = table.Float(table.Rows[1], 0)
	assert.False(t, ok)
	_, ok = table.Float(table.Rows[0], -1)
	assert.False(t, ok)
	_, ok = table.Float(table.Rows[0], 5)
	assert.False(t, ok)
}

func TestCSVRoundTrip(t *testing.T) {
	table := scoringTable()

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestReadCSVEmptyInput(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Empty(t, got.Columns)
}

func TestMarshalRecords(t *testing.T) {
	table := NewTable("PLAYER_NAME", "PTS_PER_GAME")
	table.AppendRow([]string{"LeBron James", "25.7"})

	b, err := table.MarshalRecords()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"PLAYER_NAME": "LeBron James"`)
}

func TestDatasetTableNamesSorted(t *testing.T) {
	ds := Dataset{"team_stats": {}, "players": {}, "player_stats": {}}
	assert.Equal(t, []string{"player_stats", "players", "team_stats"}, ds.TableNames())
	assert.False(t, ds.Empty())
	assert.True(t, Dataset{}.Empty())
}
