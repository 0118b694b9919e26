// Package dataset defines the tabular data model shared by collection,
// storage, and retrieval: a Dataset is a named collection of Tables, and a
// Table is an ordered rectangular collection of string-valued columns.
package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// Table is an ordered rectangular collection of named columns. All cell
// values are strings; numeric columns are parsed on demand.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Dataset maps table names to tables. One collection run produces one
// Dataset atomically.
type Dataset map[string]Table

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) Table {
	return Table{Columns: columns}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// AppendRow adds a row. Short rows are padded with empty cells so the
// table stays rectangular.
func (t *Table) AppendRow(row []string) {
	for len(row) < len(t.Columns) {
		row = append(row, "")
	}
	t.Rows = append(t.Rows, row[:len(t.Columns)])
}

// Filter returns a new table containing the rows for which pred is true.
// Column order is preserved.
func (t Table) Filter(pred func(row []string) bool) Table {
	out := Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if pred(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns a table with at most n leading rows.
func (t Table) Head(n int) Table {
	if n >= len(t.Rows) {
		return t
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Concat appends the rows of other. Both tables must share the same
// column layout; rows are copied verbatim.
func (t *Table) Concat(other Table) {
	t.Rows = append(t.Rows, other.Rows...)
}

// Records converts rows to a record-wise representation, one map per row
// keyed by column name. Used for JSON serialization.
func (t Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// Float parses the cell at (row, col) as a float64. Returns ok=false for
// missing columns and unparseable values.
func (t Table) Float(row []string, col int) (float64, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// TableNames returns the dataset's table names in sorted order.
func (d Dataset) TableNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the dataset contains no tables.
func (d Dataset) Empty() bool { return len(d) == 0 }
