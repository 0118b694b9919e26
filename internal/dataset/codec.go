package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// WriteCSV writes the table in row-oriented CSV form, header first.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table from CSV. The first record is the header.
// An empty input yields an empty table.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Table{Columns: records[0], Rows: records[1:]}, nil
}

// MarshalRecords serializes the table record-wise as indented JSON, the
// columnar-friendly companion encoding written next to every CSV snapshot.
func (t Table) MarshalRecords() ([]byte, error) {
	return json.MarshalIndent(t.Records(), "", "  ")
}
