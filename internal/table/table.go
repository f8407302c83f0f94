// Package table holds the parsed row/column representation of an input
// spreadsheet and its serialization helpers. The map pipeline only ever sees
// this form; raw file parsing stops here.
package table

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows, in source order. Rows shorter than
// the header are padded with empty cells at parse time.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex resolves a column by name. Matching ignores surrounding
// whitespace but is otherwise exact, so "zip" and "ZIP" are different
// columns, the same way they are in the uploaded file.
func (t Table) ColumnIndex(name string) (int, error) {
	want := strings.TrimSpace(name)
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == want {
			return i, nil
		}
	}
	return 0, eris.Errorf("table: column %q not found", name)
}

// Cell returns the value at (row, col), empty string when the row is short.
func (t Table) Cell(row, col int) string {
	if col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
