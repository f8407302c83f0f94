package table

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// FromXLSXFile reads the first sheet of an XLSX file into a Table.
func FromXLSXFile(path string) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Table{}, eris.Wrapf(err, "table: open xlsx %s", path)
	}
	return fromXLSX(f)
}

// FromXLSXBytes reads the first sheet of an in-memory XLSX document.
// This is the path the worker takes: job inputs are stored as raw bytes.
func FromXLSXBytes(data []byte) (Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return Table{}, eris.Wrap(err, "table: open xlsx bytes")
	}
	return fromXLSX(f)
}

func fromXLSX(f *xlsx.File) (Table, error) {
	if len(f.Sheets) == 0 {
		return Table{}, eris.New("table: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return Table{}, eris.New("table: xlsx sheet is empty")
	}

	header := rowToStrings(sheet.Rows[0])
	if len(header) == 0 {
		return Table{}, eris.New("table: xlsx header row is empty")
	}

	t := Table{Columns: header}
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blank(cells) {
			continue
		}
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
