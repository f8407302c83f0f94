package table

import (
	"bytes"
	"encoding/csv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zipmap/internal/model"
)

// ReportCSV serializes the unassigned-units report with a geography-specific
// key header. Row order is preserved from the report builder.
func ReportCSV(entries []model.UnassignedEntry, geography model.Geography) ([]byte, error) {
	keyHeader := "zip_code"
	if geography == model.GeographyState {
		keyHeader = "state"
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{keyHeader, "assigned_value"}); err != nil {
		return nil, eris.Wrap(err, "table: write report header")
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Key, e.ResolvedValue}); err != nil {
			return nil, eris.Wrap(err, "table: write report row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "table: flush report")
	}
	return buf.Bytes(), nil
}
