package mapgen

import (
	"strings"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/table"
)

// Join left-joins table values onto the reference units: every unit appears
// in the output exactly once, in reference order, with an empty value when
// no normalized key matched. Duplicate input keys resolve last-wins, in
// source table order. The OriginallyUnassigned flag is computed here, before
// any imputation can run.
func Join(units []refdata.Unit, tbl table.Table, req model.MapRequest) ([]JoinedUnit, error) {
	keyIdx, err := tbl.ColumnIndex(req.KeyColumn)
	if err != nil {
		return nil, err
	}
	valIdx, err := tbl.ColumnIndex(req.ValueColumn)
	if err != nil {
		return nil, err
	}

	// Last write wins: later rows with the same normalized key overwrite
	// earlier ones, including rows whose value cell is blank.
	values := make(map[string]string, len(tbl.Rows))
	for i := range tbl.Rows {
		key := NormalizeKey(tbl.Cell(i, keyIdx), req.Geography)
		values[key] = strings.TrimSpace(tbl.Cell(i, valIdx))
	}

	joined := make([]JoinedUnit, len(units))
	for i, u := range units {
		val := values[u.Key]
		joined[i] = JoinedUnit{
			Key:                  u.Key,
			Geom:                 u.Geom,
			Value:                val,
			OriginallyUnassigned: val == "",
		}
	}
	return joined, nil
}
