package mapgen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/table"
)

// unitsFor builds bare reference units; geometry is irrelevant to the join.
func unitsFor(keys ...string) []refdata.Unit {
	units := make([]refdata.Unit, len(keys))
	for i, k := range keys {
		units[i] = refdata.Unit{Key: k, Geom: conusSquare(i)}
	}
	return units
}

func zipRequest() model.MapRequest {
	return model.MapRequest{
		KeyColumn:   "ZIP",
		ValueColumn: "Region",
		Palette:     []string{"#111111", "#222222"},
		Geography:   model.GeographyZIP,
	}
}

func TestJoinPreservesAllUnits(t *testing.T) {
	units := unitsFor("00501", "00601", "00602")
	tbl := table.Table{
		Columns: []string{"ZIP", "Region"},
		Rows:    [][]string{{"501", "East"}},
	}

	joined, err := Join(units, tbl, zipRequest())
	require.NoError(t, err)

	// Left join: output cardinality equals reference cardinality.
	require.Len(t, joined, len(units))
	assert.Equal(t, "East", joined[0].Value)
	assert.False(t, joined[0].OriginallyUnassigned)
	assert.True(t, joined[1].OriginallyUnassigned)
	assert.True(t, joined[2].OriginallyUnassigned)
}

func TestJoinCardinalityWithDuplicates(t *testing.T) {
	units := unitsFor("00501", "00601")
	var rows [][]string
	for i := 0; i < 50; i++ {
		rows = append(rows, []string{"00501", fmt.Sprintf("v%d", i)})
	}
	tbl := table.Table{Columns: []string{"ZIP", "Region"}, Rows: rows}

	joined, err := Join(units, tbl, zipRequest())
	require.NoError(t, err)
	assert.Len(t, joined, 2)
	// Duplicate keys resolve last-wins in source order.
	assert.Equal(t, "v49", joined[0].Value)
}

func TestJoinLastWinsIncludesBlank(t *testing.T) {
	units := unitsFor("00501")
	tbl := table.Table{
		Columns: []string{"ZIP", "Region"},
		Rows: [][]string{
			{"00501", "East"},
			{"00501", ""},
		},
	}

	joined, err := Join(units, tbl, zipRequest())
	require.NoError(t, err)
	// The later blank row wins, leaving the unit unassigned.
	assert.True(t, joined[0].OriginallyUnassigned)
	assert.Equal(t, "", joined[0].Value)
}

func TestJoinStateGeographyFoldsCase(t *testing.T) {
	units := unitsFor("RI", "CT")
	tbl := table.Table{
		Columns: []string{"State", "Region"},
		Rows:    [][]string{{" ri ", "New England"}},
	}
	req := zipRequest()
	req.KeyColumn = "State"
	req.Geography = model.GeographyState

	joined, err := Join(units, tbl, req)
	require.NoError(t, err)
	assert.Equal(t, "New England", joined[0].Value)
	assert.True(t, joined[1].OriginallyUnassigned)
}

func TestJoinMissingColumn(t *testing.T) {
	tbl := table.Table{Columns: []string{"ZIP"}}

	_, err := Join(unitsFor("00501"), tbl, zipRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "Region" not found`)
}
