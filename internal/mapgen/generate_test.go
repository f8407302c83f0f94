package mapgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/table"
)

type fixtureUnit struct {
	key  string
	x, y float64
}

// writeFixtureShapefile creates a polygon shapefile with one unit square per
// record, placed at real map coordinates so the extent filter keeps them.
func writeFixtureShapefile(t *testing.T, path, field string, units []fixtureUnit) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{shp.StringField(field, 10)})

	for i, u := range units {
		square := &shp.Polygon{
			Box:       shp.Box{MinX: u.x, MinY: u.y, MaxX: u.x + 1, MaxY: u.y + 1},
			NumParts:  1,
			NumPoints: 5,
			Parts:     []int32{0},
			Points: []shp.Point{
				{X: u.x, Y: u.y}, {X: u.x, Y: u.y + 1},
				{X: u.x + 1, Y: u.y + 1}, {X: u.x + 1, Y: u.y}, {X: u.x, Y: u.y},
			},
		}
		w.Write(square)
		require.NoError(t, w.WriteAttribute(i, 0, u.key))
	}
	w.Close()

	// go-shp writes the attribute table to <base>dbf; the reader opens
	// <base>.dbf.
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
}

func fixtureStore(t *testing.T) *refdata.Store {
	t.Helper()
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "zcta.shp")
	writeFixtureShapefile(t, zipPath, "ZIP_CODE", []fixtureUnit{
		{"00501", -100, 35},
		{"00601", -98, 35},
		{"00602", -96, 35},
	})

	statePath := filepath.Join(dir, "states.shp")
	writeFixtureShapefile(t, statePath, "STATE_ABBR", []fixtureUnit{
		{"TX", -101, 34},
		{"RI", -71.6, 41.5},
	})

	offsetsPath := filepath.Join(dir, "offsets.json")
	require.NoError(t, os.WriteFile(offsetsPath, []byte(`[
		{"STATE_ABBR": "TX", "label_x": -99.3, "label_y": 31.4},
		{"STATE_ABBR": "RI", "label_x": -71.5, "label_y": 41.6}
	]`), 0o644))

	return refdata.NewStore(refdata.Config{
		ZIPShapefile:   zipPath,
		StateShapefile: statePath,
		OffsetsFile:    offsetsPath,
	})
}

func TestGenerateEndToEnd(t *testing.T) {
	store := fixtureStore(t)

	tbl := table.Table{
		Columns: []string{"ZIP", "Value"},
		Rows:    [][]string{{"00501", "X"}, {"00601", "Y"}},
	}
	req := model.MapRequest{
		SchemaVersion: model.RequestSchemaVersion,
		KeyColumn:     "ZIP",
		ValueColumn:   "Value",
		Title:         "Coverage",
		Palette:       []string{"#111111", "#222222"},
		AutoFill:      true,
		Geography:     model.GeographyZIP,
	}

	fig, report, err := Generate(context.Background(), store, tbl, req)
	require.NoError(t, err)

	// 00602 had no input row; imputation resolves it from 00601.
	require.Len(t, report, 1)
	assert.Equal(t, model.UnassignedEntry{Key: "00602", ResolvedValue: "Y"}, report[0])

	// Two distinct values, deterministic legend order.
	require.Len(t, fig.Groups, 2)
	assert.Equal(t, "X", fig.Groups[0].Value)
	assert.Equal(t, "Y", fig.Groups[1].Value)
	assert.Len(t, fig.Groups[0].Geoms, 1)
	assert.Len(t, fig.Groups[1].Geoms, 2)

	assert.Equal(t, "Coverage", fig.Title)
	assert.Equal(t, "Value", fig.LegendTitle)
	assert.Len(t, fig.Boundaries, 2)

	// RI is in the small-state set and has a label offset, so it gets a
	// leader line; TX does not.
	require.Len(t, fig.Leaders, 1)

	// The figure renders and serializes deterministically.
	img, err := fig.Render()
	require.NoError(t, err)
	require.NotNil(t, img)
	var a, b bytes.Buffer
	require.NoError(t, fig.EncodePNG(&a))
	require.NoError(t, fig.EncodePNG(&b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestGenerateStateGeography(t *testing.T) {
	store := fixtureStore(t)

	tbl := table.Table{
		Columns: []string{"State", "Tier"},
		Rows:    [][]string{{"tx", "Gold"}},
	}
	req := model.MapRequest{
		SchemaVersion: model.RequestSchemaVersion,
		KeyColumn:     "State",
		ValueColumn:   "Tier",
		Title:         "Tiers",
		Palette:       []string{"#336699"},
		AutoFill:      true, // ignored for state geography
		Geography:     model.GeographyState,
	}

	fig, report, err := Generate(context.Background(), store, tbl, req)
	require.NoError(t, err)

	// RI stays unassigned: no imputation for states, so it reports the
	// sentinel.
	require.Len(t, report, 1)
	assert.Equal(t, model.UnassignedEntry{Key: "RI", ResolvedValue: "unassigned"}, report[0])

	require.Len(t, fig.Groups, 1)
	assert.Equal(t, "Gold", fig.Groups[0].Value)
}

func TestGenerateRejectsBadRequest(t *testing.T) {
	store := fixtureStore(t)
	req := model.MapRequest{SchemaVersion: model.RequestSchemaVersion}

	_, _, err := Generate(context.Background(), store, table.Table{}, req)
	require.Error(t, err)
}

func TestGenerateUnparseableColor(t *testing.T) {
	store := fixtureStore(t)

	tbl := table.Table{
		Columns: []string{"ZIP", "Value"},
		Rows:    [][]string{{"00501", "X"}},
	}
	req := model.MapRequest{
		SchemaVersion: model.RequestSchemaVersion,
		KeyColumn:     "ZIP",
		ValueColumn:   "Value",
		Title:         "Bad palette",
		Palette:       []string{"notacolor"},
		Geography:     model.GeographyZIP,
	}

	_, _, err := Generate(context.Background(), store, tbl, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "palette color")
}
