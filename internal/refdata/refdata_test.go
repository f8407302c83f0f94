package refdata

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestShapefile creates a polygon shapefile with one square per key.
func writeTestShapefile(t *testing.T, path, field string, keys []string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{shp.StringField(field, 10)})

	for i, key := range keys {
		x := float64(i) * 2
		square := &shp.Polygon{
			Box:       shp.Box{MinX: x, MinY: 0, MaxX: x + 1, MaxY: 1},
			NumParts:  1,
			NumPoints: 5,
			Parts:     []int32{0},
			Points: []shp.Point{
				{X: x, Y: 0}, {X: x, Y: 1}, {X: x + 1, Y: 1}, {X: x + 1, Y: 0}, {X: x, Y: 0},
			},
		}
		w.Write(square)
		require.NoError(t, w.WriteAttribute(i, 0, key))
	}
	w.Close()

	// go-shp writes the attribute table to <base>dbf; the reader opens
	// <base>.dbf.
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
}

func TestStoreZIPUnits(t *testing.T) {
	dir := t.TempDir()
	shpPath := filepath.Join(dir, "zcta.shp")
	writeTestShapefile(t, shpPath, "ZIP_CODE", []string{"00501", "00601"})

	s := NewStore(Config{ZIPShapefile: shpPath})

	units, err := s.ZIPUnits()
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "00501", units[0].Key)
	assert.Equal(t, 1, units[0].Geom.NumPolygons())

	// Memoized: a second call returns the same slice with no re-read, even
	// after the backing file disappears.
	require.NoError(t, os.Remove(shpPath))
	again, err := s.ZIPUnits()
	require.NoError(t, err)
	assert.Equal(t, &units[0], &again[0])
}

func TestStoreStateUnitsFiltersTerritories(t *testing.T) {
	dir := t.TempDir()
	shpPath := filepath.Join(dir, "states.shp")
	writeTestShapefile(t, shpPath, "STATE_ABBR", []string{"AL", "VI", "GU", "MP", "AS", "TX"})

	s := NewStore(Config{StateShapefile: shpPath})

	units, err := s.StateUnits()
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "AL", units[0].Key)
	assert.Equal(t, "TX", units[1].Key)
}

func TestStoreLoadFailureNotCached(t *testing.T) {
	dir := t.TempDir()
	shpPath := filepath.Join(dir, "zcta.shp")

	s := NewStore(Config{ZIPShapefile: shpPath})

	_, err := s.ZIPUnits()
	require.Error(t, err)

	// A failed load must not poison the cache: create the file and retry.
	writeTestShapefile(t, shpPath, "ZIP_CODE", []string{"90210"})
	units, err := s.ZIPUnits()
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestStoreConcurrentFirstAccess(t *testing.T) {
	dir := t.TempDir()
	shpPath := filepath.Join(dir, "zcta.shp")
	writeTestShapefile(t, shpPath, "ZIP_CODE", []string{"10001", "10002"})

	s := NewStore(Config{ZIPShapefile: shpPath})

	var wg sync.WaitGroup
	results := make([][]Unit, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			units, err := s.ZIPUnits()
			assert.NoError(t, err)
			results[i] = units
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Len(t, r, 2)
		assert.Equal(t, &results[0][0], &r[0])
	}
}

func TestPrepareAndCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	shpPath := filepath.Join(dir, "zcta.shp")
	writeTestShapefile(t, shpPath, "ZIP_CODE", []string{"00501", "00601", "00602"})

	cfg := Config{ZIPShapefile: shpPath, CacheDir: filepath.Join(dir, "cache")}
	s := NewStore(cfg)

	cachePath, n, err := s.Prepare(DatasetZIP)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.FileExists(t, cachePath)

	// A fresh store must load from the cache alone.
	require.NoError(t, os.Remove(shpPath))
	s2 := NewStore(cfg)
	units, err := s2.ZIPUnits()
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "00602", units[2].Key)
	assert.Equal(t, 1, units[2].Geom.NumPolygons())
}

func TestPrepareUnknownDataset(t *testing.T) {
	s := NewStore(Config{CacheDir: t.TempDir()})
	_, _, err := s.Prepare("offsets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be prepared")
}

func TestReadOffsets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state_abbv_offsets.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"STATE_ABBR": "TX", "label_x": -99.3, "label_y": 31.4},
		{"STATE_ABBR": "RI", "label_x": -71.5, "label_y": 41.6}
	]`), 0o644))

	s := NewStore(Config{OffsetsFile: path})
	offsets, err := s.LabelOffsets()
	require.NoError(t, err)
	require.Len(t, offsets, 2)
	assert.InDelta(t, -99.3, offsets["TX"].X, 1e-9)
	assert.InDelta(t, 41.6, offsets["RI"].Y, 1e-9)
}

func TestReadOffsetsErrors(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(Config{OffsetsFile: filepath.Join(dir, "missing.json")})
	_, err := s.LabelOffsets()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "a list"}`), 0o644))
	s = NewStore(Config{OffsetsFile: bad})
	_, err = s.LabelOffsets()
	require.Error(t, err)
}
