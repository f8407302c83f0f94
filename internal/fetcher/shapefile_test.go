package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapefileArchive(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "a.zip")
	writeZip(t, p, [][2]string{
		{"cb_2023_us_state_500k.shp", "shp-bytes"},
		{"cb_2023_us_state_500k.dbf", "dbf-bytes"},
	})
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return data
}

func TestFetchShapefile(t *testing.T) {
	archive := shapefileArchive(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.Copy(w, bytes.NewReader(archive))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "refdata")
	shpPath, err := FetchShapefile(context.Background(), testFetcher(), srv.URL+"/states.zip", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "cb_2023_us_state_500k.shp"), shpPath)
	assert.FileExists(t, filepath.Join(dest, "cb_2023_us_state_500k.dbf"))

	// Re-run skips the download: the archive is already on disk.
	_, err = FetchShapefile(context.Background(), testFetcher(), srv.URL+"/states.zip", dest)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchShapefileNoShpInArchive(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.zip")
	writeZip(t, p, [][2]string{{"readme.txt", "no shapes here"}})
	archive, err := os.ReadFile(p)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(w, bytes.NewReader(archive))
	}))
	defer srv.Close()

	_, err = FetchShapefile(context.Background(), testFetcher(), srv.URL+"/bad.zip", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .shp")
}
