package refdata

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"
)

// Prepared cache format: magic header, then per unit a length-prefixed key
// and a length-prefixed EWKB geometry. Loading it skips shapefile parsing
// entirely, which matters for ~33k ZIP polygons at worker startup.

var cacheMagic = []byte("ZMREF1\n")

var errNoCache = eris.New("refdata: no prepared cache")

// cachePath returns the prepared cache location for a dataset, or empty
// when no cache directory is configured.
func (s *Store) cachePath(dataset string) string {
	if s.cfg.CacheDir == "" {
		return ""
	}
	return filepath.Join(s.cfg.CacheDir, dataset+".ewkb")
}

// Prepare parses the dataset's shapefile and writes the EWKB cache.
// Returns the cache path and the number of units written.
func (s *Store) Prepare(dataset string) (string, int, error) {
	var shpPath, keyField string
	switch dataset {
	case DatasetZIP:
		shpPath, keyField = s.cfg.ZIPShapefile, s.cfg.ZIPKeyField
	case DatasetState:
		shpPath, keyField = s.cfg.StateShapefile, s.cfg.StateKeyField
	default:
		return "", 0, eris.Errorf("refdata: dataset %q cannot be prepared", dataset)
	}

	cachePath := s.cachePath(dataset)
	if cachePath == "" {
		return "", 0, eris.New("refdata: no cache directory configured")
	}

	units, err := readShapefile(shpPath, keyField)
	if err != nil {
		return "", 0, err
	}

	if err := writeCache(cachePath, units); err != nil {
		return "", 0, err
	}

	zap.L().Info("refdata: cache prepared",
		zap.String("dataset", dataset),
		zap.String("path", cachePath),
		zap.Int("units", len(units)),
	)
	return cachePath, len(units), nil
}

func writeCache(path string, units []Unit) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "refdata: create cache dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "refdata: create cache %s", path)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if _, err := w.Write(cacheMagic); err != nil {
		return eris.Wrap(err, "refdata: write cache magic")
	}

	var lenBuf [binary.MaxVarintLen64]byte
	writeBlob := func(b []byte) error {
		n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
		if _, err := w.Write(lenBuf[:n]); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	}

	for _, u := range units {
		data, err := ewkb.Marshal(u.Geom, ewkb.NDR)
		if err != nil {
			return eris.Wrapf(err, "refdata: encode geometry for %s", u.Key)
		}
		if err := writeBlob([]byte(u.Key)); err != nil {
			return eris.Wrap(err, "refdata: write cache key")
		}
		if err := writeBlob(data); err != nil {
			return eris.Wrap(err, "refdata: write cache geometry")
		}
	}

	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "refdata: flush cache")
	}
	return nil
}

func readCache(path string) ([]Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNoCache
		}
		return nil, eris.Wrapf(err, "refdata: open cache %s", path)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)

	magic := make([]byte, len(cacheMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != string(cacheMagic) {
		return nil, eris.Errorf("refdata: %s is not a prepared cache", path)
	}

	readBlob := func() ([]byte, error) {
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	var units []Unit
	for {
		key, err := readBlob()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: read cache %s", path)
		}
		data, err := readBlob()
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: read cache %s", path)
		}

		g, err := ewkb.Unmarshal(data)
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: decode cached geometry for %s", key)
		}
		mp, ok := g.(*geom.MultiPolygon)
		if !ok {
			return nil, eris.Errorf("refdata: cached geometry for %s is %T, want MultiPolygon", key, g)
		}
		units = append(units, Unit{Key: string(key), Geom: mp})
	}

	if len(units) == 0 {
		return nil, eris.Errorf("refdata: cache %s is empty", path)
	}
	return units, nil
}
