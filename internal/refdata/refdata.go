// Package refdata loads and memoizes the reference datasets the map
// pipeline joins against: ZIP code boundaries, state boundaries, and the
// state label offset table. Each dataset is loaded at most once per process;
// a failed load is reported to every waiting caller and retried on the next
// access, so a transient failure never poisons the cache.
package refdata

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Dataset logical names accepted by Store.Load and the ref CLI commands.
const (
	DatasetZIP     = "zip"
	DatasetState   = "state"
	DatasetOffsets = "offsets"
)

// excludedStates are non-contiguous territories dropped from the state
// dataset unconditionally: they fall outside every plot window.
var excludedStates = map[string]bool{"VI": true, "GU": true, "MP": true, "AS": true}

// Unit is one immutable reference geometry. Downstream stages copy and
// transform; they never mutate the stored geometry.
type Unit struct {
	Key  string
	Geom *geom.MultiPolygon
}

// Label is a map-coordinate label anchor for a state abbreviation.
type Label struct {
	X float64
	Y float64
}

// Config locates the reference files on disk.
type Config struct {
	ZIPShapefile   string `yaml:"zip_shapefile" mapstructure:"zip_shapefile"`
	StateShapefile string `yaml:"state_shapefile" mapstructure:"state_shapefile"`
	OffsetsFile    string `yaml:"offsets_file" mapstructure:"offsets_file"`
	ZIPKeyField    string `yaml:"zip_key_field" mapstructure:"zip_key_field"`
	StateKeyField  string `yaml:"state_key_field" mapstructure:"state_key_field"`
	CacheDir       string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// Store memoizes reference datasets for the process lifetime. Safe for
// concurrent first access from multiple in-flight runs: one loader runs,
// everyone else waits and reads the cached value.
type Store struct {
	cfg Config

	mu      sync.Mutex
	zips    []Unit
	states  []Unit
	offsets map[string]Label
}

// NewStore creates a Store over the given file locations. Nothing is loaded
// until first access.
func NewStore(cfg Config) *Store {
	if cfg.ZIPKeyField == "" {
		cfg.ZIPKeyField = "ZIP_CODE"
	}
	if cfg.StateKeyField == "" {
		cfg.StateKeyField = "STATE_ABBR"
	}
	return &Store{cfg: cfg}
}

// ZIPUnits returns the ZIP boundary dataset, loading it on first call.
func (s *Store) ZIPUnits() ([]Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zips != nil {
		return s.zips, nil
	}
	units, err := s.loadUnits(s.cfg.ZIPShapefile, s.cfg.ZIPKeyField, DatasetZIP)
	if err != nil {
		return nil, err
	}
	s.zips = units
	return s.zips, nil
}

// StateUnits returns the state boundary dataset, loading it on first call.
// The four excluded territories are filtered at load time.
func (s *Store) StateUnits() ([]Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states != nil {
		return s.states, nil
	}
	units, err := s.loadUnits(s.cfg.StateShapefile, s.cfg.StateKeyField, DatasetState)
	if err != nil {
		return nil, err
	}
	kept := units[:0]
	for _, u := range units {
		if !excludedStates[u.Key] {
			kept = append(kept, u)
		}
	}
	s.states = kept
	return s.states, nil
}

// LabelOffsets returns the state label anchor table, loading it on first call.
func (s *Store) LabelOffsets() (map[string]Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offsets != nil {
		return s.offsets, nil
	}
	offsets, err := readOffsets(s.cfg.OffsetsFile)
	if err != nil {
		return nil, err
	}
	s.offsets = offsets
	return s.offsets, nil
}

// loadUnits prefers the prepared EWKB cache when one exists for the dataset,
// falling back to the shapefile.
func (s *Store) loadUnits(shpPath, keyField, dataset string) ([]Unit, error) {
	if shpPath == "" {
		return nil, eris.Errorf("refdata: no path configured for %s dataset", dataset)
	}

	if cachePath := s.cachePath(dataset); cachePath != "" {
		units, err := readCache(cachePath)
		if err == nil {
			zap.L().Debug("refdata: loaded from cache",
				zap.String("dataset", dataset),
				zap.Int("units", len(units)),
			)
			return units, nil
		}
		if !eris.Is(err, errNoCache) {
			return nil, err
		}
	}

	units, err := readShapefile(shpPath, keyField)
	if err != nil {
		return nil, err
	}
	zap.L().Info("refdata: loaded shapefile",
		zap.String("dataset", dataset),
		zap.String("path", shpPath),
		zap.Int("units", len(units)),
	)
	return units, nil
}
