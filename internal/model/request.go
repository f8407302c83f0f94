package model

import (
	"github.com/rotisserie/eris"
)

// Geography selects which reference boundary dataset and which
// normalization rules apply to a map run.
type Geography string

const (
	// GeographyZIP joins on 5-digit ZIP codes and supports proximity imputation.
	GeographyZIP Geography = "zip"
	// GeographyState joins on two-letter state abbreviations. Imputation is
	// disabled for state geography: numeric adjacency has no meaning there.
	GeographyState Geography = "state"
)

// RequestSchemaVersion identifies the current MapRequest wire format.
// Bump when fields are added or reinterpreted so stored jobs stay readable.
const RequestSchemaVersion = 1

// MapRequest is the full configuration for one map generation run. It is
// immutable for the duration of the run and is persisted verbatim with the
// job so the worker never has to guess at absent fields.
type MapRequest struct {
	SchemaVersion int       `json:"schema_version" yaml:"schema_version"`
	KeyColumn     string    `json:"key_column" yaml:"key_column"`
	ValueColumn   string    `json:"value_column" yaml:"value_column"`
	Title         string    `json:"title,omitempty" yaml:"title,omitempty"`
	Palette       []string  `json:"palette" yaml:"palette"`
	AutoFill      bool      `json:"auto_fill" yaml:"auto_fill"`
	Geography     Geography `json:"geography" yaml:"geography"`
}

// DefaultPalette is the palette used when a request supplies none.
var DefaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Validate checks the request for configuration errors. A failed validation
// means the pipeline must not run; the message names the offending field.
func (r *MapRequest) Validate() error {
	if r.KeyColumn == "" {
		return eris.New("request: key column is required")
	}
	if r.ValueColumn == "" {
		return eris.New("request: value column is required")
	}
	if len(r.Palette) == 0 {
		return eris.New("request: palette must contain at least one color")
	}
	switch r.Geography {
	case GeographyZIP, GeographyState:
	case "":
		return eris.New("request: geography is required")
	default:
		return eris.Errorf("request: unknown geography %q", r.Geography)
	}
	return nil
}

// Normalize fills defaults that are safe to assume: the current schema
// version, ZIP geography, and the default palette.
func (r *MapRequest) Normalize() {
	if r.SchemaVersion == 0 {
		r.SchemaVersion = RequestSchemaVersion
	}
	if r.Geography == "" {
		r.Geography = GeographyZIP
	}
	if len(r.Palette) == 0 {
		r.Palette = append([]string(nil), DefaultPalette...)
	}
}
