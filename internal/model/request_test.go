package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRequestValidate(t *testing.T) {
	valid := MapRequest{
		KeyColumn:   "ZIP",
		ValueColumn: "Region",
		Palette:     []string{"#111111"},
		Geography:   GeographyZIP,
	}

	tests := []struct {
		name    string
		mutate  func(*MapRequest)
		wantErr string
	}{
		{"valid", func(r *MapRequest) {}, ""},
		{"missing key column", func(r *MapRequest) { r.KeyColumn = "" }, "key column"},
		{"missing value column", func(r *MapRequest) { r.ValueColumn = "" }, "value column"},
		{"empty palette", func(r *MapRequest) { r.Palette = nil }, "palette"},
		{"missing geography", func(r *MapRequest) { r.Geography = "" }, "geography is required"},
		{"unknown geography", func(r *MapRequest) { r.Geography = "county" }, "unknown geography"},
		{"state geography ok", func(r *MapRequest) { r.Geography = GeographyState }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Palette = append([]string(nil), valid.Palette...)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMapRequestNormalize(t *testing.T) {
	var req MapRequest
	req.Normalize()

	assert.Equal(t, RequestSchemaVersion, req.SchemaVersion)
	assert.Equal(t, GeographyZIP, req.Geography)
	assert.Equal(t, DefaultPalette, req.Palette)

	// Normalize must not overwrite explicit values.
	req2 := MapRequest{
		SchemaVersion: 1,
		Geography:     GeographyState,
		Palette:       []string{"#abcdef"},
	}
	req2.Normalize()
	assert.Equal(t, GeographyState, req2.Geography)
	assert.Equal(t, []string{"#abcdef"}, req2.Palette)
}
