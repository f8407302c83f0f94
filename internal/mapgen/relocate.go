package mapgen

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/zipmap/internal/geometry"
	"github.com/sells-group/zipmap/internal/refdata"
)

// Exclave relocation transforms. The coefficients are load-bearing: they
// are tuned to the reference geometries' coordinate system and to the label
// offset table, and every geometry must receive its transform exactly once.
var (
	alaskaTransform     = geometry.Affine{ScaleX: 0.45, ScaleY: 0.75, DX: -55, DY: -23}
	hawaiiTransform     = geometry.Affine{ScaleX: 2.25, ScaleY: 2.25, DX: 247, DY: -24}
	puertoRicoTransform = geometry.Affine{ScaleX: 3.75, ScaleY: 3.75, DX: 171.5, DY: -47}
)

// stateTransforms keys the same transforms by abbreviation so state outlines
// stay registered with the unit fills underneath them.
var stateTransforms = map[string]geometry.Affine{
	"AK": alaskaTransform,
	"HI": hawaiiTransform,
	"PR": puertoRicoTransform,
}

// exclaveTransform classifies a geometry by its pre-transform bounding box.
// Returns the transform and true for AK/HI/PR; false for contiguous-48 and
// anything else (which the extent filter has already dropped).
func exclaveTransform(mp *geom.MultiPolygon) (geometry.Affine, bool) {
	b := mp.Bounds()
	minX, minY, maxY := b.Min(0), b.Min(1), b.Max(1)
	switch {
	case minX > -170 && minX < -130 && minY > 50 && minY < 72: // Alaska
		return alaskaTransform, true
	case minX > -68 && minX < -65 && maxY < 30: // Puerto Rico
		return puertoRicoTransform, true
	case minX > -172 && minX < -154 && minY < 50: // Hawaii
		return hawaiiTransform, true
	}
	return geometry.Affine{}, false
}

// RelocateUnits moves exclave geometries into the packed inset layout.
// Pure mapping stage: the input slice and its geometries are untouched.
func RelocateUnits(joined []JoinedUnit) []JoinedUnit {
	out := make([]JoinedUnit, len(joined))
	copy(out, joined)
	for i, u := range out {
		if t, ok := exclaveTransform(u.Geom); ok {
			out[i].Geom = t.Apply(u.Geom)
		}
	}
	return out
}

// RelocateJoinedStates applies the abbreviation-keyed transforms to joined
// state units. Bounding-box classification cannot be used here: Alaska's
// real geometry reaches west of the Alaska window and across the
// antimeridian, so its bounding box matches no window at all.
func RelocateJoinedStates(joined []JoinedUnit) []JoinedUnit {
	out := make([]JoinedUnit, len(joined))
	copy(out, joined)
	for i, u := range out {
		if t, ok := stateTransforms[u.Key]; ok {
			out[i].Geom = t.Apply(u.Geom)
		}
	}
	return out
}

// RelocateStates applies the identical transforms to state boundaries,
// keyed by abbreviation rather than bounding box.
func RelocateStates(states []refdata.Unit) []refdata.Unit {
	out := make([]refdata.Unit, len(states))
	copy(out, states)
	for i, st := range out {
		if t, ok := stateTransforms[st.Key]; ok {
			out[i].Geom = t.Apply(st.Geom)
		}
	}
	return out
}
