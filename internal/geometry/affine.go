// Package geometry provides the planar operations the map pipeline needs on
// top of the go-geom types: affine transforms, rectangle clipping, ring
// areas, and representative interior points.
package geometry

import (
	"github.com/twpayne/go-geom"
)

// Affine is a scale about the origin followed by a translation. It is the
// only transform family the exclave relocation needs.
type Affine struct {
	ScaleX float64
	ScaleY float64
	DX     float64
	DY     float64
}

// Apply returns a new MultiPolygon with every coordinate transformed.
// The input geometry is not modified. The transform is intentionally
// non-idempotent: applying it twice double-shifts.
func (a Affine) Apply(mp *geom.MultiPolygon) *geom.MultiPolygon {
	src := mp.FlatCoords()
	stride := mp.Stride()
	dst := make([]float64, len(src))
	for i := 0; i+1 < len(src); i += stride {
		dst[i] = src[i]*a.ScaleX + a.DX
		dst[i+1] = src[i+1]*a.ScaleY + a.DY
	}

	endss := make([][]int, len(mp.Endss()))
	for i, ends := range mp.Endss() {
		endss[i] = append([]int(nil), ends...)
	}

	return geom.NewMultiPolygonFlat(mp.Layout(), dst, endss)
}

// ApplyPoint transforms a single coordinate pair.
func (a Affine) ApplyPoint(x, y float64) (float64, float64) {
	return x*a.ScaleX + a.DX, y*a.ScaleY + a.DY
}
