package mapgen

import (
	"github.com/twpayne/go-geom"
)

// squareAt builds a unit square multipolygon with its lower-left corner at (x, y).
func squareAt(x, y float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygonFlat(geom.XY, []float64{
		x, y,
		x + 1, y,
		x + 1, y + 1,
		x, y + 1,
		x, y,
	}, [][]int{{10}})
	mp.SetSRID(4326)
	return mp
}

// conusSquare builds a small polygon strictly inside the continental window.
func conusSquare(i int) *geom.MultiPolygon {
	return squareAt(-100+2*float64(i), 35)
}
