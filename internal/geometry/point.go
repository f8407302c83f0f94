package geometry

import (
	"sort"

	"github.com/twpayne/go-geom"
)

// RepresentativePoint returns a point guaranteed to lie inside the largest
// polygon of the MultiPolygon. The ring centroid is used when it falls
// inside; otherwise the midpoint of the widest horizontal span through the
// centroid's latitude. Needed for leader-line anchors, where a bounding-box
// center can land outside a concave or crescent-shaped state.
func RepresentativePoint(mp *geom.MultiPolygon) (float64, float64) {
	var ring []point
	var best float64
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 {
			continue
		}
		r := p.LinearRing(0)
		if a := ringArea(r); a > best || -a > best {
			if a < 0 {
				a = -a
			}
			best = a
			ring = ringPoints(r)
		}
	}
	if len(ring) == 0 {
		b := mp.Bounds()
		return (b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2
	}

	cx, cy := ringCentroid(ring)
	if pointInRing(cx, cy, ring) {
		return cx, cy
	}

	// Widest horizontal span through the centroid latitude.
	xs := crossings(ring, cy)
	if len(xs) < 2 {
		return cx, cy
	}
	var bestMid, bestW float64
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > bestW {
			bestW = w
			bestMid = (xs[i] + xs[i+1]) / 2
		}
	}
	return bestMid, cy
}

// ringCentroid is the area-weighted centroid of a simple ring.
func ringCentroid(pts []point) (float64, float64) {
	var a, cx, cy float64
	prev := pts[len(pts)-1]
	for _, cur := range pts {
		cross := prev.x*cur.y - cur.x*prev.y
		a += cross
		cx += (prev.x + cur.x) * cross
		cy += (prev.y + cur.y) * cross
		prev = cur
	}
	if a == 0 {
		return pts[0].x, pts[0].y
	}
	a /= 2
	return cx / (6 * a), cy / (6 * a)
}

// pointInRing is an even-odd ray cast.
func pointInRing(x, y float64, pts []point) bool {
	in := false
	prev := pts[len(pts)-1]
	for _, cur := range pts {
		if (cur.y > y) != (prev.y > y) {
			ix := prev.x + (y-prev.y)/(cur.y-prev.y)*(cur.x-prev.x)
			if x < ix {
				in = !in
			}
		}
		prev = cur
	}
	return in
}

// crossings returns sorted x coordinates where the ring crosses latitude y.
func crossings(pts []point, y float64) []float64 {
	var xs []float64
	prev := pts[len(pts)-1]
	for _, cur := range pts {
		if (cur.y > y) != (prev.y > y) {
			xs = append(xs, prev.x+(y-prev.y)/(cur.y-prev.y)*(cur.x-prev.x))
		}
		prev = cur
	}
	sort.Float64s(xs)
	return xs
}
