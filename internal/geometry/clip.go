package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Rect is an axis-aligned clipping window.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether the point lies inside or on the boundary.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// ContainsBounds reports whether the bounds lie strictly inside the window.
func (r Rect) ContainsBounds(b *geom.Bounds) bool {
	return b.Min(0) > r.MinX && b.Max(0) < r.MaxX &&
		b.Min(1) > r.MinY && b.Max(1) < r.MaxY
}

// ClipToRect intersects a MultiPolygon with a rectangular window using
// Sutherland–Hodgman clipping per ring. Exact intersection, not a
// bounding-box test: partially overlapping polygons come back trimmed to
// the window. Returns nil when nothing survives.
func ClipToRect(mp *geom.MultiPolygon, r Rect) *geom.MultiPolygon {
	out := geom.NewMultiPolygon(geom.XY)

	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 {
			continue
		}

		outer := clipRing(ringPoints(p.LinearRing(0)), r)
		if len(outer) < 3 {
			continue
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, closeRing(outer))); err != nil {
			continue
		}
		for j := 1; j < p.NumLinearRings(); j++ {
			hole := clipRing(ringPoints(p.LinearRing(j)), r)
			if len(hole) < 3 {
				continue
			}
			_ = poly.Push(geom.NewLinearRingFlat(geom.XY, closeRing(hole)))
		}

		_ = out.Push(poly)
	}

	if out.NumPolygons() == 0 {
		return nil
	}
	return out
}

type point struct{ x, y float64 }

// ringPoints extracts ring vertices, dropping a duplicated closing vertex.
func ringPoints(ring *geom.LinearRing) []point {
	flat := ring.FlatCoords()
	stride := ring.Stride()
	n := len(flat) / stride
	if n > 1 && flat[0] == flat[(n-1)*stride] && flat[1] == flat[(n-1)*stride+1] {
		n--
	}
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		pts[i] = point{flat[i*stride], flat[i*stride+1]}
	}
	return pts
}

// closeRing flattens points into closed flat coords (first == last).
func closeRing(pts []point) []float64 {
	flat := make([]float64, 0, (len(pts)+1)*2)
	for _, p := range pts {
		flat = append(flat, p.x, p.y)
	}
	flat = append(flat, pts[0].x, pts[0].y)
	return flat
}

// clipRing runs Sutherland–Hodgman against the four window edges.
func clipRing(pts []point, r Rect) []point {
	edges := []struct {
		inside    func(point) bool
		intersect func(a, b point) point
	}{
		{
			func(p point) bool { return p.x >= r.MinX },
			func(a, b point) point { return intersectVertical(a, b, r.MinX) },
		},
		{
			func(p point) bool { return p.x <= r.MaxX },
			func(a, b point) point { return intersectVertical(a, b, r.MaxX) },
		},
		{
			func(p point) bool { return p.y >= r.MinY },
			func(a, b point) point { return intersectHorizontal(a, b, r.MinY) },
		},
		{
			func(p point) bool { return p.y <= r.MaxY },
			func(a, b point) point { return intersectHorizontal(a, b, r.MaxY) },
		},
	}

	for _, e := range edges {
		if len(pts) == 0 {
			return nil
		}
		var out []point
		prev := pts[len(pts)-1]
		prevIn := e.inside(prev)
		for _, cur := range pts {
			curIn := e.inside(cur)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, e.intersect(prev, cur), cur)
			case !curIn && prevIn:
				out = append(out, e.intersect(prev, cur))
			}
			prev, prevIn = cur, curIn
		}
		pts = out
	}
	return pts
}

func intersectVertical(a, b point, x float64) point {
	t := (x - a.x) / (b.x - a.x)
	return point{x, a.y + t*(b.y-a.y)}
}

func intersectHorizontal(a, b point, y float64) point {
	t := (y - a.y) / (b.y - a.y)
	return point{a.x + t*(b.x-a.x), y}
}

// Area returns the planar area of a MultiPolygon: outer rings minus holes.
func Area(mp *geom.MultiPolygon) float64 {
	var total float64
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		for j := 0; j < p.NumLinearRings(); j++ {
			a := math.Abs(ringArea(p.LinearRing(j)))
			if j == 0 {
				total += a
			} else {
				total -= a
			}
		}
	}
	return total
}

// ringArea is the signed shoelace area of a ring.
func ringArea(ring *geom.LinearRing) float64 {
	pts := ringPoints(ring)
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	prev := pts[len(pts)-1]
	for _, cur := range pts {
		sum += prev.x*cur.y - cur.x*prev.y
		prev = cur
	}
	return sum / 2
}
