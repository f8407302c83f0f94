package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// box builds a rectangular MultiPolygon with a closed outer ring.
func box(minX, minY, maxX, maxY float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY)
	p := geom.NewPolygon(geom.XY)
	err := p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY,
	}))
	if err != nil {
		panic(err)
	}
	if err := mp.Push(p); err != nil {
		panic(err)
	}
	return mp
}

func TestAffineApply(t *testing.T) {
	a := Affine{ScaleX: 0.45, ScaleY: 0.75, DX: -55, DY: -23}
	mp := box(-160, 60, -150, 64)

	got := a.Apply(mp)
	b := got.Bounds()

	assert.InDelta(t, -160*0.45-55, b.Min(0), 1e-9)
	assert.InDelta(t, -150*0.45-55, b.Max(0), 1e-9)
	assert.InDelta(t, 60*0.75-23, b.Min(1), 1e-9)
	assert.InDelta(t, 64*0.75-23, b.Max(1), 1e-9)

	// Source geometry untouched.
	assert.InDelta(t, -160, mp.Bounds().Min(0), 1e-9)
}

func TestAffineNotIdempotent(t *testing.T) {
	a := Affine{ScaleX: 2, ScaleY: 2, DX: 10, DY: 10}
	mp := box(0, 0, 1, 1)

	once := a.Apply(mp)
	twice := a.Apply(once)

	assert.InDelta(t, 10, once.Bounds().Min(0), 1e-9)
	assert.InDelta(t, 30, twice.Bounds().Min(0), 1e-9)
}

func TestAffineApplyPoint(t *testing.T) {
	a := Affine{ScaleX: 3.75, ScaleY: 3.75, DX: 171.5, DY: -47}
	x, y := a.ApplyPoint(-66, 18)
	assert.InDelta(t, -66*3.75+171.5, x, 1e-9)
	assert.InDelta(t, 18*3.75-47, y, 1e-9)
}

func TestClipToRect(t *testing.T) {
	window := Rect{MinX: -130, MinY: 18, MaxX: -60, MaxY: 55}

	t.Run("entirely outside is dropped", func(t *testing.T) {
		mp := box(-150, 60, -140, 65)
		assert.Nil(t, ClipToRect(mp, window))
	})

	t.Run("entirely inside keeps area", func(t *testing.T) {
		mp := box(-100, 30, -90, 40)
		got := ClipToRect(mp, window)
		require.NotNil(t, got)
		assert.InDelta(t, Area(mp), Area(got), 1e-9)
	})

	t.Run("straddling edge is trimmed exactly", func(t *testing.T) {
		// Half of this 10x10 box hangs west of the window.
		mp := box(-135, 30, -125, 40)
		got := ClipToRect(mp, window)
		require.NotNil(t, got)
		assert.InDelta(t, 50, Area(got), 1e-9)
		assert.InDelta(t, -130, got.Bounds().Min(0), 1e-9)
	})

	t.Run("corner overlap", func(t *testing.T) {
		mp := box(-65, 50, -55, 60)
		got := ClipToRect(mp, window)
		require.NotNil(t, got)
		assert.InDelta(t, 25, Area(got), 1e-9)
	})

	t.Run("hole is clipped too", func(t *testing.T) {
		mp := geom.NewMultiPolygon(geom.XY)
		p := geom.NewPolygon(geom.XY)
		require.NoError(t, p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
			-100, 30, -80, 30, -80, 45, -100, 45, -100, 30,
		})))
		require.NoError(t, p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
			-95, 35, -95, 40, -85, 40, -85, 35, -95, 35,
		})))
		require.NoError(t, mp.Push(p))

		got := ClipToRect(mp, window)
		require.NotNil(t, got)
		assert.InDelta(t, 20*15-10*5, Area(got), 1e-9)
	})
}

func TestRectContainsBounds(t *testing.T) {
	r := Rect{MinX: -130, MinY: 24, MaxX: -60, MaxY: 50}

	assert.True(t, r.ContainsBounds(box(-100, 30, -90, 40).Bounds()))
	// Touching the window edge does not count as inside.
	assert.False(t, r.ContainsBounds(box(-130, 30, -90, 40).Bounds()))
	assert.False(t, r.ContainsBounds(box(-170, 55, -140, 70).Bounds()))
}

func TestRepresentativePoint(t *testing.T) {
	t.Run("convex polygon uses centroid", func(t *testing.T) {
		x, y := RepresentativePoint(box(0, 0, 10, 10))
		assert.InDelta(t, 5, x, 1e-9)
		assert.InDelta(t, 5, y, 1e-9)
	})

	t.Run("concave polygon stays inside", func(t *testing.T) {
		// U shape whose bbox center falls in the notch.
		mp := geom.NewMultiPolygon(geom.XY)
		p := geom.NewPolygon(geom.XY)
		require.NoError(t, p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
			0, 0, 10, 0, 10, 10, 8, 10, 8, 2, 2, 2, 2, 10, 0, 10, 0, 0,
		})))
		require.NoError(t, mp.Push(p))

		x, y := RepresentativePoint(mp)
		ring := ringPoints(p.LinearRing(0))
		assert.True(t, pointInRing(x, y, ring), "point (%v,%v) must be interior", x, y)
	})

	t.Run("largest polygon wins", func(t *testing.T) {
		mp := box(0, 0, 1, 1)
		big := box(100, 100, 120, 120)
		require.NoError(t, mp.Push(big.Polygon(0)))

		x, y := RepresentativePoint(mp)
		assert.InDelta(t, 110, x, 1e-9)
		assert.InDelta(t, 110, y, 1e-9)
	})
}
