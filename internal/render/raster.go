package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/twpayne/go-geom"
	"golang.org/x/image/vector"
)

const hatchDotted = ".."

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawFillGroup rasterizes all geometries of one style into a coverage mask,
// paints the fill color through it, then overlays the hatch. Shapefile ring
// orientations survive conversion, so holes cancel under the rasterizer's
// winding accumulation without special handling.
func drawFillGroup(dst *image.RGBA, proj projection, g FillGroup) {
	mask := rasterizeGeoms(proj, g.Geoms)
	if mask == nil {
		return
	}

	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(g.Color), image.Point{}, mask, image.Point{}, draw.Over)

	if g.Hatch != "" {
		drawHatchMasked(dst, mask, g.Hatch)
	}

	// Dotted fills get white edges for contrast; all other fills have
	// invisible edges.
	if g.Hatch == hatchDotted {
		for _, mp := range g.Geoms {
			strokeOutline(dst, proj, mp, color.RGBA{255, 255, 255, 255}, 1)
		}
	}
}

// rasterizeGeoms accumulates every ring of every geometry into one alpha
// mask. Returns nil when there is nothing to draw.
func rasterizeGeoms(proj projection, geoms []*geom.MultiPolygon) *image.Alpha {
	r := vector.NewRasterizer(CanvasWidth, CanvasHeight)
	var any bool

	for _, mp := range geoms {
		for i := 0; i < mp.NumPolygons(); i++ {
			p := mp.Polygon(i)
			for j := 0; j < p.NumLinearRings(); j++ {
				flat := p.LinearRing(j).FlatCoords()
				stride := p.LinearRing(j).Stride()
				if len(flat) < 3*stride {
					continue
				}
				x, y := proj.toPixel(flat[0], flat[1])
				r.MoveTo(float32(x), float32(y))
				for k := stride; k+1 < len(flat); k += stride {
					x, y = proj.toPixel(flat[k], flat[k+1])
					r.LineTo(float32(x), float32(y))
				}
				r.ClosePath()
				any = true
			}
		}
	}
	if !any {
		return nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// hatchOn returns the per-pixel predicate for a hatch pattern.
func hatchOn(hatch string) func(x, y int) bool {
	switch hatch {
	case "//":
		return func(x, y int) bool { return (x+y)%12 < 2 }
	case `\\`:
		return func(x, y int) bool { return ((x-y)%12+12)%12 < 2 }
	case "xx":
		return func(x, y int) bool { return (x+y)%12 < 2 || ((x-y)%12+12)%12 < 2 }
	case hatchDotted:
		return func(x, y int) bool { return x%10 >= 4 && x%10 < 6 && y%10 >= 4 && y%10 < 6 }
	default:
		return nil
	}
}

// hatchColor matches the edge-contrast rule: white dots on dotted fills,
// black lines otherwise.
func hatchColor(hatch string) color.RGBA {
	if hatch == hatchDotted {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{0, 0, 0, 255}
}

func drawHatchMasked(dst *image.RGBA, mask *image.Alpha, hatch string) {
	on := hatchOn(hatch)
	if on == nil {
		return
	}
	c := hatchColor(hatch)
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.AlphaAt(x, y).A > 127 && on(x, y) {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}

// drawHatchRect hatches a rectangle unconditionally (legend patches).
func drawHatchRect(dst *image.RGBA, r image.Rectangle, hatch string) {
	on := hatchOn(hatch)
	if on == nil {
		return
	}
	c := hatchColor(hatch)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if on(x, y) {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}

// strokeOutline strokes every ring of a MultiPolygon at the given pixel width.
func strokeOutline(dst *image.RGBA, proj projection, mp *geom.MultiPolygon, c color.RGBA, width float64) {
	r := vector.NewRasterizer(CanvasWidth, CanvasHeight)
	var any bool

	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		for j := 0; j < p.NumLinearRings(); j++ {
			flat := p.LinearRing(j).FlatCoords()
			stride := p.LinearRing(j).Stride()
			for k := 0; k+stride+1 < len(flat); k += stride {
				x1, y1 := proj.toPixel(flat[k], flat[k+1])
				x2, y2 := proj.toPixel(flat[k+stride], flat[k+stride+1])
				if addQuad(r, x1, y1, x2, y2, width) {
					any = true
				}
			}
		}
	}
	if any {
		r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
}

// strokeSegment draws one free-standing line segment (leader lines).
func strokeSegment(dst *image.RGBA, x1, y1, x2, y2, width float64, c color.RGBA) {
	r := vector.NewRasterizer(CanvasWidth, CanvasHeight)
	if addQuad(r, x1, y1, x2, y2, width) {
		r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
}

// addQuad appends the oriented rectangle covering a segment of the given
// width. Returns false for degenerate segments.
func addQuad(r *vector.Rasterizer, x1, y1, x2, y2, width float64) bool {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	nx := -dy / length * width / 2
	ny := dx / length * width / 2

	r.MoveTo(float32(x1+nx), float32(y1+ny))
	r.LineTo(float32(x2+nx), float32(y2+ny))
	r.LineTo(float32(x2-nx), float32(y2-ny))
	r.LineTo(float32(x1-nx), float32(y1-ny))
	r.ClosePath()
	return true
}
