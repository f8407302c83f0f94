// Package render composes the pipeline's styled layers into a raster image.
// The canvas contract is fixed: a 26x31-unit figure at 60 DPI with an
// extended right margin for the legend, drawn in strict z-order. Rendering
// is a deterministic function of the figure; encoding the same figure twice
// yields byte-identical PNG output.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Canvas contract: 26x31 units at 60 DPI.
const (
	CanvasWidth  = 26 * 60
	CanvasHeight = 31 * 60

	// legendMarginUnits extends the data window to the right of the map so
	// the legend never covers geometry.
	legendMarginUnits = 12

	// titleBand reserves vertical pixels above the map for the title.
	titleBand = 120
)

// Window is the data-space extent of the map body (the clip window).
type Window struct {
	MinX, MinY, MaxX, MaxY float64
}

// FillGroup is one styled batch of unit geometries sharing a value.
type FillGroup struct {
	Value string
	Color color.RGBA
	Hatch string
	Geoms []*geom.MultiPolygon
}

// Line is a device-independent line segment in map coordinates.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// TextLabel is a centered text anchor in map coordinates.
type TextLabel struct {
	Text string
	X, Y float64
}

// Figure is the complete renderable description of one map. Layers are
// drawn in order: fills, legend, boundaries, leader lines, labels, title.
type Figure struct {
	Title       string
	LegendTitle string
	Window      Window
	Groups      []FillGroup
	Boundaries  []*geom.MultiPolygon
	Leaders     []Line
	Labels      []TextLabel
}

// projection maps map coordinates to pixels with equal aspect, anchored at
// the top-left of the canvas below the title band.
type projection struct {
	minX, maxY float64
	scale      float64
	offsetY    float64
}

func (f *Figure) newProjection() projection {
	spanX := f.Window.MaxX - f.Window.MinX + legendMarginUnits
	spanY := f.Window.MaxY - f.Window.MinY

	sx := float64(CanvasWidth) / spanX
	sy := float64(CanvasHeight-titleBand) / spanY
	s := sx
	if sy < sx {
		s = sy
	}
	return projection{minX: f.Window.MinX, maxY: f.Window.MaxY, scale: s, offsetY: titleBand}
}

func (p projection) toPixel(x, y float64) (float64, float64) {
	return (x - p.minX) * p.scale, p.offsetY + (p.maxY-y)*p.scale
}

// Render rasterizes the figure onto a fresh white canvas.
func (f *Figure) Render() (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	fillRect(canvas, canvas.Bounds(), color.RGBA{255, 255, 255, 255})

	proj := f.newProjection()

	// 1. Styled unit fills, grouped by style.
	for _, g := range f.Groups {
		drawFillGroup(canvas, proj, g)
	}

	// 2. Legend.
	if err := f.drawLegend(canvas, proj); err != nil {
		return nil, err
	}

	// 3. State boundary outlines.
	for _, b := range f.Boundaries {
		strokeOutline(canvas, proj, b, color.RGBA{0, 0, 0, 255}, 1)
	}

	// 4. Leader lines.
	for _, l := range f.Leaders {
		x1, y1 := proj.toPixel(l.X1, l.Y1)
		x2, y2 := proj.toPixel(l.X2, l.Y2)
		strokeSegment(canvas, x1, y1, x2, y2, 1.6, color.RGBA{0, 0, 0, 255})
	}

	fs, err := faces()
	if err != nil {
		return nil, err
	}

	// 5. State abbreviation labels.
	for _, lb := range f.Labels {
		x, y := proj.toPixel(lb.X, lb.Y)
		drawTextCentered(canvas, lb.Text, x, y, fs.label, color.RGBA{0, 0, 0, 255})
	}

	// 6. Title.
	if f.Title != "" {
		drawTextCentered(canvas, f.Title, float64(CanvasWidth)/2, titleBand/2, fs.title, color.RGBA{0, 0, 0, 255})
	}

	return canvas, nil
}

// EncodePNG renders the figure and writes it as PNG. Pure and repeatable:
// calling it twice produces byte-identical output.
func (f *Figure) EncodePNG(w io.Writer) error {
	img, err := f.Render()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return eris.Wrap(err, "render: encode png")
	}
	return nil
}
