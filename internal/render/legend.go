package render

import (
	"image"
	"image/color"
)

// Legend layout in pixels.
const (
	legendPatchW = 64
	legendPatchH = 36
	legendEntryH = 52
	legendTitleH = 48
	legendPad    = 20
	legendGap    = 14
)

// drawLegend places the legend box centered in the right margin, vertically
// centered on the map body, with one hatched color patch per style.
func (f *Figure) drawLegend(dst *image.RGBA, proj projection) error {
	if len(f.Groups) == 0 {
		return nil
	}
	fs, err := faces()
	if err != nil {
		return err
	}

	inner := textWidth(fs.legendTitle, f.LegendTitle)
	for _, g := range f.Groups {
		if w := legendPatchW + legendGap + textWidth(fs.legend, g.Value); w > inner {
			inner = w
		}
	}
	boxW := legendPad*2 + inner
	boxH := legendPad*2 + legendTitleH + len(f.Groups)*legendEntryH

	mapRight := (f.Window.MaxX - proj.minX) * proj.scale
	marginW := legendMarginUnits * proj.scale
	x0 := int(mapRight+marginW/2) - boxW/2
	if x0+boxW > CanvasWidth-8 {
		x0 = CanvasWidth - 8 - boxW
	}

	mapH := (f.Window.MaxY - f.Window.MinY) * proj.scale
	y0 := int(proj.offsetY+mapH/2) - boxH/2
	if y0 < titleBand {
		y0 = titleBand
	}

	box := image.Rect(x0, y0, x0+boxW, y0+boxH)
	fillRect(dst, box, color.RGBA{255, 255, 255, 255})
	drawRectBorder(dst, box, color.RGBA{0, 0, 0, 255}, 1)

	drawTextCentered(dst, f.LegendTitle,
		float64(x0+boxW/2), float64(y0+legendPad+legendTitleH/2),
		fs.legendTitle, color.RGBA{0, 0, 0, 255})

	y := y0 + legendPad + legendTitleH
	for _, g := range f.Groups {
		patch := image.Rect(
			x0+legendPad, y+(legendEntryH-legendPatchH)/2,
			x0+legendPad+legendPatchW, y+(legendEntryH-legendPatchH)/2+legendPatchH,
		)
		fillRect(dst, patch, g.Color)
		drawHatchRect(dst, patch, g.Hatch)

		// Legend patch edges: white for the dotted hatch, black otherwise.
		edge := color.RGBA{0, 0, 0, 255}
		if g.Hatch == hatchDotted {
			edge = color.RGBA{255, 255, 255, 255}
		}
		drawRectBorder(dst, patch, edge, 2)

		drawTextLeft(dst, g.Value,
			float64(patch.Max.X+legendGap), float64(y+legendEntryH/2),
			fs.legend, color.RGBA{0, 0, 0, 255})
		y += legendEntryH
	}
	return nil
}

func drawRectBorder(dst *image.RGBA, r image.Rectangle, c color.RGBA, w int) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}
