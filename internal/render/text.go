package render

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// faceSet holds the fixed typefaces of the canvas contract: bold for the
// title, state labels, and legend title; regular for legend entries.
type faceSet struct {
	title       font.Face
	label       font.Face
	legendTitle font.Face
	legend      font.Face
}

var (
	facesOnce sync.Once
	facesVal  faceSet
	facesErr  error
)

// faces parses the embedded Go fonts once per process.
func faces() (faceSet, error) {
	facesOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			facesErr = eris.Wrap(err, "render: parse regular font")
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			facesErr = eris.Wrap(err, "render: parse bold font")
			return
		}

		newFace := func(f *opentype.Font, size float64) font.Face {
			if facesErr != nil {
				return nil
			}
			face, err := opentype.NewFace(f, &opentype.FaceOptions{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				facesErr = eris.Wrap(err, "render: build font face")
			}
			return face
		}

		facesVal = faceSet{
			title:       newFace(bold, 40),
			label:       newFace(bold, 20),
			legendTitle: newFace(bold, 30),
			legend:      newFace(regular, 26),
		}
	})
	return facesVal, facesErr
}

// drawTextCentered draws text centered on (x, y) in pixel coordinates.
func drawTextCentered(dst *image.RGBA, text string, x, y float64, face font.Face, c color.RGBA) {
	width := font.MeasureString(face, text)
	metrics := face.Metrics()
	// Vertically center the cap box around y.
	baseline := fixed.Int26_6(math.Round(y*64)) + (metrics.Ascent-metrics.Descent)/2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x*64)) - width/2,
			Y: baseline,
		},
	}
	d.DrawString(text)
}

// drawTextLeft draws text with its left edge at x, centered vertically on y.
func drawTextLeft(dst *image.RGBA, text string, x, y float64, face font.Face, c color.RGBA) {
	metrics := face.Metrics()
	baseline := fixed.Int26_6(math.Round(y*64)) + (metrics.Ascent-metrics.Descent)/2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: baseline,
		},
	}
	d.DrawString(text)
}

// textWidth measures rendered width in pixels.
func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}
