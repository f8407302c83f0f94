package render

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(minX, minY, maxX, maxY float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY)
	p := geom.NewPolygon(geom.XY)
	if err := p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY,
	})); err != nil {
		panic(err)
	}
	if err := mp.Push(p); err != nil {
		panic(err)
	}
	return mp
}

func testFigure() *Figure {
	return &Figure{
		Title:       "Coverage",
		LegendTitle: "Region",
		Window:      Window{MinX: -130, MinY: 18, MaxX: -60, MaxY: 55},
		Groups: []FillGroup{
			{Value: "East", Color: color.RGBA{17, 17, 17, 255}, Geoms: []*geom.MultiPolygon{square(-90, 30, -80, 40)}},
			{Value: "West", Color: color.RGBA{34, 34, 34, 255}, Hatch: "..", Geoms: []*geom.MultiPolygon{square(-120, 35, -110, 45)}},
		},
		Boundaries: []*geom.MultiPolygon{square(-125, 25, -70, 50)},
		Leaders:    []Line{{X1: -75, Y1: 40, X2: -68, Y2: 42}},
		Labels:     []TextLabel{{Text: "TX", X: -99, Y: 31}},
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#111111", want: color.RGBA{17, 17, 17, 255}},
		{in: "#FFF", want: color.RGBA{255, 255, 255, 255}},
		{in: " black ", want: color.RGBA{0, 0, 0, 255}},
		{in: "White", want: color.RGBA{255, 255, 255, 255}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "chartreuse", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRenderCanvasContract(t *testing.T) {
	img, err := testFigure().Render()
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 26*60, b.Dx())
	assert.Equal(t, 31*60, b.Dy())

	// Background is white.
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(0, 0))
}

func TestRenderFillsAppear(t *testing.T) {
	img, err := testFigure().Render()
	require.NoError(t, err)

	// Center of the East square should carry its fill color.
	proj := testFigure().newProjection()
	x, y := proj.toPixel(-85, 35)
	assert.Equal(t, color.RGBA{17, 17, 17, 255}, img.RGBAAt(int(x), int(y)))
}

func TestEncodePNGDeterministic(t *testing.T) {
	fig := testFigure()

	var a, b bytes.Buffer
	require.NoError(t, fig.EncodePNG(&a))
	require.NoError(t, fig.EncodePNG(&b))

	assert.NotZero(t, a.Len())
	assert.Equal(t, a.Bytes(), b.Bytes(), "encoding twice must be byte-identical")
}

func TestHatchPredicates(t *testing.T) {
	assert.Nil(t, hatchOn(""))

	dots := hatchOn("..")
	require.NotNil(t, dots)
	assert.True(t, dots(4, 5))
	assert.False(t, dots(0, 0))

	cross := hatchOn("xx")
	require.NotNil(t, cross)
	assert.True(t, cross(0, 0))

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, hatchColor(".."))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, hatchColor("//"))
}

func TestProjectionEqualAspect(t *testing.T) {
	fig := testFigure()
	proj := fig.newProjection()

	// One map unit spans the same pixel count on both axes.
	x0, y0 := proj.toPixel(-100, 30)
	x1, y1 := proj.toPixel(-99, 31)
	assert.InDelta(t, x1-x0, y0-y1, 1e-9)

	// The window's left edge lands on the canvas left edge.
	xl, _ := proj.toPixel(fig.Window.MinX, fig.Window.MinY)
	assert.InDelta(t, 0, xl, 1e-9)
}

func TestRenderEmptyFigure(t *testing.T) {
	fig := &Figure{Window: Window{MinX: -130, MinY: 18, MaxX: -60, MaxY: 55}}
	var buf bytes.Buffer
	require.NoError(t, fig.EncodePNG(&buf))
	assert.NotZero(t, buf.Len())
}
