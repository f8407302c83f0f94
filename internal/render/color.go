package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// namedColors covers the color names accepted in palettes alongside hex.
var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {214, 39, 40, 255},
	"green":   {44, 160, 44, 255},
	"blue":    {31, 119, 180, 255},
	"orange":  {255, 127, 14, 255},
	"purple":  {148, 103, 189, 255},
	"brown":   {140, 86, 75, 255},
	"pink":    {227, 119, 194, 255},
	"gray":    {127, 127, 127, 255},
	"grey":    {127, 127, 127, 255},
	"yellow":  {188, 189, 34, 255},
	"cyan":    {23, 190, 207, 255},
	"magenta": {227, 0, 227, 255},
}

// ParseColor understands "#rgb", "#rrggbb", and a small set of names.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, eris.Errorf("render: unknown color %q", s)
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, eris.Errorf("render: malformed hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, eris.Errorf("render: malformed hex color %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
