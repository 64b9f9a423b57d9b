// Package report renders the iteration log of a swarm run: scatter plots per
// iteration, an animated GIF, console tables and spreadsheet exports.
package report

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Style controls how iteration frames are drawn.
type Style struct {
	ParticleColor  color.Color
	ParticleRadius vg.Length

	BestColor  color.Color
	BestMarker string // circle, cross, plus, ring, square, triangle
	BestRadius vg.Length

	// Axis range of both axes. Ignored when AutoRange is set.
	Min, Max  float64
	AutoRange bool

	// Dimensions plotted on the X and Y axes.
	XDim, YDim int

	Width, Height vg.Length
	FrameDelay    time.Duration
	Workers       int
}

// DefaultStyle returns dodger-blue particles with a red cross for the global
// best on a fixed [-10, 10] view.
func DefaultStyle() Style {
	return Style{
		ParticleColor:  color.RGBA{R: 30, G: 144, B: 255, A: 255},
		ParticleRadius: vg.Points(3),
		BestColor:      color.RGBA{R: 255, A: 255},
		BestMarker:     "cross",
		BestRadius:     vg.Points(6),
		Min:            -10,
		Max:            10,
		XDim:           0,
		YDim:           1,
		Width:          8 * vg.Inch,
		Height:         6 * vg.Inch,
		FrameDelay:     500 * time.Millisecond,
		Workers:        4,
	}
}

// Validate reports style settings that cannot be drawn.
func (s Style) Validate() error {
	if !s.AutoRange && s.Min >= s.Max {
		return fmt.Errorf("axis range must satisfy min < max (got %g >= %g)", s.Min, s.Max)
	}
	if s.XDim < 0 || s.YDim < 0 {
		return fmt.Errorf("plot dimensions must be non-negative")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("image size must be positive")
	}
	if _, err := glyph(s.BestMarker); err != nil {
		return err
	}
	return nil
}

func glyph(name string) (draw.GlyphDrawer, error) {
	switch strings.ToLower(name) {
	case "circle":
		return draw.CircleGlyph{}, nil
	case "", "cross":
		return draw.CrossGlyph{}, nil
	case "plus":
		return draw.PlusGlyph{}, nil
	case "ring":
		return draw.RingGlyph{}, nil
	case "square":
		return draw.SquareGlyph{}, nil
	case "triangle":
		return draw.TriangleGlyph{}, nil
	default:
		return nil, fmt.Errorf("unknown marker %q", name)
	}
}

// ParseColor parses a #rrggbb hex string.
func ParseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
