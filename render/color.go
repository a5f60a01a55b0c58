package render

import (
	"image/color"
	"math"
	"time"

	"github.com/pkg/errors"
)

// ColorMode selects how marker colors are derived.
type ColorMode string

const (
	// ColorSolid paints every marker with the configured base color
	ColorSolid ColorMode = "solid"
	// ColorCycle cycles the hue over time, shared by all markers
	ColorCycle ColorMode = "cycle"
	// ColorRandom derives a stable per-identity hue from the blob id
	ColorRandom ColorMode = "random"
)

// Golden-angle increment keeps consecutive ids visually far apart
const hashHueStep = 137.50776405

// Full hue cycle every 7.2 seconds in cycle mode
const cycleHueRate = 0.05

// ColorFor returns the marker color for a blob id at a point in time. The
// result is deterministic for a given (id, now, mode, base), so re-rendering
// the same frame produces identical pixels.
func ColorFor(id int64, now time.Time, mode ColorMode, base color.RGBA) color.RGBA {
	switch mode {
	case ColorCycle:
		hue := math.Mod(float64(now.UnixMilli())*cycleHueRate, 360)
		return hsvToRGB(hue, 0.85, 1.0)
	case ColorRandom:
		hue := math.Mod(float64(id)*hashHueStep, 360)
		return hsvToRGB(hue, 0.85, 1.0)
	default:
		return base
	}
}

// ParseMode validates a color mode string from settings.
func ParseMode(raw string) (ColorMode, error) {
	switch ColorMode(raw) {
	case ColorSolid, ColorCycle, ColorRandom:
		return ColorMode(raw), nil
	case "":
		return ColorSolid, nil
	}
	return "", errors.Errorf("unknown color mode %q", raw)
}

// ParseHexColor parses a #RRGGBB (or RRGGBB) color string.
func ParseHexColor(raw string) (color.RGBA, error) {
	if len(raw) > 0 && raw[0] == '#' {
		raw = raw[1:]
	}
	if len(raw) != 6 {
		return color.RGBA{}, errors.Errorf("malformed hex color %q", raw)
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(raw[i*2])
		lo, ok2 := hexNibble(raw[i*2+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, errors.Errorf("malformed hex color %q", raw)
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 255}, nil
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func hsvToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}
