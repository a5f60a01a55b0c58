package render

import (
	"image"
	"image/color"
	"math"
)

// Low-level raster primitives for marker compositing. All drawing is done
// directly on the working *image.RGBA with opaque pixels; overlay styling
// stays deterministic so export retries reproduce identical frames.

func setPixel(dst *image.RGBA, x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	dst.SetRGBA(x, y, col)
}

// drawCircle draws a circle outline using the midpoint algorithm.
func drawCircle(dst *image.RGBA, cx, cy, radius int, col color.RGBA) {
	if radius <= 0 {
		setPixel(dst, cx, cy, col)
		return
	}
	x, y := radius, 0
	err := 1 - radius
	for x >= y {
		setPixel(dst, cx+x, cy+y, col)
		setPixel(dst, cx+y, cy+x, col)
		setPixel(dst, cx-y, cy+x, col)
		setPixel(dst, cx-x, cy+y, col)
		setPixel(dst, cx-x, cy-y, col)
		setPixel(dst, cx-y, cy-x, col)
		setPixel(dst, cx+y, cy-x, col)
		setPixel(dst, cx+x, cy-y, col)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// drawRing draws a circle outline of the given stroke thickness.
func drawRing(dst *image.RGBA, cx, cy, radius, thickness int, col color.RGBA) {
	for i := 0; i < thickness; i++ {
		drawCircle(dst, cx, cy, radius+i, col)
	}
}

// drawLine draws a line segment using Bresenham's algorithm.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(dst, x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawRect draws a rectangle outline.
func drawRect(dst *image.RGBA, x, y, w, h int, col color.RGBA) {
	drawLine(dst, x, y, x+w, y, col)
	drawLine(dst, x+w, y, x+w, y+h, col)
	drawLine(dst, x+w, y+h, x, y+h, col)
	drawLine(dst, x, y+h, x, y, col)
}

func fade(col color.RGBA, factor float64) color.RGBA {
	factor = math.Max(0, math.Min(1, factor))
	return color.RGBA{
		R: uint8(float64(col.R) * factor),
		G: uint8(float64(col.G) * factor),
		B: uint8(float64(col.B) * factor),
		A: 255,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
