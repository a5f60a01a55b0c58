// Package render derives display positions, colors and marker overlays for
// tracked blobs. Everything here is a deterministic function of the blob
// state, the frame time and the settings, so a frame rendered twice comes out
// pixel-identical. Nothing computed here ever flows back into tracking.
package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/blobmark/blobmark/track"
)

const (
	markerStroke = 2
	markerMargin = 4
	// Velocity vectors preview a quarter second of motion
	velocityLead = 0.25
)

// Options configure marker styling.
type Options struct {
	Mode         ColorMode
	Base         color.RGBA
	Jitter       float64
	Drift        float64
	ShowBoxes    bool
	ShowTrails   bool
	ShowVelocity bool
}

// Renderer composites stylized markers for tracked blobs onto a working
// frame buffer.
type Renderer struct {
	opts     Options
	smoother Smoother
}

// New creates a renderer for the given styling options.
func New(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		smoother: Smoother{
			Jitter: opts.Jitter,
			Drift:  opts.Drift,
		},
	}
}

// Smoother exposes the renderer's motion smoother.
func (r *Renderer) Smoother() Smoother {
	return r.smoother
}

// Composite draws one marker per blob onto dst at the given frame time. The
// display position comes from the motion smoother; the blob's VisualX/VisualY
// advance as a side effect, once per rendered frame.
func (r *Renderer) Composite(dst *image.RGBA, blobs []*track.Blob, now time.Time) {
	for _, blob := range blobs {
		pos := r.smoother.Step(blob, now)
		col := ColorFor(blob.ID, now, r.opts.Mode, r.opts.Base)

		cx := int(math.Round(pos.X))
		cy := int(math.Round(pos.Y))
		radius := int(math.Round(math.Max(blob.Width, blob.Height)/2)) + markerMargin
		drawRing(dst, cx, cy, radius, markerStroke, col)

		if r.opts.ShowBoxes {
			box := blob.BBox()
			drawRect(dst, int(math.Round(box.X)), int(math.Round(box.Y)),
				int(math.Round(box.Width)), int(math.Round(box.Height)), col)
		}
		if r.opts.ShowTrails {
			r.drawTrail(dst, blob, col)
		}
		if r.opts.ShowVelocity {
			vel := blob.Velocity()
			drawLine(dst, cx, cy,
				cx+int(math.Round(vel.X*velocityLead)),
				cy+int(math.Round(vel.Y*velocityLead)), col)
		}
	}
}

// drawTrail connects the blob's history, oldest segments faded the most.
func (r *Renderer) drawTrail(dst *image.RGBA, blob *track.Blob, col color.RGBA) {
	points := blob.History
	if len(points) == 0 {
		return
	}
	segments := len(points) // history points plus the current position
	for i := 0; i < segments; i++ {
		from := points[i]
		to := blob.Center()
		if i+1 < len(points) {
			to = points[i+1]
		}
		factor := 0.25 + 0.75*float64(i+1)/float64(segments)
		drawLine(dst,
			int(math.Round(from.X)), int(math.Round(from.Y)),
			int(math.Round(to.X)), int(math.Round(to.Y)),
			fade(col, factor))
	}
}
