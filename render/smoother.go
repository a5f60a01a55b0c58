package render

import (
	"math"
	"time"

	"github.com/blobmark/blobmark/track"
)

const (
	// Noise amplitude in output-space pixels at jitter 1.0
	noiseAmplitude = 6.0
	// Lerp factor bounds: drift 0 converges slowly, drift 1 saturates
	lerpMin = 0.1
	lerpMax = 0.8
)

// Smoother derives the display position rendered for each blob. The display
// position lags behind the true tracked position by exponential interpolation
// and is offset by bounded trigonometric pseudo-noise keyed on time and the
// blob's id. It owns the blob's VisualX/VisualY fields and updates them in
// place once per render call; the offset itself is never accumulated, so the
// result is a pure function of (previous visual state, true position, time,
// id, settings).
type Smoother struct {
	// Jitter scales the noise amplitude, 0..1
	Jitter float64
	// Drift scales the convergence rate, 0..1; lower drift lags more
	Drift float64
}

// LerpFactor returns the per-step interpolation rate for the configured
// drift, in (lerpMin, lerpMax].
func (s Smoother) LerpFactor() float64 {
	lerp := lerpMin + s.Drift*(lerpMax-lerpMin)
	if lerp > lerpMax {
		return lerpMax
	}
	if lerp < lerpMin {
		return lerpMin
	}
	return lerp
}

// Step advances the blob's visual position toward its true position and
// returns the display point for this frame. Never fed back into tracking.
func (s Smoother) Step(blob *track.Blob, now time.Time) track.Point {
	lerp := s.LerpFactor()
	blob.VisualX += (blob.X - blob.VisualX) * lerp
	blob.VisualY += (blob.Y - blob.VisualY) * lerp

	nx, ny := s.noise(blob.ID, now)
	return track.Point{
		X: blob.VisualX + nx,
		Y: blob.VisualY + ny,
	}
}

// noise returns a bounded, deterministic positional offset for (id, now).
func (s Smoother) noise(id int64, now time.Time) (float64, float64) {
	if s.Jitter == 0 {
		return 0, 0
	}
	tms := float64(now.UnixMilli())
	phase := float64(id) * 1.7
	nx := math.Sin(tms*0.004+phase*3.1) * s.Jitter * noiseAmplitude
	ny := math.Cos(tms*0.0047+phase*2.3) * s.Jitter * noiseAmplitude
	return nx, ny
}
