// Package vision defines the region-extraction boundary. The tracker and the
// drivers only ever see the Extractor contract; the actual segmentation
// primitive is a pluggable backend. A frame-differencing reference backend is
// bundled so the CLI runs out of the box.
package vision

import (
	"image"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/track"
)

// Extractor converts a raw pixel buffer into candidate regions. Candidates
// are reported in the extractor's working coordinate space; callers normalize
// them into output space with the scale factor they processed at. Extractors
// apply the settings' threshold and smoothing-kernel-size fields.
type Extractor interface {
	Extract(frame image.Image, det config.Detection, scale float64) ([]track.Candidate, error)
}

// Resettable is implemented by stateful backends that keep inter-frame state
// (reference frames, downscaled buffers). The export driver resets such
// backends before switching to full-resolution processing so stale preview
// state never leaks into export output.
type Resettable interface {
	Reset()
}

// Func adapts a plain function to the Extractor contract, mainly for tests.
type Func func(frame image.Image, det config.Detection, scale float64) ([]track.Candidate, error)

func (f Func) Extract(frame image.Image, det config.Detection, scale float64) ([]track.Candidate, error) {
	return f(frame, det, scale)
}
