package track

import "math"

// Candidate is a single per-frame detection before identity assignment.
// It is produced fresh every frame by the region extractor, owned by the
// current Match call and discarded after matching.
type Candidate struct {
	// Center position in the extractor's working coordinate space
	X float64
	Y float64
	// Bounding size in the extractor's working coordinate space
	Width  float64
	Height float64
	// Area in the extractor's working coordinate space (pixels)
	Area float64
}

func NewCandidate(x, y, width, height, area float64) Candidate {
	return Candidate{X: x, Y: y, Width: width, Height: height, Area: area}
}

// Normalized maps a candidate from a downscaled working space into output
// coordinate space. Positions and sizes scale by 1/scale, area by 1/scale²,
// keeping the minimum-area threshold and displayed size independent of the
// internal processing resolution. scale is the ratio between the processing
// resolution and the output resolution; scale 1 is the identity.
func (c Candidate) Normalized(scale float64) Candidate {
	if scale == 1 || scale <= 0 {
		return c
	}
	inv := 1.0 / scale
	return Candidate{
		X:      c.X * inv,
		Y:      c.Y * inv,
		Width:  c.Width * inv,
		Height: c.Height * inv,
		Area:   c.Area * inv * inv,
	}
}

// NormalizeCandidates maps a whole detection list into output space.
func NormalizeCandidates(cands []Candidate, scale float64) []Candidate {
	if scale == 1 || scale <= 0 {
		return cands
	}
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		out[i] = c.Normalized(scale)
	}
	return out
}

// Center returns the candidate's center position.
func (c Candidate) Center() Point {
	return Point{X: c.X, Y: c.Y}
}

func (c Candidate) finite() bool {
	for _, v := range [...]float64{c.X, c.Y, c.Width, c.Height, c.Area} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
