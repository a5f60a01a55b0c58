package track

import (
	"time"

	kalman_filter "github.com/LdDl/kalman-filter"
)

// Blob is a persistent tracked identity. Detection fields hold the latest
// matched detection in output coordinate space and are overwritten on every
// successful match. VisualX/VisualY belong to the rendering smoother: they
// are initialized to the first detected position at creation time and are
// never touched by the tracker afterwards.
type Blob struct {
	// Stable identifier, unique for the tracker's lifetime, never reused
	ID int64
	// Latest matched detection
	X      float64
	Y      float64
	Width  float64
	Height float64
	Area   float64
	// Timestamp of the last successful match
	LastSeen time.Time
	// Prior center positions, oldest first, bounded by the tracker's
	// history length
	History []Point
	// Display position owned by the rendering smoother
	VisualX float64
	VisualY float64

	velocity Point
	filter   *kalman_filter.Kalman2D
}

func newBlob(id int64, c Candidate, now time.Time, dt float64) *Blob {
	/* Kalman filter props */
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(c.X, c.Y))
	return &Blob{
		ID:       id,
		X:        c.X,
		Y:        c.Y,
		Width:    c.Width,
		Height:   c.Height,
		Area:     c.Area,
		LastSeen: now,
		History:  nil,
		VisualX:  c.X,
		VisualY:  c.Y,
		filter:   kf,
	}
}

// Center returns the blob's last matched center position.
func (blob *Blob) Center() Point {
	return Point{X: blob.X, Y: blob.Y}
}

// BBox returns the blob's bounding box, centered on the last matched position.
func (blob *Blob) BBox() Rect {
	return Rect{
		X:      blob.X - blob.Width/2.0,
		Y:      blob.Y - blob.Height/2.0,
		Width:  blob.Width,
		Height: blob.Height,
	}
}

// Velocity returns the filtered velocity estimate in output-space pixels per
// second. It is derived from the blob's Kalman filter and is informational
// only: matching never consumes it.
func (blob *Blob) Velocity() Point {
	return blob.velocity
}

// DistanceTo returns the Euclidean distance from the blob's last matched
// position to the given point.
func (blob *Blob) DistanceTo(p Point) float64 {
	return euclideanDistance(blob.Center(), p)
}

// update applies a matched detection: the pre-update position is appended to
// history (evicting the oldest entry at capacity), the detection fields and
// LastSeen are overwritten, and the velocity filter advances one step.
// VisualX/VisualY are left untouched.
func (blob *Blob) update(c Candidate, now time.Time, historyLen int, dt float64) {
	blob.pushHistory(historyLen)
	prev := blob.Center()
	blob.X = c.X
	blob.Y = c.Y
	blob.Width = c.Width
	blob.Height = c.Height
	blob.Area = c.Area
	blob.LastSeen = now

	blob.filter.Predict()
	if err := blob.filter.Update(c.X, c.Y); err != nil {
		// A degenerate filter state only loses the velocity overlay,
		// never the track itself
		blob.velocity = Point{}
		return
	}
	stateX, stateY := blob.filter.GetState()
	if dt > 0 {
		blob.velocity = Point{
			X: (stateX - prev.X) / dt,
			Y: (stateY - prev.Y) / dt,
		}
	}
}

func (blob *Blob) pushHistory(historyLen int) {
	if historyLen <= 0 {
		blob.History = blob.History[:0]
		return
	}
	blob.History = append(blob.History, blob.Center())
	if len(blob.History) > historyLen {
		blob.History = blob.History[len(blob.History)-historyLen:]
	}
}
