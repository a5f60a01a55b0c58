package track

import (
	"time"
)

const (
	// DefaultRadius is the default matching radius in output-space pixels.
	DefaultRadius = 100.0
	// DefaultTimeout is how long an unmatched blob survives before pruning.
	DefaultTimeout = time.Second
	// DefaultHistoryLength bounds the per-blob position history.
	DefaultHistoryLength = 20
	// DefaultFilterDT is the velocity filter step, matching a 30 fps cadence.
	DefaultFilterDT = 1.0 / 30.0
)

// Config holds tracker parameters. Radius and MinArea live in output
// coordinate space, the same space candidates are normalized into before
// matching.
type Config struct {
	// Maximum distance for associating a candidate with an existing identity
	Radius float64
	// Unmatched blobs older than this are pruned after every matching pass
	Timeout time.Duration
	// Maximum number of prior positions kept per blob
	HistoryLength int
	// Candidates with a smaller output-space area are ignored entirely
	MinArea float64
	// Time step fed to each blob's velocity filter
	FilterDT float64
}

// DefaultConfig returns tracker parameters suitable for 30 fps processing.
func DefaultConfig() Config {
	return Config{
		Radius:        DefaultRadius,
		Timeout:       DefaultTimeout,
		HistoryLength: DefaultHistoryLength,
		MinArea:       0,
		FilterDT:      DefaultFilterDT,
	}
}

// Tracker assigns stable identities to per-frame candidate regions using
// greedy nearest-neighbor matching in candidate list order. The greediness is
// a deliberate simplicity/robustness trade-off, not an optimal assignment
// solver. Match is invoked strictly sequentially, once per frame, by a single
// driver; the tracker has no internal locking.
type Tracker struct {
	// Main storage
	blobs  map[int64]*Blob
	nextID int64
	cfg    Config
}

// NewTrackerDefault creates a tracker with default parameters.
func NewTrackerDefault() *Tracker {
	return NewTracker(DefaultConfig())
}

// NewTracker creates a tracker with the given parameters.
func NewTracker(cfg Config) *Tracker {
	if cfg.FilterDT <= 0 {
		cfg.FilterDT = DefaultFilterDT
	}
	return &Tracker{
		blobs: make(map[int64]*Blob),
		cfg:   cfg,
	}
}

// Config returns the tracker's parameters.
func (tracker *Tracker) Config() Config {
	return tracker.cfg
}

// Len returns the number of active blobs.
func (tracker *Tracker) Len() int {
	return len(tracker.blobs)
}

// Active returns the current active blob set. The returned blobs are the
// tracker's own; callers must not retain them across a Reset.
func (tracker *Tracker) Active() []*Blob {
	out := make([]*Blob, 0, len(tracker.blobs))
	for _, blob := range tracker.blobs {
		out = append(out, blob)
	}
	return out
}

// Reset drops the active blob set, e.g. when switching from preview to
// export processing. Identifiers keep incrementing: an id handed out before
// a reset is never reused after it.
func (tracker *Tracker) Reset() {
	tracker.blobs = make(map[int64]*Blob)
}

// Match consumes one frame's candidate regions (already normalized into
// output coordinate space) and returns the blobs that were matched or
// created this frame, in candidate order. now must be monotonically
// non-decreasing across calls; it may be a synthetic per-frame clock as long
// as its cadence exceeds the prune timeout scale consistently.
//
// Candidates are processed greedily in input order: each takes the nearest
// unassigned blob strictly within the matching radius, or spawns a new
// identity. After the pass every blob unmatched for longer than the timeout
// is pruned, so a stale blob never appears in any later result.
func (tracker *Tracker) Match(candidates []Candidate, now time.Time) []*Blob {
	assigned := make(map[int64]struct{}, len(candidates))
	result := make([]*Blob, 0, len(candidates))

	for _, candidate := range candidates {
		if !candidate.finite() {
			continue
		}
		if candidate.Area < tracker.cfg.MinArea {
			continue
		}

		var nearest *Blob
		minDistance := tracker.cfg.Radius
		for id, blob := range tracker.blobs {
			if _, taken := assigned[id]; taken {
				continue
			}
			if dist := blob.DistanceTo(candidate.Center()); dist < minDistance {
				minDistance = dist
				nearest = blob
			}
		}

		if nearest != nil {
			nearest.update(candidate, now, tracker.cfg.HistoryLength, tracker.cfg.FilterDT)
			assigned[nearest.ID] = struct{}{}
			result = append(result, nearest)
			continue
		}

		tracker.nextID++
		blob := newBlob(tracker.nextID, candidate, now, tracker.cfg.FilterDT)
		tracker.blobs[blob.ID] = blob
		assigned[blob.ID] = struct{}{}
		result = append(result, blob)
	}

	for id, blob := range tracker.blobs {
		if now.Sub(blob.LastSeen) > tracker.cfg.Timeout {
			delete(tracker.blobs, id)
		}
	}
	return result
}
