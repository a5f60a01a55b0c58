package render

import (
	"math"
	"testing"
	"time"

	"github.com/blobmark/blobmark/track"
)

var renderTime = time.Unix(42, 0)

// blobAt builds a blob whose visual position lags its true position.
func blobAt(t *testing.T, trueX, trueY, visualX, visualY float64) *track.Blob {
	t.Helper()
	tracker := track.NewTrackerDefault()
	blobs := tracker.Match([]track.Candidate{track.NewCandidate(visualX, visualY, 10, 10, 100)}, time.Unix(0, 0))
	blob := blobs[0]
	blob.X = trueX
	blob.Y = trueY
	return blob
}

func TestStepIsDeterministic(t *testing.T) {
	s := Smoother{Jitter: 0.7, Drift: 0.3}

	a := blobAt(t, 200, 150, 100, 100)
	b := blobAt(t, 200, 150, 100, 100)
	b.ID = a.ID

	pa := s.Step(a, renderTime)
	pb := s.Step(b, renderTime)
	if pa != pb {
		t.Fatalf("identical inputs produced different display positions: %+v vs %+v", pa, pb)
	}
	if a.VisualX != b.VisualX || a.VisualY != b.VisualY {
		t.Fatal("identical inputs produced different visual state")
	}
}

func TestMaxDriftConverges(t *testing.T) {
	s := Smoother{Jitter: 0, Drift: 1}

	blob := blobAt(t, 100, 0, 0, 0)
	p := s.Step(blob, renderTime)
	// Drift 1 saturates the lerp factor: one step covers most of the gap
	if math.Abs(p.X-100) > (1-lerpMax)*100+1e-9 {
		t.Fatalf("one max-drift step should cover %v%% of the gap, display at %v", lerpMax*100, p.X)
	}
	for i := 0; i < 20; i++ {
		p = s.Step(blob, renderTime)
	}
	if math.Abs(p.X-100) > 1e-6 || math.Abs(p.Y) > 1e-6 {
		t.Fatalf("display should converge onto the true position, got (%v,%v)", p.X, p.Y)
	}
}

func TestMinDriftStillConverges(t *testing.T) {
	s := Smoother{Jitter: 0, Drift: 0}

	if got := s.LerpFactor(); got != lerpMin {
		t.Fatalf("drift 0 should use the minimum lerp factor, got %v", got)
	}
	blob := blobAt(t, 100, 0, 0, 0)
	prevGap := 100.0
	for i := 0; i < 5; i++ {
		p := s.Step(blob, renderTime)
		gap := math.Abs(p.X - 100)
		if gap >= prevGap {
			t.Fatalf("step %d did not reduce the gap: %v -> %v", i, prevGap, gap)
		}
		prevGap = gap
	}
}

func TestZeroJitterAddsNoNoise(t *testing.T) {
	s := Smoother{Jitter: 0, Drift: 0.5}

	blob := blobAt(t, 50, 50, 50, 50)
	p := s.Step(blob, renderTime)
	if p.X != blob.VisualX || p.Y != blob.VisualY {
		t.Fatalf("zero jitter must render the visual position exactly, got %+v", p)
	}
}

func TestJitterNoiseIsBounded(t *testing.T) {
	s := Smoother{Jitter: 1, Drift: 0.5}

	blob := blobAt(t, 50, 50, 50, 50)
	for i := 0; i < 200; i++ {
		now := renderTime.Add(time.Duration(i) * 33 * time.Millisecond)
		p := s.Step(blob, now)
		if math.Abs(p.X-blob.VisualX) > noiseAmplitude || math.Abs(p.Y-blob.VisualY) > noiseAmplitude {
			t.Fatalf("noise exceeded amplitude at step %d: %+v vs (%v,%v)",
				i, p, blob.VisualX, blob.VisualY)
		}
	}
}

func TestNoiseVariesAcrossIdentities(t *testing.T) {
	s := Smoother{Jitter: 1, Drift: 0.5}

	a := blobAt(t, 50, 50, 50, 50)
	b := blobAt(t, 50, 50, 50, 50)
	b.ID = a.ID + 1

	pa := s.Step(a, renderTime)
	pb := s.Step(b, renderTime)
	if pa == pb {
		t.Fatal("different ids should produce different noise offsets")
	}
}
