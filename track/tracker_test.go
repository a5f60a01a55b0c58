package track

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Unix(0, 0)

func candAt(x, y float64) Candidate {
	return NewCandidate(x, y, 20, 20, 400)
}

func frameTime(n int) time.Time {
	return t0.Add(time.Duration(n) * 33 * time.Millisecond)
}

func TestMatchAssignsStableIDs(t *testing.T) {
	tracker := NewTracker(Config{Radius: 100, Timeout: time.Second, HistoryLength: 10})

	first := tracker.Match([]Candidate{candAt(10, 10), candAt(600, 600)}, frameTime(0))
	if len(first) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(first))
	}
	if first[0].ID != 1 || first[1].ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first[0].ID, first[1].ID)
	}

	second := tracker.Match([]Candidate{candAt(15, 12)}, frameTime(1))
	if len(second) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(second))
	}
	if second[0].ID != 1 {
		t.Fatalf("candidate near (10,10) should match id 1, got %d", second[0].ID)
	}
	if second[0].X != 15 || second[0].Y != 12 {
		t.Fatalf("detection fields not overwritten: (%v,%v)", second[0].X, second[0].Y)
	}
}

func TestCandidateOutsideRadiusSpawnsNewID(t *testing.T) {
	tracker := NewTracker(Config{Radius: 50, Timeout: time.Second, HistoryLength: 10})

	tracker.Match([]Candidate{candAt(100, 100)}, frameTime(0))
	// Exactly at the radius is outside: matching is strictly less-than
	result := tracker.Match([]Candidate{candAt(150, 100)}, frameTime(1))
	if result[0].ID != 2 {
		t.Fatalf("candidate at distance 50 with radius 50 must spawn a new id, got %d", result[0].ID)
	}
}

func TestCloserCandidatePreferred(t *testing.T) {
	tracker := NewTracker(Config{Radius: 100, Timeout: time.Second, HistoryLength: 10})

	tracker.Match([]Candidate{candAt(0, 0)}, frameTime(0))
	result := tracker.Match([]Candidate{candAt(30, 0), candAt(300, 0)}, frameTime(1))
	if len(result) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(result))
	}
	if result[0].ID != 1 {
		t.Fatalf("in-radius candidate should take the existing id, got %d", result[0].ID)
	}
	if result[1].ID != 2 {
		t.Fatalf("out-of-radius candidate should spawn id 2, got %d", result[1].ID)
	}
}

func TestNewBlobsAreNotMatchableWithinSameFrame(t *testing.T) {
	tracker := NewTrackerDefault()

	result := tracker.Match([]Candidate{candAt(10, 10), candAt(12, 12)}, frameTime(0))
	if result[0].ID == result[1].ID {
		t.Fatal("two candidates in one frame must never share an id")
	}
}

func TestHistoryBounded(t *testing.T) {
	tracker := NewTracker(Config{Radius: 500, Timeout: time.Hour, HistoryLength: 3})

	var blob *Blob
	for n := 0; n < 10; n++ {
		result := tracker.Match([]Candidate{candAt(float64(n*10), 0)}, frameTime(n))
		blob = result[0]
		if len(blob.History) > 3 {
			t.Fatalf("history length %d exceeds bound after frame %d", len(blob.History), n)
		}
	}
	if len(blob.History) != 3 {
		t.Fatalf("expected full history of 3, got %d", len(blob.History))
	}
	// Oldest evicted first: the surviving entries are the three most recent
	// pre-update positions
	want := []float64{60, 70, 80}
	for i, p := range blob.History {
		if p.X != want[i] {
			t.Fatalf("history[%d].X = %v, want %v", i, p.X, want[i])
		}
	}
}

func TestZeroHistoryLengthKeepsHistoryEmpty(t *testing.T) {
	tracker := NewTracker(Config{Radius: 500, Timeout: time.Hour, HistoryLength: 0})

	for n := 0; n < 5; n++ {
		result := tracker.Match([]Candidate{candAt(float64(n*10), 0)}, frameTime(n))
		if len(result[0].History) != 0 {
			t.Fatalf("history must stay empty with historyLength 0, got %d", len(result[0].History))
		}
	}
}

func TestTimeoutPrunesStaleBlobs(t *testing.T) {
	tracker := NewTracker(Config{Radius: 100, Timeout: time.Second, HistoryLength: 10})

	tracker.Match([]Candidate{candAt(10, 10)}, t0)
	if tracker.Len() != 1 {
		t.Fatalf("expected 1 active blob, got %d", tracker.Len())
	}

	// Nothing matches for longer than the timeout; the stale blob is pruned
	// and a candidate at the old position gets a fresh id
	result := tracker.Match([]Candidate{candAt(500, 500)}, t0.Add(1500*time.Millisecond))
	if tracker.Len() != 1 {
		t.Fatalf("stale blob should be pruned, active set has %d", tracker.Len())
	}
	if result[0].ID != 2 {
		t.Fatalf("expected id 2 after prune, got %d", result[0].ID)
	}

	revived := tracker.Match([]Candidate{candAt(10, 10)}, t0.Add(1600*time.Millisecond))
	if revived[0].ID != 3 {
		t.Fatalf("pruned ids must never be reused, got %d", revived[0].ID)
	}
}

func TestTimedOutBlobNotReturned(t *testing.T) {
	tracker := NewTracker(Config{Radius: 100, Timeout: time.Second, HistoryLength: 10})

	tracker.Match([]Candidate{candAt(10, 10), candAt(600, 600)}, t0)
	// Only the first blob is refreshed; the second goes stale
	for n := 1; n <= 40; n++ {
		result := tracker.Match([]Candidate{candAt(10, 10)}, frameTime(n))
		if len(result) != 1 || result[0].ID != 1 {
			t.Fatalf("frame %d: expected only id 1, got %v", n, result)
		}
	}
	if tracker.Len() != 1 {
		t.Fatalf("stale blob should have been pruned, active set has %d", tracker.Len())
	}
}

func TestMinAreaExcludesSmallRegions(t *testing.T) {
	tracker := NewTracker(Config{Radius: 100, Timeout: time.Second, HistoryLength: 10, MinArea: 100})

	result := tracker.Match([]Candidate{
		NewCandidate(10, 10, 7, 7, 50),
		NewCandidate(200, 200, 12, 12, 150),
	}, t0)
	if len(result) != 1 {
		t.Fatalf("area-50 region must be excluded, got %d blobs", len(result))
	}
	if result[0].ID != 1 || result[0].Area != 150 {
		t.Fatalf("area-150 region should be id 1, got id %d area %v", result[0].ID, result[0].Area)
	}
}

func TestNonFiniteCandidatesIgnored(t *testing.T) {
	tracker := NewTrackerDefault()

	result := tracker.Match([]Candidate{
		NewCandidate(math.NaN(), 10, 5, 5, 25),
		NewCandidate(10, math.Inf(1), 5, 5, 25),
		candAt(50, 50),
	}, t0)
	if len(result) != 1 {
		t.Fatalf("non-finite candidates must be dropped, got %d blobs", len(result))
	}
}

func TestNormalizedScalesPositionAndArea(t *testing.T) {
	c := NewCandidate(100, 50, 10, 20, 37.5).Normalized(0.5)
	if c.X != 200 || c.Y != 100 {
		t.Fatalf("position not scaled: (%v,%v)", c.X, c.Y)
	}
	if c.Width != 20 || c.Height != 40 {
		t.Fatalf("size not scaled: (%v,%v)", c.Width, c.Height)
	}
	// Area scales by the square of the factor: 37.5 / 0.5² = 150
	if c.Area != 150 {
		t.Fatalf("area not scale²-adjusted: %v", c.Area)
	}
}

func TestVisualPositionInitializedAndPreserved(t *testing.T) {
	tracker := NewTracker(Config{Radius: 500, Timeout: time.Hour, HistoryLength: 10})

	first := tracker.Match([]Candidate{candAt(10, 20)}, frameTime(0))
	if first[0].VisualX != 10 || first[0].VisualY != 20 {
		t.Fatalf("visual position not initialized to detection: (%v,%v)",
			first[0].VisualX, first[0].VisualY)
	}

	second := tracker.Match([]Candidate{candAt(100, 120)}, frameTime(1))
	if second[0].VisualX != 10 || second[0].VisualY != 20 {
		t.Fatalf("matching must not touch the visual position: (%v,%v)",
			second[0].VisualX, second[0].VisualY)
	}
}

func TestResetKeepsIDMonotonic(t *testing.T) {
	tracker := NewTrackerDefault()

	tracker.Match([]Candidate{candAt(10, 10)}, frameTime(0))
	tracker.Reset()
	if tracker.Len() != 0 {
		t.Fatalf("reset should clear the active set, got %d", tracker.Len())
	}
	result := tracker.Match([]Candidate{candAt(10, 10)}, frameTime(1))
	if result[0].ID != 2 {
		t.Fatalf("ids must keep incrementing across resets, got %d", result[0].ID)
	}
}

func TestTrackDriftingObjects(t *testing.T) {
	tracker := NewTracker(Config{Radius: 60, Timeout: time.Second, HistoryLength: 30})

	// Two objects drifting apart frame by frame keep their identities
	for n := 0; n < 25; n++ {
		result := tracker.Match([]Candidate{
			candAt(100+float64(n)*8, 100+float64(n)*4),
			candAt(500-float64(n)*8, 400),
		}, frameTime(n))
		if len(result) != 2 {
			t.Fatalf("frame %d: expected 2 blobs, got %d", n, len(result))
		}
		if result[0].ID != 1 || result[1].ID != 2 {
			t.Fatalf("frame %d: identities drifted: %d, %d", n, result[0].ID, result[1].ID)
		}
	}
	if tracker.Len() != 2 {
		t.Fatalf("expected 2 active blobs, got %d", tracker.Len())
	}
}
