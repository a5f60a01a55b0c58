package preview

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/render"
	"github.com/blobmark/blobmark/track"
	"github.com/blobmark/blobmark/vision"
)

// killedSeekDecoder emulates an exec-based decoder whose per-seek process is
// killed at the deadline and reports the exit status instead of the context
// error.
type killedSeekDecoder struct {
	duration time.Duration
}

func (d *killedSeekDecoder) Duration() time.Duration { return d.duration }

func (d *killedSeekDecoder) Seek(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return errors.New("signal: killed")
}

func (d *killedSeekDecoder) Frame() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
}

func (d *killedSeekDecoder) Close() error { return nil }

type countingSink struct {
	mu sync.Mutex
	n  int
}

func (s *countingSink) Publish(*image.RGBA) error {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func TestLoopSurvivesSeeksKilledAtDeadline(t *testing.T) {
	set := config.Default()
	sink := &countingSink{}
	ext := vision.Func(func(image.Image, config.Detection, float64) ([]track.Candidate, error) {
		return nil, nil
	})
	loop := NewLoop(&killedSeekDecoder{duration: 10 * time.Second}, ext,
		track.NewTrackerDefault(),
		render.New(render.Options{Mode: render.ColorSolid, Base: color.RGBA{R: 255, A: 255}}),
		set, sink, 64, 48, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	err := loop.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("seek kills must not abort the loop; expected cancellation, got %v", err)
	}
	if sink.count() == 0 {
		t.Fatal("expected frames to keep flowing despite timed-out seeks")
	}
}
