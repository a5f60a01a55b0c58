// Package preview runs the live-preview driver: a ticker-paced loop that
// processes frames at a reduced resolution for speed and publishes composited
// overlays to an MJPEG broadcaster. The preview loop and the export driver
// are mutually exclusive: stop the loop before starting an export against the
// same tracker.
package preview

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/logging"
	"github.com/blobmark/blobmark/render"
	"github.com/blobmark/blobmark/track"
	"github.com/blobmark/blobmark/video"
	"github.com/blobmark/blobmark/vision"
)

// FrameSink receives each composited preview frame.
type FrameSink interface {
	Publish(frame *image.RGBA) error
}

// Loop is the preview driver.
type Loop struct {
	dec       video.Decoder
	extractor vision.Extractor
	tracker   *track.Tracker
	renderer  *render.Renderer
	set       config.Settings
	sink      FrameSink
	log       *slog.Logger

	width  int
	height int
}

// NewLoop assembles a preview driver. width/height are the source frame
// dimensions, which are also the output/display coordinate space.
func NewLoop(dec video.Decoder, extractor vision.Extractor, tracker *track.Tracker,
	renderer *render.Renderer, set config.Settings, sink FrameSink,
	width, height int, log *slog.Logger) *Loop {
	if log == nil {
		log = logging.Nop()
	}
	return &Loop{
		dec:       dec,
		extractor: extractor,
		tracker:   tracker,
		renderer:  renderer,
		set:       set,
		sink:      sink,
		log:       log,
		width:     width,
		height:    height,
	}
}

// Run plays the source on a wall-clock ticker, looping back to the start at
// end of stream, until the context is cancelled. Frames are processed at the
// configured preview scale and rendered at full size.
func (l *Loop) Run(ctx context.Context) error {
	rate := l.set.Output.FrameRate
	scale := l.set.Output.PreviewScale
	frameDur := time.Second / time.Duration(rate)
	duration := l.dec.Duration()
	if duration <= 0 {
		return errors.New("preview: source has no duration")
	}

	buf := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	smallWidth := int(float64(l.width) * scale)
	if smallWidth < 1 {
		smallWidth = 1
	}

	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	l.log.Info("preview loop started",
		slog.Int("fps", rate), slog.Float64("scale", scale))

	var pos time.Duration
	for {
		select {
		case <-ctx.Done():
			l.log.Info("preview loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}

		seekCtx, cancel := context.WithTimeout(ctx, frameDur)
		err := l.dec.Seek(seekCtx, pos)
		timedOut := errors.Is(seekCtx.Err(), context.DeadlineExceeded) ||
			errors.Is(err, context.DeadlineExceeded)
		cancel()
		if err != nil && !timedOut {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "preview seek")
		}
		pos += frameDur
		if pos >= duration {
			pos = 0
		}

		frame, err := l.dec.Frame()
		if err != nil {
			// One unreadable frame skips detection, not the loop
			continue
		}

		small := imaging.Resize(frame, smallWidth, 0, imaging.Linear)
		now := time.Now()
		cands, err := l.extractor.Extract(small, l.set.Detection, scale)
		if err != nil {
			l.log.Warn("region extraction failed", slog.Any("error", err))
			cands = nil
		}
		blobs := l.tracker.Match(track.NormalizeCandidates(cands, scale), now)

		if l.set.Overlay.OverlaysOnly {
			draw.Draw(buf, buf.Rect, image.Black, image.Point{}, draw.Src)
		} else {
			draw.Draw(buf, buf.Rect, frame, frame.Bounds().Min, draw.Src)
		}
		l.renderer.Composite(buf, blobs, now)

		if err := l.sink.Publish(buf); err != nil {
			l.log.Warn("preview publish failed", slog.Any("error", err))
		}
	}
}
