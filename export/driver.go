// Package export drives the frame-accurate offline render: a fixed-rate,
// seek-synchronized loop over the full source duration, one logical output
// frame per iteration, decoupled from how fast the machine can actually
// compute each frame.
package export

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/logging"
	"github.com/blobmark/blobmark/render"
	"github.com/blobmark/blobmark/track"
	"github.com/blobmark/blobmark/video"
	"github.com/blobmark/blobmark/vision"
)

const defaultSeekTimeout = 250 * time.Millisecond

// Options configure a single export run.
type Options struct {
	// Output frame dimensions; required
	Width  int
	Height int
	// Target output frame rate; defaults to 30
	FrameRate int
	// Bound on waiting for seek confirmation; defaults to 250ms
	SeekTimeout time.Duration
	// Priority-ordered format negotiation list; defaults to
	// video.DefaultFormats
	Formats []video.FormatCandidate
	// Render markers on a blank canvas instead of the decoded frame
	OverlaysOnly bool
	// Progress receives the clamped, monotonically non-decreasing
	// percentage at least once per logical frame; optional
	Progress func(pct int)
}

// Driver runs the export state machine:
// Idle → Preparing → Exporting → Finalizing → {Completed|Cancelled|Failed}.
// A driver is single-use; it owns the tracker exclusively for the duration
// of the run.
type Driver struct {
	dec       video.Decoder
	opener    video.SinkOpener
	extractor vision.Extractor
	tracker   *track.Tracker
	renderer  *render.Renderer
	det       config.Detection
	opts      Options
	log       *slog.Logger

	state   State
	lastPct int
}

// New assembles an export driver over the pipeline components.
func New(dec video.Decoder, opener video.SinkOpener, extractor vision.Extractor,
	tracker *track.Tracker, renderer *render.Renderer, det config.Detection,
	opts Options, log *slog.Logger) *Driver {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.SeekTimeout <= 0 {
		opts.SeekTimeout = defaultSeekTimeout
	}
	if len(opts.Formats) == 0 {
		opts.Formats = video.DefaultFormats()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Driver{
		dec:       dec,
		opener:    opener,
		extractor: extractor,
		tracker:   tracker,
		renderer:  renderer,
		det:       det,
		opts:      opts,
		log:       log,
		state:     Idle,
		lastPct:   -1,
	}
}

// State reports the driver's current lifecycle phase.
func (d *Driver) State() State {
	return d.state
}

// Run executes the export and returns the encoded artifact. On cancellation
// the partial output is discarded and the context error is returned; on any
// fatal failure no artifact is produced.
func (d *Driver) Run(ctx context.Context) (video.Artifact, error) {
	if d.opts.Width <= 0 || d.opts.Height <= 0 {
		d.state = Failed
		return video.Artifact{}, errors.New("export: output dimensions are required")
	}
	log := d.log.With(slog.String("job", uuid.NewString()))

	d.state = Preparing
	// Export always processes at full resolution; stale downscaled state
	// from a preview session must not leak into the output
	if r, ok := d.extractor.(vision.Resettable); ok {
		r.Reset()
	}
	d.tracker.Reset()

	format, ok := d.negotiate()
	if !ok {
		d.state = Failed
		return video.Artifact{}, errors.Wrapf(video.ErrFormatNegotiation,
			"probed %d candidates", len(d.opts.Formats))
	}
	log.Info("negotiated encode format",
		slog.String("container", format.Container),
		slog.String("codec", format.Codec))

	sink, err := d.opener.Open(ctx, format, d.opts.Width, d.opts.Height, d.opts.FrameRate)
	if err != nil {
		d.state = Failed
		return video.Artifact{}, errors.Wrap(err, "open encode sink")
	}

	artifact, err := d.export(ctx, log, sink)
	if err != nil {
		sink.Discard()
		d.restoreDecoder()
		return video.Artifact{}, err
	}
	return artifact, nil
}

func (d *Driver) export(ctx context.Context, log *slog.Logger, sink video.EncodeSink) (video.Artifact, error) {
	d.state = Exporting

	frameDur := time.Second / time.Duration(d.opts.FrameRate)
	duration := d.dec.Duration()
	// Frame-exact count: integer ceil of duration*rate, so a truncated
	// frameDur cannot add a spurious tick
	rate := int64(d.opts.FrameRate)
	totalFrames := (int64(duration)*rate + int64(time.Second) - 1) / int64(time.Second)
	epoch := time.Unix(0, 0)
	buf := image.NewRGBA(image.Rect(0, 0, d.opts.Width, d.opts.Height))

	submitter, paced := sink.(video.FrameSubmitter)
	capture, freeRunning := sink.(video.CaptureSink)
	if !paced && !freeRunning {
		d.state = Failed
		return video.Artifact{}, errors.New("export: sink supports neither paced submission nor capture")
	}
	captureStarted := false
	defer func() {
		if captureStarted {
			capture.StopCapture()
		}
	}()

	for n := int64(0); n < totalFrames; n++ {
		// Cooperative yield: cancellation takes effect only here, never
		// mid-frame
		select {
		case <-ctx.Done():
			d.state = Cancelled
			log.Info("export cancelled", slog.Int64("frame", n))
			return video.Artifact{}, ctx.Err()
		default:
		}

		ts := time.Duration(n) * time.Second / time.Duration(d.opts.FrameRate)
		seekRes, err := d.awaitSeek(ctx, ts)
		if err != nil {
			if ctx.Err() != nil {
				d.state = Cancelled
				return video.Artifact{}, ctx.Err()
			}
			d.state = Failed
			return video.Artifact{}, errors.Wrapf(err, "seek frame %d", n)
		}
		if seekRes == SeekTimedOut {
			log.Debug("seek confirmation timed out, proceeding",
				slog.Int64("frame", n), slog.Duration("ts", ts))
		}

		frame, frameErr := d.dec.Frame()
		if frameErr != nil && !errors.Is(frameErr, video.ErrFrameAcquisition) {
			d.state = Failed
			return video.Artifact{}, errors.Wrapf(frameErr, "read frame %d", n)
		}

		if d.opts.OverlaysOnly || frameErr != nil {
			draw.Draw(buf, buf.Rect, image.NewUniform(color.Black), image.Point{}, draw.Src)
		} else {
			draw.Draw(buf, buf.Rect, frame, frame.Bounds().Min, draw.Src)
		}

		now := epoch.Add(ts)
		var blobs []*track.Blob
		if frameErr == nil {
			cands, err := d.extractor.Extract(frame, d.det, 1.0)
			if err != nil {
				// A single frame's detection failure never aborts the loop
				log.Warn("region extraction failed", slog.Int64("frame", n), slog.Any("error", err))
				cands = nil
			}
			blobs = d.tracker.Match(track.NormalizeCandidates(cands, 1.0), now)
		} else {
			blobs = d.tracker.Match(nil, now)
		}
		d.renderer.Composite(buf, blobs, now)

		if paced {
			if err := submitter.SubmitFrame(buf); err != nil {
				d.state = Failed
				return video.Artifact{}, errors.Wrapf(err, "submit frame %d", n)
			}
		} else {
			// Degraded fallback: hold the frame for one output-frame
			// duration so the sink's autonomous sampler captures it
			if !captureStarted {
				if err := capture.StartCapture(d.opts.FrameRate); err != nil {
					d.state = Failed
					return video.Artifact{}, errors.Wrap(err, "start capture")
				}
				captureStarted = true
			}
			select {
			case <-time.After(frameDur):
			case <-ctx.Done():
				d.state = Cancelled
				return video.Artifact{}, ctx.Err()
			}
		}

		d.report(int(math.Round(100 * float64(ts) / float64(duration))))
	}

	d.state = Finalizing
	if captureStarted {
		captureStarted = false
		if err := capture.StopCapture(); err != nil {
			d.state = Failed
			return video.Artifact{}, errors.Wrap(err, "stop capture")
		}
	}
	artifact, err := sink.Finalize(ctx)
	if err != nil {
		d.state = Failed
		return video.Artifact{}, errors.Wrap(err, "finalize encode")
	}
	d.report(100)
	d.restoreDecoder()
	d.state = Completed
	log.Info("export completed",
		slog.String("format", artifact.FormatID),
		slog.Int("bytes", len(artifact.Bytes)))
	return artifact, nil
}

// negotiate walks the priority-ordered candidate list and picks the first
// format the sink backend supports.
func (d *Driver) negotiate() (video.FormatCandidate, bool) {
	for _, cand := range d.opts.Formats {
		if d.opener.Supports(cand) {
			return cand, true
		}
	}
	return video.FormatCandidate{}, false
}

// awaitSeek requests a seek and waits for confirmation with a bounded
// timeout. The race between confirmation and timeout is explicit: both
// outcomes proceed, a timeout merely stops the wait. Only a decoder error is
// surfaced.
func (d *Driver) awaitSeek(ctx context.Context, ts time.Duration) (SeekResult, error) {
	seekCtx, cancel := context.WithTimeout(ctx, d.opts.SeekTimeout)
	defer cancel()
	err := d.dec.Seek(seekCtx, ts)
	if err == nil {
		return SeekConfirmed, nil
	}
	if ctx.Err() != nil {
		return SeekConfirmed, err
	}
	// The race is decided by the seek context, not by the error's identity:
	// a decoder killed at the deadline may report its own error (an exec
	// exit status, say) rather than the context's
	if errors.Is(seekCtx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) {
		return SeekTimedOut, nil
	}
	return SeekConfirmed, err
}

// report forwards clamped, monotonically non-decreasing progress.
func (d *Driver) report(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct < d.lastPct {
		pct = d.lastPct
	}
	d.lastPct = pct
	if d.opts.Progress != nil {
		d.opts.Progress(pct)
	}
}

// restoreDecoder best-effort returns the source to its initial position.
func (d *Driver) restoreDecoder() {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.SeekTimeout)
	defer cancel()
	if err := d.dec.Seek(ctx, 0); err != nil {
		d.log.Warn("failed to restore decoder position", slog.Any("error", err))
	}
}
