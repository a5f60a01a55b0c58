package video

import (
	"context"
	"image"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// FFmpegDecoder reads frames out of a source file by invoking ffmpeg for
// each seek. Frame extraction is exact-timestamp: every Seek decodes the one
// frame at the requested position into an RGBA buffer.
type FFmpegDecoder struct {
	path     string
	width    int
	height   int
	duration time.Duration

	frame   *image.RGBA
	frameOK bool
}

// NewFFmpegDecoder probes the source with ffprobe and prepares a decoder.
// A missing ffmpeg/ffprobe installation surfaces as ErrBackendUnavailable.
func NewFFmpegDecoder(ctx context.Context, path string) (*FFmpegDecoder, error) {
	for _, bin := range []string{"ffprobe", "ffmpeg"} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, errors.Wrapf(ErrBackendUnavailable, "%s not found", bin)
		}
	}
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "probe %s", path)
	}
	info, err := parseProbeOutput(string(out))
	if err != nil {
		return nil, errors.Wrapf(err, "probe %s", path)
	}
	return &FFmpegDecoder{
		path:     path,
		width:    info.Width,
		height:   info.Height,
		duration: info.Duration,
	}, nil
}

// Size returns the source frame dimensions.
func (d *FFmpegDecoder) Size() (int, int) {
	return d.width, d.height
}

// Duration reports the source duration.
func (d *FFmpegDecoder) Duration() time.Duration {
	return d.duration
}

// Seek decodes the frame at ts into the decoder's buffer. A short read marks
// the current frame unavailable (reported by Frame as ErrFrameAcquisition)
// without failing the seek; only a decode process error is fatal.
func (d *FFmpegDecoder) Seek(ctx context.Context, ts time.Duration) error {
	d.frameOK = false
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-ss", formatSeconds(ts),
		"-i", d.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	// Output must not outlive the kill waiting on pipes inherited by
	// ffmpeg's children
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		// A context-bounded kill surfaces as an exit error ("signal:
		// killed"); report the context's own error instead so callers can
		// tell an expired deadline from a decode failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "seek %s to %s", d.path, ts)
		}
		return errors.Wrapf(err, "seek %s to %s", d.path, ts)
	}
	want := d.width * d.height * 4
	if len(out) < want {
		// Past end-of-stream or truncated decode; one frame's detection
		// gets skipped
		return nil
	}
	frame := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	copy(frame.Pix, out[:want])
	d.frame = frame
	d.frameOK = true
	return nil
}

// Frame returns the pixel buffer decoded by the last Seek.
func (d *FFmpegDecoder) Frame() (*image.RGBA, error) {
	if !d.frameOK || d.frame == nil {
		return nil, ErrFrameAcquisition
	}
	return d.frame, nil
}

func (d *FFmpegDecoder) Close() error {
	d.frame = nil
	d.frameOK = false
	return nil
}

func formatSeconds(ts time.Duration) string {
	return strconv.FormatFloat(ts.Seconds(), 'f', 3, 64)
}
