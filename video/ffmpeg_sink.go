package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
)

// FFmpegOpener negotiates encode formats against the local ffmpeg build and
// opens stdin-fed rawvideo encode sinks.
type FFmpegOpener struct {
	once     sync.Once
	encoders map[string]struct{}
	muxers   map[string]struct{}
	probeErr error
}

func NewFFmpegOpener() *FFmpegOpener {
	return &FFmpegOpener{}
}

// Supports reports whether the local ffmpeg build carries both the encoder
// and the muxer a candidate needs. Capability lists are probed once and
// cached.
func (o *FFmpegOpener) Supports(cand FormatCandidate) bool {
	o.once.Do(o.probe)
	if o.probeErr != nil {
		return false
	}
	if _, ok := o.encoders[cand.Codec]; !ok {
		return false
	}
	_, ok := o.muxers[cand.Container]
	return ok
}

func (o *FFmpegOpener) probe() {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		o.probeErr = errors.Wrap(ErrBackendUnavailable, "ffmpeg not found")
		return
	}
	encoders, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		o.probeErr = errors.Wrap(err, "list encoders")
		return
	}
	muxers, err := exec.Command("ffmpeg", "-hide_banner", "-muxers").Output()
	if err != nil {
		o.probeErr = errors.Wrap(err, "list muxers")
		return
	}
	o.encoders = parseFeatureList(string(encoders))
	o.muxers = parseFeatureList(string(muxers))
}

// Open starts an encode process consuming externally-paced RGBA frames on
// stdin and muxing into a temporary file collected at Finalize.
func (o *FFmpegOpener) Open(ctx context.Context, cand FormatCandidate, width, height, frameRate int) (EncodeSink, error) {
	tmp, err := os.CreateTemp("", "blobmark-*."+cand.Ext)
	if err != nil {
		return nil, errors.Wrap(err, "create encode scratch file")
	}
	tmpPath := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", frameRate),
		"-i", "pipe:0",
		"-c:v", cand.Codec,
		"-pix_fmt", "yuv420p",
		"-f", cand.Container,
		tmpPath,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "open encoder stdin")
	}
	if err := cmd.Start(); err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrapf(err, "start encoder %s/%s", cand.Container, cand.Codec)
	}
	return &ffmpegSink{
		cand:    cand,
		cmd:     cmd,
		stdin:   stdin,
		tmpPath: tmpPath,
		width:   width,
		height:  height,
	}, nil
}

type ffmpegSink struct {
	cand    FormatCandidate
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	tmpPath string
	width   int
	height  int
	done    bool
}

// SubmitFrame writes exactly one logical output frame to the encoder.
func (s *ffmpegSink) SubmitFrame(frame *image.RGBA) error {
	if s.done {
		return errors.New("encode sink already finalized")
	}
	b := frame.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return errors.Errorf("frame size %dx%d does not match sink %dx%d",
			b.Dx(), b.Dy(), s.width, s.height)
	}
	rowLen := s.width * 4
	for y := 0; y < s.height; y++ {
		off := frame.PixOffset(b.Min.X, b.Min.Y+y)
		if _, err := s.stdin.Write(frame.Pix[off : off+rowLen]); err != nil {
			return errors.Wrap(err, "submit frame")
		}
	}
	return nil
}

// Finalize closes the frame stream, waits for the muxer and returns the
// assembled artifact.
func (s *ffmpegSink) Finalize(ctx context.Context) (Artifact, error) {
	if s.done {
		return Artifact{}, errors.New("encode sink already finalized")
	}
	s.done = true
	defer os.Remove(s.tmpPath)

	if err := s.stdin.Close(); err != nil {
		s.cmd.Process.Kill()
		return Artifact{}, errors.Wrap(err, "close encoder stream")
	}
	waitErr := make(chan error, 1)
	go func() { waitErr <- s.cmd.Wait() }()
	select {
	case err := <-waitErr:
		if err != nil {
			return Artifact{}, errors.Wrap(err, "finalize encode")
		}
	case <-ctx.Done():
		s.cmd.Process.Kill()
		<-waitErr
		return Artifact{}, ctx.Err()
	}
	raw, err := os.ReadFile(s.tmpPath)
	if err != nil {
		return Artifact{}, errors.Wrap(err, "collect encoded artifact")
	}
	return Artifact{Bytes: raw, FormatID: s.cand.ID()}, nil
}

// Discard abandons the encode; partial output is removed.
func (s *ffmpegSink) Discard() error {
	if s.done {
		return nil
	}
	s.done = true
	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return os.Remove(s.tmpPath)
}
