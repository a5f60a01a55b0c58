// Package video defines the decode and encode boundaries of the pipeline.
// The core never touches codec internals: decoding and encoding are supplied
// by backends behind these contracts, with exec-based ffmpeg adapters bundled
// for the CLI.
package video

import (
	"context"
	"image"
	"time"
)

// Decoder exposes seekable access to a source video's frames.
type Decoder interface {
	// Duration reports the source duration.
	Duration() time.Duration
	// Seek positions the decoder at the given timestamp. It may block until
	// the frame is available; callers bound it with the context.
	Seek(ctx context.Context, ts time.Duration) error
	// Frame returns the pixel buffer at the current position. A failed read
	// is reported as ErrFrameAcquisition and skips one frame's detection,
	// never the whole run.
	Frame() (*image.RGBA, error)
	Close() error
}

// Artifact is the final encoded output: opaque bytes plus the format
// identifier (container extension) they were encoded with. The core hands it
// back to the caller and never persists it.
type Artifact struct {
	Bytes    []byte
	FormatID string
}

// FormatCandidate names one codec/container pairing that format negotiation
// may select.
type FormatCandidate struct {
	Container string
	Codec     string
	Ext       string
}

// ID returns the caller-facing format identifier.
func (f FormatCandidate) ID() string {
	return f.Ext
}

// DefaultFormats is the priority-ordered negotiation list. First supported
// candidate wins; the order favors the formats the original pipeline
// preferred.
func DefaultFormats() []FormatCandidate {
	return []FormatCandidate{
		{Container: "webm", Codec: "libvpx-vp9", Ext: "webm"},
		{Container: "webm", Codec: "libvpx", Ext: "webm"},
		{Container: "mp4", Codec: "libx264", Ext: "mp4"},
		{Container: "matroska", Codec: "mpeg4", Ext: "mkv"},
	}
}

// SinkOpener probes format candidates and opens encode sinks. Supports is
// consulted once per candidate during negotiation; Open is called for the
// first supported candidate only.
type SinkOpener interface {
	Supports(cand FormatCandidate) bool
	Open(ctx context.Context, cand FormatCandidate, width, height, frameRate int) (EncodeSink, error)
}

// EncodeSink assembles the encoded artifact. A sink additionally implements
// FrameSubmitter when it accepts externally-paced frames, or CaptureSink when
// it only samples autonomously; the export driver degrades to the capture
// fallback when pacing is unavailable.
type EncodeSink interface {
	// Finalize signals end-of-stream and returns the assembled artifact.
	Finalize(ctx context.Context) (Artifact, error)
	// Discard abandons the encode and releases resources; no artifact is
	// produced.
	Discard() error
}

// FrameSubmitter accepts exactly one logical output frame per call.
type FrameSubmitter interface {
	SubmitFrame(frame *image.RGBA) error
}

// CaptureSink samples whatever frame is currently held at its own free-running
// rate. The export driver holds each composited frame for one output-frame
// duration so the sampler captures it at least once.
type CaptureSink interface {
	StartCapture(frameRate int) error
	StopCapture() error
}
