package video

import "github.com/pkg/errors"

var (
	// ErrBackendUnavailable means the vision, decode or encode backend is
	// not ready yet. Non-fatal: callers defer or retry the operation.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrFrameAcquisition means one frame's pixel read failed. The frame's
	// detection is skipped and processing continues.
	ErrFrameAcquisition = errors.New("frame acquisition failed")

	// ErrFormatNegotiation means no supported encode format was found.
	// Fatal: the export aborts before any frame is processed.
	ErrFormatNegotiation = errors.New("no supported encode format")
)
