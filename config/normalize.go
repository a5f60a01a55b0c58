package config

import "strings"

func (s *Settings) normalize() {
	s.normalizeDetection()
	s.normalizeTracking()
	s.normalizeOverlay()
	s.normalizeOutput()
	s.normalizeLogging()
}

func (s *Settings) normalizeDetection() {
	s.Detection.Threshold = clampInt(s.Detection.Threshold, 0, 255)
	if s.Detection.MinArea < 0 {
		s.Detection.MinArea = 0
	}
	if s.Detection.BlurSize < 1 {
		s.Detection.BlurSize = 1
	}
	// Smoothing kernels need a center pixel
	if s.Detection.BlurSize%2 == 0 {
		s.Detection.BlurSize++
	}
}

func (s *Settings) normalizeTracking() {
	if s.Tracking.Radius <= 0 {
		s.Tracking.Radius = defaultRadius
	}
	s.Tracking.HistoryLength = clampInt(s.Tracking.HistoryLength, 0, maxHistoryLength)
}

func (s *Settings) normalizeOverlay() {
	s.Overlay.Jitter = clampFloat(s.Overlay.Jitter, 0, 1)
	s.Overlay.Drift = clampFloat(s.Overlay.Drift, 0, 1)
	s.Overlay.ColorMode = strings.ToLower(strings.TrimSpace(s.Overlay.ColorMode))
	if s.Overlay.ColorMode == "" {
		s.Overlay.ColorMode = defaultColorMode
	}
	s.Overlay.BaseColor = strings.TrimSpace(s.Overlay.BaseColor)
	if s.Overlay.BaseColor == "" {
		s.Overlay.BaseColor = defaultBaseColor
	}
}

func (s *Settings) normalizeOutput() {
	if s.Output.FrameRate <= 0 {
		s.Output.FrameRate = defaultFrameRate
	}
	if s.Output.FrameRate > maxFrameRate {
		s.Output.FrameRate = maxFrameRate
	}
	if s.Output.PreviewScale <= 0 || s.Output.PreviewScale > 1 {
		s.Output.PreviewScale = defaultPreviewScale
	}
}

func (s *Settings) normalizeLogging() {
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.LogLevel == "" {
		s.LogLevel = defaultLogLevel
	}
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	if s.LogFormat == "" {
		s.LogFormat = defaultLogFormat
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
