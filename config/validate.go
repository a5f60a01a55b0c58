package config

import (
	"github.com/pkg/errors"

	"github.com/blobmark/blobmark/render"
)

// Validate rejects settings normalization cannot repair.
func (s *Settings) Validate() error {
	if _, err := render.ParseMode(s.Overlay.ColorMode); err != nil {
		return errors.Wrap(err, "overlay.color_mode")
	}
	if _, err := render.ParseHexColor(s.Overlay.BaseColor); err != nil {
		return errors.Wrap(err, "overlay.base_color")
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return errors.Errorf("log_format: unsupported value %q", s.LogFormat)
	}
	return nil
}

// RenderOptions maps overlay settings onto renderer options. Settings must
// have passed Validate.
func (s *Settings) RenderOptions() (render.Options, error) {
	mode, err := render.ParseMode(s.Overlay.ColorMode)
	if err != nil {
		return render.Options{}, errors.Wrap(err, "overlay.color_mode")
	}
	base, err := render.ParseHexColor(s.Overlay.BaseColor)
	if err != nil {
		return render.Options{}, errors.Wrap(err, "overlay.base_color")
	}
	return render.Options{
		Mode:         mode,
		Base:         base,
		Jitter:       s.Overlay.Jitter,
		Drift:        s.Overlay.Drift,
		ShowBoxes:    s.Overlay.ShowBoxes,
		ShowTrails:   s.Overlay.ShowTrails,
		ShowVelocity: s.Overlay.ShowVelocity,
	}, nil
}
