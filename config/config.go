// Package config loads and validates overlay settings. Values arrive from an
// optional TOML file layered over repository defaults; normalization clamps
// every field into its documented range so the tracker, renderer and drivers
// never see out-of-range input.
package config

import (
	_ "embed"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

//go:embed sample_config.toml
var sampleConfig string

// Detection holds the region-extraction settings handed to the vision
// backend.
type Detection struct {
	// Binarization threshold, 0..255
	Threshold int `toml:"threshold"`
	// Minimum region area in full-resolution-equivalent pixels
	MinArea float64 `toml:"min_area"`
	// Smoothing kernel size, coerced to odd
	BlurSize int `toml:"blur_size"`
}

// Tracking holds identity-tracker settings.
type Tracking struct {
	// Matching radius in output-space pixels
	Radius float64 `toml:"radius"`
	// Number of prior positions kept per identity, 0..50
	HistoryLength int `toml:"history_length"`
}

// Overlay holds marker styling settings.
type Overlay struct {
	// Positional noise amplitude, 0.0..1.0
	Jitter float64 `toml:"jitter"`
	// Convergence rate of the display position, 0.0..1.0
	Drift float64 `toml:"drift"`
	// Color mode: solid, cycle or random
	ColorMode string `toml:"color_mode"`
	// Base color for solid mode, #RRGGBB
	BaseColor    string `toml:"base_color"`
	ShowBoxes    bool   `toml:"show_boxes"`
	ShowTrails   bool   `toml:"show_trails"`
	ShowVelocity bool   `toml:"show_velocity"`
	// Render markers on a blank canvas instead of the source frame
	OverlaysOnly bool `toml:"overlays_only"`
}

// Output holds export and preview pacing settings.
type Output struct {
	// Target frame rate for export and preview, 1..120
	FrameRate int `toml:"frame_rate"`
	// Processing scale for preview, (0,1]; export always runs at 1
	PreviewScale float64 `toml:"preview_scale"`
}

// Settings is the full configuration consumed by the pipeline.
type Settings struct {
	Detection Detection `toml:"detection"`
	Tracking  Tracking  `toml:"tracking"`
	Overlay   Overlay   `toml:"overlay"`
	Output    Output    `toml:"output"`
	LogLevel  string    `toml:"log_level"`
	LogFormat string    `toml:"log_format"`
}

// Load reads settings from a TOML file layered over defaults. An empty path
// returns defaults so callers can run unconfigured; a named file must exist,
// so a mistyped path fails instead of silently falling back.
func Load(path string) (Settings, error) {
	set := Default()
	if path == "" {
		set.normalize()
		return set, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "read settings %s", path)
	}
	if err := toml.Unmarshal(raw, &set); err != nil {
		return Settings{}, errors.Wrapf(err, "parse settings %s", path)
	}
	set.normalize()
	if err := set.Validate(); err != nil {
		return Settings{}, err
	}
	return set, nil
}

// Sample returns the annotated sample configuration file.
func Sample() string {
	return sampleConfig
}
