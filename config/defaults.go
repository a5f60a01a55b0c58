package config

const (
	defaultThreshold     = 40
	defaultMinArea       = 100.0
	defaultBlurSize      = 5
	defaultRadius        = 100.0
	defaultHistoryLength = 20
	maxHistoryLength     = 50
	defaultJitter        = 0.3
	defaultDrift         = 0.5
	defaultColorMode     = "solid"
	defaultBaseColor     = "#3ddc84"
	defaultFrameRate     = 30
	maxFrameRate         = 120
	defaultPreviewScale  = 0.5
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
)

// Default returns Settings populated with repository defaults.
func Default() Settings {
	return Settings{
		Detection: Detection{
			Threshold: defaultThreshold,
			MinArea:   defaultMinArea,
			BlurSize:  defaultBlurSize,
		},
		Tracking: Tracking{
			Radius:        defaultRadius,
			HistoryLength: defaultHistoryLength,
		},
		Overlay: Overlay{
			Jitter:     defaultJitter,
			Drift:      defaultDrift,
			ColorMode:  defaultColorMode,
			BaseColor:  defaultBaseColor,
			ShowTrails: true,
		},
		Output: Output{
			FrameRate:    defaultFrameRate,
			PreviewScale: defaultPreviewScale,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}
