package heartrate

import (
	"github.com/tphakala/go-ppg-heartrate/internal/detector"
	"github.com/tphakala/go-ppg-heartrate/internal/filter"
)

// Session defaults.
const (
	// DefaultFrameRate is the assumed camera frame rate in frames per second.
	DefaultFrameRate = 30.0

	// DefaultWarmupFrames is the number of consecutive good-quality frames
	// accepted before BPM is reported. It trades detection latency against
	// filter settling time.
	DefaultWarmupFrames = 60

	// DefaultMinSaturation and DefaultMinBrightness gate frames: a covered,
	// lit lens yields a strongly saturated, bright red.
	DefaultMinSaturation = 0.5
	DefaultMinBrightness = 0.5

	// DefaultHuePeriod is the hue circle in degrees.
	DefaultHuePeriod = 360.0

	// DefaultSpectrumWindow is the number of recent filtered frames kept for
	// the spectral cross-check (about 8.5 s at 30 fps).
	DefaultSpectrumWindow = 256
)

// Filter and detector defaults, re-exported for Config users.
const (
	DefaultLowCutHz  = filter.DefaultLowCutHz
	DefaultHighCutHz = filter.DefaultHighCutHz
	DefaultMinBPM    = detector.DefaultMinBPM
	DefaultMaxBPM    = detector.DefaultMaxBPM
	DefaultSmoothing = detector.DefaultSmoothing
)

const (
	secondsPerMinute = 60.0
	nyquistDivisor   = 2.0
)
