package heartrate

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-ppg-heartrate/internal/detector"
	"github.com/tphakala/go-ppg-heartrate/internal/filter"
	"github.com/tphakala/go-ppg-heartrate/internal/mathutil"
	"github.com/tphakala/go-ppg-heartrate/internal/spectrum"
)

// Common errors returned by the estimator.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid heart rate configuration")

	// ErrNotReady indicates that not enough recorded signal is available yet.
	ErrNotReady = errors.New("heart rate estimate not ready")

	// ErrSpectrumDisabled indicates the spectral view was turned off in Config.
	ErrSpectrumDisabled = errors.New("spectral estimate disabled")
)

// State is the coarse session mode.
type State int

const (
	// StateWarmingUp covers a fresh session and any recovery from a bad
	// signal. BPM is suppressed while the filter settles.
	StateWarmingUp State = iota

	// StateRecording means enough consecutive good frames have been seen
	// and BPM is live.
	StateRecording
)

// String returns the transport label of the state.
func (s State) String() string {
	switch s {
	case StateWarmingUp:
		return "WARMING_UP"
	case StateRecording:
		return "RECORDING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateWarmingUp, StateRecording:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
}

// Transition reports what a frame did to the sign of the filtered signal.
// It is a debug/visual indicator only.
type Transition = detector.Transition

// Transition values.
const (
	TransitionNone    = detector.TransitionNone
	TransitionRising  = detector.TransitionRising
	TransitionFalling = detector.TransitionFalling
)

// Frame is one reduced camera frame.
type Frame struct {
	// Hue of the averaged frame colour, in units of Config.HuePeriod
	// (degrees by default).
	Hue float64

	// Saturation and Brightness of the averaged colour, in [0, 1].
	Saturation float64
	Brightness float64

	// Timestamp is the capture time in seconds. It must increase from
	// frame to frame.
	Timestamp float64

	// Reset forces the session back to StateWarmingUp before the frame is
	// processed.
	Reset bool
}

// Result holds the read-only values reported after each frame.
type Result struct {
	Hue        float64
	Saturation float64
	Brightness float64
	Timestamp  float64

	// Filtered is the band-passed hue (0 when the frame was rejected).
	Filtered float64

	// BPM is the live estimate, 0 while unknown or warming up.
	BPM float64

	State      State
	GoodFrames int
	Transition Transition
}

// Config holds estimator configuration.
type Config struct {
	// FrameRate is the nominal frame rate in Hz, used for filter design.
	FrameRate float64

	// LowCutHz and HighCutHz bound the band-pass filter.
	LowCutHz  float64
	HighCutHz float64

	// MinBPM and MaxBPM bound a plausible single inter-beat period.
	MinBPM float64
	MaxBPM float64

	// Smoothing is the EMA weight of each accepted period, in (0, 1].
	Smoothing float64

	// WarmupFrames is the count of consecutive good frames required before
	// entering StateRecording.
	WarmupFrames int

	// MinSaturation and MinBrightness are exclusive lower bounds of the
	// signal quality gate.
	MinSaturation float64
	MinBrightness float64

	// UnwrapHue removes jumps where the hue crosses the 0/HuePeriod seam.
	UnwrapHue bool
	HuePeriod float64

	// SpectrumWindow is the number of recorded frames kept for
	// SpectralBPM. Zero disables the spectral view.
	SpectrumWindow int
}

// DefaultConfig returns the standard configuration for a 30 fps camera.
func DefaultConfig() Config {
	return Config{
		FrameRate:      DefaultFrameRate,
		LowCutHz:       DefaultLowCutHz,
		HighCutHz:      DefaultHighCutHz,
		MinBPM:         DefaultMinBPM,
		MaxBPM:         DefaultMaxBPM,
		Smoothing:      DefaultSmoothing,
		WarmupFrames:   DefaultWarmupFrames,
		MinSaturation:  DefaultMinSaturation,
		MinBrightness:  DefaultMinBrightness,
		UnwrapHue:      true,
		HuePeriod:      DefaultHuePeriod,
		SpectrumWindow: DefaultSpectrumWindow,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !mathutil.IsFinite(c.FrameRate) || c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", ErrInvalidConfig)
	}

	if _, err := filter.NewBandPassFilter(c.FrameRate, c.LowCutHz, c.HighCutHz); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dc := c.detectorConfig()
	if err := dc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.WarmupFrames < 0 {
		return fmt.Errorf("%w: warm-up frames must not be negative", ErrInvalidConfig)
	}

	if !inUnitInterval(c.MinSaturation) || !inUnitInterval(c.MinBrightness) {
		return fmt.Errorf("%w: quality thresholds must be in [0, 1)", ErrInvalidConfig)
	}

	if c.UnwrapHue && (!mathutil.IsFinite(c.HuePeriod) || c.HuePeriod <= 0) {
		return fmt.Errorf("%w: hue period must be positive", ErrInvalidConfig)
	}

	if c.SpectrumWindow != 0 {
		if c.SpectrumWindow < spectrum.MinSamples {
			return fmt.Errorf("%w: spectrum window must be 0 or at least %d frames",
				ErrInvalidConfig, spectrum.MinSamples)
		}
		if c.MaxBPM/secondsPerMinute >= c.FrameRate/nyquistDivisor {
			return fmt.Errorf("%w: max BPM %v not resolvable at %v fps", ErrInvalidConfig, c.MaxBPM, c.FrameRate)
		}
	}

	return nil
}

func (c *Config) detectorConfig() detector.Config {
	dc := detector.DefaultConfig()
	dc.MinBPM = c.MinBPM
	dc.MaxBPM = c.MaxBPM
	dc.Smoothing = c.Smoothing
	return dc
}

func inUnitInterval(v float64) bool {
	return mathutil.IsFinite(v) && v >= 0 && v < 1
}
