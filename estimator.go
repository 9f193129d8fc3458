package heartrate

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-ppg-heartrate/internal/detector"
	"github.com/tphakala/go-ppg-heartrate/internal/filter"
	"github.com/tphakala/go-ppg-heartrate/internal/history"
	"github.com/tphakala/go-ppg-heartrate/internal/mathutil"
	"github.com/tphakala/go-ppg-heartrate/internal/monitoring"
	"github.com/tphakala/go-ppg-heartrate/internal/spectrum"
)

// Estimator is one heart-rate session. It owns a band-pass filter, a pulse
// detector and the warm-up state machine, and consumes one Frame at a time.
//
// An Estimator is not safe for concurrent use; feed it from a single
// goroutine or serialize calls externally.
type Estimator struct {
	config Config

	filter   *filter.BandPassFilter
	detector *detector.PulseDetector

	// Spectral cross-check (nil when disabled).
	history  *history.Ring
	analyzer *spectrum.Analyzer
	scratch  []float64

	state      State
	goodFrames int

	rawHue     float64 // last accepted hue as delivered
	unwrapped  float64 // continuous hue fed to the filter
	lastTime   float64
	haveFrames bool
}

// New creates an Estimator with the given configuration.
func New(config *Config) (*Estimator, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	bp, err := filter.NewBandPassFilter(config.FrameRate, config.LowCutHz, config.HighCutHz)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	pd, err := detector.NewPulseDetector(config.detectorConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Estimator{
		config:   *config,
		filter:   bp,
		detector: pd,
		state:    StateWarmingUp,
	}

	if config.SpectrumWindow > 0 {
		e.history = history.NewRing(config.SpectrumWindow)
		e.analyzer, err = spectrum.NewAnalyzer(config.FrameRate,
			config.MinBPM/secondsPerMinute, config.MaxBPM/secondsPerMinute)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e.scratch = make([]float64, 0, config.SpectrumWindow)
	}

	return e, nil
}

// Process consumes one frame and returns the values to display for it.
// It never fails: a bad frame resets the session instead.
func (e *Estimator) Process(frame Frame) Result {
	if frame.Reset {
		e.Reset()
	}

	res := Result{
		Hue:        frame.Hue,
		Saturation: frame.Saturation,
		Brightness: frame.Brightness,
		Timestamp:  frame.Timestamp,
	}

	if !e.goodQuality(frame) {
		if e.goodFrames > 0 {
			monitoring.Logf("heartrate: signal lost after %d good frames (sat=%.3f bright=%.3f)",
				e.goodFrames, frame.Saturation, frame.Brightness)
		}
		e.Reset()
		return e.fill(res)
	}

	if !mathutil.IsFinite(frame.Hue) || !mathutil.IsFinite(frame.Timestamp) {
		monitoring.Logf("heartrate: ignoring non-finite frame (hue=%v t=%v)", frame.Hue, frame.Timestamp)
		res.Filtered = e.filter.Output()
		return e.fill(res)
	}

	if e.haveFrames && frame.Timestamp <= e.lastTime {
		monitoring.Logf("heartrate: dropping frame at %.4fs, not after %.4fs",
			frame.Timestamp, e.lastTime)
		res.Filtered = e.filter.Output()
		return e.fill(res)
	}

	hue := e.unwrap(frame.Hue)
	e.goodFrames++
	e.lastTime = frame.Timestamp
	e.haveFrames = true

	res.Filtered = e.filter.Process(hue)

	if e.goodFrames >= e.config.WarmupFrames {
		if e.state != StateRecording {
			monitoring.Logf("heartrate: recording after %d good frames", e.goodFrames)
		}
		e.state = StateRecording

		if e.history != nil {
			e.history.Push(res.Filtered)
		}
		res.Transition = e.detector.AddNewValue(res.Filtered, frame.Timestamp)
	}

	return e.fill(res)
}

func (e *Estimator) fill(res Result) Result {
	res.State = e.state
	res.GoodFrames = e.goodFrames
	res.BPM = e.BPM()
	return res
}

// goodQuality reports whether the lens appears covered and lit. Non-finite
// quality values fail the gate.
func (e *Estimator) goodQuality(frame Frame) bool {
	if !mathutil.IsFinite(frame.Saturation) || !mathutil.IsFinite(frame.Brightness) {
		return false
	}
	return frame.Saturation > e.config.MinSaturation && frame.Brightness > e.config.MinBrightness
}

// unwrap maps a hue reading onto a continuous scale so that a pulse
// straddling the 0/period seam does not appear as a full-circle step.
func (e *Estimator) unwrap(hue float64) float64 {
	if !e.config.UnwrapHue {
		return hue
	}
	if !e.haveFrames {
		e.rawHue = hue
		e.unwrapped = hue
		return hue
	}
	e.unwrapped += mathutil.WrapDelta(hue, e.rawHue, e.config.HuePeriod)
	e.rawHue = hue
	return e.unwrapped
}

// Reset returns the session to StateWarmingUp with a zeroed good-frame count,
// clearing filter, detector and history. Calling Reset repeatedly is the
// same as calling it once.
func (e *Estimator) Reset() {
	e.filter.Reset()
	e.detector.Reset()
	if e.history != nil {
		e.history.Reset()
	}
	e.state = StateWarmingUp
	e.goodFrames = 0
	e.rawHue = 0
	e.unwrapped = 0
	e.lastTime = 0
	e.haveFrames = false
}

// State returns the current session state.
func (e *Estimator) State() State {
	return e.state
}

// GoodFrames returns the number of consecutive good frames since the last reset.
func (e *Estimator) GoodFrames() int {
	return e.goodFrames
}

// Average returns the smoothed inter-beat period in seconds, or 0 if unknown.
func (e *Estimator) Average() float64 {
	return e.detector.Average()
}

// BPM returns the live heart-rate estimate. It is 0 while warming up or
// before a full plausible cycle has been timed.
func (e *Estimator) BPM() float64 {
	if e.state != StateRecording {
		return 0
	}
	return e.detector.BPM()
}

// SpectralBPM estimates heart rate from the spectrum of the most recent
// SpectrumWindow recorded frames. It returns ErrNotReady until the window
// has filled and ErrSpectrumDisabled when SpectrumWindow is 0.
func (e *Estimator) SpectralBPM() (float64, error) {
	if e.history == nil {
		return 0, ErrSpectrumDisabled
	}
	if e.state != StateRecording || !e.history.Full() {
		return 0, fmt.Errorf("%w: %d of %d frames recorded", ErrNotReady, e.history.Len(), e.history.Cap())
	}

	e.scratch = e.history.Snapshot(e.scratch)
	bpm, err := e.analyzer.DominantBPM(e.scratch)
	if err != nil {
		if errors.Is(err, spectrum.ErrNoPeak) {
			return 0, fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		return 0, err
	}
	return bpm, nil
}

// Config returns a copy of the estimator configuration.
func (e *Estimator) Config() Config {
	return e.config
}
