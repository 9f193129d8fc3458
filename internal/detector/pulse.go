// Package detector times cardiac cycles in a band-passed PPG signal and keeps
// a smoothed inter-beat period.
package detector

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-ppg-heartrate/internal/mathutil"
)

// ErrInvalidConfig indicates detector parameters outside their valid range.
var ErrInvalidConfig = errors.New("invalid pulse detector configuration")

// Transition reports what a sample did to the sign of the signal.
type Transition int

const (
	// TransitionNone means the sign did not change, or the sample was ignored.
	TransitionNone Transition = iota

	// TransitionRising marks a negative to positive transition. This is
	// the per-cycle marker used for period timing.
	TransitionRising

	// TransitionFalling marks a positive to negative transition.
	TransitionFalling
)

// String returns a short label for the transition.
func (t Transition) String() string {
	switch t {
	case TransitionRising:
		return "rising"
	case TransitionFalling:
		return "falling"
	default:
		return "none"
	}
}

// Config holds pulse detector parameters.
type Config struct {
	// MinBPM and MaxBPM bound the accepted single-period rate.
	MinBPM float64
	MaxBPM float64

	// Smoothing is the EMA weight of each accepted period, in (0, 1].
	Smoothing float64

	// Hysteresis is the fraction of the signal envelope the value must
	// exceed on the far side of zero before the sign is considered flipped,
	// in [0, 1). Zero gives a plain zero-crossing detector.
	Hysteresis float64

	// EnvelopeTimeConstant is the decay time of the envelope in seconds.
	EnvelopeTimeConstant float64
}

// DefaultConfig returns the detector defaults (40–240 BPM, weight 0.25).
func DefaultConfig() Config {
	return Config{
		MinBPM:               DefaultMinBPM,
		MaxBPM:               DefaultMaxBPM,
		Smoothing:            DefaultSmoothing,
		Hysteresis:           DefaultHysteresis,
		EnvelopeTimeConstant: DefaultEnvelopeTimeConstant,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !mathutil.IsFinite(c.MinBPM) || c.MinBPM <= 0 {
		return fmt.Errorf("%w: min BPM must be positive", ErrInvalidConfig)
	}
	if !mathutil.IsFinite(c.MaxBPM) || c.MaxBPM <= c.MinBPM {
		return fmt.Errorf("%w: max BPM must exceed min BPM", ErrInvalidConfig)
	}
	if !mathutil.IsFinite(c.Smoothing) || c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing must be in (0, 1]", ErrInvalidConfig)
	}
	if !mathutil.IsFinite(c.Hysteresis) || c.Hysteresis < 0 || c.Hysteresis >= 1 {
		return fmt.Errorf("%w: hysteresis must be in [0, 1)", ErrInvalidConfig)
	}
	if !mathutil.IsFinite(c.EnvelopeTimeConstant) || c.EnvelopeTimeConstant <= 0 {
		return fmt.Errorf("%w: envelope time constant must be positive", ErrInvalidConfig)
	}
	return nil
}

// PulseDetector converts a zero-mean filtered signal into a running
// inter-beat period. It is not safe for concurrent use.
//
// Cycles are timed between successive negative to positive zero crossings.
// Sign changes are debounced with envelope-relative hysteresis so that noise
// riding on a slow zero crossing does not produce extra cycles; the period
// itself is still measured at the interpolated zero crossing, not at the
// hysteresis threshold.
type PulseDetector struct {
	minPeriod  float64
	maxPeriod  float64
	smoothing  float64
	hysteresis float64
	envelopeTC float64

	// Previous sample, used for crossing interpolation and ordering.
	prevValue float64
	prevTime  float64
	hasPrev   bool

	envelope  float64
	positive  bool
	signKnown bool

	// candidate is the latest upward zero crossing since the last falling
	// transition; it becomes the cycle marker once the rise is confirmed.
	candidate    float64
	hasCandidate bool

	lastCrossing float64
	hasCrossing  bool

	average  float64 // seconds; 0 until the first accepted period
	accepted int
	rejected int
}

// NewPulseDetector creates a detector from cfg.
func NewPulseDetector(cfg Config) (*PulseDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PulseDetector{
		minPeriod:  secondsPerMinute / cfg.MaxBPM,
		maxPeriod:  secondsPerMinute / cfg.MinBPM,
		smoothing:  cfg.Smoothing,
		hysteresis: cfg.Hysteresis,
		envelopeTC: cfg.EnvelopeTimeConstant,
	}, nil
}

// NewDefaultPulseDetector creates a detector with DefaultConfig.
func NewDefaultPulseDetector() *PulseDetector {
	d, _ := NewPulseDetector(DefaultConfig())
	return d
}

// AddNewValue feeds one filtered sample taken at timestampSeconds and
// reports whether it completed a sign transition.
//
// Timestamps must be strictly increasing. A sample whose timestamp is not
// after the previous one, or whose value or timestamp is not finite, is
// ignored without touching any state.
func (d *PulseDetector) AddNewValue(filtered, timestampSeconds float64) Transition {
	if !mathutil.IsFinite(filtered) || !mathutil.IsFinite(timestampSeconds) {
		return TransitionNone
	}
	if d.hasPrev && timestampSeconds <= d.prevTime {
		return TransitionNone
	}

	if d.hasPrev {
		d.envelope *= math.Exp(-(timestampSeconds - d.prevTime) / d.envelopeTC)
		if d.prevValue < 0 && filtered >= 0 {
			d.candidate = d.crossingTime(filtered, timestampSeconds)
			d.hasCandidate = true
		}
	}
	d.envelope = math.Max(d.envelope, math.Abs(filtered))
	threshold := d.hysteresis * d.envelope

	transition := TransitionNone
	switch {
	case !d.signKnown:
		if math.Abs(filtered) > threshold {
			d.positive = filtered > 0
			d.signKnown = true
		}
	case !d.positive && filtered > threshold:
		d.positive = true
		transition = TransitionRising
		at := timestampSeconds
		if d.hasCandidate {
			at = d.candidate
		}
		d.onRising(at)
		d.hasCandidate = false
	case d.positive && filtered < -threshold:
		d.positive = false
		transition = TransitionFalling
		d.hasCandidate = false
	}

	d.prevValue = filtered
	d.prevTime = timestampSeconds
	d.hasPrev = true
	return transition
}

// crossingTime linearly interpolates where the signal crossed zero between
// the previous sample and the current one.
func (d *PulseDetector) crossingTime(value, ts float64) float64 {
	span := value - d.prevValue
	if span <= 0 {
		return ts
	}
	return d.prevTime + (ts-d.prevTime)*(-d.prevValue/span)
}

func (d *PulseDetector) onRising(at float64) {
	if !d.hasCrossing {
		d.lastCrossing = at
		d.hasCrossing = true
		return
	}

	period := at - d.lastCrossing
	switch {
	case period < d.minPeriod:
		// Glitch crossing inside a cycle: keep timing from the last real one.
		d.rejected++
		return
	case period > d.maxPeriod:
		// Cycles were lost; restart the chain here.
		d.rejected++
		d.lastCrossing = at
		return
	}

	d.lastCrossing = at
	d.accepted++
	if d.average == 0 {
		d.average = period
		return
	}
	d.average += d.smoothing * (period - d.average)
}

// Average returns the smoothed inter-beat period in seconds, or 0 when no
// period has been accepted since construction or the last Reset.
func (d *PulseDetector) Average() float64 {
	return d.average
}

// BPM returns 60 / Average(), or 0 while the period is unknown.
func (d *PulseDetector) BPM() float64 {
	if d.average <= 0 || !mathutil.IsFinite(d.average) {
		return 0
	}
	return secondsPerMinute / d.average
}

// Accepted returns the number of periods averaged since the last Reset.
func (d *PulseDetector) Accepted() int { return d.accepted }

// Rejected returns the number of implausible periods discarded since the last Reset.
func (d *PulseDetector) Rejected() int { return d.rejected }

// Reset clears all timing history and the running average.
func (d *PulseDetector) Reset() {
	d.prevValue = 0
	d.prevTime = 0
	d.hasPrev = false
	d.envelope = 0
	d.positive = false
	d.signKnown = false
	d.candidate = 0
	d.hasCandidate = false
	d.lastCrossing = 0
	d.hasCrossing = false
	d.average = 0
	d.accepted = 0
	d.rejected = 0
}
