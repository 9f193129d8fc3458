// Package filter implements the recursive band-pass filter applied to the
// per-frame PPG signal before pulse detection.
package filter

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-ppg-heartrate/internal/mathutil"
)

// ErrInvalidDesign indicates band-pass parameters that cannot produce a
// stable filter.
var ErrInvalidDesign = errors.New("invalid band-pass design")

// BandPassFilter isolates the cardiac band of a per-frame scalar signal.
//
// A running-mean low-cut feeds two identical one-pole high-cut sections:
//
//	m[n] = m[n-1] + aLow  * (x[n] - m[n-1])   running mean (DC / drift estimate)
//	h[n] = x[n] - m[n]                         low-cut output
//	s[n] = s[n-1] + aHigh * (h[n] - s[n-1])   first high-cut section
//	y[n] = y[n-1] + aHigh * (s[n] - y[n-1])   second high-cut section
//
// A single pole leaves about 70% of a 3.75 Hz frame-jitter component in the
// output; the cascade brings that under 50% while a 1.2 Hz pulse still keeps
// over 75% of its amplitude.
//
// Each call costs O(1) time and the state is four floats, so the filter can
// run inline with the frame callback. A BandPassFilter is not safe for
// concurrent use.
type BandPassFilter struct {
	sampleRate float64
	lowCutHz   float64
	highCutHz  float64
	aLow       float64
	aHigh      float64

	mean   float64
	smooth float64
	output float64
	primed bool
}

// NewBandPassFilter designs a filter passing lowCutHz..highCutHz for a
// signal sampled at sampleRate Hz.
func NewBandPassFilter(sampleRate, lowCutHz, highCutHz float64) (*BandPassFilter, error) {
	if !mathutil.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidDesign, sampleRate)
	}
	if !mathutil.IsFinite(lowCutHz) || lowCutHz <= 0 {
		return nil, fmt.Errorf("%w: low cut must be positive, got %v", ErrInvalidDesign, lowCutHz)
	}
	if !mathutil.IsFinite(highCutHz) || highCutHz <= lowCutHz {
		return nil, fmt.Errorf("%w: high cut %v must exceed low cut %v", ErrInvalidDesign, highCutHz, lowCutHz)
	}
	if nyquist := sampleRate / nyquistDivisor; highCutHz >= nyquist {
		return nil, fmt.Errorf("%w: high cut %v Hz at or above Nyquist (%v Hz)", ErrInvalidDesign, highCutHz, nyquist)
	}

	return &BandPassFilter{
		sampleRate: sampleRate,
		lowCutHz:   lowCutHz,
		highCutHz:  highCutHz,
		aLow:       mathutil.OnePoleCoefficient(lowCutHz, sampleRate),
		aHigh:      mathutil.OnePoleCoefficient(highCutHz, sampleRate),
	}, nil
}

// NewDefaultBandPassFilter returns a filter with the default cardiac band.
func NewDefaultBandPassFilter(sampleRate float64) (*BandPassFilter, error) {
	return NewBandPassFilter(sampleRate, DefaultLowCutHz, DefaultHighCutHz)
}

// Process consumes the next raw sample and returns the filtered value for
// the same instant. Samples must arrive in temporal order without gaps.
//
// A non-finite sample carries no information: the previous output is
// returned and the recursion state is left untouched.
func (f *BandPassFilter) Process(raw float64) float64 {
	if !mathutil.IsFinite(raw) {
		return f.output
	}

	// Seeding the mean with the first sample avoids a start-up transient
	// the size of the DC level.
	if !f.primed {
		f.mean = raw
		f.primed = true
	}

	f.mean += f.aLow * (raw - f.mean)
	f.smooth += f.aHigh * ((raw - f.mean) - f.smooth)
	f.output += f.aHigh * (f.smooth - f.output)
	return f.output
}

// ProcessBuffer filters src into dst, which must be at least len(src) long.
// It is equivalent to calling Process on every element in order.
func (f *BandPassFilter) ProcessBuffer(dst, src []float64) {
	for i, v := range src {
		dst[i] = f.Process(v)
	}
}

// Reset returns the filter to the state of a freshly constructed instance.
func (f *BandPassFilter) Reset() {
	f.mean = 0
	f.smooth = 0
	f.output = 0
	f.primed = false
}

// Output returns the most recent filtered value (0 after Reset).
func (f *BandPassFilter) Output() float64 {
	return f.output
}

// SampleRate returns the design sample rate in Hz.
func (f *BandPassFilter) SampleRate() float64 {
	return f.sampleRate
}

// Band returns the design cutoffs in Hz.
func (f *BandPassFilter) Band() (lowCutHz, highCutHz float64) {
	return f.lowCutHz, f.highCutHz
}
