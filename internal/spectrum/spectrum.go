// Package spectrum estimates the dominant pulse rate of a window of filtered
// samples from its power spectrum. It complements the zero-crossing detector
// as a slower but noise-robust cross-check.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-ppg-heartrate/internal/mathutil"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTooFewSamples indicates a window too short for a spectral estimate.
	ErrTooFewSamples = errors.New("too few samples for spectral estimate")

	// ErrInvalidBand indicates a search band outside (0, Nyquist).
	ErrInvalidBand = errors.New("invalid spectral search band")

	// ErrNoPeak indicates the window carries no energy in the search band.
	ErrNoPeak = errors.New("no spectral peak in band")
)

// Analyzer finds the strongest frequency inside a band. The FFT plan,
// analysis window and scratch buffers are reused between calls, so an
// Analyzer must not be shared between goroutines.
type Analyzer struct {
	sampleRate float64
	minHz      float64
	maxHz      float64
	beta       float64

	fft    *fourier.FFT
	window []float64
	buf    []float64
	coeffs []complex128
	mags   []float64
}

// NewAnalyzer creates an analyzer searching minHz..maxHz of a signal sampled
// at sampleRate Hz.
func NewAnalyzer(sampleRate, minHz, maxHz float64) (*Analyzer, error) {
	if !mathutil.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidBand)
	}
	if !mathutil.IsFinite(minHz) || !mathutil.IsFinite(maxHz) ||
		minHz <= 0 || maxHz <= minHz || maxHz >= sampleRate/nyquistDivisor {
		return nil, fmt.Errorf("%w: %v-%v Hz at %v Hz sampling", ErrInvalidBand, minHz, maxHz, sampleRate)
	}

	return &Analyzer{
		sampleRate: sampleRate,
		minHz:      minHz,
		maxHz:      maxHz,
		beta:       mathutil.KaiserBeta(sidelobeAttenuationDB),
	}, nil
}

// DominantBPM returns the rate, in beats per minute, of the strongest
// spectral component of samples inside the analyzer's band.
func (a *Analyzer) DominantBPM(samples []float64) (float64, error) {
	hz, err := a.DominantFrequency(samples)
	if err != nil {
		return 0, err
	}
	return hz * secondsPerMinute, nil
}

// DominantFrequency returns the frequency in Hz of the strongest spectral
// component of samples inside the analyzer's band.
func (a *Analyzer) DominantFrequency(samples []float64) (float64, error) {
	n := len(samples)
	if n < MinSamples {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, n, MinSamples)
	}

	a.prepare(n)

	mean := f64.Sum(samples) / float64(n)
	for i, v := range samples {
		a.buf[i] = (v - mean) * a.window[i]
	}
	clear(a.buf[n:])

	if energy := f64.DotProduct(a.buf[:n], a.buf[:n]); energy == 0 || !mathutil.IsFinite(energy) {
		return 0, ErrNoPeak
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.buf)
	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c)
	}

	size := float64(len(a.buf))
	lo := int(math.Ceil(a.minHz * size / a.sampleRate))
	hi := int(math.Floor(a.maxHz * size / a.sampleRate))
	hi = min(hi, len(a.mags)-1)
	if lo > hi {
		return 0, fmt.Errorf("%w: band narrower than one bin", ErrNoPeak)
	}

	k := lo + floats.MaxIdx(a.mags[lo:hi+1])
	if a.mags[k] == 0 {
		return 0, ErrNoPeak
	}

	return (float64(k) + a.refine(k)) * a.sampleRate / size, nil
}

// refine returns the fractional bin offset of the peak at k from a parabola
// through k-1, k, k+1.
func (a *Analyzer) refine(k int) float64 {
	if k <= 0 || k >= len(a.mags)-1 {
		return 0
	}
	l, c, r := a.mags[k-1], a.mags[k], a.mags[k+1]
	den := l - parabolaTwice*c + r
	if den == 0 {
		return 0
	}
	return parabolaHalf * (l - r) / den
}

// prepare sizes the FFT plan, window and scratch buffers for n samples.
func (a *Analyzer) prepare(n int) {
	if len(a.window) != n {
		a.window = make([]float64, n)
		mathutil.KaiserWindow(a.window, a.beta)
	}

	size := mathutil.NextPowerOfTwo(n) * zeroPadFactor
	if len(a.buf) == size {
		return
	}
	a.fft = fourier.NewFFT(size)
	a.buf = make([]float64, size)
	a.coeffs = make([]complex128, size/2+1)
	a.mags = make([]float64, size/2+1)
}

// DominantBPM is a one-shot helper around NewAnalyzer and
// Analyzer.DominantBPM.
func DominantBPM(samples []float64, sampleRate, minHz, maxHz float64) (float64, error) {
	a, err := NewAnalyzer(sampleRate, minHz, maxHz)
	if err != nil {
		return 0, err
	}
	return a.DominantBPM(samples)
}
