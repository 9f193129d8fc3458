package mathutil

import "math"

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OnePoleCoefficient returns the smoothing coefficient a of the recursion
// y += a*(x - y) whose -3 dB point sits at cutoffHz for the given sample rate.
//
//	a = 1 - exp(-2π fc / fs)
func OnePoleCoefficient(cutoffHz, sampleRate float64) float64 {
	return 1 - math.Exp(-twoPi*cutoffHz/sampleRate)
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// WrapDelta maps the difference cur-prev of two angles on a circle of the
// given period into [-period/2, period/2).
func WrapDelta(cur, prev, period float64) float64 {
	d := math.Mod(cur-prev+period/halfDivisor, period)
	if d < 0 {
		d += period
	}
	return d - period/halfDivisor
}
