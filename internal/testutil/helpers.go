// Package testutil provides reusable test helpers for the heart-rate packages.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default tolerances for various test scenarios.
const (
	PeriodTolerance = 0.02 // seconds
	BPMTolerance    = 3.0
)

// sqrt2 converts an RMS value to the amplitude of the equivalent sinusoid.
const sqrt2 = math.Sqrt2

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// Sine returns n samples of offset + amplitude*sin(2π f t + phase) sampled at rate Hz.
func Sine(n int, rate, freq, amplitude, offset, phase float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amplitude*math.Sin(2*math.Pi*freq*float64(i)/rate+phase)
	}
	return out
}

// Timestamps returns n evenly spaced timestamps in seconds starting at start.
func Timestamps(n int, rate, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)/rate
	}
	return out
}

// Amplitude estimates the amplitude of a sinusoid-like signal from its RMS
// around the mean.
func Amplitude(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return stat.StdDev(s, nil) * sqrt2
}

// Mean returns the arithmetic mean of s.
func Mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Sum(s) / float64(len(s))
}

// PeakAbs returns the largest absolute value in s.
func PeakAbs(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(s)), math.Abs(floats.Min(s)))
}
