package spectrum

// MinSamples is the shortest window accepted for a spectral estimate.
const MinSamples = 32

const (
	// zeroPadFactor oversamples the spectrum so the peak search starts from
	// a bin close to the true peak before parabolic refinement.
	zeroPadFactor = 4

	// sidelobeAttenuationDB drives the Kaiser β of the analysis window.
	sidelobeAttenuationDB = 60.0

	secondsPerMinute = 60.0
	nyquistDivisor   = 2.0
	parabolaHalf     = 0.5
	parabolaTwice    = 2.0
)
