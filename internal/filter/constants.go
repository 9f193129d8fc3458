package filter

// Default cardiac pass band. 0.75–3.5 Hz covers 45–210 BPM; the low cut sits
// a little under the band edge so that slow resting rates are not attenuated
// by the DC stage.
const (
	DefaultLowCutHz  = 0.5
	DefaultHighCutHz = 3.5
)

// nyquistDivisor gives the Nyquist frequency from the sample rate.
const nyquistDivisor = 2.0
