package detector

// Physiological plausibility window for a single inter-beat period.
const (
	DefaultMinBPM = 40.0
	DefaultMaxBPM = 240.0
)

// DefaultSmoothing is the weight given to each newly accepted period in the
// exponential moving average; the prior estimate keeps the remaining 0.75.
const DefaultSmoothing = 0.25

// Sign hysteresis. The sign only flips once the signal leaves the band
// ±DefaultHysteresis*envelope, where the envelope is a peak tracker that
// decays with DefaultEnvelopeTimeConstant seconds.
const (
	DefaultHysteresis           = 0.2
	DefaultEnvelopeTimeConstant = 2.0
)

const secondsPerMinute = 60.0
