// Package heartrate estimates heart rate from a camera photoplethysmography
// (PPG) signal in pure Go.
//
// A fingertip pressed over a phone camera with the flash on produces a frame
// stream whose average colour changes slightly with every heartbeat. The
// host reduces each frame to hue, saturation and brightness; this package
// turns that stream into a beats-per-minute estimate.
//
// Not a medical device.
//
// # Quick Start
//
//	est := heartrate.NewDefault()
//
//	for frame := range frames {
//	    res := est.Process(heartrate.Frame{
//	        Hue:        frame.Hue,
//	        Saturation: frame.Saturation,
//	        Brightness: frame.Brightness,
//	        Timestamp:  frame.Seconds,
//	    })
//	    if res.State == heartrate.StateRecording && res.BPM > 0 {
//	        fmt.Printf("%.0f bpm\n", res.BPM)
//	    }
//	}
//
// For recorded traces use [EstimateTrace], or [EstimateTraces] to process
// several traces concurrently.
//
// # Pipeline
//
//	hue -> [unwrap] -> [band-pass 0.5-3.5 Hz] -> [zero-crossing timer] -> period EMA -> BPM
//
// The band-pass filter subtracts a running mean (removing illumination
// drift) and smooths the remainder with two cascaded one-pole low-pass
// sections, which keeps frame-to-frame jitter out of the zero crossings. The pulse
// detector timestamps each negative to positive zero crossing with sub-frame
// interpolation, rejects periods outside [MinBPM, MaxBPM], and keeps an
// exponential moving average of the accepted periods.
//
// # Session States
//
// Every session starts in [StateWarmingUp]. After [Config.WarmupFrames]
// consecutive frames pass the quality gate (saturation and brightness above
// their thresholds) it moves to [StateRecording] and BPM becomes live. A
// frame failing the gate, or a Frame with Reset set, returns the session to
// [StateWarmingUp] and clears all filter and detector state.
//
// Frames with a timestamp at or before the previous frame are ignored.
//
// # Spectral Cross-Check
//
// When [Config.SpectrumWindow] is non-zero the estimator keeps the most
// recent filtered samples and [Estimator.SpectralBPM] reports the dominant
// in-band frequency of their spectrum, a slower estimate that is robust to
// single missed or extra crossings.
//
// # Thread Safety
//
// An [Estimator] is not safe for concurrent use. Independent sessions may
// run on separate goroutines.
package heartrate
