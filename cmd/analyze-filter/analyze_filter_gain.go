// Command analyze-filter measures the band-pass response used by the
// heart-rate estimator by driving it with steady sine tones.
//
// Usage:
//
//	analyze-filter
//	analyze-filter -fps 60 -low 0.7 -high 4
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/tphakala/go-ppg-heartrate/internal/filter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultFPS     = 30.0
	settleSeconds  = 10.0 // discarded before measuring
	measureSeconds = 20.0
	dbScale        = 20.0
	halfPowerDB    = -3.0
	edgeSearchStep = 0.01 // Hz
)

// testFrequencies spans drift, the cardiac band and camera jitter.
var testFrequencies = []float64{0.05, 0.1, 0.25, 0.5, 0.67, 1.0, 1.2, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 5.0, 8.0, 12.0}

func main() {
	fps := flag.Float64("fps", defaultFPS, "Frame rate in Hz")
	low := flag.Float64("low", filter.DefaultLowCutHz, "Low cutoff in Hz")
	high := flag.Float64("high", filter.DefaultHighCutHz, "High cutoff in Hz")
	flag.Parse()

	bp, err := filter.NewBandPassFilter(*fps, *low, *high)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Band-Pass Filter Response ===")
	fmt.Printf("  Frame rate: %.2f Hz\n", *fps)
	fmt.Printf("  Design band: %.2f-%.2f Hz (%.0f-%.0f bpm)\n\n", *low, *high, *low*60, *high*60)

	nyquist := *fps / 2
	fmt.Println("  Freq (Hz)    BPM     Gain    dB")
	for _, f := range testFrequencies {
		if f >= nyquist {
			continue
		}
		g := measureGain(bp, f)
		fmt.Printf("  %8.2f  %6.0f  %7.4f  %6.1f\n", f, f*60, g, toDB(g))
	}

	peakHz, peak := findPeak(bp, *low, *high)
	fmt.Printf("\nPeak gain: %.4f (%.1f dB) at %.2f Hz\n", peak, toDB(peak), peakHz)

	lo, hi := halfPowerEdges(bp, peakHz, peak, nyquist)
	fmt.Printf("-3 dB passband: %.2f-%.2f Hz (%.0f-%.0f bpm)\n", lo, hi, lo*60, hi*60)
}

// measureGain returns the steady-state amplitude ratio at freq.
func measureGain(bp *filter.BandPassFilter, freq float64) float64 {
	bp.Reset()
	rate := bp.SampleRate()
	settle := int(settleSeconds * rate)
	n := settle + int(measureSeconds*rate)

	in := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	out := make([]float64, n)
	bp.ProcessBuffer(out, in)

	return stat.StdDev(out[settle:], nil) / stat.StdDev(in[settle:], nil)
}

// findPeak scans the design band for the frequency of maximum gain.
func findPeak(bp *filter.BandPassFilter, low, high float64) (hz, gain float64) {
	var freqs, gains []float64
	for f := low; f <= high; f += edgeSearchStep * 10 {
		freqs = append(freqs, f)
		gains = append(gains, measureGain(bp, f))
	}
	i := floats.MaxIdx(gains)
	return freqs[i], gains[i]
}

// halfPowerEdges walks out from the peak to the frequencies where the gain
// falls 3 dB below it.
func halfPowerEdges(bp *filter.BandPassFilter, peakHz, peak, nyquist float64) (lo, hi float64) {
	limit := peak * math.Pow(10, halfPowerDB/dbScale)

	lo = peakHz
	for lo > edgeSearchStep && measureGain(bp, lo) > limit {
		lo -= edgeSearchStep
	}
	hi = peakHz
	for hi < nyquist-edgeSearchStep && measureGain(bp, hi) > limit {
		hi += edgeSearchStep
	}
	return lo, hi
}

func toDB(g float64) float64 {
	return dbScale * math.Log10(g)
}
