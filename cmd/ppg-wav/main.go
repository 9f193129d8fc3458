// Command ppg-wav estimates heart rate from recorded PPG frame traces.
//
// A trace is a 3-channel PCM WAV file (hue, saturation, brightness) whose
// sample rate is the camera frame rate; see cmd/ppg-synth for a generator.
//
// Usage:
//
//	ppg-wav trace.wav
//	ppg-wav -interval 0.5 -json trace.wav
//	ppg-wav -o filtered.wav -gain 5 trace.wav      # also write the band-passed hue
//	ppg-wav -parallel a.wav b.wav c.wav            # analyse several sessions
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/tphakala/go-ppg-heartrate/internal/monitoring"
)

const (
	minRequiredArgs = 1

	defaultInterval = 1.0  // seconds between timeline rows
	defaultGain     = 10.0 // filtered hue, in degrees, mapped to PCM full scale
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := defaultOptions()
	flag.Float64Var(&opts.lowCutHz, "low", opts.lowCutHz, "Band-pass low cutoff in Hz")
	flag.Float64Var(&opts.highCutHz, "high", opts.highCutHz, "Band-pass high cutoff in Hz")
	flag.Float64Var(&opts.minBPM, "min-bpm", opts.minBPM, "Lowest plausible heart rate")
	flag.Float64Var(&opts.maxBPM, "max-bpm", opts.maxBPM, "Highest plausible heart rate")
	flag.Float64Var(&opts.smoothing, "smoothing", opts.smoothing, "Weight of each new period in the average (0, 1]")
	flag.Float64Var(&opts.warmupSeconds, "warmup", opts.warmupSeconds, "Warm-up duration in seconds of good signal")
	flag.Float64Var(&opts.minSaturation, "min-sat", opts.minSaturation, "Saturation quality threshold")
	flag.Float64Var(&opts.minBrightness, "min-bright", opts.minBrightness, "Brightness quality threshold")
	flag.BoolVar(&opts.noUnwrap, "no-unwrap", false, "Do not unwrap hue across the 0/360 seam")
	flag.IntVar(&opts.spectrumWindow, "spectrum", opts.spectrumWindow, "Spectral cross-check window in frames (0 disables)")
	flag.Float64Var(&opts.interval, "interval", opts.interval, "Seconds between timeline rows (0 prints every frame)")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the timeline as JSON lines")
	flag.StringVar(&opts.filteredPath, "o", "", "Write the filtered hue to this WAV file (single input only)")
	flag.Float64Var(&opts.gain, "gain", opts.gain, "Filtered hue in degrees that maps to WAV full scale")
	parallel := flag.Bool("parallel", true, "Analyse multiple traces concurrently")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] trace.wav [trace.wav ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s session.wav                      # BPM once per second\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o filtered.wav session.wav      # Also write the filtered signal\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -json -interval 0 session.wav    # Every frame as JSON\n", os.Args[0])
		return errors.New("insufficient arguments")
	}
	if opts.filteredPath != "" && len(args) > 1 {
		return errors.New("-o requires a single input trace")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if *verbose {
		monitoring.SetLogger(log.Printf)
		log.Printf("Inputs: %d trace(s)", len(args))
		log.Printf("Band: %.2f-%.2f Hz, BPM range %.0f-%.0f", opts.lowCutHz, opts.highCutHz, opts.minBPM, opts.maxBPM)
		log.Printf("Warm-up: %.1fs, quality gate sat>%.2f bright>%.2f", opts.warmupSeconds, opts.minSaturation, opts.minBrightness)
		if *parallel && len(args) > 1 {
			log.Printf("Parallel: enabled")
		}
	}

	start := time.Now()
	reports, err := analyzeFiles(args, &opts, *parallel)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, r := range reports {
		printSummary(os.Stdout, r)
		if err := writeTimeline(os.Stdout, timeline(r.summary.Results, opts.interval), opts.asJSON); err != nil {
			return err
		}
	}

	if opts.filteredPath != "" {
		r := reports[0]
		if err := writeFilteredOutput(opts.filteredPath, r.summary.Results, r.info.FrameRate, opts.gain); err != nil {
			return err
		}
		fmt.Printf("Filtered signal -> %s\n", filepath.Base(opts.filteredPath))
	}

	if *verbose {
		log.Printf("Analysed %d trace(s) in %v", len(reports), elapsed)
	}

	return nil
}
