// Command ppg-synth writes a synthetic PPG frame trace as a 3-channel WAV
// file that ppg-wav can analyse.
//
// Usage:
//
//	ppg-synth -bpm 72 -seconds 30 trace.wav
//	ppg-synth -base-hue 359 -dropout 10:12 -dropout 20:21 trace.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	heartrate "github.com/tphakala/go-ppg-heartrate"
	"github.com/tphakala/go-ppg-heartrate/internal/synth"
	"github.com/tphakala/go-ppg-heartrate/internal/trace"
)

const (
	minRequiredArgs = 1
	defaultSeconds  = 30.0
	defaultFPS      = int(synth.DefaultFrameRate)
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := synth.DefaultConfig()
	var dropouts dropoutList

	fps := flag.Int("fps", defaultFPS, "Frame rate in frames per second")
	seconds := flag.Float64("seconds", defaultSeconds, "Trace duration in seconds")
	bitDepth := flag.Int("bits", trace.DefaultBitDepth, "PCM bit depth: 16, 24 or 32")
	flag.Float64Var(&cfg.BPM, "bpm", cfg.BPM, "Heart rate in beats per minute")
	flag.Float64Var(&cfg.BaseHue, "base-hue", cfg.BaseHue, "Mean hue in degrees")
	flag.Float64Var(&cfg.Amplitude, "amplitude", cfg.Amplitude, "Pulse amplitude in degrees")
	flag.Float64Var(&cfg.Noise, "noise", cfg.Noise, "Peak frame jitter in degrees")
	flag.Float64Var(&cfg.Saturation, "sat", cfg.Saturation, "Saturation of good frames")
	flag.Float64Var(&cfg.Brightness, "bright", cfg.Brightness, "Brightness of good frames")
	flag.Var(&dropouts, "dropout", "Signal loss span start:end in seconds (repeatable)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}

	if *fps <= 0 || *seconds <= 0 {
		return errors.New("fps and seconds must be positive")
	}
	cfg.FrameRate = float64(*fps)
	cfg.Dropouts = dropouts

	outputPath := args[0]
	n := int(*seconds * float64(*fps))
	frames := generateFrames(cfg, n)

	if *verbose {
		log.Printf("Output: %s", outputPath)
		log.Printf("Trace: %d frames at %d fps, %.1f bpm, base hue %.1f", n, *fps, cfg.BPM, cfg.BaseHue)
		for _, d := range cfg.Dropouts {
			log.Printf("Dropout: %.2fs-%.2fs", d.Start, d.End)
		}
	}

	if err := trace.WriteFile(outputPath, frames, *fps, *bitDepth, heartrate.DefaultHuePeriod); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d frames, %.1fs, %.0f bpm)\n", filepath.Base(outputPath), n, *seconds, cfg.BPM)
	return nil
}
