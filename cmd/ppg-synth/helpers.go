package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	heartrate "github.com/tphakala/go-ppg-heartrate"
	"github.com/tphakala/go-ppg-heartrate/internal/synth"
)

var errInvalidDropout = errors.New("invalid dropout span")

// dropoutList collects repeated -dropout start:end flags.
type dropoutList []synth.Dropout

// String implements flag.Value.
func (d *dropoutList) String() string {
	parts := make([]string, len(*d))
	for i, s := range *d {
		parts[i] = fmt.Sprintf("%g:%g", s.Start, s.End)
	}
	return strings.Join(parts, ",")
}

// Set implements flag.Value.
func (d *dropoutList) Set(v string) error {
	span, err := parseDropout(v)
	if err != nil {
		return err
	}
	*d = append(*d, span)
	return nil
}

// parseDropout parses "start:end" in seconds.
func parseDropout(v string) (synth.Dropout, error) {
	startStr, endStr, ok := strings.Cut(v, ":")
	if !ok {
		return synth.Dropout{}, fmt.Errorf("%w: %q, want start:end", errInvalidDropout, v)
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(startStr), 64)
	if err != nil {
		return synth.Dropout{}, fmt.Errorf("%w: start: %w", errInvalidDropout, err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(endStr), 64)
	if err != nil {
		return synth.Dropout{}, fmt.Errorf("%w: end: %w", errInvalidDropout, err)
	}
	if start < 0 || end <= start {
		return synth.Dropout{}, fmt.Errorf("%w: %q must satisfy 0 <= start < end", errInvalidDropout, v)
	}

	return synth.Dropout{Start: start, End: end}, nil
}

// generateFrames renders n synthetic frames.
func generateFrames(cfg synth.Config, n int) []heartrate.Frame {
	samples := synth.NewGenerator(cfg).Generate(n)
	frames := make([]heartrate.Frame, n)
	for i, s := range samples {
		frames[i] = heartrate.Frame{
			Hue:        s.Hue,
			Saturation: s.Saturation,
			Brightness: s.Brightness,
			Timestamp:  s.Timestamp,
		}
	}
	return frames
}
