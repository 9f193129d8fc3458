package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	heartrate "github.com/tphakala/go-ppg-heartrate"
	"github.com/tphakala/go-ppg-heartrate/internal/trace"
)

// defaultWarmupSeconds is the library's default warm-up at its default rate.
const defaultWarmupSeconds = heartrate.DefaultWarmupFrames / heartrate.DefaultFrameRate

var errMixedFrameRates = errors.New("traces have different frame rates")

// options holds the analysis flags.
type options struct {
	lowCutHz       float64
	highCutHz      float64
	minBPM         float64
	maxBPM         float64
	smoothing      float64
	warmupSeconds  float64
	minSaturation  float64
	minBrightness  float64
	noUnwrap       bool
	spectrumWindow int

	interval     float64
	asJSON       bool
	filteredPath string
	gain         float64
}

// defaultOptions mirrors heartrate.DefaultConfig.
func defaultOptions() options {
	def := heartrate.DefaultConfig()
	return options{
		lowCutHz:       def.LowCutHz,
		highCutHz:      def.HighCutHz,
		minBPM:         def.MinBPM,
		maxBPM:         def.MaxBPM,
		smoothing:      def.Smoothing,
		warmupSeconds:  defaultWarmupSeconds,
		minSaturation:  def.MinSaturation,
		minBrightness:  def.MinBrightness,
		spectrumWindow: def.SpectrumWindow,
		interval:       defaultInterval,
		gain:           defaultGain,
	}
}

// report is the analysis of one trace file.
type report struct {
	path    string
	info    trace.Info
	summary *heartrate.Summary
}

// timelineRow is one line of the printed BPM timeline.
type timelineRow struct {
	Time       float64         `json:"t"`
	State      heartrate.State `json:"state"`
	BPM        float64         `json:"bpm"`
	Filtered   float64         `json:"filtered"`
	GoodFrames int             `json:"good_frames"`
	Beats      int             `json:"beats"`
}

// buildConfig maps the command-line options onto an estimator configuration
// for a trace recorded at frameRate.
func buildConfig(opts *options, frameRate int) (*heartrate.Config, error) {
	cfg := heartrate.DefaultConfig()
	cfg.FrameRate = float64(frameRate)
	cfg.LowCutHz = opts.lowCutHz
	cfg.HighCutHz = opts.highCutHz
	cfg.MinBPM = opts.minBPM
	cfg.MaxBPM = opts.maxBPM
	cfg.Smoothing = opts.smoothing
	cfg.WarmupFrames = int(math.Round(opts.warmupSeconds * float64(frameRate)))
	cfg.MinSaturation = opts.minSaturation
	cfg.MinBrightness = opts.minBrightness
	cfg.UnwrapHue = !opts.noUnwrap
	cfg.SpectrumWindow = opts.spectrumWindow

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// analyzeFiles decodes every trace and runs the estimator over each. All
// traces must share one frame rate.
func analyzeFiles(paths []string, opts *options, parallel bool) ([]*report, error) {
	reports := make([]*report, len(paths))
	traces := make([][]heartrate.Frame, len(paths))

	for i, p := range paths {
		frames, info, err := trace.ReadFile(p, heartrate.DefaultHuePeriod)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if i > 0 && info.FrameRate != reports[0].info.FrameRate {
			return nil, fmt.Errorf("%w: %s is %d fps, %s is %d fps", errMixedFrameRates,
				filepath.Base(paths[0]), reports[0].info.FrameRate, filepath.Base(p), info.FrameRate)
		}
		reports[i] = &report{path: p, info: info}
		traces[i] = frames
	}

	cfg, err := buildConfig(opts, reports[0].info.FrameRate)
	if err != nil {
		return nil, err
	}

	summaries, err := heartrate.EstimateTraces(traces, cfg, parallel)
	if err != nil {
		return nil, err
	}
	for i, s := range summaries {
		reports[i].summary = s
	}
	return reports, nil
}

// timeline samples results every interval seconds. Each row carries the
// number of rising transitions since the previous row. An interval of zero
// keeps every frame.
func timeline(results []heartrate.Result, interval float64) []timelineRow {
	var rows []timelineRow
	next := math.Inf(-1)
	beats := 0

	for _, r := range results {
		if r.Transition == heartrate.TransitionRising {
			beats++
		}
		if r.Timestamp < next {
			continue
		}
		rows = append(rows, timelineRow{
			Time:       r.Timestamp,
			State:      r.State,
			BPM:        r.BPM,
			Filtered:   r.Filtered,
			GoodFrames: r.GoodFrames,
			Beats:      beats,
		})
		beats = 0
		if interval > 0 {
			if math.IsInf(next, -1) {
				next = r.Timestamp
			}
			for next <= r.Timestamp {
				next += interval
			}
		}
	}
	return rows
}

// writeTimeline prints rows as an aligned table or as JSON lines.
func writeTimeline(w io.Writer, rows []timelineRow, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for i := range rows {
			if err := enc.Encode(&rows[i]); err != nil {
				return fmt.Errorf("failed to encode timeline: %w", err)
			}
		}
		return nil
	}

	for _, r := range rows {
		bpm := "   --"
		if r.BPM > 0 {
			bpm = fmt.Sprintf("%5.1f", r.BPM)
		}
		if _, err := fmt.Fprintf(w, "  %7.2fs  %-10s  bpm %s  good %5d  beats %d\n",
			r.Time, r.State, bpm, r.GoodFrames, r.Beats); err != nil {
			return err
		}
	}
	return nil
}

// printSummary writes the per-file header.
func printSummary(w io.Writer, r *report) {
	s := r.summary
	fmt.Fprintf(w, "%s: %d fps, %d frames (%.1fs)\n",
		filepath.Base(r.path), r.info.FrameRate, r.info.Frames, r.info.Duration())

	spectral := "n/a"
	if s.SpectralBPM > 0 {
		spectral = fmt.Sprintf("%.1f bpm", s.SpectralBPM)
	}
	fmt.Fprintf(w, "  Final: %.1f bpm, spectral %s\n", s.FinalBPM, spectral)
	fmt.Fprintf(w, "  Recording frames: %d, signal losses: %d\n", s.RecordingFrames, s.Resets)
}

// writeFilteredOutput stores the filtered hue of every frame as a mono WAV.
func writeFilteredOutput(path string, results []heartrate.Result, frameRate int, gain float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	signal := make([]float64, len(results))
	for i, r := range results {
		signal[i] = r.Filtered
	}

	return trace.EncodeSignal(f, signal, frameRate, trace.DefaultBitDepth, gain)
}
