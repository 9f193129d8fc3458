package heartrate

import (
	"fmt"
	"sync"
)

// NewDefault creates an Estimator with DefaultConfig.
func NewDefault() *Estimator {
	cfg := DefaultConfig()
	e, err := New(&cfg)
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	return e
}

// NewForFrameRate creates an Estimator for a camera running at fps frames
// per second. The warm-up keeps its two-second duration.
func NewForFrameRate(fps float64) (*Estimator, error) {
	cfg := DefaultConfig()
	cfg.FrameRate = fps
	cfg.WarmupFrames = int(fps * DefaultWarmupFrames / DefaultFrameRate)
	return New(&cfg)
}

// Summary describes a whole recorded trace.
type Summary struct {
	// Results holds the per-frame output, one entry per input frame.
	Results []Result

	// FinalBPM is the live estimate after the last frame (0 if unknown).
	FinalBPM float64

	// SpectralBPM is the spectral estimate after the last frame, 0 when the
	// window was not full or the spectral view is disabled.
	SpectralBPM float64

	// RecordingFrames counts frames processed in StateRecording.
	RecordingFrames int

	// Resets counts transitions back to StateWarmingUp after recording started.
	Resets int
}

// EstimateTrace is a convenience function for one-shot processing of a
// recorded trace. A nil config selects DefaultConfig.
func EstimateTrace(frames []Frame, config *Config) (*Summary, error) {
	if config == nil {
		cfg := DefaultConfig()
		config = &cfg
	}

	e, err := New(config)
	if err != nil {
		return nil, err
	}

	return e.run(frames), nil
}

func (e *Estimator) run(frames []Frame) *Summary {
	s := &Summary{Results: make([]Result, len(frames))}

	prev := e.state
	for i, f := range frames {
		r := e.Process(f)
		s.Results[i] = r

		if r.State == StateRecording {
			s.RecordingFrames++
		} else if prev == StateRecording {
			s.Resets++
		}
		prev = r.State
	}

	s.FinalBPM = e.BPM()
	if bpm, err := e.SpectralBPM(); err == nil {
		s.SpectralBPM = bpm
	}
	return s
}

// EstimateTraces processes several independent traces with the same
// configuration. When parallel is true each trace runs on its own
// goroutine; results are identical to sequential processing.
func EstimateTraces(traces [][]Frame, config *Config, parallel bool) ([]*Summary, error) {
	if config == nil {
		cfg := DefaultConfig()
		config = &cfg
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	out := make([]*Summary, len(traces))

	if !parallel || len(traces) <= 1 {
		for i, tr := range traces {
			s, err := EstimateTrace(tr, config)
			if err != nil {
				return nil, fmt.Errorf("trace %d: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(traces))

	for i := range traces {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := EstimateTrace(traces[idx], config)
			if err != nil {
				errChan <- fmt.Errorf("trace %d: %w", idx, err)
				return
			}
			out[idx] = s
		}(i)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
