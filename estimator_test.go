package heartrate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-ppg-heartrate/internal/monitoring"
	"github.com/tphakala/go-ppg-heartrate/internal/synth"
	"github.com/tphakala/go-ppg-heartrate/internal/testutil"
)

const (
	goodSat    = 0.9
	goodBright = 0.9
	testFPS    = 30.0
)

// noisePattern is a ±3° frame-to-frame hue jitter with a 3.75 Hz
// fundamental at 30 fps.
var noisePattern = []float64{10, 12, 8, 11, 9, 13, 7, 12}

// pulseAmplitude keeps the pulse in the same range as noisePattern's swing.
const pulseAmplitude = 4.0

// patternFrames returns n good frames whose hue is noisePattern plus a 1 Hz
// pulse of the given amplitude. phase shifts the pulse by that fraction of
// a cycle.
func patternFrames(n int, amplitude, phase float64) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		ts := float64(i) / testFPS
		frames[i] = Frame{
			Hue:        noisePattern[i%len(noisePattern)] + amplitude*math.Sin(2*math.Pi*(ts-phase)),
			Saturation: goodSat,
			Brightness: goodBright,
			Timestamp:  ts,
		}
	}
	return frames
}

func synthFrames(cfg synth.Config, n int) []Frame {
	samples := synth.NewGenerator(cfg).Generate(n)
	frames := make([]Frame, n)
	for i, s := range samples {
		frames[i] = Frame{
			Hue:        s.Hue,
			Saturation: s.Saturation,
			Brightness: s.Brightness,
			Timestamp:  s.Timestamp,
		}
	}
	return frames
}

func processAll(e *Estimator, frames []Frame) []Result {
	out := make([]Result, len(frames))
	for i, f := range frames {
		out[i] = e.Process(f)
	}
	return out
}

// captureLog routes monitoring output into the returned slice for the
// duration of the test.
func captureLog(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	monitoring.SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	return &lines
}

// TestEstimator_EndToEnd feeds 60 warm-up frames and 90 recording frames of
// a jittery hue carrying a 1 Hz pulse, for pulse phases spanning a full
// cycle. Jitter crossings before the first beat must not become the period
// that seeds the average.
func TestEstimator_EndToEnd(t *testing.T) {
	const phases = 20

	for _, amplitude := range []float64{3, pulseAmplitude, 5} {
		for k := range phases {
			phase := float64(k) / phases
			t.Run(fmt.Sprintf("amp%.0f/phase%.2f", amplitude, phase), func(t *testing.T) {
				e := NewDefault()
				results := processAll(e, patternFrames(150, amplitude, phase))

				last := results[len(results)-1]
				assert.Equal(t, StateRecording, last.State)
				assert.Equal(t, 150, last.GoodFrames)
				assert.InDelta(t, 60.0, last.BPM, 15.0)
				assert.InDelta(t, 60.0, e.BPM(), 15.0)
				testutil.AssertInRange(t, e.Average(), 0.8, 1.33)
			})
		}
	}
}

func TestEstimator_WarmupTransition(t *testing.T) {
	e := NewDefault()
	results := processAll(e, patternFrames(DefaultWarmupFrames+5, pulseAmplitude, 0))

	for i, r := range results[:DefaultWarmupFrames-1] {
		assert.Equal(t, StateWarmingUp, r.State, "frame %d", i)
		assert.Equal(t, i+1, r.GoodFrames)
		assert.Zero(t, r.BPM, "frame %d", i)
		assert.Equal(t, TransitionNone, r.Transition)
	}

	first := results[DefaultWarmupFrames-1]
	assert.Equal(t, StateRecording, first.State)
	assert.Equal(t, DefaultWarmupFrames, first.GoodFrames)
}

func TestEstimator_ZeroWarmupRecordsImmediately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarmupFrames = 0
	e, err := New(&cfg)
	require.NoError(t, err)

	r := e.Process(patternFrames(1, pulseAmplitude, 0)[0])
	assert.Equal(t, StateRecording, r.State)
	assert.Equal(t, 1, r.GoodFrames)
}

func TestEstimator_QualityLossResets(t *testing.T) {
	tests := []struct {
		name string
		sat  float64
		bri  float64
	}{
		{"low saturation", 0.2, goodBright},
		{"low brightness", goodSat, 0.1},
		{"saturation at threshold", DefaultMinSaturation, goodBright},
		{"nan saturation", math.NaN(), goodBright},
		{"inf brightness", goodSat, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLog(t)
			e := NewDefault()
			frames := patternFrames(200, pulseAmplitude, 0)
			processAll(e, frames[:180])
			require.Equal(t, StateRecording, e.State())
			require.Positive(t, e.BPM())

			bad := frames[180]
			bad.Saturation, bad.Brightness = tt.sat, tt.bri
			r := e.Process(bad)

			assert.Equal(t, StateWarmingUp, r.State)
			assert.Zero(t, r.GoodFrames)
			assert.Zero(t, r.BPM)
			assert.Zero(t, e.Average())
			require.NotEmpty(t, *logs)
			assert.Contains(t, (*logs)[len(*logs)-1], "signal lost")

			r = e.Process(frames[181])
			assert.Equal(t, StateWarmingUp, r.State)
			assert.Equal(t, 1, r.GoodFrames)
		})
	}
}

func TestEstimator_ExternalResetFlag(t *testing.T) {
	frames := patternFrames(240, pulseAmplitude, 0)

	e := NewDefault()
	processAll(e, frames[:150])
	require.Equal(t, StateRecording, e.State())

	// Replay from the reset point on a fresh estimator; both must agree.
	tail := append([]Frame(nil), frames[150:]...)
	tail[0].Reset = true
	got := processAll(e, tail)

	tail[0].Reset = false
	want := processAll(NewDefault(), tail)

	assert.Equal(t, want, got)
	assert.Equal(t, StateWarmingUp, got[0].State)
	assert.Equal(t, 1, got[0].GoodFrames)
}

func TestEstimator_ResetIdempotent(t *testing.T) {
	frames := patternFrames(200, pulseAmplitude, 0)

	e := NewDefault()
	processAll(e, frames)
	e.Reset()
	e.Reset()

	assert.Equal(t, StateWarmingUp, e.State())
	assert.Zero(t, e.GoodFrames())
	assert.Zero(t, e.BPM())

	_, err := e.SpectralBPM()
	assert.ErrorIs(t, err, ErrNotReady)

	assert.Equal(t, processAll(NewDefault(), frames), processAll(e, frames))
}

func TestEstimator_OutOfOrderFrameIgnored(t *testing.T) {
	logs := captureLog(t)
	frames := patternFrames(200, pulseAmplitude, 0)

	e := NewDefault()
	processAll(e, frames[:100])
	before := e.GoodFrames()
	filtered := e.filter.Output()

	for _, ts := range []float64{frames[99].Timestamp, frames[50].Timestamp} {
		dup := frames[100]
		dup.Timestamp = ts
		r := e.Process(dup)

		assert.Equal(t, before, r.GoodFrames)
		assert.InDelta(t, filtered, r.Filtered, 0)
		assert.Equal(t, StateRecording, r.State)
	}
	require.Len(t, *logs, 3) // recording start + two drops
	assert.Contains(t, (*logs)[2], "dropping frame")

	// The rest of the run matches a run that never saw the bad frames.
	ref := NewDefault()
	processAll(ref, frames[:100])
	assert.Equal(t, processAll(ref, frames[100:]), processAll(e, frames[100:]))
}

func TestEstimator_NonFiniteHueHeld(t *testing.T) {
	frames := patternFrames(200, pulseAmplitude, 0)

	e := NewDefault()
	processAll(e, frames[:120])
	filtered := e.filter.Output()

	for _, hue := range []float64{math.NaN(), math.Inf(-1)} {
		f := frames[120]
		f.Hue = hue
		r := e.Process(f)
		assert.Equal(t, StateRecording, r.State)
		assert.Equal(t, 120, r.GoodFrames)
		assert.InDelta(t, filtered, r.Filtered, 0)
	}

	f := frames[120]
	f.Timestamp = math.NaN()
	r := e.Process(f)
	assert.Equal(t, 120, r.GoodFrames)

	ref := NewDefault()
	processAll(ref, frames[:120])
	assert.Equal(t, processAll(ref, frames[120:]), processAll(e, frames[120:]))
}

func TestEstimator_NoNaNLeaks(t *testing.T) {
	e := NewDefault()
	bpm := make([]float64, 0, 400)
	filtered := make([]float64, 0, 400)

	special := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300, -1e300}
	for i, f := range patternFrames(400, pulseAmplitude, 0) {
		switch i % 37 {
		case 3:
			f.Hue = special[i%len(special)]
		case 11:
			f.Timestamp = special[i%3]
		case 19:
			f.Saturation = special[i%len(special)]
		}
		r := e.Process(f)
		bpm = append(bpm, r.BPM)
		filtered = append(filtered, r.Filtered)
	}

	testutil.AssertNoNaNOrInf(t, bpm)
	for _, v := range bpm {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	testutil.AssertNoNaNOrInf(t, filtered[len(filtered)-50:])
}

// TestEstimator_HueUnwrap checks that a pulse around the 0/360 seam filters
// exactly like the same pulse mid-circle.
func TestEstimator_HueUnwrap(t *testing.T) {
	seam := synth.DefaultConfig()
	seam.BaseHue = 0
	mid := synth.DefaultConfig()
	mid.BaseHue = 180

	seamFrames := synthFrames(seam, 300)
	midFrames := synthFrames(mid, 300)

	wrapped := 0
	for _, f := range seamFrames {
		if f.Hue > 180 {
			wrapped++
		}
	}
	require.Positive(t, wrapped, "trace must straddle the seam")

	a := processAll(NewDefault(), seamFrames)
	b := processAll(NewDefault(), midFrames)
	for i := range a {
		require.InDelta(t, b[i].Filtered, a[i].Filtered, 1e-6, "frame %d", i)
	}
	assert.InDelta(t, b[len(b)-1].BPM, a[len(a)-1].BPM, 1e-6)
	assert.InDelta(t, synth.DefaultBPM, a[len(a)-1].BPM, testutil.BPMTolerance)

	cfg := DefaultConfig()
	cfg.UnwrapHue = false
	raw, err := New(&cfg)
	require.NoError(t, err)
	peak := 0.0
	for _, r := range processAll(raw, seamFrames) {
		peak = math.Max(peak, math.Abs(r.Filtered))
	}
	assert.Greater(t, peak, 90.0, "wrapped hue should produce seam jumps")
}

func TestEstimator_SyntheticRates(t *testing.T) {
	for _, bpm := range []float64{50, 72, 110, 150} {
		t.Run(fmt.Sprintf("%.0fbpm", bpm), func(t *testing.T) {
			cfg := synth.DefaultConfig()
			cfg.BPM = bpm
			e := NewDefault()
			results := processAll(e, synthFrames(cfg, 600))

			assert.InDelta(t, bpm, results[len(results)-1].BPM, testutil.BPMTolerance)

			rises := 0
			for _, r := range results {
				if r.Transition == TransitionRising {
					rises++
				}
			}
			// 18 s of recording.
			assert.InDelta(t, bpm/60*18, float64(rises), 2)
		})
	}
}

func TestEstimator_SpectralBPM(t *testing.T) {
	frames := synthFrames(synth.DefaultConfig(), 400)

	e := NewDefault()
	_, err := e.SpectralBPM()
	require.ErrorIs(t, err, ErrNotReady)

	processAll(e, frames[:DefaultWarmupFrames+100])
	_, err = e.SpectralBPM()
	require.ErrorIs(t, err, ErrNotReady)

	processAll(e, frames[DefaultWarmupFrames+100:])
	bpm, err := e.SpectralBPM()
	require.NoError(t, err)
	assert.InDelta(t, synth.DefaultBPM, bpm, testutil.BPMTolerance)
	assert.InDelta(t, e.BPM(), bpm, 2*testutil.BPMTolerance)
}

func TestEstimator_SpectralBPMDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpectrumWindow = 0
	e, err := New(&cfg)
	require.NoError(t, err)

	processAll(e, synthFrames(synth.DefaultConfig(), 400))
	_, err = e.SpectralBPM()
	assert.ErrorIs(t, err, ErrSpectrumDisabled)
	assert.InDelta(t, synth.DefaultBPM, e.BPM(), testutil.BPMTolerance)
}

func BenchmarkEstimator_Process(b *testing.B) {
	frames := synthFrames(synth.DefaultConfig(), 1024)
	e := NewDefault()

	b.ResetTimer()
	for i := range b.N {
		e.Process(frames[i%len(frames)])
		if i%len(frames) == len(frames)-1 {
			e.Reset()
		}
	}
}
