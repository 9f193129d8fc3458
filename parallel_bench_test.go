package heartrate

import (
	"testing"

	"github.com/tphakala/go-ppg-heartrate/internal/synth"
)

// BenchmarkEstimateTracesSequential benchmarks sequential multi-trace processing.
func BenchmarkEstimateTracesSequential(b *testing.B) {
	benchmarkEstimateTraces(b, false)
}

// BenchmarkEstimateTracesParallel benchmarks parallel multi-trace processing.
func BenchmarkEstimateTracesParallel(b *testing.B) {
	benchmarkEstimateTraces(b, true)
}

func benchmarkEstimateTraces(b *testing.B, parallel bool) {
	b.Helper()

	const (
		traces    = 8
		numFrames = 1800 // 1 minute at 30 fps
	)

	input := make([][]Frame, traces)
	for i := range input {
		cfg := synth.DefaultConfig()
		cfg.BPM = 60 + float64(i)*10
		input[i] = synthFrames(cfg, numFrames)
	}
	config := DefaultConfig()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := EstimateTraces(input, &config, parallel); err != nil {
			b.Fatalf("EstimateTraces failed: %v", err)
		}
	}
}
