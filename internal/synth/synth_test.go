package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-ppg-heartrate/internal/testutil"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(DefaultConfig()).Generate(100)
	b := NewGenerator(DefaultConfig()).Generate(100)
	assert.Equal(t, a, b)
}

func TestGenerator_Timestamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartTime = 5
	samples := NewGenerator(cfg).Generate(31)
	assert.InDelta(t, 5.0, samples[0].Timestamp, 1e-12)
	assert.InDelta(t, 6.0, samples[30].Timestamp, 1e-12)
}

func TestGenerator_HueStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseHue = 1
	cfg.Amplitude = 4
	hues := make([]float64, 0, 300)
	for _, s := range NewGenerator(cfg).Generate(300) {
		hues = append(hues, s.Hue)
	}
	testutil.AssertNoNaNOrInf(t, hues)
	for _, h := range hues {
		testutil.AssertInRange(t, h, 0, 360)
	}
	assert.Greater(t, testutil.PeakAbs(hues), 300.0, "trace should wrap below zero")
}

func TestGenerator_Dropouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dropouts = []Dropout{{Start: 1, End: 2}}
	samples := NewGenerator(cfg).Generate(90)

	assert.Equal(t, DefaultSaturation, samples[29].Saturation)
	assert.Equal(t, dropoutLevel, samples[30].Saturation)
	assert.Equal(t, dropoutLevel, samples[59].Brightness)
	assert.Equal(t, DefaultBrightness, samples[60].Brightness)
}

func TestGenerator_Reset(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	first := g.Generate(10)
	g.Reset()
	assert.Equal(t, first, g.Generate(10))
}

func TestNoise_Bounded(t *testing.T) {
	for i := range 1000 {
		testutil.AssertInRange(t, noise(i), -1, 1)
	}
}
