package heartrate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-ppg-heartrate/internal/detector"
	"github.com/tphakala/go-ppg-heartrate/internal/filter"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 30.0, cfg.FrameRate, 0)
	assert.InDelta(t, 0.5, cfg.LowCutHz, 0)
	assert.InDelta(t, 3.5, cfg.HighCutHz, 0)
	assert.Equal(t, DefaultWarmupFrames, cfg.WarmupFrames)
	assert.Equal(t, 60, cfg.WarmupFrames)
	assert.True(t, cfg.UnwrapHue)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		sub    error
	}{
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, nil},
		{"nan frame rate", func(c *Config) { c.FrameRate = math.NaN() }, nil},
		{"inverted band", func(c *Config) { c.LowCutHz, c.HighCutHz = 4, 1 }, filter.ErrInvalidDesign},
		{"band above nyquist", func(c *Config) { c.HighCutHz = 20 }, filter.ErrInvalidDesign},
		{"zero min bpm", func(c *Config) { c.MinBPM = 0 }, detector.ErrInvalidConfig},
		{"inverted bpm range", func(c *Config) { c.MinBPM, c.MaxBPM = 200, 100 }, detector.ErrInvalidConfig},
		{"smoothing above one", func(c *Config) { c.Smoothing = 1.5 }, detector.ErrInvalidConfig},
		{"negative warmup", func(c *Config) { c.WarmupFrames = -1 }, nil},
		{"saturation threshold of one", func(c *Config) { c.MinSaturation = 1 }, nil},
		{"nan brightness threshold", func(c *Config) { c.MinBrightness = math.NaN() }, nil},
		{"zero hue period", func(c *Config) { c.HuePeriod = 0 }, nil},
		{"spectrum window too short", func(c *Config) { c.SpectrumWindow = 8 }, nil},
		{"max bpm beyond nyquist", func(c *Config) { c.FrameRate, c.HighCutHz, c.MaxBPM = 6, 2.5, 200 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			if tt.sub != nil {
				assert.ErrorIs(t, err, tt.sub)
			}
		})
	}
}

func TestConfig_ValidateOptionalParts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpectrumWindow = 0
	cfg.UnwrapHue = false
	cfg.HuePeriod = 0
	cfg.WarmupFrames = 0
	assert.NoError(t, cfg.Validate())
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "WARMING_UP", StateWarmingUp.String())
	assert.Equal(t, "RECORDING", StateRecording.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestState_MarshalText(t *testing.T) {
	b, err := json.Marshal(struct {
		State State `json:"state"`
	}{StateRecording})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"RECORDING"}`, string(b))

	_, err = State(-1).MarshalText()
	assert.Error(t, err)
}

func TestTransitionAliases(t *testing.T) {
	assert.Equal(t, "rising", TransitionRising.String())
	assert.Equal(t, detector.TransitionFalling, TransitionFalling)
}
