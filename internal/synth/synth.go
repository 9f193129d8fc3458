// Package synth generates deterministic per-frame PPG traces for tests,
// demos and the trace tools. It is a stand-in for the camera and spatial
// reduction stages: each frame is already reduced to hue, saturation and
// brightness.
package synth

import "math"

// Defaults roughly match a fingertip pressed on a lit phone camera.
const (
	DefaultFrameRate  = 30.0
	DefaultBPM        = 72.0
	DefaultBaseHue    = 10.0
	DefaultAmplitude  = 3.0
	DefaultNoise      = 0.5
	DefaultSaturation = 0.85
	DefaultBrightness = 0.8

	// dropoutLevel is the saturation/brightness reported while the finger
	// is off the lens.
	dropoutLevel = 0.2

	huePeriod = 360.0

	// noise hash constants, see noise().
	noiseScale = 12.9898
	noiseMul   = 43758.5453
)

// Sample is one reduced frame.
type Sample struct {
	Hue        float64 // degrees, [0, 360)
	Saturation float64 // [0, 1]
	Brightness float64 // [0, 1]
	Timestamp  float64 // seconds
}

// Dropout is a span [Start, End) in seconds during which the signal quality
// collapses.
type Dropout struct {
	Start float64
	End   float64
}

// Config describes a synthetic trace.
type Config struct {
	FrameRate  float64
	BPM        float64
	BaseHue    float64 // mean hue in degrees; may sit near 0/360 to exercise wrapping
	Amplitude  float64 // pulse amplitude in degrees
	Noise      float64 // peak deterministic jitter in degrees
	Saturation float64
	Brightness float64
	StartTime  float64
	Dropouts   []Dropout
}

// DefaultConfig returns a clean 72 BPM trace at 30 fps.
func DefaultConfig() Config {
	return Config{
		FrameRate:  DefaultFrameRate,
		BPM:        DefaultBPM,
		BaseHue:    DefaultBaseHue,
		Amplitude:  DefaultAmplitude,
		Noise:      DefaultNoise,
		Saturation: DefaultSaturation,
		Brightness: DefaultBrightness,
	}
}

// Generator produces samples one frame at a time.
type Generator struct {
	cfg   Config
	frame int
}

// NewGenerator creates a generator for cfg. Non-positive frame rates fall
// back to DefaultFrameRate.
func NewGenerator(cfg Config) *Generator {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	return &Generator{cfg: cfg}
}

// Next returns the next frame and advances the clock.
func (g *Generator) Next() Sample {
	t := float64(g.frame) / g.cfg.FrameRate
	g.frame++

	phase := 2 * math.Pi * g.cfg.BPM / 60 * t
	// The dicrotic notch gives real PPG a second, smaller harmonic.
	pulse := math.Sin(phase) + 0.25*math.Sin(2*phase+0.6)
	hue := g.cfg.BaseHue + g.cfg.Amplitude*pulse + g.cfg.Noise*noise(g.frame)

	hue = math.Mod(hue, huePeriod)
	if hue < 0 {
		hue += huePeriod
	}

	s := Sample{
		Hue:        hue,
		Saturation: g.cfg.Saturation,
		Brightness: g.cfg.Brightness,
		Timestamp:  g.cfg.StartTime + t,
	}
	for _, d := range g.cfg.Dropouts {
		if t >= d.Start && t < d.End {
			s.Saturation = dropoutLevel
			s.Brightness = dropoutLevel
			break
		}
	}
	return s
}

// Generate returns the next n samples.
func (g *Generator) Generate(n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// Reset rewinds the generator to frame zero.
func (g *Generator) Reset() {
	g.frame = 0
}

// noise is a cheap deterministic hash in [-1, 1).
func noise(i int) float64 {
	v := math.Sin(float64(i)*noiseScale) * noiseMul
	return 2*(v-math.Floor(v)) - 1
}
