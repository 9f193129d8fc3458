// Package trace stores per-frame PPG traces as multi-channel PCM WAV files,
// one WAV sample frame per camera frame with the sample rate set to the
// camera frame rate. Standard audio tools can then inspect, trim and plot
// recorded sessions.
package trace

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	heartrate "github.com/tphakala/go-ppg-heartrate"
)

var (
	// ErrInvalidTrace indicates a file that is not a usable trace.
	ErrInvalidTrace = errors.New("invalid trace file")

	// ErrUnsupportedBitDepth indicates a PCM width other than 16, 24 or 32 bits.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)

// Info describes a decoded trace.
type Info struct {
	FrameRate int
	BitDepth  int
	Frames    int
}

// Duration returns the trace length in seconds.
func (i Info) Duration() float64 {
	if i.FrameRate <= 0 {
		return 0
	}
	return float64(i.Frames) / float64(i.FrameRate)
}

// Decode reads a trace from r. Hue values are scaled back to degrees of a
// circle of huePeriod; timestamps are frame index / frame rate.
func Decode(r io.ReadSeeker, huePeriod float64) ([]heartrate.Frame, Info, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, Info{}, fmt.Errorf("%w: not a WAV file", ErrInvalidTrace)
	}

	info := Info{
		FrameRate: int(dec.SampleRate),
		BitDepth:  int(dec.BitDepth),
	}
	if int(dec.NumChans) != Channels {
		return nil, info, fmt.Errorf("%w: %d channels, want %d", ErrInvalidTrace, dec.NumChans, Channels)
	}
	if info.FrameRate <= 0 {
		return nil, info, fmt.Errorf("%w: zero frame rate", ErrInvalidTrace)
	}

	maxVal, err := fullScale(info.BitDepth)
	if err != nil {
		return nil, info, err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, info, fmt.Errorf("failed to read trace data: %w", err)
	}

	invMaxVal := 1.0 / maxVal
	rate := float64(info.FrameRate)
	n := len(buf.Data) / Channels
	frames := make([]heartrate.Frame, n)
	for i := range frames {
		base := i * Channels
		frames[i] = heartrate.Frame{
			Hue:        float64(buf.Data[base+ChannelHue]) * invMaxVal * huePeriod,
			Saturation: float64(buf.Data[base+ChannelSaturation]) * invMaxVal,
			Brightness: float64(buf.Data[base+ChannelBrightness]) * invMaxVal,
			Timestamp:  float64(i) / rate,
		}
	}
	info.Frames = n

	return frames, info, nil
}

// Encode writes frames to w as a trace at frameRate frames per second.
// Frame timestamps are not stored; they are implied by the frame rate.
func Encode(w io.WriteSeeker, frames []heartrate.Frame, frameRate, bitDepth int, huePeriod float64) error {
	maxVal, err := fullScale(bitDepth)
	if err != nil {
		return err
	}
	if frameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", ErrInvalidTrace)
	}

	data := make([]int, len(frames)*Channels)
	for i, f := range frames {
		base := i * Channels
		data[base+ChannelHue] = quantize(wrapUnit(f.Hue/huePeriod), 0, maxVal)
		data[base+ChannelSaturation] = quantize(f.Saturation, 0, maxVal)
		data[base+ChannelBrightness] = quantize(f.Brightness, 0, maxVal)
	}

	return writePCM(w, data, frameRate, bitDepth, Channels)
}

// EncodeSignal writes a mono signal to w, mapping ±fullScaleValue to PCM
// full scale. Values beyond full scale are clipped.
func EncodeSignal(w io.WriteSeeker, signal []float64, sampleRate, bitDepth int, fullScaleValue float64) error {
	maxVal, err := fullScale(bitDepth)
	if err != nil {
		return err
	}
	if sampleRate <= 0 || fullScaleValue <= 0 {
		return fmt.Errorf("%w: sample rate and full scale must be positive", ErrInvalidTrace)
	}

	data := make([]int, len(signal))
	for i, v := range signal {
		data[i] = quantize(v/fullScaleValue, -1, maxVal)
	}

	return writePCM(w, data, sampleRate, bitDepth, 1)
}

func writePCM(w io.WriteSeeker, data []int, sampleRate, bitDepth, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to write trace data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}

// ReadFile decodes the trace stored at path.
func ReadFile(path string, huePeriod float64) ([]heartrate.Frame, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to open trace: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, huePeriod)
}

// WriteFile encodes frames into a new trace file at path.
func WriteFile(path string, frames []heartrate.Frame, frameRate, bitDepth int, huePeriod float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	return Encode(f, frames, frameRate, bitDepth, huePeriod)
}

// fullScale returns the maximum sample value for the given bit depth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case BitDepth16:
		return maxInt16, nil
	case BitDepth24:
		return maxInt24, nil
	case BitDepth32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

// quantize clamps v to [lo, 1] and scales it to an integer sample. NaN maps
// to zero.
func quantize(v, lo, maxVal float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(lo, math.Min(1, v))
	return int(math.Round(v * maxVal))
}

// wrapUnit maps v into [0, 1).
func wrapUnit(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		return 0
	}
	return v
}
