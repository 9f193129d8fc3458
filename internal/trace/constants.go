package trace

// Channel layout of a trace file. Every channel holds a unit value scaled to
// the PCM full-scale of the file's bit depth.
const (
	ChannelHue        = 0 // hue / hue period, [0, 1)
	ChannelSaturation = 1 // [0, 1]
	ChannelBrightness = 2 // [0, 1]

	// Channels is the channel count of a trace file.
	Channels = 3
)

// Supported PCM bit depths.
const (
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32

	// DefaultBitDepth keeps hue quantisation near 0.01 degree.
	DefaultBitDepth = BitDepth16
)

const (
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// pcmFormat is the WAVE_FORMAT_PCM tag.
	pcmFormat = 1
)
