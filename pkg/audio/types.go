// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded float buffers and sample conversions
package audio

const (
	// Defaults for speech payloads: 16-bit mono at 24kHz
	DefaultSampleRate = 24000
	DefaultChannels   = 1
	DefaultBitDepth   = 16

	// Int16Scale maps a signed 16-bit sample onto [-1.0, 1.0)
	Int16Scale = 32768.0

	// MaxChannels bounds the channel count of any decoded buffer
	MaxChannels = 8

	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns the 24kHz mono 16-bit PCM format used for speech
func DefaultFormat() Format {
	return Format{
		Codec:      "pcm",
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// WithDefaults fills zero fields from DefaultFormat
func (f Format) WithDefaults() Format {
	d := DefaultFormat()
	if f.Codec == "" {
		f.Codec = d.Codec
	}
	if f.SampleRate == 0 {
		f.SampleRate = d.SampleRate
	}
	if f.Channels == 0 {
		f.Channels = d.Channels
	}
	if f.BitDepth == 0 {
		f.BitDepth = d.BitDepth
	}
	return f
}

// Buffer represents decoded audio as one float slice per channel.
// Every channel slice has the same length (the frame count).
type Buffer struct {
	Format Format
	Data   [][]float32
}

// NewBuffer allocates a zeroed buffer
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}
	return &Buffer{
		Format: Format{
			Codec:      "float",
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   32,
		},
		Data: data,
	}
}

// NewBufferFromInterleaved splits frame-major samples into channels.
// A trailing partial frame is dropped.
func NewBufferFromInterleaved(sampleRate, channels int, samples []float32) *Buffer {
	frames := len(samples) / channels
	buf := NewBuffer(sampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = samples[i*channels+ch]
		}
	}
	return buf
}

// Frames returns the number of frames in the buffer
func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Channels returns the number of channels in the buffer
func (b *Buffer) Channels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// SampleRate returns the buffer sample rate
func (b *Buffer) SampleRate() int {
	if b == nil {
		return 0
	}
	return b.Format.SampleRate
}

// Interleaved returns the samples interleaved by channel (frame-major)
func (b *Buffer) Interleaved() []float32 {
	channels := b.Channels()
	frames := b.Frames()
	out := make([]float32, frames*channels)
	for ch := 0; ch < channels; ch++ {
		for i, s := range b.Data[ch] {
			out[i*channels+ch] = s
		}
	}
	return out
}

// SampleFromInt16 converts an int16 sample to float (s / 32768.0)
func SampleFromInt16(sample int16) float32 {
	return float32(float64(sample) / Int16Scale)
}

// SampleToInt16 converts a float sample to int16, clamping out-of-range values
func SampleToInt16(sample float32) int16 {
	scaled := float64(sample) * Int16Scale
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}

// SampleFrom24Bit converts 24-bit packed bytes to float (little-endian)
func SampleFrom24Bit(b [3]byte) float32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return float32(float64(val) / -Min24Bit)
}

// SampleFromInt normalizes an integer sample of the given bit depth to float
func SampleFromInt(sample int32, bitDepth int) float32 {
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}
