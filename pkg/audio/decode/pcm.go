// ABOUTME: PCM audio decoder
// ABOUTME: Decodes interleaved 16-bit and 24-bit little-endian PCM to float samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	format audio.Format
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	if format.Channels < 1 || format.Channels > audio.MaxChannels {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", format.SampleRate)
	}

	return &PCMDecoder{
		format: format,
	}, nil
}

// Decode converts interleaved PCM bytes to per-channel float samples.
// Trailing bytes that do not form a whole frame are ignored.
func (d *PCMDecoder) Decode(data []byte) (*audio.Buffer, error) {
	channels := d.format.Channels
	bytesPerSample := d.format.BitDepth / 8
	frames := len(data) / (bytesPerSample * channels)

	buf := audio.NewBuffer(d.format.SampleRate, channels, frames)

	for ch := 0; ch < channels; ch++ {
		out := buf.Data[ch]
		for i := 0; i < frames; i++ {
			off := (i*channels + ch) * bytesPerSample
			if bytesPerSample == 3 {
				out[i] = audio.SampleFrom24Bit([3]byte{data[off], data[off+1], data[off+2]})
			} else {
				out[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[off:])))
			}
		}
	}

	return buf, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
