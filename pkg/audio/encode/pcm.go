// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float buffers to interleaved 16-bit, 24-bit or float32 little-endian bytes
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder. Bit depth 32 selects float32 samples.
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 && format.BitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", format.BitDepth)
	}

	return &PCMEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Encode converts a buffer to interleaved PCM bytes
func (e *PCMEncoder) Encode(buf *audio.Buffer) ([]byte, error) {
	switch e.bitDepth {
	case 24:
		return EncodePCM24(buf), nil
	case 32:
		return EncodeFloat32LE(buf), nil
	default:
		return EncodePCM16(buf), nil
	}
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// EncodePCM16 interleaves a buffer into 16-bit little-endian PCM
func EncodePCM16(buf *audio.Buffer) []byte {
	samples := buf.Interleaved()
	output := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(s)))
	}
	return output
}

// EncodePCM24 interleaves a buffer into packed 24-bit little-endian PCM
func EncodePCM24(buf *audio.Buffer) []byte {
	samples := buf.Interleaved()
	output := make([]byte, len(samples)*3)
	for i, s := range samples {
		scaled := int64(float64(s) * -audio.Min24Bit)
		if scaled > audio.Max24Bit {
			scaled = audio.Max24Bit
		} else if scaled < audio.Min24Bit {
			scaled = audio.Min24Bit
		}
		output[i*3] = byte(scaled)
		output[i*3+1] = byte(scaled >> 8)
		output[i*3+2] = byte(scaled >> 16)
	}
	return output
}

// EncodeFloat32LE interleaves a buffer into float32 little-endian samples
func EncodeFloat32LE(buf *audio.Buffer) []byte {
	samples := buf.Interleaved()
	output := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(s))
	}
	return output
}
