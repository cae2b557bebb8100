// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes a complete MP3 payload to float samples
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/wordbuddy/pkg/audio"
)

// go-mp3 always produces 16-bit little-endian stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3(format audio.Format) (Decoder, error) {
	if format.Codec != "mp3" {
		return nil, fmt.Errorf("invalid codec for MP3 decoder: %s", format.Codec)
	}
	return &MP3Decoder{}, nil
}

// Decode converts MP3 bytes to float samples at the stream's own sample rate
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, &audio.DecodeError{Op: "mp3", Err: err}
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, &audio.DecodeError{Op: "mp3", Err: err}
	}

	frames := len(pcm) / (2 * mp3Channels)
	buf := audio.NewBuffer(decoder.SampleRate(), mp3Channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < mp3Channels; ch++ {
			off := (i*mp3Channels + ch) * 2
			buf.Data[ch][i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(pcm[off:])))
		}
	}

	return buf, nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}
