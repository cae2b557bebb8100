// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders and codec selection
package decode

import (
	"fmt"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

// Decoder decodes a complete audio payload into a float buffer
type Decoder interface {
	// Decode converts encoded audio data to a decoded buffer
	Decode(data []byte) (*audio.Buffer, error)

	// Close releases decoder resources
	Close() error
}

// New returns the decoder for format.Codec
func New(format audio.Format) (Decoder, error) {
	format = format.WithDefaults()

	switch format.Codec {
	case "pcm":
		return NewPCM(format)
	case "mp3":
		return NewMP3(format)
	case "flac":
		return NewFLAC(format)
	case "opus":
		return NewOpus(format)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}
