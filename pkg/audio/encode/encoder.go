// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for turning float buffers back into raw sample bytes
package encode

import "github.com/harperreed/wordbuddy/pkg/audio"

// Encoder encodes a float buffer into interleaved sample bytes
type Encoder interface {
	// Encode converts a decoded buffer to encoded audio data
	Encode(buf *audio.Buffer) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
