// ABOUTME: Base64 payload decoding
// ABOUTME: Turns base64 speech payloads into raw bytes
package decode

import (
	"encoding/base64"
	"strings"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

// DecodeBase64 decodes standard-alphabet base64 with optional padding.
// Malformed input returns an *audio.DecodeError.
func DecodeBase64(encoded string) ([]byte, error) {
	encoded = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)

	if strings.HasSuffix(encoded, "=") || len(encoded)%4 == 0 {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &audio.DecodeError{Op: "base64", Err: err}
		}
		return data, nil
	}

	data, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &audio.DecodeError{Op: "base64", Err: err}
	}
	return data, nil
}

// DecodeBase64PCM decodes a base64 PCM payload in one step
func DecodeBase64PCM(encoded string, format audio.Format) (*audio.Buffer, error) {
	data, err := DecodeBase64(encoded)
	if err != nil {
		return nil, err
	}

	dec, err := NewPCM(format.WithDefaults())
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.Decode(data)
}
