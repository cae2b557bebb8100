// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Ogg Opus payloads to float samples at 48kHz
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/wordbuddy/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct {
	format audio.Format
}

// NewOpus creates a new Opus decoder
func NewOpus(format audio.Format) (Decoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus decoder: %s", format.Codec)
	}

	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("unsupported channel count for Opus: %d", format.Channels)
	}

	return &OpusDecoder{
		format: format,
	}, nil
}

// Decode converts an Ogg Opus stream to float samples. The stream's
// channel count must match the configured one.
func (d *OpusDecoder) Decode(data []byte) (*audio.Buffer, error) {
	streamChannels, err := opusChannels(data)
	if err != nil {
		return nil, &audio.DecodeError{Op: "opus", Err: err}
	}
	if streamChannels != d.format.Channels {
		return nil, &audio.DecodeError{
			Op:  "opus",
			Err: fmt.Errorf("stream has %d channels, expected %d", streamChannels, d.format.Channels),
		}
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, &audio.DecodeError{Op: "opus", Err: err}
	}
	defer stream.Close()

	channels := d.format.Channels
	buf := audio.NewBuffer(opusSampleRate, channels, 0)

	// 120ms at 48kHz is the largest Opus frame
	pcm := make([]float32, 5760*channels)
	for {
		n, err := stream.ReadFloat32(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &audio.DecodeError{Op: "opus", Err: err}
		}

		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				buf.Data[ch] = append(buf.Data[ch], pcm[i*channels+ch])
			}
		}
	}

	return buf, nil
}

// opusChannels reads the channel count from the OpusHead packet on the
// first Ogg page
func opusChannels(data []byte) (int, error) {
	const pageHeaderSize = 27
	if len(data) < pageHeaderSize || string(data[:4]) != "OggS" {
		return 0, errors.New("not an Ogg stream")
	}

	// The payload follows the segment table
	payload := data[pageHeaderSize:]
	segments := int(data[26])
	if len(payload) < segments {
		return 0, errors.New("truncated Ogg page")
	}
	payload = payload[segments:]

	// OpusHead: magic(8) version(1) channels(1) ...
	if len(payload) < 19 || string(payload[:8]) != "OpusHead" {
		return 0, errors.New("missing OpusHead")
	}
	channels := int(payload[9])
	if channels < 1 {
		return 0, fmt.Errorf("invalid Opus channel count: %d", channels)
	}
	return channels, nil
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
