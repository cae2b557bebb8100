// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes a complete FLAC payload to float samples using mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC(format audio.Format) (Decoder, error) {
	if format.Codec != "flac" {
		return nil, fmt.Errorf("invalid codec for FLAC decoder: %s", format.Codec)
	}
	return &FLACDecoder{}, nil
}

// Decode converts FLAC bytes to float samples using the stream's own format
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, &audio.DecodeError{Op: "flac", Err: err}
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	buf := audio.NewBuffer(int(info.SampleRate), channels, 0)
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &audio.DecodeError{Op: "flac", Err: err}
		}

		if err := appendSubframes(buf, f.Subframes, bitDepth); err != nil {
			return nil, &audio.DecodeError{Op: "flac", Err: err}
		}
	}

	return buf, nil
}

// appendSubframes appends one frame's samples. Every channel must get the
// same number of samples so the buffer stays rectangular.
func appendSubframes(buf *audio.Buffer, subframes []*frame.Subframe, bitDepth int) error {
	if len(subframes) != buf.Channels() {
		return fmt.Errorf("frame has %d subframes, stream has %d channels", len(subframes), buf.Channels())
	}
	for ch, sub := range subframes {
		if len(sub.Samples) != len(subframes[0].Samples) {
			return fmt.Errorf("subframe %d has %d samples, expected %d", ch, len(sub.Samples), len(subframes[0].Samples))
		}
	}

	for ch, sub := range subframes {
		for _, s := range sub.Samples {
			buf.Data[ch] = append(buf.Data[ch], audio.SampleFromInt(s, bitDepth))
		}
	}
	return nil
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	return nil
}
