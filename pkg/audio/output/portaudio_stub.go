//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
)

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Device {
	return &PortAudio{}
}

// NewContext always fails without the portaudio build tag
func (p *PortAudio) NewContext(sampleRate, channels int) (Context, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}
