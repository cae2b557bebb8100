// ABOUTME: Audio output package for playing speech
// ABOUTME: Provides the Device capability set and malgo, oto, PortAudio and remote backends
// Package output provides audio playback devices.
//
// A Device hands out independent Contexts. A Context binds one decoded
// buffer to a Source, which is connected, started and reports its end once.
//
// Backends: malgo (default), oto, PortAudio (build with -tags portaudio),
// and remote (streams to a WordBuddy speaker over WebSocket).
//
// Example:
//
//	dev, err := output.New("malgo", output.Config{})
//	ctx, err := dev.NewContext(24000, 1)
//	src, err := ctx.NewSource(buf)
package output
