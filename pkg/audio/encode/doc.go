// ABOUTME: Audio encoder package
// ABOUTME: Serializes decoded float buffers back to raw PCM for devices and the wire
// Package encode serializes decoded audio buffers into raw sample bytes.
//
// Used by output backends that take byte streams (oto, the remote speaker
// protocol) and by tests that need PCM fixtures.
//
// Example:
//
//	pcm := encode.EncodePCM16(buf)
package encode
