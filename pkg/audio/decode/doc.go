// ABOUTME: Audio decoder package for speech payloads
// ABOUTME: Provides Decoder interface and implementations for PCM, MP3, FLAC and Opus
// Package decode turns speech payloads into float audio buffers.
//
// Supports: base64 transport encoding, PCM (16-bit and 24-bit), MP3, FLAC, Ogg Opus
//
// All decoders implement the Decoder interface and produce *audio.Buffer
// values with samples normalized to [-1.0, 1.0]. Corrupt payloads fail with
// *audio.DecodeError.
//
// Example:
//
//	buf, err := decode.DecodeBase64PCM(payload, audio.DefaultFormat())
package decode
