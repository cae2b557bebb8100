// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types, error taxonomy and sample conversions
// Package audio provides fundamental audio types used throughout wordbuddy.
//
//   - Format: Describes audio format (codec, sample rate, channels, bit depth)
//   - Buffer: Decoded audio as per-channel float32 samples in [-1.0, 1.0]
//   - DecodeError, DeviceError, PlaybackError: the playback error taxonomy
//
// Speech payloads default to 16-bit mono PCM at 24kHz:
//
//	format := audio.DefaultFormat()
//
//	// -16384 decodes to -0.5
//	s := audio.SampleFromInt16(-16384)
package audio
