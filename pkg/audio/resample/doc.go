// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts float audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	out := resample.Buffer(speech, 48000)
package resample
