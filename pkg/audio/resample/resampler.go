// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used when an output device runs at a different rate than the speech buffer
package resample

import "github.com/harperreed/wordbuddy/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputIdx := int(r.position)

		// If we've consumed all input, stop
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := float32(r.position - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = sample1*(1-frac) + sample2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// Buffer converts a whole decoded buffer to outputRate. The last input
// frame is held rather than interpolated past the end.
func Buffer(buf *audio.Buffer, outputRate int) *audio.Buffer {
	if buf.SampleRate() == outputRate || outputRate <= 0 {
		return buf
	}

	channels := buf.Channels()
	if buf.Frames() == 0 {
		return audio.NewBuffer(outputRate, channels, 0)
	}

	r := New(buf.SampleRate(), outputRate, channels)

	input := buf.Interleaved()
	output := make([]float32, r.OutputSamplesNeeded(len(input)))

	// Repeat the last frame so the tail interpolates against itself
	input = append(input, input[len(input)-channels:]...)

	n := r.Resample(input, output)
	return audio.NewBufferFromInterleaved(outputRate, channels, output[:n])
}
