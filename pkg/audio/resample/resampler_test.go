// ABOUTME: Tests for the linear resampler
// ABOUTME: Tests streaming and whole-buffer rate conversion
package resample

import (
	"math"
	"testing"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

func TestResampleIdentity(t *testing.T) {
	r := New(24000, 24000, 1)

	input := []float32{0, 0.25, 0.5, 0.75, 1}
	output := make([]float32, len(input))

	n := r.Resample(input, output)
	// The final frame has no successor to interpolate with
	if n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}
	for i := 0; i < n; i++ {
		if output[i] != input[i] {
			t.Errorf("sample %d: expected %f, got %f", i, input[i], output[i])
		}
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	r := New(24000, 48000, 1)

	input := []float32{0, 1, 0}
	output := make([]float32, 8)

	n := r.Resample(input, output)
	if n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}

	want := []float32{0, 0.5, 1, 0.5}
	for i := range want {
		if math.Abs(float64(output[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], output[i])
		}
	}
}

func TestOutputSamplesNeeded(t *testing.T) {
	r := New(24000, 48000, 2)
	if got := r.OutputSamplesNeeded(200); got != 400 {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestBufferSameRate(t *testing.T) {
	buf := audio.NewBuffer(24000, 1, 3)
	if Buffer(buf, 24000) != buf {
		t.Error("expected same buffer when rates match")
	}
}

func TestBufferUpsample(t *testing.T) {
	buf := audio.NewBuffer(24000, 2, 3)
	buf.Data[0] = []float32{0, 1, 0}
	buf.Data[1] = []float32{0, -1, 0}

	out := Buffer(buf, 48000)
	if out.SampleRate() != 48000 {
		t.Errorf("expected 48000Hz, got %d", out.SampleRate())
	}
	if out.Frames() != 6 {
		t.Fatalf("expected 6 frames, got %d", out.Frames())
	}
	if out.Channels() != 2 {
		t.Fatalf("expected 2 channels, got %d", out.Channels())
	}

	want := []float32{0, 0.5, 1, 0.5, 0, 0}
	for i := range want {
		if math.Abs(float64(out.Data[0][i]-want[i])) > 1e-6 {
			t.Errorf("left %d: expected %f, got %f", i, want[i], out.Data[0][i])
		}
		if math.Abs(float64(out.Data[1][i]+want[i])) > 1e-6 {
			t.Errorf("right %d: expected %f, got %f", i, -want[i], out.Data[1][i])
		}
	}
}

func TestBufferDownsample(t *testing.T) {
	buf := audio.NewBuffer(48000, 1, 5)
	buf.Data[0] = []float32{0, 0.5, 1, 0.5, 0}

	out := Buffer(buf, 24000)
	if out.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", out.Frames())
	}

	want := []float32{0, 1}
	for i := range want {
		if math.Abs(float64(out.Data[0][i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], out.Data[0][i])
		}
	}
}

func TestBufferSingleFrame(t *testing.T) {
	buf := audio.NewBuffer(24000, 1, 1)
	buf.Data[0][0] = 0.5

	out := Buffer(buf, 48000)
	if out.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", out.Frames())
	}
	for i, s := range out.Data[0] {
		if s != 0.5 {
			t.Errorf("sample %d: expected held 0.5, got %f", i, s)
		}
	}
}

func TestBufferEmpty(t *testing.T) {
	out := Buffer(audio.NewBuffer(24000, 1, 0), 48000)
	if out.Frames() != 0 {
		t.Errorf("expected 0 frames, got %d", out.Frames())
	}
}
