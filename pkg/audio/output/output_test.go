// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend selection, interface conformance and shared helpers
package output

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

func TestBackendsImplementDevice(t *testing.T) {
	var _ Device = (*Malgo)(nil)
	var _ Device = (*Oto)(nil)
	var _ Device = (*PortAudio)(nil)
	var _ Device = (*Remote)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"", Config{}, false},
		{"malgo", Config{}, false},
		{"oto", Config{}, false},
		{"portaudio", Config{}, false},
		{"remote", Config{SpeakerAddr: "localhost:8930"}, false},
		{"remote", Config{}, true},
		{"remote", Config{SpeakerAddr: "localhost:8930", SpeakerBitDepth: 24}, false},
		{"remote", Config{SpeakerAddr: "localhost:8930", SpeakerBitDepth: 32}, true},
		{"webaudio", Config{}, true},
	}

	for _, tt := range tests {
		dev, err := New(tt.name, tt.config)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.name, err)
		}
		if dev == nil {
			t.Errorf("%q: expected device", tt.name)
		}
	}
}

func TestEndedNotifierFiresOnce(t *testing.T) {
	var n endedNotifier
	var calls atomic.Int32

	n.set(func(err error) {
		calls.Add(1)
	})

	first := errors.New("first")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 0 {
				n.fire(first)
			} else {
				n.fire(nil)
			}
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls.Load())
	}
}

func TestEndedNotifierWithoutCallback(t *testing.T) {
	var n endedNotifier
	n.fire(nil)
	n.fireAsync(nil)
}

func TestFrameCursor(t *testing.T) {
	buf := audio.NewBuffer(24000, 2, 3)
	buf.Data[0] = []float32{1, 2, 3}
	buf.Data[1] = []float32{-1, -2, -3}

	c := newFrameCursor(buf)

	out := make([]float32, 4)
	n, done := c.read(out)
	if n != 4 || done {
		t.Fatalf("expected 4 samples and not done, got %d done=%v", n, done)
	}
	if out[0] != 1 || out[1] != -1 || out[2] != 2 || out[3] != -2 {
		t.Errorf("unexpected interleaving: %v", out)
	}

	n, done = c.read(out)
	if n != 2 || !done {
		t.Fatalf("expected 2 samples and done, got %d done=%v", n, done)
	}
	if out[2] != 0 || out[3] != 0 {
		t.Errorf("expected zero fill after end, got %v", out)
	}

	n, done = c.read(out)
	if n != 0 || !done {
		t.Errorf("expected drained cursor, got %d done=%v", n, done)
	}
	if !c.finished() {
		t.Error("expected cursor to be finished")
	}
}

func TestCheckFormat(t *testing.T) {
	buf := audio.NewBuffer(24000, 1, 1)

	if err := checkFormat(buf, 24000, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkFormat(buf, 48000, 1); err == nil {
		t.Error("expected sample rate mismatch error")
	}
	if err := checkFormat(buf, 24000, 2); err == nil {
		t.Error("expected channel mismatch error")
	}
}

func TestMalgoCallbackReusesPeriodBuffer(t *testing.T) {
	buf := audio.NewBuffer(48000, 2, 3)
	buf.Data[0] = []float32{0.1, 0.2, 0.3}
	buf.Data[1] = []float32{-0.1, -0.2, -0.3}

	src := &malgoSource{
		ctx:    &malgoContext{sampleRate: 48000, channels: 2},
		cursor: newFrameCursor(buf),
	}

	out := make([]byte, 2*2*4)
	src.dataCallback(out, nil, 2)
	first := &src.samples[0]

	want := []float32{0.1, -0.1, 0.2, -0.2}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:])); got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}

	src.dataCallback(out, nil, 2)
	if &src.samples[0] != first {
		t.Error("expected the period buffer to be reused")
	}

	// The tail of the second period is silence, not stale samples
	want = []float32{0.3, -0.3, 0, 0}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:])); got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}

	src.ended.fire(nil)
	if allocs := testing.AllocsPerRun(10, func() { src.dataCallback(out, nil, 2) }); allocs != 0 {
		t.Errorf("expected no allocations per period, got %v", allocs)
	}
}
