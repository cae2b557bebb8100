// ABOUTME: Audio output capability interfaces
// ABOUTME: Device, Context and Source model the playback device used by the player
package output

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harperreed/wordbuddy/pkg/audio"
)

// Device creates independent output contexts
type Device interface {
	// NewContext acquires an output context configured for the given format
	NewContext(sampleRate, channels int) (Context, error)
}

// Context is a single acquired output. It owns the device handle until Close.
type Context interface {
	// Suspended reports whether the context must be resumed before use
	Suspended() bool

	// Resume wakes a suspended context
	Resume(ctx context.Context) error

	// NewSource creates a device buffer, writes the channel data and binds it to a source
	NewSource(buf *audio.Buffer) (Source, error)

	// Close releases the context and everything bound to it
	Close() error
}

// Source plays one bound buffer
type Source interface {
	// Connect routes the source to the context destination
	Connect() error

	// Start begins playback after delay
	Start(delay time.Duration) error

	// OnEnded registers the end-of-playback callback. err is non-nil when
	// playback stopped because of a device failure.
	OnEnded(fn func(err error))
}

// Config selects and configures a backend
type Config struct {
	// SpeakerAddr is the host:port of a remote speaker (remote backend only)
	SpeakerAddr string

	// SpeakerBitDepth is the PCM bit depth sent to the speaker (16 or 24)
	SpeakerBitDepth int
}

// Backends lists the names accepted by New
var Backends = []string{"malgo", "oto", "portaudio", "remote"}

// New returns the output backend with the given name
func New(name string, config Config) (Device, error) {
	switch name {
	case "", "malgo":
		return NewMalgo(), nil
	case "oto":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "remote":
		if config.SpeakerAddr == "" {
			return nil, fmt.Errorf("remote output requires a speaker address")
		}
		return NewRemote(config.SpeakerAddr, config.SpeakerBitDepth)
	default:
		return nil, fmt.Errorf("unknown output backend: %s", name)
	}
}

// endedNotifier delivers the ended callback at most once
type endedNotifier struct {
	mu    sync.Mutex
	fn    func(error)
	fired atomic.Bool
}

func (n *endedNotifier) set(fn func(error)) {
	n.mu.Lock()
	n.fn = fn
	n.mu.Unlock()
}

func (n *endedNotifier) fire(err error) {
	if !n.fired.CompareAndSwap(false, true) {
		return
	}
	n.mu.Lock()
	fn := n.fn
	n.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// fireAsync fires from a goroutine so audio callbacks never block
func (n *endedNotifier) fireAsync(err error) {
	if n.fired.Load() {
		return
	}
	go n.fire(err)
}

// frameCursor feeds interleaved samples to callback-driven devices
type frameCursor struct {
	mu      sync.Mutex
	samples []float32
	pos     int
}

func newFrameCursor(buf *audio.Buffer) *frameCursor {
	return &frameCursor{samples: buf.Interleaved()}
}

// read copies the next samples into out, zero-filling any remainder.
// done reports that every sample has been handed out.
func (c *frameCursor) read(out []float32) (n int, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n = copy(out, c.samples[c.pos:])
	c.pos += n
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return n, c.pos >= len(c.samples)
}

func (c *frameCursor) finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos >= len(c.samples)
}

// checkFormat verifies a buffer matches the context it is bound to
func checkFormat(buf *audio.Buffer, sampleRate, channels int) error {
	if buf.Channels() != channels {
		return fmt.Errorf("buffer has %d channels, context expects %d", buf.Channels(), channels)
	}
	if buf.SampleRate() != sampleRate {
		return fmt.Errorf("buffer is %dHz, context runs at %dHz", buf.SampleRate(), sampleRate)
	}
	return nil
}

// waitDelay blocks for a scheduled start delay
func waitDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	<-timer.C
}
