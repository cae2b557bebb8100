//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using a PortAudio default stream per session
package output

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/harperreed/wordbuddy/pkg/audio"
)

// PortAudio output device
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Device {
	return &PortAudio{}
}

// NewContext initializes PortAudio. Initialization is reference counted by
// the library, so every context pairs it with one Terminate.
func (p *PortAudio) NewContext(sampleRate, channels int) (Context, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	return &portAudioContext{
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

type portAudioContext struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	sampleRate int
	channels   int
	closed     bool
}

func (c *portAudioContext) Suspended() bool {
	return false
}

func (c *portAudioContext) Resume(ctx context.Context) error {
	return ctx.Err()
}

func (c *portAudioContext) NewSource(buf *audio.Buffer) (Source, error) {
	if err := checkFormat(buf, c.sampleRate, c.channels); err != nil {
		return nil, err
	}
	return &portAudioSource{ctx: c, cursor: newFrameCursor(buf)}, nil
}

// Close stops the stream and terminates PortAudio
func (c *portAudioContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.stream != nil {
		if err := c.stream.Stop(); err != nil {
			_ = c.stream.Close()
			_ = portaudio.Terminate()
			return err
		}
		if err := c.stream.Close(); err != nil {
			_ = portaudio.Terminate()
			return err
		}
	}
	return portaudio.Terminate()
}

type portAudioSource struct {
	ctx    *portAudioContext
	cursor *frameCursor
	ended  endedNotifier
}

// Connect opens the default output stream fed from the source buffer
func (s *portAudioSource) Connect() error {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("context closed")
	}

	stream, err := portaudio.OpenDefaultStream(0, c.channels, float64(c.sampleRate), 0, func(out []float32) {
		n, done := s.cursor.read(out)
		if done && n == 0 {
			s.ended.fireAsync(nil)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	c.stream = stream
	return nil
}

// Start starts the stream
func (s *portAudioSource) Start(delay time.Duration) error {
	s.ctx.mu.Lock()
	stream := s.ctx.stream
	s.ctx.mu.Unlock()

	if stream == nil {
		return errors.New("source not connected")
	}

	waitDelay(delay)
	return stream.Start()
}

func (s *portAudioSource) OnEnded(fn func(err error)) {
	s.ended.set(fn)
}
