// ABOUTME: Oto-based audio output implementation
// ABOUTME: Shares oto's single process context, suspending it while no session is active
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/encode"
	"github.com/harperreed/wordbuddy/pkg/audio/resample"
)

// How often the ended watcher polls the oto player
const otoPollInterval = 10 * time.Millisecond

// Oto output device. oto allows only one context per process, so every
// session shares it; sessions at another rate are resampled.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	suspended  bool
	active     int
}

// NewOto creates a new Oto output
func NewOto() Device {
	return &Oto{}
}

// NewContext returns a session on the shared oto context, creating it on first use
func (o *Oto) NewContext(sampleRate, channels int) (Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan

		o.otoCtx = ctx
		o.sampleRate = sampleRate
		o.channels = channels

		log.Printf("Audio output initialized: %dHz, %d channels (oto)", sampleRate, channels)
	}

	if channels != o.channels {
		return nil, fmt.Errorf("oto context is fixed at %d channels, requested %d", o.channels, channels)
	}

	if sampleRate != o.sampleRate {
		log.Printf("oto context runs at %dHz, resampling %dHz session", o.sampleRate, sampleRate)
	}

	o.active++
	return &otoContext{device: o}, nil
}

// isSuspended reports the shared context state
func (o *Oto) isSuspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

// resume wakes the shared context
func (o *Oto) resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.suspended {
		return nil
	}
	if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}
	o.suspended = false
	return nil
}

// release drops one session, suspending the context when none remain
func (o *Oto) release() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.active--
	if o.active > 0 || o.suspended {
		return nil
	}
	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	o.suspended = true
	return nil
}

type otoContext struct {
	device *Oto
	mu     sync.Mutex
	player *oto.Player
	stop   chan struct{}
	closed bool
}

// Suspended reports whether the shared context is suspended
func (c *otoContext) Suspended() bool {
	return c.device.isSuspended()
}

// Resume resumes the shared context
func (c *otoContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.device.resume()
}

// NewSource encodes the buffer for oto and creates a player for it
func (c *otoContext) NewSource(buf *audio.Buffer) (Source, error) {
	if buf.Channels() != c.device.channels {
		return nil, fmt.Errorf("buffer has %d channels, context expects %d", buf.Channels(), c.device.channels)
	}

	buf = resample.Buffer(buf, c.device.sampleRate)
	data := encode.EncodeFloat32LE(buf)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("context closed")
	}

	c.player = c.device.otoCtx.NewPlayer(bytes.NewReader(data))
	c.stop = make(chan struct{})

	return &otoSource{ctx: c, player: c.player, stop: c.stop}, nil
}

// Close stops the player and releases the shared context
func (c *otoContext) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	player, stop := c.player, c.stop
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if player != nil {
		if err := player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
	}
	return c.device.release()
}

type otoSource struct {
	ctx       *otoContext
	player    *oto.Player
	stop      chan struct{}
	ended     endedNotifier
	connected bool
}

// Connect is implicit for oto players; it only checks the context is live
func (s *otoSource) Connect() error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if s.ctx.closed {
		return errors.New("context closed")
	}
	s.connected = true
	return nil
}

// Start plays the buffer and watches for the end of playback
func (s *otoSource) Start(delay time.Duration) error {
	if !s.connected {
		return errors.New("source not connected")
	}

	waitDelay(delay)
	s.player.Play()

	go s.watch()
	return nil
}

// OnEnded registers the end-of-playback callback
func (s *otoSource) OnEnded(fn func(err error)) {
	s.ended.set(fn)
}

// watch polls the player until it drains or the context closes
func (s *otoSource) watch() {
	ticker := time.NewTicker(otoPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.player.IsPlaying() {
				continue
			}
			s.ended.fire(s.player.Err())
			return
		}
	}
}
