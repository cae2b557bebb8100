// ABOUTME: Mock output device for playback tests
// ABOUTME: Records context, source and close activity and injects failures per step
package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
)

var errInjected = errors.New("injected failure")

type mockDevice struct {
	mu        sync.Mutex
	failAt    string
	suspended bool
	endErr    error
	endTwice  bool
	neverEnd  bool
	closeErr  error
	contexts  []*mockContext
}

func (d *mockDevice) NewContext(sampleRate, channels int) (output.Context, error) {
	if d.failAt == "create-context" {
		return nil, errInjected
	}

	c := &mockContext{device: d, sampleRate: sampleRate, channels: channels, suspended: d.suspended}

	d.mu.Lock()
	d.contexts = append(d.contexts, c)
	d.mu.Unlock()
	return c, nil
}

func (d *mockDevice) allContexts() []*mockContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*mockContext(nil), d.contexts...)
}

type mockContext struct {
	device     *mockDevice
	sampleRate int
	channels   int
	suspended  bool
	resumed    bool
	closes     atomic.Int32
	source     *mockSource
}

func (c *mockContext) Suspended() bool { return c.suspended }

func (c *mockContext) Resume(ctx context.Context) error {
	if c.device.failAt == "resume" {
		return errInjected
	}
	c.resumed = true
	c.suspended = false
	return nil
}

func (c *mockContext) NewSource(buf *audio.Buffer) (output.Source, error) {
	if c.device.failAt == "create-source" {
		return nil, errInjected
	}
	c.source = &mockSource{ctx: c, buf: buf}
	return c.source, nil
}

func (c *mockContext) Close() error {
	c.closes.Add(1)
	return c.device.closeErr
}

type mockSource struct {
	ctx       *mockContext
	buf       *audio.Buffer
	connected bool
	started   bool
	delay     time.Duration
	ended     func(error)
}

func (s *mockSource) Connect() error {
	if s.ctx.device.failAt == "connect" {
		return errInjected
	}
	s.connected = true
	return nil
}

func (s *mockSource) Start(delay time.Duration) error {
	if s.ctx.device.failAt == "start" {
		return errInjected
	}
	s.started = true
	s.delay = delay

	d := s.ctx.device
	if d.neverEnd {
		return nil
	}

	ended := s.ended
	go func() {
		time.Sleep(time.Millisecond)
		ended(d.endErr)
		if d.endTwice {
			ended(errors.New("late duplicate end"))
		}
	}()
	return nil
}

func (s *mockSource) OnEnded(fn func(err error)) {
	s.ended = fn
}
