// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with one context and device per playback session
package output

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/harperreed/wordbuddy/pkg/audio"
)

// Malgo output device using malgo/miniaudio
type Malgo struct{}

// NewMalgo creates a new Malgo output
func NewMalgo() Device {
	return &Malgo{}
}

// NewContext initializes a dedicated miniaudio context
func (m *Malgo) NewContext(sampleRate, channels int) (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	return &malgoContext{
		malgoCtx:   ctx,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

type malgoContext struct {
	mu         sync.Mutex
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	closed     bool
}

// Suspended is always false: miniaudio has no autoplay restrictions
func (c *malgoContext) Suspended() bool {
	return false
}

// Resume is a no-op for miniaudio
func (c *malgoContext) Resume(ctx context.Context) error {
	return ctx.Err()
}

// NewSource binds a buffer to a new source
func (c *malgoContext) NewSource(buf *audio.Buffer) (Source, error) {
	if err := checkFormat(buf, c.sampleRate, c.channels); err != nil {
		return nil, err
	}

	return &malgoSource{
		ctx:    c,
		cursor: newFrameCursor(buf),
	}, nil
}

// Close stops the device and frees the miniaudio context
func (c *malgoContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.device != nil {
		if err := c.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		c.device.Uninit()
		c.device = nil
	}

	err := c.malgoCtx.Uninit()
	c.malgoCtx.Free()
	if err != nil {
		return fmt.Errorf("malgo context uninit: %w", err)
	}
	return nil
}

type malgoSource struct {
	ctx    *malgoContext
	cursor *frameCursor
	ended  endedNotifier
	device *malgo.Device

	// samples is reused across periods; only the audio thread touches it
	samples []float32
}

// Connect initializes a playback device fed from the source buffer
func (s *malgoSource) Connect() error {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("context closed")
	}
	if c.device != nil {
		return errors.New("context already has a connected source")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(c.channels)
	deviceConfig.SampleRate = uint32(c.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: s.dataCallback,
		Stop: s.stopCallback,
	}

	device, err := malgo.InitDevice(c.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	c.device = device
	s.device = device
	return nil
}

// Start starts the playback device
func (s *malgoSource) Start(delay time.Duration) error {
	if s.device == nil {
		return errors.New("source not connected")
	}

	waitDelay(delay)

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}

	log.Printf("Audio output started: %dHz, %d channels (malgo/F32)", s.ctx.sampleRate, s.ctx.channels)
	return nil
}

// OnEnded registers the end-of-playback callback
func (s *malgoSource) OnEnded(fn func(err error)) {
	s.ended.set(fn)
}

// dataCallback is called by malgo to fill the audio output buffer
func (s *malgoSource) dataCallback(pOutput, _ []byte, frameCount uint32) {
	samples := s.period(int(frameCount) * s.ctx.channels)

	n, done := s.cursor.read(samples)
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(sample))
	}

	// The period that drained the cursor is still queued; end on the next one
	if done && n == 0 {
		s.ended.fireAsync(nil)
	}
}

// period returns the sample scratch buffer sized for n samples
func (s *malgoSource) period(n int) []float32 {
	if cap(s.samples) < n {
		s.samples = make([]float32, n)
	}
	return s.samples[:n]
}

// stopCallback fires when the device stops for any reason
func (s *malgoSource) stopCallback() {
	if !s.cursor.finished() {
		s.ended.fireAsync(errors.New("playback device stopped before end of buffer"))
	}
}
