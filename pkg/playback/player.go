// ABOUTME: Speech playback pipeline
// ABOUTME: Decodes base64 speech payloads and plays them to completion on an output device
package playback

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/decode"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
)

// Player plays speech payloads through an output device. A Player holds no
// per-playback state, so concurrent calls each get their own output context
// and may overlap audibly.
type Player struct {
	device  output.Device
	format  audio.Format
	decoder decode.Decoder
}

// Option configures a Player
type Option func(*Player)

// WithFormat sets the payload format (default 24kHz mono 16-bit PCM)
func WithFormat(format audio.Format) Option {
	return func(p *Player) {
		p.format = format.WithDefaults()
	}
}

// WithDecoder overrides the payload decoder chosen from the format
func WithDecoder(decoder decode.Decoder) Option {
	return func(p *Player) {
		p.decoder = decoder
	}
}

// New creates a player for device
func New(device output.Device, opts ...Option) (*Player, error) {
	p := &Player{
		device: device,
		format: audio.DefaultFormat(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.decoder == nil {
		decoder, err := decode.New(p.format)
		if err != nil {
			return nil, err
		}
		p.decoder = decoder
	}

	return p, nil
}

// Format returns the payload format the player decodes
func (p *Player) Format() audio.Format {
	return p.format
}

// Play decodes a base64 payload and plays it to completion.
// Errors are *audio.DecodeError, *audio.DeviceError, *audio.PlaybackError,
// or the context error if ctx is cancelled while audio is playing.
func (p *Player) Play(ctx context.Context, encoded string) error {
	data, err := decode.DecodeBase64(encoded)
	if err != nil {
		return err
	}

	buf, err := p.decoder.Decode(data)
	if err != nil {
		var decodeErr *audio.DecodeError
		if !errors.As(err, &decodeErr) {
			err = &audio.DecodeError{Op: p.format.Codec, Err: err}
		}
		return err
	}

	return p.PlayBuffer(ctx, buf)
}

// PlayBuffer plays a decoded buffer to completion. The output context is
// released exactly once on every path before PlayBuffer returns.
func (p *Player) PlayBuffer(ctx context.Context, buf *audio.Buffer) error {
	out, err := p.device.NewContext(buf.SampleRate(), buf.Channels())
	if err != nil {
		return &audio.DeviceError{Op: "create-context", Err: err}
	}

	s := newSession(out)
	defer s.release()

	if out.Suspended() {
		if err := out.Resume(ctx); err != nil {
			return &audio.DeviceError{Op: "resume", Err: err}
		}
	}

	if buf.Frames() == 0 {
		log.Printf("Session %s: empty buffer, nothing to play", s.id)
		return nil
	}

	src, err := out.NewSource(buf)
	if err != nil {
		return &audio.DeviceError{Op: "create-source", Err: err}
	}

	if err := src.Connect(); err != nil {
		return &audio.DeviceError{Op: "connect", Err: err}
	}

	src.OnEnded(s.signal)

	if err := src.Start(0); err != nil {
		return &audio.DeviceError{Op: "start", Err: err}
	}

	log.Printf("Session %s: playing %d frames at %dHz", s.id, buf.Frames(), buf.SampleRate())

	select {
	case err := <-s.done:
		if err != nil {
			return &audio.PlaybackError{Session: s.id, Err: err}
		}
		s.release()
		log.Printf("Session %s: playback complete", s.id)
		return nil
	case <-ctx.Done():
		log.Printf("Session %s: cancelled", s.id)
		return ctx.Err()
	}
}

// session is one binding of a buffer to an output context
type session struct {
	id         string
	out        output.Context
	done       chan error
	signalOnce sync.Once
	closeOnce  sync.Once
}

func newSession(out output.Context) *session {
	return &session{
		id:   uuid.New().String(),
		out:  out,
		done: make(chan error, 1),
	}
}

// signal records the end of playback; later calls are ignored
func (s *session) signal(err error) {
	s.signalOnce.Do(func() {
		s.done <- err
	})
}

// release closes the output context once
func (s *session) release() {
	s.closeOnce.Do(func() {
		if err := s.out.Close(); err != nil {
			log.Printf("Session %s: failed to close output: %v", s.id, err)
		}
	})
}
