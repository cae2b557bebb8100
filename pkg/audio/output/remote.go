// ABOUTME: Remote speaker audio output over WebSocket
// ABOUTME: Streams each playback session to a WordBuddy speaker and waits for its end report
package output

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wordbuddy/internal/version"
	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/encode"
	"github.com/harperreed/wordbuddy/pkg/protocol"
)

// Remote output device backed by a speaker at addr
type Remote struct {
	addr     string
	bitDepth int
}

// NewRemote creates a remote speaker output that sends PCM of the given
// bit depth (16 or 24; 0 means 16).
func NewRemote(addr string, bitDepth int) (Device, error) {
	if bitDepth == 0 {
		bitDepth = audio.DefaultBitDepth
	}
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported speaker bit depth: %d (supported: 16, 24)", bitDepth)
	}
	return &Remote{addr: addr, bitDepth: bitDepth}, nil
}

// NewContext opens a connection to the speaker for one session
func (r *Remote) NewContext(sampleRate, channels int) (Context, error) {
	client, err := protocol.Dial(protocol.Config{
		SpeakerAddr: r.addr,
		ClientID:    uuid.New().String(),
		Name:        version.Product,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to speaker %s: %w", r.addr, err)
	}

	return &remoteContext{
		client:     client,
		sessionID:  uuid.New().String(),
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   r.bitDepth,
	}, nil
}

type remoteContext struct {
	mu         sync.Mutex
	client     *protocol.Client
	sessionID  string
	sampleRate int
	channels   int
	bitDepth   int
	closed     bool
}

func (c *remoteContext) Suspended() bool {
	return false
}

func (c *remoteContext) Resume(ctx context.Context) error {
	return ctx.Err()
}

// NewSource encodes the buffer as PCM at the wire bit depth
func (c *remoteContext) NewSource(buf *audio.Buffer) (Source, error) {
	if err := checkFormat(buf, c.sampleRate, c.channels); err != nil {
		return nil, err
	}

	encoder, err := encode.NewPCM(c.format())
	if err != nil {
		return nil, err
	}
	defer encoder.Close()

	pcm, err := encoder.Encode(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio: %w", err)
	}
	return &remoteSource{ctx: c, pcm: pcm}, nil
}

// format is the wire format announced in session/start
func (c *remoteContext) format() audio.Format {
	return audio.Format{
		Codec:      "pcm",
		SampleRate: c.sampleRate,
		Channels:   c.channels,
		BitDepth:   c.bitDepth,
	}
}

// Close ends the connection to the speaker
func (c *remoteContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

type remoteSource struct {
	ctx       *remoteContext
	pcm       []byte
	ended     endedNotifier
	connected bool
}

// Connect announces the session format to the speaker
func (s *remoteSource) Connect() error {
	c := s.ctx
	format := c.format()
	start := protocol.SessionStart{
		SessionID:  c.sessionID,
		Codec:      format.Codec,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
	}
	if err := c.client.Send(protocol.TypeSessionStart, start); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	s.connected = true
	return nil
}

// Start streams the audio and waits for the speaker in the background
func (s *remoteSource) Start(delay time.Duration) error {
	if !s.connected {
		return errors.New("source not connected")
	}

	waitDelay(delay)

	c := s.ctx
	if err := c.client.SendAudio(s.pcm); err != nil {
		return err
	}
	if err := c.client.Send(protocol.TypeSessionFlush, protocol.SessionFlush{SessionID: c.sessionID}); err != nil {
		return fmt.Errorf("failed to flush session: %w", err)
	}

	go func() {
		ended, err := c.client.WaitEnded(c.sessionID)
		if err != nil {
			s.ended.fire(fmt.Errorf("speaker connection lost: %w", err))
			return
		}
		if ended.Error != "" {
			s.ended.fire(errors.New(ended.Error))
			return
		}
		s.ended.fire(nil)
	}()

	return nil
}

func (s *remoteSource) OnEnded(fn func(err error)) {
	s.ended.set(fn)
}
