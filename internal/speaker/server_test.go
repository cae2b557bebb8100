// ABOUTME: Tests for the speaker server
// ABOUTME: Plays sessions end to end through the remote output backend
package speaker

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
	"github.com/harperreed/wordbuddy/pkg/playback"
	"github.com/harperreed/wordbuddy/pkg/protocol"
)

// localDevice stands in for the speaker's sound card
type localDevice struct {
	mu     sync.Mutex
	endErr error
	played []*audio.Buffer
	closes int
}

func (d *localDevice) NewContext(sampleRate, channels int) (output.Context, error) {
	return &localContext{device: d}, nil
}

func (d *localDevice) buffers() []*audio.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*audio.Buffer(nil), d.played...)
}

type localContext struct {
	device *localDevice
}

func (c *localContext) Suspended() bool                  { return false }
func (c *localContext) Resume(ctx context.Context) error { return nil }

func (c *localContext) NewSource(buf *audio.Buffer) (output.Source, error) {
	return &localSource{device: c.device, buf: buf}, nil
}

func (c *localContext) Close() error {
	c.device.mu.Lock()
	c.device.closes++
	c.device.mu.Unlock()
	return nil
}

type localSource struct {
	device *localDevice
	buf    *audio.Buffer
	ended  func(error)
}

func (s *localSource) Connect() error { return nil }

func (s *localSource) Start(delay time.Duration) error {
	s.device.mu.Lock()
	s.device.played = append(s.device.played, s.buf)
	endErr := s.device.endErr
	s.device.mu.Unlock()

	go s.ended(endErr)
	return nil
}

func (s *localSource) OnEnded(fn func(err error)) { s.ended = fn }

func startSpeaker(t *testing.T, device *localDevice) string {
	t.Helper()
	_, addr := startSpeakerConfig(t, Config{Device: device})
	return addr
}

func startSpeakerConfig(t *testing.T, config Config) (*Server, string) {
	t.Helper()

	config.Name = "Test Speaker"
	srv, err := NewServer(config)
	if err != nil {
		t.Fatalf("failed to create speaker: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.closeConns()
		ts.Close()
	})

	return srv, strings.TrimPrefix(ts.URL, "http://")
}

func newRemotePlayer(t *testing.T, addr string, bitDepth int) *playback.Player {
	t.Helper()

	device, err := output.NewRemote(addr, bitDepth)
	if err != nil {
		t.Fatalf("failed to create remote output: %v", err)
	}
	player, err := playback.New(device)
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	return player
}

// dialSpeaker connects a bare protocol client
func dialSpeaker(t *testing.T, addr string) *protocol.Client {
	t.Helper()

	client, err := protocol.Dial(protocol.Config{SpeakerAddr: addr, ClientID: "test", Name: "test"})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// runSession sends one session and returns the speaker's session/ended
func runSession(t *testing.T, client *protocol.Client, start protocol.SessionStart, pcm []byte) protocol.SessionEnded {
	t.Helper()

	if err := client.Send(protocol.TypeSessionStart, start); err != nil {
		t.Fatalf("failed to send session/start: %v", err)
	}
	if err := client.SendAudio(pcm); err != nil {
		t.Fatalf("failed to send audio: %v", err)
	}
	if err := client.Send(protocol.TypeSessionFlush, protocol.SessionFlush{SessionID: start.SessionID}); err != nil {
		t.Fatalf("failed to send session/flush: %v", err)
	}

	ended, err := client.WaitEnded(start.SessionID)
	if err != nil {
		t.Fatalf("failed waiting for session/ended: %v", err)
	}
	return ended
}

func TestNewServerRequiresDevice(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Fatal("expected error without an output device")
	}
}

func TestNewServerDefaults(t *testing.T) {
	srv, err := NewServer(Config{Device: &localDevice{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.config.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, srv.config.Port)
	}
	if srv.config.Name != "WordBuddy Speaker" {
		t.Errorf("unexpected default name %q", srv.config.Name)
	}
}

func TestRemotePlayback(t *testing.T) {
	device := &localDevice{}
	addr := startSpeaker(t, device)

	player := newRemotePlayer(t, addr, 16)

	payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40, 0x00, 0xC0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := player.Play(ctx, payload); err != nil {
		t.Fatalf("remote playback failed: %v", err)
	}

	played := device.buffers()
	if len(played) != 1 {
		t.Fatalf("expected 1 buffer played on the speaker, got %d", len(played))
	}

	buf := played[0]
	if buf.SampleRate() != 24000 || buf.Channels() != 1 || buf.Frames() != 2 {
		t.Fatalf("unexpected buffer shape: %dHz %dch %d frames", buf.SampleRate(), buf.Channels(), buf.Frames())
	}
	if buf.Data[0][0] != 0.5 || buf.Data[0][1] != -0.5 {
		t.Errorf("expected [0.5 -0.5], got %v", buf.Data[0])
	}
}

func TestRemotePlaybackSessionsInSequence(t *testing.T) {
	device := &localDevice{}
	addr := startSpeaker(t, device)

	player := newRemotePlayer(t, addr, 16)

	payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := player.Play(ctx, payload); err != nil {
			t.Fatalf("playback %d failed: %v", i, err)
		}
	}

	if n := len(device.buffers()); n != 3 {
		t.Errorf("expected 3 sessions played, got %d", n)
	}
}

func TestRemotePlaybackError(t *testing.T) {
	device := &localDevice{endErr: errors.New("speaker underrun")}
	addr := startSpeaker(t, device)

	player := newRemotePlayer(t, addr, 16)

	payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := player.Play(ctx, payload)

	var playbackErr *audio.PlaybackError
	if !errors.As(err, &playbackErr) {
		t.Fatalf("expected PlaybackError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "speaker underrun") {
		t.Errorf("expected speaker error in message, got %q", err.Error())
	}
}

func TestRemoteUnreachable(t *testing.T) {
	player := newRemotePlayer(t, "127.0.0.1:1", 16)

	err := player.Play(context.Background(), base64.StdEncoding.EncodeToString([]byte{0x00, 0x40}))

	var deviceErr *audio.DeviceError
	if !errors.As(err, &deviceErr) {
		t.Fatalf("expected DeviceError, got %T: %v", err, err)
	}
	if deviceErr.Op != "create-context" {
		t.Errorf("expected create-context, got %s", deviceErr.Op)
	}
}

func TestRemotePlayback24Bit(t *testing.T) {
	device := &localDevice{}
	addr := startSpeaker(t, device)
	player := newRemotePlayer(t, addr, 24)

	// 2^-20 is below 16-bit resolution but exact at 24 bits
	const fine = 0.25 + 1.0/(1<<20)
	buf := audio.NewBuffer(24000, 1, 2)
	buf.Data[0][0] = fine
	buf.Data[0][1] = -fine

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := player.PlayBuffer(ctx, buf); err != nil {
		t.Fatalf("remote playback failed: %v", err)
	}

	played := device.buffers()
	if len(played) != 1 {
		t.Fatalf("expected 1 buffer played on the speaker, got %d", len(played))
	}
	got := played[0].Data[0]
	if got[0] != fine || got[1] != -fine {
		t.Errorf("expected [%v %v], got %v", float32(fine), float32(-fine), got)
	}
}

func TestSessionStartRejected(t *testing.T) {
	tests := []struct {
		name  string
		start protocol.SessionStart
		want  string
	}{
		{"huge channel count", protocol.SessionStart{Codec: "pcm", SampleRate: 24000, Channels: 1 << 40, BitDepth: 16}, "channel count"},
		{"too many channels", protocol.SessionStart{Codec: "pcm", SampleRate: 24000, Channels: audio.MaxChannels + 1, BitDepth: 16}, "channel count"},
		{"negative channels", protocol.SessionStart{Codec: "pcm", SampleRate: 24000, Channels: -2, BitDepth: 16}, "channel count"},
		{"sample rate too high", protocol.SessionStart{Codec: "pcm", SampleRate: 10_000_000, Channels: 1, BitDepth: 16}, "sample rate"},
		{"sample rate too low", protocol.SessionStart{Codec: "pcm", SampleRate: 100, Channels: 1, BitDepth: 16}, "sample rate"},
		{"8-bit pcm", protocol.SessionStart{Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 8}, "bit depth"},
		{"unknown codec", protocol.SessionStart{Codec: "aac", SampleRate: 24000, Channels: 1, BitDepth: 16}, "codec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := &localDevice{}
			addr := startSpeaker(t, device)
			client := dialSpeaker(t, addr)

			tt.start.SessionID = "bad"
			ended := runSession(t, client, tt.start, make([]byte, 4096))
			if !strings.Contains(ended.Error, tt.want) {
				t.Errorf("expected error about %s, got %q", tt.want, ended.Error)
			}
			if n := len(device.buffers()); n != 0 {
				t.Errorf("expected nothing played, got %d buffers", n)
			}

			// The connection stays usable for a valid session
			good := protocol.SessionStart{SessionID: "good", Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 16}
			if ended := runSession(t, client, good, []byte{0x00, 0x40}); ended.Error != "" {
				t.Fatalf("valid session failed: %s", ended.Error)
			}
			if n := len(device.buffers()); n != 1 {
				t.Errorf("expected 1 buffer played, got %d", n)
			}
		})
	}
}

func TestSessionByteCap(t *testing.T) {
	device := &localDevice{}
	_, addr := startSpeakerConfig(t, Config{Device: device, MaxSessionBytes: 1024})
	client := dialSpeaker(t, addr)

	start := protocol.SessionStart{SessionID: "big", Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 16}
	ended := runSession(t, client, start, make([]byte, 4096))
	if !strings.Contains(ended.Error, "exceeds 1024 bytes") {
		t.Errorf("expected byte cap error, got %q", ended.Error)
	}
	if n := len(device.buffers()); n != 0 {
		t.Errorf("expected nothing played, got %d buffers", n)
	}

	start.SessionID = "small"
	if ended := runSession(t, client, start, make([]byte, 1024)); ended.Error != "" {
		t.Fatalf("session at the cap failed: %s", ended.Error)
	}
}

func TestOversizedMessageClosesConnection(t *testing.T) {
	addr := startSpeaker(t, &localDevice{})
	client := dialSpeaker(t, addr)

	// A frame larger than MaxMessageSize fails the read limit and the
	// speaker drops the connection
	start := protocol.SessionStart{SessionID: "s", Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 16}
	if err := client.Send(protocol.TypeSessionStart, start); err != nil {
		t.Fatalf("failed to send session/start: %v", err)
	}
	if err := client.Send(protocol.TypeSessionFlush, protocol.SessionFlush{
		SessionID: strings.Repeat("x", MaxMessageSize+1),
	}); err != nil {
		t.Fatalf("failed to send flush: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := client.WaitEnded("s")
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected the connection to be closed")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("speaker kept an oversized message")
	}
}

func TestShutdownClosesIdleConnections(t *testing.T) {
	srv, addr := startSpeakerConfig(t, Config{Device: &localDevice{}})
	dialSpeaker(t, addr)
	dialSpeaker(t, addr)

	done := make(chan struct{})
	go func() {
		srv.closeConns()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown blocked on idle connections")
	}

	srv.connsMu.Lock()
	open := len(srv.conns)
	srv.connsMu.Unlock()
	if open != 0 {
		t.Errorf("expected no tracked connections, got %d", open)
	}
}
