// ABOUTME: WordBuddy speaker server
// ABOUTME: Accepts speech sessions over WebSocket and plays them on a local output device
package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/harperreed/wordbuddy/internal/discovery"
	"github.com/harperreed/wordbuddy/internal/version"
	"github.com/harperreed/wordbuddy/pkg/audio"
	"github.com/harperreed/wordbuddy/pkg/audio/decode"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
	"github.com/harperreed/wordbuddy/pkg/playback"
	"github.com/harperreed/wordbuddy/pkg/protocol"
)

// DefaultPort is the port speakers listen on
const DefaultPort = 8930

// Session limits
const (
	// DefaultMaxSessionBytes caps the audio buffered for one session
	DefaultMaxSessionBytes = 16 << 20

	// MaxMessageSize caps a single WebSocket message
	MaxMessageSize = 64 << 10

	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// Config configures a speaker
type Config struct {
	// Port to listen on (default: 8930)
	Port int

	// Name of the speaker for identification
	Name string

	// Device plays the received audio (required)
	Device output.Device

	// EnableMDNS enables mDNS service advertisement
	EnableMDNS bool

	// MaxSessionBytes caps the audio of one session (default: 16 MiB)
	MaxSessionBytes int
}

// Server receives playback sessions from WordBuddy apps
type Server struct {
	config    Config
	speakerID string
	player    *playback.Player

	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux

	mdnsManager *discovery.Manager

	// ctx is cancelled on shutdown so in-flight sessions stop playing
	ctx    context.Context
	cancel context.CancelFunc

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}
	closing bool
}

// session collects the audio of one session/start..session/flush span.
// A session with err set drops its audio and reports err on flush.
type session struct {
	start  protocol.SessionStart
	format audio.Format
	pcm    bytes.Buffer
	err    error
}

// NewServer creates a speaker server
func NewServer(config Config) (*Server, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = version.Product + " Speaker"
	}
	if config.Device == nil {
		return nil, fmt.Errorf("output device is required")
	}
	if config.MaxSessionBytes <= 0 {
		config.MaxSessionBytes = DefaultMaxSessionBytes
	}

	player, err := playback.New(config.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:    config,
		speakerID: uuid.New().String(),
		player:    player,
		mux:       http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Speakers are local network devices
				return true
			},
		},
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
		conns:    make(map[*websocket.Conn]struct{}),
	}
	s.mux.HandleFunc(protocol.SpeakPath, s.handleWebSocket)

	return s, nil
}

// Handler returns the HTTP handler serving the speaker endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called
func (s *Server) Start() error {
	log.Printf("Speaker starting: %s (ID: %s)", s.config.Name, s.speakerID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Speaker listening on %s%s", addr, protocol.SpeakPath)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-s.stopChan:
		log.Printf("Speaker shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		s.cancel()
		return err
	}

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.closeConns()
	log.Printf("Speaker stopped cleanly")

	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// track registers a connection so shutdown can close it. It returns false
// once the server is closing.
func (s *Server) track(conn *websocket.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	s.wg.Done()
}

// closeConns closes hijacked connections, which http.Server.Shutdown
// leaves open, and waits for their handlers to return
func (s *Server) closeConns() {
	s.connsMu.Lock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
}

// handleWebSocket runs one client connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	conn.SetReadLimit(MaxMessageSize)

	client, err := s.handshake(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		return
	}
	log.Printf("Client connected: %s (%s)", client.Name, client.ClientID)

	var current *session
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Client %s read error: %v", client.ClientID, err)
			}
			log.Printf("Client disconnected: %s", client.ClientID)
			return
		}

		if msgType == websocket.BinaryMessage {
			if current == nil {
				log.Printf("Dropping %d bytes of audio outside a session", len(data))
				continue
			}
			if current.err != nil {
				continue
			}
			if current.pcm.Len()+len(data) > s.config.MaxSessionBytes {
				current.err = fmt.Errorf("session audio exceeds %d bytes", s.config.MaxSessionBytes)
				current.pcm = bytes.Buffer{}
				log.Printf("Session %s: %v", current.start.SessionID, current.err)
				continue
			}
			current.pcm.Write(data)
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeSessionStart:
			var start protocol.SessionStart
			if err := msg.Decode(&start); err != nil {
				log.Printf("Invalid session/start: %v", err)
				continue
			}
			current = &session{start: start, format: sessionFormat(start)}
			if err := validateFormat(current.format); err != nil {
				current.err = err
				log.Printf("Session %s rejected: %v", start.SessionID, err)
				continue
			}
			log.Printf("Session %s: %s %dHz/%dbit/%dch", start.SessionID, current.format.Codec,
				current.format.SampleRate, current.format.BitDepth, current.format.Channels)

		case protocol.TypeSessionFlush:
			var flush protocol.SessionFlush
			if err := msg.Decode(&flush); err != nil {
				log.Printf("Invalid session/flush: %v", err)
				continue
			}
			if current == nil || current.start.SessionID != flush.SessionID {
				log.Printf("Flush for unknown session %s", flush.SessionID)
				continue
			}

			ended := protocol.SessionEnded{SessionID: flush.SessionID}
			err := current.err
			if err == nil {
				err = s.play(current)
			}
			if err != nil {
				log.Printf("Session %s: %v", flush.SessionID, err)
				ended.Error = err.Error()
			}
			current = nil

			msg, err := protocol.NewMessage(protocol.TypeSessionEnded, ended)
			if err != nil {
				log.Printf("Failed to build session/ended: %v", err)
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Failed to send session/ended: %v", err)
				return
			}

		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// handshake sends speaker/hello and reads client/hello
func (s *Server) handshake(conn *websocket.Conn) (protocol.ClientHello, error) {
	hello := protocol.SpeakerHello{
		Name: s.config.Name,
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}
	msg, err := protocol.NewMessage(protocol.TypeSpeakerHello, hello)
	if err != nil {
		return protocol.ClientHello{}, err
	}
	if err := conn.WriteJSON(msg); err != nil {
		return protocol.ClientHello{}, fmt.Errorf("failed to send speaker/hello: %w", err)
	}

	var reply protocol.Message
	if err := conn.ReadJSON(&reply); err != nil {
		return protocol.ClientHello{}, fmt.Errorf("failed to read client/hello: %w", err)
	}
	if reply.Type != protocol.TypeClientHello {
		return protocol.ClientHello{}, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, reply.Type)
	}

	var client protocol.ClientHello
	if err := reply.Decode(&client); err != nil {
		return protocol.ClientHello{}, err
	}
	return client, nil
}

// sessionFormat is the audio format announced by start, with unset
// fields defaulted
func sessionFormat(start protocol.SessionStart) audio.Format {
	return audio.Format{
		Codec:      start.Codec,
		SampleRate: start.SampleRate,
		Channels:   start.Channels,
		BitDepth:   start.BitDepth,
	}.WithDefaults()
}

// validateFormat rejects formats the speaker will not allocate buffers for
func validateFormat(format audio.Format) error {
	if format.Channels < 1 || format.Channels > audio.MaxChannels {
		return fmt.Errorf("unsupported channel count: %d (max %d)", format.Channels, audio.MaxChannels)
	}
	if format.SampleRate < MinSampleRate || format.SampleRate > MaxSampleRate {
		return fmt.Errorf("unsupported sample rate: %d (supported: %d-%d)", format.SampleRate, MinSampleRate, MaxSampleRate)
	}

	switch format.Codec {
	case "pcm":
		if format.BitDepth != 16 && format.BitDepth != 24 {
			return fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
		}
	case "opus", "flac", "mp3":
	default:
		return fmt.Errorf("unsupported codec: %q", format.Codec)
	}
	return nil
}

// play decodes the session audio and plays it to completion
func (s *Server) play(sess *session) error {
	decoder, err := decode.New(sess.format)
	if err != nil {
		return err
	}
	defer decoder.Close()

	buf, err := decoder.Decode(sess.pcm.Bytes())
	if err != nil {
		return err
	}

	return s.player.PlayBuffer(s.ctx, buf)
}
