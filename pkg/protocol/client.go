// ABOUTME: WebSocket client for the WordBuddy speaker protocol
// ABOUTME: Handles connection, handshake and streaming one playback session
package protocol

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// ChunkSize is the maximum binary frame size for audio
	ChunkSize = 16 * 1024

	defaultHandshakeTimeout = 5 * time.Second
)

// Config holds client configuration
type Config struct {
	SpeakerAddr      string
	ClientID         string
	Name             string
	HandshakeTimeout time.Duration
}

// Client represents a WebSocket connection to a speaker
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.Mutex
	hello  SpeakerHello
}

// Dial connects to a speaker and performs the handshake
func Dial(config Config) (*Client, error) {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = defaultHandshakeTimeout
	}

	u := url.URL{Scheme: "ws", Host: config.SpeakerAddr, Path: SpeakPath}
	log.Printf("Connecting to speaker %s", u.String())

	dialer := websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{config: config, conn: conn}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	return c, nil
}

// handshake waits for speaker/hello and answers with client/hello
func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	msg, err := c.readMessage()
	if err != nil {
		return fmt.Errorf("failed to read speaker/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	if msg.Type != TypeSpeakerHello {
		return fmt.Errorf("expected %s, got %s", TypeSpeakerHello, msg.Type)
	}
	if err := msg.Decode(&c.hello); err != nil {
		return err
	}

	hello := ClientHello{
		ClientID: c.config.ClientID,
		Name:     c.config.Name,
	}
	if err := c.Send(TypeClientHello, hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	log.Printf("Handshake complete with speaker %q", c.hello.Name)
	return nil
}

// Speaker returns the speaker's hello
func (c *Client) Speaker() SpeakerHello {
	return c.hello
}

// Send writes a typed JSON message
func (c *Client) Send(msgType string, payload interface{}) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// SendAudio writes PCM in binary frames of at most ChunkSize bytes
func (c *Client) SendAudio(pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(pcm) > 0 {
		n := len(pcm)
		if n > ChunkSize {
			n = ChunkSize
		}
		if err := c.conn.WriteMessage(websocket.BinaryMessage, pcm[:n]); err != nil {
			return fmt.Errorf("failed to send audio: %w", err)
		}
		pcm = pcm[n:]
	}
	return nil
}

// WaitEnded blocks until the speaker reports the session has ended
func (c *Client) WaitEnded(sessionID string) (SessionEnded, error) {
	for {
		msg, err := c.readMessage()
		if err != nil {
			return SessionEnded{}, err
		}

		if msg.Type != TypeSessionEnded {
			log.Printf("Ignoring %s while waiting for session end", msg.Type)
			continue
		}

		var ended SessionEnded
		if err := msg.Decode(&ended); err != nil {
			return SessionEnded{}, err
		}
		if ended.SessionID == sessionID {
			return ended, nil
		}
	}
}

// readMessage reads the next text message
func (c *Client) readMessage() (Message, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return Message{}, err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return Message{}, fmt.Errorf("failed to parse message: %w", err)
		}
		return msg, nil
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
