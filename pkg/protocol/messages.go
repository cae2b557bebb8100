// ABOUTME: WordBuddy speaker protocol message type definitions
// ABOUTME: Defines the JSON envelope and payloads exchanged with remote speakers
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message types
const (
	TypeSpeakerHello = "speaker/hello"
	TypeClientHello  = "client/hello"
	TypeSessionStart = "session/start"
	TypeSessionFlush = "session/flush"
	TypeSessionEnded = "session/ended"
)

// SpeakPath is the WebSocket endpoint served by speakers
const SpeakPath = "/speak"

// Message is the top-level wrapper for all protocol text messages.
// Audio travels in binary frames between session/start and session/flush.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps a payload in a typed envelope
func NewMessage(msgType string, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", m.Type, err)
	}
	return nil
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// SpeakerHello is sent by a speaker when a client connects
type SpeakerHello struct {
	Name       string     `json:"name"`
	DeviceInfo DeviceInfo `json:"device_info"`
}

// ClientHello answers the speaker hello
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

// SessionStart announces the format of the audio that follows
type SessionStart struct {
	SessionID  string `json:"session_id"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
}

// SessionFlush marks the end of a session's audio
type SessionFlush struct {
	SessionID string `json:"session_id"`
}

// SessionEnded is sent by the speaker once playback of a session finishes
type SessionEnded struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}
