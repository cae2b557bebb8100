// ABOUTME: WordBuddy speaker protocol package
// ABOUTME: Message types and WebSocket client for streaming speech to remote speakers
// Package protocol implements the WebSocket protocol spoken between WordBuddy
// and remote speakers.
//
// A session is: speaker/hello, client/hello, then per playback
// session/start, binary 16-bit PCM frames, session/flush, and finally
// session/ended from the speaker once the audio has played.
//
// Example:
//
//	c, err := protocol.Dial(protocol.Config{SpeakerAddr: "kitchen.local:8930"})
//	err = c.Send(protocol.TypeSessionStart, start)
package protocol
