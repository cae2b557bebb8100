// ABOUTME: Error taxonomy for audio decoding and playback
// ABOUTME: DecodeError, DeviceError and PlaybackError carry the failing op and cause
package audio

import "fmt"

// DecodeError reports malformed base64 or a corrupt audio payload
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DeviceError reports a failure acquiring or preparing the output device
// (context creation, resume, source binding, connect or start).
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// PlaybackError reports a failure while audio was actively playing
type PlaybackError struct {
	Session string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s: %v", e.Session, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
