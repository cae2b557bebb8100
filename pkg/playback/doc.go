// Package playback plays decoded speech on an output.Device.
//
// Each call acquires its own output context, resumes it if suspended,
// binds the buffer to a source, starts it with no delay and waits for the
// single end-of-playback signal. The context is closed exactly once on every
// path. There is no timeout: a device that never reports the end blocks the
// caller until ctx is cancelled.
package playback
