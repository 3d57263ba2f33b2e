// Package media defines the contract the playback engine consumes from the
// underlying audio backend, together with a speaker-based implementation and
// a mock for tests.
package media

import "time"

// Status mirrors the lifecycle of a loaded media resource.
type Status int

const (
	// StatusNone means no resource exists. It is only ever reported by the
	// engine, never by a handle.
	StatusNone Status = iota
	// StatusUnknown is the state of a handle whose metadata is not yet
	// available (loading in progress).
	StatusUnknown
	StatusReady
	StatusPlaying
	StatusPaused
	StatusStopped
	StatusDisposed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusUnknown:
		return "UNKNOWN"
	case StatusReady:
		return "READY"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	case StatusStopped:
		return "STOPPED"
	case StatusDisposed:
		return "DISPOSED"
	default:
		return "INVALID"
	}
}

// Handle is a single loaded media resource. Loading is asynchronous: the
// channel returned by Ready fires exactly once when metadata (notably the
// duration) is available or loading has failed; Err distinguishes the two.
//
// Implementations must tolerate concurrent calls: the engine's worker creates
// and disposes handles while transport controls invoke Pause/Play/SetVolume
// from arbitrary goroutines.
type Handle interface {
	Ready() <-chan struct{}
	Err() error

	Duration() time.Duration
	Position() time.Duration

	// SetBounds restricts playback to [start, stop). Must be called after
	// Ready and before Play.
	SetBounds(start, stop time.Duration) error

	// Play starts playback, or resumes it when paused.
	Play()
	Pause()

	// SetVolume sets the linear volume level in [0, 1].
	SetVolume(level float64)

	Status() Status

	// OnEndOfMedia registers the callback fired when playback reaches the
	// stop bound. Disposing a handle never fires the callback.
	OnEndOfMedia(fn func())

	// Dispose releases the resource. Idempotent.
	Dispose()
}

// Backend creates handles. Load returns immediately; failures surface through
// the handle's Ready/Err pair.
type Backend interface {
	Load(path string) Handle
}
