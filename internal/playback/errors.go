package playback

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotPaused is returned by Resume when playback is not paused.
	ErrNotPaused = errors.New("playback is not paused, so it cannot be resumed")

	// ErrReadyTimeout is returned when the backend does not report a loaded
	// resource ready within the configured timeout.
	ErrReadyTimeout = errors.New("timed out waiting for media to become ready")

	// errStale marks work that belongs to a session which has since been
	// reset. Never surfaced to callers.
	errStale = errors.New("stale session generation")
)

// BoundsError reports an explicit start or stop bound that falls outside the
// track's duration.
type BoundsError struct {
	Path     string
	Bound    string // "start" or "stop"
	Value    int64  // milliseconds
	Duration time.Duration
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s time %dms out of bounds for %s (duration %s)",
		e.Bound, e.Value, e.Path, e.Duration)
}
