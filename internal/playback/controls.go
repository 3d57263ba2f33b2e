package playback

import (
	"time"

	"github.com/lcourtet/waveline/internal/media"
	"github.com/lcourtet/waveline/internal/resolver"
)

// Transport controls. These run on arbitrary caller goroutines, concurrently
// with the worker's event-driven advancement. Navigation commands mutate the
// cursor and force-stop the active resource; the resulting completion event
// goes through the standard handler, which always increments the cursor by
// exactly one before dereferencing it.

// Pause pauses the active resource. No-op without an active session.
func (e *Engine) Pause() {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil {
		return
	}
	h.Pause()
	e.emitState(StateChange{Current: media.StatusPaused})
}

// Resume resumes playback. It fails with ErrNotPaused unless the current
// status is exactly PAUSED.
func (e *Engine) Resume() error {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil || h.Status() != media.StatusPaused {
		return ErrNotPaused
	}
	h.Play()
	e.emitState(StateChange{Current: media.StatusPlaying})
	return nil
}

// Stop tears down the active resource and fully resets the session. Pending
// jobs in the intake queue are preserved by default and start once the worker
// picks them up; with DiscardPendingOnStop they are dropped instead.
func (e *Engine) Stop() {
	e.mu.Lock()
	hadSession := e.handle != nil || len(e.sounds) > 0
	if hadSession {
		e.resetSessionLocked()
	}
	e.mu.Unlock()
	if !hadSession {
		return
	}

	if e.discardOnStop {
		e.queue.Clear()
	} else {
		e.queue.Nudge()
	}
	e.emitState(StateChange{Current: media.StatusNone})
}

// Next jumps to the next track, wrapping to the first after the last. No-op
// without an active session.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}
	if e.cursor >= len(e.sounds)-1 {
		// The completion handler's increment lands on ordinal 0.
		e.cursor = -1
	}
	e.forceStopLocked()
}

// Previous jumps to the previous track, wrapping to the last when called on
// the first. No-op without an active session.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}
	if e.cursor > 0 {
		// Decrement by two: the completion handler brings it back up one.
		e.cursor -= 2
	} else {
		e.cursor = len(e.sounds) - 2
	}
	e.forceStopLocked()
}

// Restart replays the current track from its start bound. No-op without an
// active session.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}
	e.cursor--
	e.forceStopLocked()
}

// SetVolume sets the session volume. v must already be clamped to [0, 100];
// the facade takes care of that. No-op without an active session.
func (e *Engine) SetVolume(v int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}
	e.volume = v
	e.handle.SetVolume(float64(v) / 100)
}

// Volume returns the current volume in [0, 100].
func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// State mirrors the active resource's status, or StatusNone when no session
// is active.
func (e *Engine) State() media.Status {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil {
		return media.StatusNone
	}
	return h.Status()
}

// CurrentTrack returns the track at the play cursor, or nil when the cursor
// is not resolvable (no session, or mid-navigation).
func (e *Engine) CurrentTrack() *resolver.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, ok := e.registry.At(e.cursor)
	if !ok {
		return nil
	}
	entry, ok := e.sounds[id]
	if !ok {
		return nil
	}
	meta := entry.Meta
	return &meta
}

// SessionTracks returns the current session's tracks in ordinal order.
func (e *Engine) SessionTracks() []resolver.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	tracks := make([]resolver.Track, 0, len(e.sounds))
	for ordinal := 0; ordinal < len(e.sounds); ordinal++ {
		id, ok := e.registry.At(ordinal)
		if !ok {
			break
		}
		tracks = append(tracks, e.sounds[id].Meta)
	}
	return tracks
}

// CursorIndex returns the play cursor (-1 when no session is active). The
// value may transiently be out of range while a navigation command is being
// serviced.
func (e *Engine) CursorIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Position returns the playback position within the active resource.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil {
		return 0
	}
	return h.Position()
}

// Duration returns the active resource's full duration.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	if h == nil {
		return 0
	}
	return h.Duration()
}

// activeLocked reports whether a session with an active resource exists.
// Callers hold e.mu.
func (e *Engine) activeLocked() bool {
	return e.handle != nil && len(e.sounds) > 0
}

// forceStopLocked disposes the active resource and feeds the completion
// handler, exactly as if the track had finished naturally. Callers hold e.mu
// and have already applied their cursor mutation.
func (e *Engine) forceStopLocked() {
	if e.handle != nil {
		e.handle.Dispose()
		e.handle = nil
	}
	e.signalAdvance(e.gen)
}
