package playback

import (
	"time"

	"github.com/lcourtet/waveline/internal/media"
	"github.com/lcourtet/waveline/internal/resolver"
)

// Service is the public transport-control surface. It carries no state of its
// own: every call delegates to the engine.
type Service interface {
	// Play submits a playback job for the given files or directories.
	Play(paths ...string)
	// PlayRange is Play with a uniform start/stop bound, in milliseconds,
	// applied to every track of the job. UnspecifiedBound leaves a bound at
	// its default.
	PlayRange(paths []string, startMs, stopMs int64)

	Pause()
	Resume() error
	Stop()
	Next()
	Previous()
	Restart()

	// SetVolume sets the volume, clamping v to [0, 100].
	SetVolume(v int)
	Volume() int

	State() media.Status
	CurrentTrack() *resolver.Track
	SessionTracks() []resolver.Track
	CursorIndex() int
	Position() time.Duration
	Duration() time.Duration

	Subscribe() *Subscription
}

type facade struct {
	engine *Engine
}

// NewService wraps an engine in the public facade.
func NewService(e *Engine) Service {
	return &facade{engine: e}
}

func (f *facade) Play(paths ...string) {
	f.PlayRange(paths, UnspecifiedBound, UnspecifiedBound)
}

func (f *facade) PlayRange(paths []string, startMs, stopMs int64) {
	f.engine.Submit(NewJob(paths, startMs, stopMs))
}

func (f *facade) Pause()        { f.engine.Pause() }
func (f *facade) Resume() error { return f.engine.Resume() }
func (f *facade) Stop()         { f.engine.Stop() }
func (f *facade) Next()         { f.engine.Next() }
func (f *facade) Previous()     { f.engine.Previous() }
func (f *facade) Restart()      { f.engine.Restart() }

func (f *facade) SetVolume(v int) {
	if v > 100 {
		v = 100
	}
	if v < 0 {
		v = 0
	}
	f.engine.SetVolume(v)
}

func (f *facade) Volume() int { return f.engine.Volume() }

func (f *facade) State() media.Status { return f.engine.State() }

func (f *facade) CurrentTrack() *resolver.Track { return f.engine.CurrentTrack() }

func (f *facade) SessionTracks() []resolver.Track { return f.engine.SessionTracks() }

func (f *facade) CursorIndex() int { return f.engine.CursorIndex() }

func (f *facade) Position() time.Duration { return f.engine.Position() }

func (f *facade) Duration() time.Duration { return f.engine.Duration() }

func (f *facade) Subscribe() *Subscription { return f.engine.Subscribe() }

var _ Service = (*facade)(nil)
