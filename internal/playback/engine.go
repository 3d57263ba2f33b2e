// Package playback implements the playlist playback engine: a single worker
// that drains an intake queue of jobs, expands each job into a session of
// identified tracks, and drives the media backend through load, bound
// validation, playback and event-driven advancement.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lcourtet/waveline/internal/identity"
	"github.com/lcourtet/waveline/internal/media"
	"github.com/lcourtet/waveline/internal/resolver"
)

const defaultReadyTimeout = 10 * time.Second

// Options tune engine behavior.
type Options struct {
	// ReadyTimeout bounds the wait for the backend's ready signal per track
	// load. Zero means the default of 10s.
	ReadyTimeout time.Duration
	// DefaultVolume is the initial volume in [0, 100]. Zero is silence;
	// negative means the default of 100.
	DefaultVolume int
	// DiscardPendingOnStop makes Stop also drain queued-but-not-started
	// jobs. The default preserves them: they start once the session is
	// reset.
	DiscardPendingOnStop bool
}

// sessionTrack is one registered entry of the current session.
type sessionTrack struct {
	Info SoundInfo
	Meta resolver.Track
}

// Engine owns the intake queue, the current session's track map, the play
// cursor and the single active media resource.
//
// Two actors touch it: the worker goroutine running Run, which performs all
// job intake and track loading, and transport-control callers on arbitrary
// goroutines. All session state lives behind one mutex; completion signals
// from the backend are tagged with a session generation and funneled to the
// worker, so a signal that races a stop or a new job is recognized as stale
// and dropped.
type Engine struct {
	backend  media.Backend
	resolver *resolver.Resolver
	registry *identity.Registry
	queue    *jobQueue

	readyTimeout  time.Duration
	discardOnStop bool

	mu      sync.Mutex
	gen     uint64
	sounds  map[identity.Identity]sessionTrack
	cursor  int
	handle  media.Handle
	volume  int
	advance chan uint64

	subsMu sync.Mutex
	subs   []*Subscription
	closed bool
}

func NewEngine(backend media.Backend, res *resolver.Resolver, opts Options) *Engine {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = defaultReadyTimeout
	}
	if opts.DefaultVolume < 0 || opts.DefaultVolume > 100 {
		opts.DefaultVolume = 100
	}
	return &Engine{
		backend:       backend,
		resolver:      res,
		registry:      identity.NewRegistry(),
		queue:         newJobQueue(),
		readyTimeout:  opts.ReadyTimeout,
		discardOnStop: opts.DiscardPendingOnStop,
		sounds:        make(map[identity.Identity]sessionTrack),
		cursor:        -1,
		volume:        opts.DefaultVolume,
		advance:       make(chan uint64, eventBufferSize),
	}
}

// Submit enqueues a job. It never blocks: the job starts immediately when the
// worker is idle and otherwise queues behind earlier submissions in FIFO
// order.
func (e *Engine) Submit(job Job) {
	e.queue.Put(job)
}

// Run is the worker loop. It suspends on the intake queue, starts one session
// per dequeued job, and serializes every track load triggered by completion
// events. It returns when ctx is cancelled, after stopping playback.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return
		case <-e.queue.Wake():
			for {
				job, ok := e.queue.TryTake()
				if !ok {
					break
				}
				e.startSession(ctx, job)
				if ctx.Err() != nil {
					e.Stop()
					return
				}
			}
		case gen := <-e.advance:
			e.advanceTrack(ctx, gen)
		}
	}
}

// startSession resets all per-session state, expands the job's paths into an
// ordered track list, registers each track under a fresh identity and begins
// playback at ordinal 0.
func (e *Engine) startSession(ctx context.Context, job Job) {
	e.mu.Lock()
	e.resetSessionLocked()
	gen := e.gen
	e.mu.Unlock()

	var entries []sessionTrack
	for _, si := range job.Sounds {
		for _, track := range e.resolver.Resolve(si.Path) {
			entries = append(entries, sessionTrack{
				Info: SoundInfo{Path: track.Path, StartMs: si.StartMs, StopMs: si.StopMs},
				Meta: track,
			})
		}
	}
	if len(entries) == 0 {
		slog.Warn("job contained no playable tracks")
		return
	}

	e.mu.Lock()
	if e.gen != gen {
		// A stop raced the resolution; the session is gone.
		e.mu.Unlock()
		return
	}
	for _, entry := range entries {
		id := e.registry.Make()
		e.sounds[id] = entry
	}
	e.cursor = 0
	e.mu.Unlock()

	e.loadAndPlay(ctx, gen, 0)
}

// advanceTrack is the completion handler. It increments the cursor by exactly
// one, wrapping to ordinal 0 past the end of the session, and loads the track
// at the resulting ordinal. Signals from a retired session generation and
// signals arriving after a reset are no-ops.
func (e *Engine) advanceTrack(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if gen != e.gen || len(e.sounds) == 0 {
		e.mu.Unlock()
		return
	}
	next := e.cursor + 1
	if next >= len(e.sounds) {
		next = 0
	}
	if e.handle != nil {
		e.handle.Dispose()
		e.handle = nil
	}
	e.mu.Unlock()

	e.loadAndPlay(ctx, gen, next)
}

// loadAndPlay loads and starts the track at ordinal. A track that fails to
// load or validate is skipped with an error event and the next ordinal is
// tried; after a full pass of consecutive failures the session is stopped
// instead of spinning.
func (e *Engine) loadAndPlay(ctx context.Context, gen uint64, ordinal int) {
	failures := 0
	for {
		e.mu.Lock()
		if gen != e.gen {
			e.mu.Unlock()
			return
		}
		size := len(e.sounds)
		if size == 0 {
			e.mu.Unlock()
			return
		}
		if failures >= size {
			slog.Error("every track in the session failed to load, stopping")
			e.resetSessionLocked()
			e.mu.Unlock()
			e.emitState(StateChange{Current: media.StatusNone})
			return
		}
		id, ok := e.registry.At(ordinal)
		if !ok {
			e.mu.Unlock()
			return
		}
		entry := e.sounds[id]
		e.mu.Unlock()

		err := e.playTrack(ctx, gen, ordinal, entry)
		if err == nil {
			e.emitTrack(TrackChange{Track: entry.Meta, Index: ordinal})
			e.emitState(StateChange{Current: media.StatusPlaying})
			return
		}
		if errors.Is(err, errStale) || ctx.Err() != nil {
			return
		}

		slog.Error("skipping track", "path", entry.Info.Path, "error", err)
		e.emitError(ErrorEvent{Op: "load", Path: entry.Info.Path, Err: err})
		failures++
		ordinal++
		if ordinal >= size {
			ordinal = 0
		}
	}
}

// playTrack performs one load attempt: request the resource, block on the
// ready rendezvous, validate bounds, then install the handle and start
// playback. The cursor is committed in the same critical section that
// installs the handle, so navigation commands never observe one without the
// other.
func (e *Engine) playTrack(ctx context.Context, gen uint64, ordinal int, entry sessionTrack) error {
	h := e.backend.Load(entry.Info.Path)

	select {
	case <-h.Ready():
	case <-time.After(e.readyTimeout):
		h.Dispose()
		return ErrReadyTimeout
	case <-ctx.Done():
		h.Dispose()
		return ctx.Err()
	}
	if err := h.Err(); err != nil {
		h.Dispose()
		return err
	}

	start, stop, err := effectiveBounds(entry.Info, h.Duration())
	if err != nil {
		h.Dispose()
		return err
	}
	if err := h.SetBounds(start, stop); err != nil {
		h.Dispose()
		return err
	}

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		h.Dispose()
		return errStale
	}
	if e.handle != nil {
		e.handle.Dispose()
	}
	e.handle = h
	e.cursor = ordinal
	volume := e.volume
	e.mu.Unlock()

	h.OnEndOfMedia(func() { e.signalAdvance(gen) })
	h.SetVolume(float64(volume) / 100)
	h.Play()
	return nil
}

// signalAdvance hands a completion event to the worker. Non-blocking: the
// buffer is far larger than the number of signals a session can have in
// flight, and stale generations are dropped by the handler anyway.
func (e *Engine) signalAdvance(gen uint64) {
	select {
	case e.advance <- gen:
	default:
	}
}

// resetSessionLocked retires the current session: the active resource is
// disposed, the track map cleared, the identity epoch restarted and the
// generation bumped so in-flight loads and late completion signals are
// recognized as stale. Callers hold e.mu.
func (e *Engine) resetSessionLocked() {
	e.gen++
	if e.handle != nil {
		e.handle.Dispose()
		e.handle = nil
	}
	e.registry.StartNewSession()
	e.sounds = make(map[identity.Identity]sessionTrack)
	e.cursor = -1
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close signals all subscribers that the engine is done.
func (e *Engine) Close() error {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	return nil
}

func (e *Engine) emitTrack(ev TrackChange) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, sub := range e.subs {
		sub.sendTrack(ev)
	}
}

func (e *Engine) emitState(ev StateChange) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, sub := range e.subs {
		sub.sendState(ev)
	}
}

func (e *Engine) emitError(ev ErrorEvent) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, sub := range e.subs {
		sub.sendError(ev)
	}
}
