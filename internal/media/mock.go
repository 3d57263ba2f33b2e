package media

import (
	"sync"
	"time"
)

// MockBackend is a test double for Backend. Tracks loaded through it get
// MockHandles whose ready/end-of-media signals are driven by the test.
type MockBackend struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	loadErrs  map[string]error
	holdReady bool
	handles   []*MockHandle
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		durations: make(map[string]time.Duration),
		loadErrs:  make(map[string]error),
	}
}

// SetDuration fixes the reported duration for a path. Paths without an entry
// report one minute.
func (b *MockBackend) SetDuration(path string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.durations[path] = d
}

// SetLoadError makes loading the given path fail.
func (b *MockBackend) SetLoadError(path string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadErrs[path] = err
}

// HoldReady stops handles from firing their ready signal on load; the test
// releases them individually with FinishLoad.
func (b *MockBackend) HoldReady(hold bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdReady = hold
}

func (b *MockBackend) Load(path string) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := &MockHandle{
		path:     path,
		ready:    make(chan struct{}),
		duration: time.Minute,
		status:   StatusUnknown,
		level:    1,
	}
	if d, ok := b.durations[path]; ok {
		h.duration = d
	}
	h.err = b.loadErrs[path]
	b.handles = append(b.handles, h)
	if !b.holdReady {
		h.FinishLoad()
	}
	return h
}

// Handles returns every handle created so far, in load order.
func (b *MockBackend) Handles() []*MockHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*MockHandle(nil), b.handles...)
}

// Current returns the most recent non-disposed handle, or nil.
func (b *MockBackend) Current() *MockHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.handles) - 1; i >= 0; i-- {
		if b.handles[i].Status() != StatusDisposed {
			return b.handles[i]
		}
	}
	return nil
}

// PlayedPaths returns the paths whose handles were played, in order.
func (b *MockBackend) PlayedPaths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, h := range b.handles {
		if h.WasPlayed() {
			out = append(out, h.path)
		}
	}
	return out
}

// MockHandle implements Handle with test-controlled signals.
type MockHandle struct {
	path  string
	ready chan struct{}

	mu         sync.Mutex
	err        error
	duration   time.Duration
	status     Status
	start      time.Duration
	stop       time.Duration
	level      float64
	onEnd      func()
	played     bool
	disposed   bool
	readyFired bool
}

func (h *MockHandle) Path() string { return h.path }

// FinishLoad fires the ready signal once.
func (h *MockHandle) FinishLoad() {
	h.mu.Lock()
	if h.readyFired {
		h.mu.Unlock()
		return
	}
	h.readyFired = true
	if h.err == nil && !h.disposed {
		h.status = StatusReady
	}
	h.mu.Unlock()
	close(h.ready)
}

// EmitEndOfMedia simulates the track reaching its stop bound.
func (h *MockHandle) EmitEndOfMedia() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.status = StatusStopped
	fn := h.onEnd
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *MockHandle) Ready() <-chan struct{} { return h.ready }

func (h *MockHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *MockHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *MockHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.start
}

func (h *MockHandle) SetBounds(start, stop time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start, h.stop = start, stop
	return nil
}

func (h *MockHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.status {
	case StatusReady, StatusPaused:
		h.status = StatusPlaying
		h.played = true
	default:
	}
}

func (h *MockHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusPlaying {
		h.status = StatusPaused
	}
}

func (h *MockHandle) SetVolume(level float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

func (h *MockHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *MockHandle) OnEndOfMedia(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEnd = fn
}

func (h *MockHandle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposed = true
	h.status = StatusDisposed
}

// Test inspection helpers.

func (h *MockHandle) WasPlayed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.played
}

func (h *MockHandle) Bounds() (start, stop time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.start, h.stop
}

func (h *MockHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

func (h *MockHandle) SetStatus(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = s
}

var _ Backend = (*MockBackend)(nil)

var _ Handle = (*MockHandle)(nil)
