package media

import (
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// The audio goroutine runs end-of-media callbacks with the speaker locked and
// then takes the handle lock. Dispose must therefore never hold the handle
// lock while it waits for the speaker, or the two block each other forever.
func TestBeepHandle_DisposeReleasesHandleLockBeforeSpeaker(t *testing.T) {
	h := &beepHandle{
		ready:  make(chan struct{}),
		status: StatusPlaying,
		level:  1,
		ctrl:   &beep.Ctrl{},
	}

	speaker.Lock()
	done := make(chan struct{})
	go func() {
		h.Dispose() // blocks in speaker.Clear until the lock below is released
		close(done)
	}()

	// While Dispose waits for the speaker, the handle lock must be free so
	// the audio goroutine's callback can run. Status takes exactly that lock.
	deadline := time.After(2 * time.Second)
waitDetached:
	for {
		status := make(chan Status, 1)
		go func() { status <- h.Status() }()
		select {
		case s := <-status:
			if s == StatusDisposed {
				break waitDetached
			}
			// Dispose has not entered its critical section yet.
		case <-deadline:
			speaker.Unlock()
			t.Fatal("handle lock held while Dispose waits for the speaker")
		}
	}

	speaker.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispose did not finish after the speaker was released")
	}
}

type stubStreamer struct {
	pos    int
	length int
}

func (s *stubStreamer) Stream(samples [][2]float64) (int, bool) {
	s.pos += len(samples)
	return len(samples), true
}

func (s *stubStreamer) Err() error       { return nil }
func (s *stubStreamer) Len() int         { return s.length }
func (s *stubStreamer) Position() int    { return s.pos }
func (s *stubStreamer) Seek(p int) error { s.pos = p; return nil }
func (s *stubStreamer) Close() error     { return nil }

var _ beep.StreamSeekCloser = (*stubStreamer)(nil)

// Position and Duration read decoder state the audio goroutine mutates while
// streaming; both sides must hold the speaker lock.
func TestBeepHandle_PositionSynchronizedWithStreaming(t *testing.T) {
	rate := beep.SampleRate(44100)
	st := &stubStreamer{length: int(rate)}
	h := &beepHandle{
		ready:    make(chan struct{}),
		status:   StatusPlaying,
		level:    1,
		streamer: st,
		format:   beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2},
	}

	if got := h.Duration(); got != time.Second {
		t.Fatalf("Duration() = %v, want 1s", got)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([][2]float64, 512)
		for {
			select {
			case <-stop:
				return
			default:
			}
			speaker.Lock()
			st.Stream(buf)
			speaker.Unlock()
		}
	}()

	for range 200 {
		if got := h.Position(); got < 0 {
			t.Fatalf("Position() = %v, want non-negative", got)
		}
		_ = h.Duration()
	}
	close(stop)
	wg.Wait()
}
