package media

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// The speaker is initialized once, with the sample rate of the first track.
// Later tracks with a different rate are resampled to match.
var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

const speakerBufferLen = time.Second / 10

// BeepBackend loads local mp3 and wav files and renders them through the
// system speaker.
type BeepBackend struct{}

func NewBeepBackend() *BeepBackend {
	return &BeepBackend{}
}

// Load opens and decodes path in the background. The returned handle's Ready
// channel fires once decoding has finished or failed.
func (b *BeepBackend) Load(path string) Handle {
	h := &beepHandle{
		path:   path,
		ready:  make(chan struct{}),
		status: StatusUnknown,
		level:  1,
	}
	go h.load()
	return h
}

// Lock order: the audio goroutine invokes finished with the speaker locked,
// so every path that needs both locks takes the speaker lock before h.mu.
// Dispose releases h.mu before touching the speaker for the same reason.
type beepHandle struct {
	path  string
	ready chan struct{}

	mu       sync.Mutex
	err      error
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	bounded  beep.Streamer
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	status   Status
	onEnd    func()
	disposed bool
}

func (h *beepHandle) load() {
	defer close(h.ready)

	streamer, format, err := decode(h.path)
	if err != nil {
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		streamer.s.Close()
		streamer.f.Close()
		return
	}
	h.file = streamer.f
	h.streamer = streamer.s
	h.format = format
	h.status = StatusReady
}

type decoded struct {
	f *os.File
	s beep.StreamSeekCloser
}

func decode(path string) (decoded, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return decoded{}, beep.Format{}, err
	}

	var s beep.StreamSeekCloser
	var format beep.Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return decoded{}, beep.Format{}, err
	}
	return decoded{f: f, s: s}, format, nil
}

func (h *beepHandle) Ready() <-chan struct{} { return h.ready }

func (h *beepHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *beepHandle) Duration() time.Duration {
	// The speaker lock keeps the audio goroutine from streaming on the
	// decoder while its state is read.
	speaker.Lock()
	defer speaker.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len())
}

func (h *beepHandle) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Position())
}

// SetBounds seeks to start and truncates the stream at stop.
func (h *beepHandle) SetBounds(start, stop time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return fmt.Errorf("media not ready: %s", h.path)
	}
	startN := h.format.SampleRate.N(start)
	stopN := h.format.SampleRate.N(stop)
	if err := h.streamer.Seek(startN); err != nil {
		return err
	}
	h.bounded = beep.Take(stopN-startN, h.streamer)
	return nil
}

// Play starts playback on first call and resumes when paused.
func (h *beepHandle) Play() {
	h.mu.Lock()
	if h.status == StatusReady {
		h.startLocked()
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	speaker.Lock()
	defer speaker.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusPaused && h.ctrl != nil {
		h.ctrl.Paused = false
		h.status = StatusPlaying
	}
}

// startLocked holds only h.mu. speaker.Init and speaker.Play take the speaker
// lock themselves; the streamer is not in the mixer yet, so the audio
// goroutine cannot be blocked on h.mu at this point.
func (h *beepHandle) startLocked() {
	if err := initSpeaker(h.format.SampleRate); err != nil {
		h.err = err
		return
	}

	base := h.bounded
	if base == nil {
		base = h.streamer
	}
	if h.format.SampleRate != speakerSampleRate {
		base = beep.Resample(4, h.format.SampleRate, speakerSampleRate, base)
	}

	h.ctrl = &beep.Ctrl{Streamer: base}
	h.volume = &effects.Volume{
		Streamer: h.ctrl,
		Base:     2,
		Volume:   levelToVolume(h.level),
		Silent:   h.level <= 0,
	}
	h.status = StatusPlaying

	speaker.Play(beep.Seq(h.volume, beep.Callback(h.finished)))
}

// finished runs on the speaker goroutine when the stream reaches its end.
func (h *beepHandle) finished() {
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

func (h *beepHandle) Pause() {
	speaker.Lock()
	defer speaker.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusPlaying || h.ctrl == nil {
		return
	}
	h.ctrl.Paused = true
	h.status = StatusPaused
}

func (h *beepHandle) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	speaker.Lock()
	defer speaker.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
	if h.volume == nil {
		return
	}
	h.volume.Volume = levelToVolume(level)
	h.volume.Silent = level <= 0
}

func (h *beepHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *beepHandle) OnEndOfMedia(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEnd = fn
}

// Dispose tears the resource down without firing the end-of-media callback.
// State is detached under h.mu, but the speaker and the decoder are released
// only after unlocking: the audio goroutine runs finished with the speaker
// locked and then takes h.mu, so calling speaker.Clear under h.mu deadlocks.
func (h *beepHandle) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	ctrl := h.ctrl
	streamer := h.streamer
	file := h.file
	h.ctrl = nil
	h.volume = nil
	h.streamer = nil
	h.file = nil
	h.bounded = nil
	h.status = StatusDisposed
	h.mu.Unlock()

	if ctrl != nil {
		// This handle owns the only active speaker stream.
		speaker.Clear()
	}
	if streamer != nil {
		streamer.Close()
	}
	if file != nil {
		file.Close()
	}
}

func initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(speakerBufferLen)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// levelToVolume converts a linear 0..1 level to beep's logarithmic scale
// (base 2): 1.0 -> 0, 0.5 -> -1, 0.25 -> -2. Levels at or below zero map to
// an effectively silent -10.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

var _ Backend = (*BeepBackend)(nil)

var _ Handle = (*beepHandle)(nil)
