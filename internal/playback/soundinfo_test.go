package playback

import (
	"errors"
	"testing"
	"time"
)

func TestNewSoundInfo_BoundsUnspecified(t *testing.T) {
	si := NewSoundInfo("/a.mp3")
	if si.StartMs != UnspecifiedBound || si.StopMs != UnspecifiedBound {
		t.Errorf("NewSoundInfo bounds = %d/%d, want sentinel", si.StartMs, si.StopMs)
	}
}

func TestNewJob_UniformBounds(t *testing.T) {
	job := NewJob([]string{"/a.mp3", "/b.mp3"}, 100, 2000)
	if len(job.Sounds) != 2 {
		t.Fatalf("len(Sounds) = %d, want 2", len(job.Sounds))
	}
	for i, si := range job.Sounds {
		if si.StartMs != 100 || si.StopMs != 2000 {
			t.Errorf("Sounds[%d] bounds = %d/%d, want 100/2000", i, si.StartMs, si.StopMs)
		}
	}
}

func TestEffectiveBounds(t *testing.T) {
	duration := time.Minute

	cases := []struct {
		name      string
		startMs   int64
		stopMs    int64
		wantStart time.Duration
		wantStop  time.Duration
		wantBound string // non-empty means a BoundsError on this bound
	}{
		{name: "both unspecified", startMs: -1, stopMs: -1, wantStart: 0, wantStop: time.Minute},
		{name: "explicit zero start is start of track", startMs: 0, stopMs: -1, wantStart: 0, wantStop: time.Minute},
		{name: "explicit range", startMs: 1000, stopMs: 30000, wantStart: time.Second, wantStop: 30 * time.Second},
		{name: "start equals duration", startMs: 60000, stopMs: -1, wantBound: "start"},
		{name: "start past duration", startMs: 90000, stopMs: -1, wantBound: "start"},
		{name: "negative start", startMs: -7, stopMs: -1, wantBound: "start"},
		{name: "stop equals duration", startMs: -1, stopMs: 60000, wantBound: "stop"},
		{name: "stop before start", startMs: 30000, stopMs: 10000, wantBound: "stop"},
		{name: "zero stop", startMs: -1, stopMs: 0, wantBound: "stop"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			si := SoundInfo{Path: "/a.mp3", StartMs: c.startMs, StopMs: c.stopMs}
			start, stop, err := effectiveBounds(si, duration)

			if c.wantBound != "" {
				var be *BoundsError
				if !errors.As(err, &be) {
					t.Fatalf("err = %v, want BoundsError", err)
				}
				if be.Bound != c.wantBound {
					t.Errorf("Bound = %q, want %q", be.Bound, c.wantBound)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if start != c.wantStart || stop != c.wantStop {
				t.Errorf("bounds = %v/%v, want %v/%v", start, stop, c.wantStart, c.wantStop)
			}
		})
	}
}
