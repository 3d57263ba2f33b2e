package playback

import "time"

// UnspecifiedBound is the sentinel for a start or stop bound left at its
// default: 0 for start, the full duration for stop.
const UnspecifiedBound int64 = -1

// SoundInfo is a path to play plus optional start/stop bounds in
// milliseconds. Immutable once constructed.
type SoundInfo struct {
	Path    string
	StartMs int64
	StopMs  int64
}

// NewSoundInfo returns a SoundInfo with both bounds unspecified.
func NewSoundInfo(path string) SoundInfo {
	return SoundInfo{Path: path, StartMs: UnspecifiedBound, StopMs: UnspecifiedBound}
}

// Job is an ordered batch of sound requests submitted atomically to the
// intake queue.
type Job struct {
	Sounds []SoundInfo
}

// NewJob builds a job from paths with a uniform start/stop bound applied to
// every entry.
func NewJob(paths []string, startMs, stopMs int64) Job {
	sounds := make([]SoundInfo, 0, len(paths))
	for _, p := range paths {
		sounds = append(sounds, SoundInfo{Path: p, StartMs: startMs, StopMs: stopMs})
	}
	return Job{Sounds: sounds}
}

// effectiveBounds resolves the explicit or sentinel bounds of si against the
// track's actual duration.
//
// An explicit start of 0 is accepted as equivalent to the unspecified
// sentinel; any other explicit start must satisfy 0 < start < duration. An
// explicit stop must satisfy start < stop < duration.
func effectiveBounds(si SoundInfo, duration time.Duration) (start, stop time.Duration, err error) {
	durMs := duration.Milliseconds()

	startMs := int64(0)
	switch {
	case si.StartMs == UnspecifiedBound || si.StartMs == 0:
	case si.StartMs > 0 && si.StartMs < durMs:
		startMs = si.StartMs
	default:
		return 0, 0, &BoundsError{Path: si.Path, Bound: "start", Value: si.StartMs, Duration: duration}
	}

	stopMs := durMs
	switch {
	case si.StopMs == UnspecifiedBound:
	case si.StopMs > startMs && si.StopMs < durMs:
		stopMs = si.StopMs
	default:
		return 0, 0, &BoundsError{Path: si.Path, Bound: "stop", Value: si.StopMs, Duration: duration}
	}

	return time.Duration(startMs) * time.Millisecond, time.Duration(stopMs) * time.Millisecond, nil
}
