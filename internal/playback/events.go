package playback

import (
	"github.com/lcourtet/waveline/internal/media"
	"github.com/lcourtet/waveline/internal/resolver"
)

// TrackChange is emitted when playback starts on a track, whether by session
// start, natural advancement or navigation.
type TrackChange struct {
	Track resolver.Track
	Index int
}

// StateChange is emitted on pause/resume/stop and when a track starts.
type StateChange struct {
	Current media.Status
}

// ErrorEvent is emitted when a track fails to load or validate. Playback
// continues with the next track.
type ErrorEvent struct {
	Op   string // e.g. "load", "bounds"
	Path string
	Err  error
}
