package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lcourtet/waveline/internal/media"
)

func TestFacade_SetVolumeClamps(t *testing.T) {
	dir, paths := makeTracks(t, "01.mp3")
	b := media.NewMockBackend()
	e := startEngine(t, b, Options{})
	svc := NewService(e)

	svc.Play(dir)
	waitPlaying(t, b, paths[0])

	cases := []struct {
		in   int
		want float64
	}{
		{150, 1.0},
		{-5, 0.0},
		{42, 0.42},
		{0, 0.0},
		{100, 1.0},
	}
	for _, c := range cases {
		svc.SetVolume(c.in)
		require.InDelta(t, c.want, b.Current().Volume(), 1e-9, "SetVolume(%d)", c.in)
	}
}

func TestFacade_PlayRangeAppliesUniformBounds(t *testing.T) {
	dir, paths := makeTracks(t, "01.mp3")
	b := media.NewMockBackend()
	b.SetDuration(paths[0], time.Minute)
	e := startEngine(t, b, Options{})
	svc := NewService(e)

	svc.PlayRange([]string{dir}, 1_000, 30_000)
	waitPlaying(t, b, paths[0])

	start, stop := b.Current().Bounds()
	require.Equal(t, time.Second, start)
	require.Equal(t, 30*time.Second, stop)
}

func TestFacade_Delegation(t *testing.T) {
	dir, paths := makeTracks(t, "01.mp3", "02.mp3")
	b := media.NewMockBackend()
	e := startEngine(t, b, Options{})
	svc := NewService(e)

	svc.Play(dir)
	waitPlaying(t, b, paths[0])
	require.Equal(t, media.StatusPlaying, svc.State())
	require.Equal(t, 0, svc.CursorIndex())
	require.Len(t, svc.SessionTracks(), 2)

	svc.Pause()
	require.Equal(t, media.StatusPaused, svc.State())
	require.NoError(t, svc.Resume())

	svc.Next()
	waitPlaying(t, b, paths[1])
	require.Equal(t, 1, svc.CursorIndex())

	svc.Stop()
	require.Equal(t, media.StatusNone, svc.State())
	require.Nil(t, svc.CurrentTrack())
}
