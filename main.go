package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"

	"github.com/lcourtet/waveline/internal/config"
	"github.com/lcourtet/waveline/internal/media"
	"github.com/lcourtet/waveline/internal/mpris"
	"github.com/lcourtet/waveline/internal/playback"
	"github.com/lcourtet/waveline/internal/resolver"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("WAVELINE_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func run() error {
	slog.Info("starting waveline", "version", version)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := playback.NewEngine(
		media.NewBeepBackend(),
		resolver.New(cfg.Extensions...),
		playback.Options{
			ReadyTimeout:         cfg.ReadyTimeout,
			DefaultVolume:        cfg.DefaultVolume,
			DiscardPendingOnStop: cfg.DiscardPendingOnStop,
		},
	)
	defer engine.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Run(ctx)
	}()

	svc := playback.NewService(engine)

	if cfg.Mpris {
		adapter, err := mpris.New(svc)
		if err != nil {
			slog.Warn("mpris unavailable", "error", err)
		} else {
			defer adapter.Close()
		}
	}

	go printEvents(svc.Subscribe())

	if err := commandLoop(ctx, svc); err != nil {
		return err
	}

	cancel()
	<-done
	return nil
}

// printEvents mirrors engine events onto the terminal.
func printEvents(sub *playback.Subscription) {
	for {
		select {
		case <-sub.Done:
			return
		case e := <-sub.TrackChanged:
			fmt.Printf("\rnow playing [%d] %s - %s\n", e.Index, e.Track.Artist, e.Track.Title)
		case e := <-sub.StateChanged:
			fmt.Printf("\rstate: %s\n", e.Current)
		case e := <-sub.Error:
			fmt.Printf("\r%s failed for %s: %v\n", e.Op, e.Path, e.Err)
		}
	}
}

func commandLoop(ctx context.Context, svc playback.Service) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "waveline> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("play", readline.PcItemDynamic(listPaths)),
			readline.PcItem("playrange"),
			readline.PcItem("pause"),
			readline.PcItem("resume"),
			readline.PcItem("stop"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
			readline.PcItem("restart"),
			readline.PcItem("vol"),
			readline.PcItem("state"),
			readline.PcItem("tracks"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		dispatch(svc, fields[0], fields[1:])
	}
}

func dispatch(svc playback.Service, cmd string, args []string) {
	switch cmd {
	case "play":
		if len(args) == 0 {
			fmt.Println("usage: play <path> [path...]")
			return
		}
		svc.Play(args...)

	case "playrange":
		if len(args) < 3 {
			fmt.Println("usage: playrange <start-ms> <stop-ms> <path> [path...]")
			return
		}
		start, err := parseBound(args[0])
		if err != nil {
			fmt.Printf("bad start: %v\n", err)
			return
		}
		stop, err := parseBound(args[1])
		if err != nil {
			fmt.Printf("bad stop: %v\n", err)
			return
		}
		svc.PlayRange(args[2:], start, stop)

	case "pause":
		svc.Pause()

	case "resume":
		if err := svc.Resume(); err != nil {
			fmt.Printf("resume: %v\n", err)
		}

	case "stop":
		svc.Stop()

	case "next":
		svc.Next()

	case "prev":
		svc.Previous()

	case "restart":
		svc.Restart()

	case "vol":
		if len(args) == 0 {
			fmt.Printf("volume: %d\n", svc.Volume())
			return
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("bad volume: %v\n", err)
			return
		}
		svc.SetVolume(v)

	case "state":
		fmt.Printf("state: %s\n", svc.State())
		if track := svc.CurrentTrack(); track != nil {
			fmt.Printf("track: %s - %s (%s / %s)\n",
				track.Artist, track.Title,
				svc.Position().Round(time.Second), svc.Duration().Round(time.Second))
		}

	case "tracks":
		tracks := svc.SessionTracks()
		if len(tracks) == 0 {
			fmt.Println("no session")
			return
		}
		cursor := svc.CursorIndex()
		for i, track := range tracks {
			marker := "  "
			if i == cursor {
				marker = "> "
			}
			fmt.Printf("%s[%d] %s - %s (%s)\n",
				marker, i, track.Artist, track.Title, humanize.Bytes(uint64(track.Size)))
		}

	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

// parseBound parses a millisecond bound, with "-" meaning unspecified.
func parseBound(s string) (int64, error) {
	if s == "-" {
		return playback.UnspecifiedBound, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// listPaths completes filesystem paths for the play command.
func listPaths(line string) []string {
	fields := strings.Fields(line)
	dir := "."
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if i := strings.LastIndex(last, "/"); i >= 0 {
			dir = last[:i+1]
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
