// Package resolver expands filesystem paths into ordered lists of playable
// tracks. Directories are walked recursively; files are kept when their name
// ends in one of the allowed extensions.
package resolver

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// DefaultExtensions is the extension allow-list used when none is configured.
var DefaultExtensions = []string{".mp3", ".wav"}

// Track describes a single playable file.
type Track struct {
	Path   string
	Title  string
	Artist string
	Size   int64
}

// Resolver expands paths using a fixed extension allow-list.
type Resolver struct {
	extensions []string
}

// New creates a resolver. With no extensions given, DefaultExtensions is used.
func New(extensions ...string) *Resolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{extensions: extensions}
}

// Resolve expands every path into zero or more tracks, in order.
//
// A path that does not exist is logged and skipped; the remaining paths are
// still resolved. A plain file is kept only if its name matches the allow-list
// (the match is a case-sensitive suffix check). A directory is walked
// recursively; entries are visited in lexical order, which is what determines
// playback order within that directory.
func (r *Resolver) Resolve(paths ...string) []Track {
	var tracks []Track
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			slog.Error("cannot resolve path, skipping", "path", path, "error", err)
			continue
		}
		if info.IsDir() {
			tracks = append(tracks, r.walk(path)...)
			continue
		}
		if r.matches(path) {
			tracks = append(tracks, trackFromPath(path, info.Size()))
		}
	}
	return tracks
}

func (r *Resolver) walk(root string) []Track {
	var tracks []Track
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip unreadable entries, keep walking.
			return nil //nolint:nilerr
		}
		if d.IsDir() || !r.matches(path) {
			return nil
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		tracks = append(tracks, trackFromPath(path, size))
		return nil
	})
	if err != nil {
		slog.Error("directory walk failed", "path", root, "error", err)
	}
	return tracks
}

func (r *Resolver) matches(path string) bool {
	for _, ext := range r.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// trackFromPath builds a track from a file path, reading tag metadata when
// available and falling back to the base name.
func trackFromPath(path string, size int64) Track {
	t := Track{
		Path:  path,
		Title: filepath.Base(path),
		Size:  size,
	}

	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}
	if title := m.Title(); title != "" {
		t.Title = title
	}
	t.Artist = m.Artist()
	return t
}
