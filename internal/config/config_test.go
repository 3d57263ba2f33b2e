package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".mp3" || cfg.Extensions[1] != ".wav" {
		t.Errorf("Extensions = %v, want [.mp3 .wav]", cfg.Extensions)
	}
	if cfg.ReadyTimeout != 10*time.Second {
		t.Errorf("ReadyTimeout = %v, want 10s", cfg.ReadyTimeout)
	}
	if cfg.DefaultVolume != 100 {
		t.Errorf("DefaultVolume = %d, want 100", cfg.DefaultVolume)
	}
	if cfg.DiscardPendingOnStop {
		t.Error("DiscardPendingOnStop should default to false")
	}
}

func TestLoad_FromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waveline.toml")
	content := `
extensions = [".mp3", ".wav", ".flac"]
ready_timeout = "3s"
default_volume = 60
discard_pending_on_stop = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Extensions) != 3 {
		t.Errorf("Extensions = %v, want three entries", cfg.Extensions)
	}
	if cfg.ReadyTimeout != 3*time.Second {
		t.Errorf("ReadyTimeout = %v, want 3s", cfg.ReadyTimeout)
	}
	if cfg.DefaultVolume != 60 {
		t.Errorf("DefaultVolume = %d, want 60", cfg.DefaultVolume)
	}
	if !cfg.DiscardPendingOnStop {
		t.Error("DiscardPendingOnStop = false, want true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waveline.toml")
	if err := os.WriteFile(path, []byte(`default_volume = 60`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WAVELINE_DEFAULT_VOLUME", "30")
	t.Setenv("WAVELINE_EXTENSIONS", ".ogg,.opus")

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DefaultVolume != 30 {
		t.Errorf("DefaultVolume = %d, want env override 30", cfg.DefaultVolume)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".ogg" {
		t.Errorf("Extensions = %v, want [.ogg .opus]", cfg.Extensions)
	}
}

func TestLoad_MissingFilesFallBackToDefaults(t *testing.T) {
	cfg, err := load([]string{filepath.Join(t.TempDir(), "absent.toml")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReadyTimeout != 10*time.Second || cfg.DefaultVolume != 100 {
		t.Errorf("missing files should keep defaults, got %+v", cfg)
	}
}

func TestNormalize_ClampsVolume(t *testing.T) {
	cfg := &Config{DefaultVolume: 250}
	cfg.normalize()
	if cfg.DefaultVolume != 100 {
		t.Errorf("DefaultVolume = %d, want clamp to 100", cfg.DefaultVolume)
	}

	cfg = &Config{DefaultVolume: -10}
	cfg.normalize()
	if cfg.DefaultVolume != 0 {
		t.Errorf("DefaultVolume = %d, want clamp to 0", cfg.DefaultVolume)
	}
}
