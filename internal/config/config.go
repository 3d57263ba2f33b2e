// Package config loads waveline configuration from TOML files with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lcourtet/waveline/internal/resolver"
)

type Config struct {
	// Extensions is the allow-list used when expanding directories.
	Extensions []string `koanf:"extensions" env:"WAVELINE_EXTENSIONS" envSeparator:","`

	// ReadyTimeout bounds the wait for a loaded track to become ready.
	ReadyTimeout time.Duration `koanf:"ready_timeout" env:"WAVELINE_READY_TIMEOUT"`

	// DefaultVolume is the initial volume (0-100).
	DefaultVolume int `koanf:"default_volume" env:"WAVELINE_DEFAULT_VOLUME"`

	// DiscardPendingOnStop makes stop also drop queued jobs instead of
	// letting them start after the session reset.
	DiscardPendingOnStop bool `koanf:"discard_pending_on_stop" env:"WAVELINE_DISCARD_PENDING_ON_STOP"`

	// Mpris exposes transport controls on the session D-Bus (linux only).
	Mpris bool `koanf:"mpris" env:"WAVELINE_MPRIS"`
}

func Default() *Config {
	return &Config{
		Extensions:    append([]string(nil), resolver.DefaultExtensions...),
		ReadyTimeout:  10 * time.Second,
		DefaultVolume: 100,
	}
}

// Load reads config files in priority order (last wins), then applies
// WAVELINE_* environment overrides on top.
func Load() (*Config, error) {
	return load(configPaths())
}

func load(paths []string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, err
		}
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), resolver.DefaultExtensions...)
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 10 * time.Second
	}
	if c.DefaultVolume < 0 {
		c.DefaultVolume = 0
	}
	if c.DefaultVolume > 100 {
		c.DefaultVolume = 100
	}
}

func configPaths() []string {
	return []string{
		// ~/.config/waveline/config.toml
		filepath.Join(xdg.ConfigHome, "waveline", "config.toml"),
		// ./waveline.toml (highest priority)
		"waveline.toml",
	}
}
