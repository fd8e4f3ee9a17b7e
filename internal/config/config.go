package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DatabasePath   string   `koanf:"database_path"`   // empty means XDG data dir
	LogLevel       string   `koanf:"log_level"`       // zerolog level name (default: "info")
	LibrarySources []string `koanf:"library_sources"` // paths scanned by the importer

	// Engine tuning
	Engine EngineConfig `koanf:"engine"`

	// Desktop integration
	Notifications NotifyConfig `koanf:"notifications"`
}

// EngineConfig tunes the playback engine. Zero values fall back to the
// engine defaults.
type EngineConfig struct {
	FailureThreshold int `koanf:"failure_threshold"` // consecutive decoder errors before reinit (default: 5)
	FastTickMs       int `koanf:"fast_tick_ms"`      // position cadence while playing (default: 100)
	SlowTickMs       int `koanf:"slow_tick_ms"`      // position cadence while paused (default: 500)
	ExtendBatchSize  int `koanf:"extend_batch_size"` // tracks appended by auto-extend (default: 10)
}

// NotifyConfig holds desktop notification configuration.
type NotifyConfig struct {
	Enabled *bool `koanf:"enabled"` // track-change notifications (default: true)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		LogLevel: "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in database_path
	if cfg.DatabasePath != "" {
		cfg.DatabasePath = expandPath(cfg.DatabasePath)
	}

	// Expand ~ in library_sources
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/resona/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resona", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// NotificationsEnabled returns whether track-change notifications should be
// shown (enabled unless explicitly turned off).
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}
