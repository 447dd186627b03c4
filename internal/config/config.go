// Package config defines the CLI configuration and its layered loader.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// DBPath is the SQLite feature store.
	DBPath string `koanf:"db_path"`

	// Workers bounds concurrent per-shot geometry derivation.
	Workers int `koanf:"workers"`

	// Store controls whether derived features are persisted.
	Store bool `koanf:"store"`

	// CacheDir holds event files downloaded by fetch.
	CacheDir string `koanf:"cache_dir"`

	// OpenDataURL is the root of the open-data repository.
	OpenDataURL string `koanf:"open_data_url"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		DBPath:      filepath.Join(userHome(), ".sbfeatures", "features.db"),
		Workers:     runtime.NumCPU(),
		Store:       true,
		CacheDir:    filepath.Join(userHome(), ".sbfeatures", "events"),
		OpenDataURL: "https://raw.githubusercontent.com/statsbomb/open-data/master/data",
	}
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
