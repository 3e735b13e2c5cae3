// Package config carries process configuration: code defaults, an optional
// YAML file, then environment overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type RetentionConfig struct {
	// MaxAge is how long generated artifacts are kept in the output store.
	// Zero disables the sweep.
	MaxAge time.Duration `yaml:"max_age"`
	// SweepInterval is how often the retention sweep runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type WatcherConfig struct {
	Enabled        bool          `yaml:"enabled"`
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	IgnorePatterns []string      `yaml:"ignore_patterns"`
}

type Config struct {
	// TemplatesDir holds the template collection: one file per template,
	// kind derived from the extension.
	TemplatesDir string `yaml:"templates_dir"`
	// OutputDir receives generated artifacts in download_link mode.
	OutputDir string `yaml:"output_dir"`
	// IndexPath is the SQLite database indexing stored artifacts.
	IndexPath string `yaml:"index_path"`
	// BaseURL prefixes download links handed to callers.
	BaseURL string `yaml:"base_url"`
	// ListenAddr is the HTTP API bind address.
	ListenAddr string `yaml:"listen_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Retention RetentionConfig `yaml:"retention"`
	Watcher   WatcherConfig   `yaml:"watcher"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	baseDir := filepath.Join(home, ".docsmith")

	return &Config{
		TemplatesDir: filepath.Join(baseDir, "templates"),
		OutputDir:    filepath.Join(baseDir, "generated"),
		IndexPath:    filepath.Join(baseDir, "artifacts.db"),
		BaseURL:      "http://localhost:8080",
		ListenAddr:   ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
		Retention: RetentionConfig{
			MaxAge:        72 * time.Hour,
			SweepInterval: time.Hour,
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceWindow: 300 * time.Millisecond,
			MaxBatchSize:   100,
			IgnorePatterns: []string{
				"~$*",    // Office lock files
				".*",     // hidden files
				"*.tmp",
				"*.partial",
			},
		},
	}
}

// Load builds the configuration. path may be empty; when set, the YAML file
// must exist and parse. Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("DOCSMITH_TEMPLATES_DIR", &cfg.TemplatesDir)
	set("DOCSMITH_OUTPUT_DIR", &cfg.OutputDir)
	set("DOCSMITH_INDEX_PATH", &cfg.IndexPath)
	set("DOCSMITH_BASE_URL", &cfg.BaseURL)
	set("DOCSMITH_LISTEN_ADDR", &cfg.ListenAddr)
	set("DOCSMITH_LOG_LEVEL", &cfg.LogLevel)
	set("DOCSMITH_LOG_FORMAT", &cfg.LogFormat)
}

// EnsureDirectories creates the working directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.TemplatesDir, c.OutputDir, filepath.Dir(c.IndexPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
