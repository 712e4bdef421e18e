package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultServerAddr    = "127.0.0.1:9321"
	defaultHistory       = 20
	defaultWorkers       = 4
	defaultMaxBodyBytes  = 1 << 20
	defaultStateDirLinux = ".local/state/werdiff"
	defaultConfigDir     = ".config/werdiff"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Tokenize struct {
		Lowercase  bool `toml:"lowercase"`
		StripPunct bool `toml:"strip_punct"`
		NFC        bool `toml:"nfc"`
	} `toml:"tokenize"`

	Output struct {
		Format string `toml:"format"` // text, json, yaml
		CER    bool   `toml:"cer"`
	} `toml:"output"`

	Batch struct {
		Workers int `toml:"workers"`
	} `toml:"batch"`

	Recognizer struct {
		Command    string  `toml:"command"` // e.g. "vosk-transcribe --json {input}"
		TimeoutSec float64 `toml:"timeout_sec"`
	} `toml:"recognizer"`

	Server struct {
		Addr         string `toml:"addr"`
		History      int    `toml:"history"`
		MaxBodyBytes int64  `toml:"max_body_bytes"`
	} `toml:"server"`

	Metrics struct {
		Enabled bool `toml:"enabled"`
	} `toml:"metrics"`

	Hooks []HookConfig `toml:"hooks"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Paths struct {
		StateDir    string `toml:"state_dir"`
		LogPath     string `toml:"log_path"`
		HistoryPath string `toml:"history_path"`
		PidPath     string `toml:"pid_path"`
		ConfigPath  string `toml:"-"`
	} `toml:"paths"`
}

// HookConfig is a command fired after scoring when the error rate reaches
// MinWER (a percentage).
type HookConfig struct {
	MinWER     float64           `toml:"min_wer"`
	Command    string            `toml:"command"`
	Args       []string          `toml:"args"`
	Prefix     string            `toml:"prefix"`
	TimeoutSec float64           `toml:"timeout_sec"`
	Env        map[string]string `toml:"env"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/werdiff for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "werdiff")
	}

	cfg := &Config{}

	cfg.Output.Format = "text"

	cfg.Batch.Workers = defaultWorkers

	cfg.Recognizer.TimeoutSec = 300

	cfg.Server.Addr = defaultServerAddr
	cfg.Server.History = defaultHistory
	cfg.Server.MaxBodyBytes = defaultMaxBodyBytes

	cfg.Metrics.Enabled = true

	cfg.Hooks = []HookConfig{}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "werdiff.log")
	cfg.Paths.HistoryPath = filepath.Join(stateDir, "scores.log")
	cfg.Paths.PidPath = filepath.Join(stateDir, "werdiff.pid")

	return cfg, nil
}

// DefaultPath is ~/.config/werdiff/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultConfigDir, "config.toml")
}

// Load loads config from file, applying defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultPath()
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			applyEnvOverrides(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// Validate rejects values the commands cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be text, json or yaml (got %q)", c.Output.Format)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1 (got %d)", c.Batch.Workers)
	}
	for i, hk := range c.Hooks {
		if strings.TrimSpace(hk.Command) == "" {
			return fmt.Errorf("hooks[%d].command is empty", i)
		}
	}
	return nil
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), filepath.Dir(cfg.Paths.HistoryPath), filepath.Dir(cfg.Paths.PidPath)} {
		if p == "" || p == "." {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WERDIFF_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("WERDIFF_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = envBool(v)
	}
	if v := os.Getenv("WERDIFF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WERDIFF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WERDIFF_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("WERDIFF_LOWERCASE"); v != "" {
		cfg.Tokenize.Lowercase = envBool(v)
	}
}

func envBool(v string) bool {
	return v != "0" && strings.ToLower(v) != "false"
}
