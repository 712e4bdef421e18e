package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("WERDIFF_SERVER_ADDR", "1.2.3.4:9999")
	t.Setenv("WERDIFF_METRICS_ENABLED", "false")
	t.Setenv("WERDIFF_LOG_LEVEL", "debug")
	t.Setenv("WERDIFF_LOG_FORMAT", "json")
	t.Setenv("WERDIFF_OUTPUT_FORMAT", "yaml")
	t.Setenv("WERDIFF_LOWERCASE", "1")

	applyEnvOverrides(cfg)

	if cfg.Server.Addr != "1.2.3.4:9999" {
		t.Fatalf("server addr override failed: %+v", cfg.Server)
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("metrics should be disabled via env")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if cfg.Output.Format != "yaml" || !cfg.Tokenize.Lowercase {
		t.Fatalf("output/tokenize overrides failed: %+v %+v", cfg.Output, cfg.Tokenize)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = path
	cfg.Tokenize.StripPunct = true
	cfg.Hooks = []HookConfig{{MinWER: 25, Command: "/bin/echo", Prefix: "wer:"}}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Tokenize.StripPunct {
		t.Fatalf("expected strip_punct to persist")
	}
	if len(loaded.Hooks) != 1 || loaded.Hooks[0].Command != "/bin/echo" || loaded.Hooks[0].MinWER != 25 {
		t.Fatalf("hooks did not persist: %+v", loaded.Hooks)
	}
	if loaded.Paths.ConfigPath != path {
		t.Fatalf("config path = %q", loaded.Paths.ConfigPath)
	}
}

func TestLoadWritesTemplateWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Format != "text" || cfg.Batch.Workers != defaultWorkers {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad_format", "[output]\nformat = \"xml\"\n", "output.format"},
		{"zero_workers", "[batch]\nworkers = 0\n", "batch.workers"},
		{"empty_hook", "[[hooks]]\nmin_wer = 10.0\n", "hooks[0].command"},
		{"bad_toml", "[output\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFileValidatesEnvOverrides(t *testing.T) {
	t.Setenv("WERDIFF_OUTPUT_FORMAT", "xml")
	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "output.format") {
		t.Fatalf("Load err = %v, want output.format error", err)
	}
}
