package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != "file" || cfg.Store.Path != "prefs.json" {
		t.Fatalf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms tick, got %s", cfg.TickInterval)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info level, got %q", cfg.Log.Level)
	}
	f, err := cfg.DocumentFormat()
	if err != nil || f.Name() != "json" {
		t.Fatalf("expected json format, got %v %v", f, err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "prefsctl.yaml")
	content := []byte(`document: game
tick_interval: 1s
store:
  driver: sqlite
  path: /tmp/game.sqlite
  key: settings
activity:
  enabled: true
  actor_id: device-7
`)
	if err := os.WriteFile(file, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PREFS_LOG_LEVEL", "debug")
	t.Setenv("PREFS_STORE_KEY", "override")

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Document != "game" || cfg.TickInterval != time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/tmp/game.sqlite" {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
	if cfg.Store.Key != "override" {
		t.Fatalf("env should override file, got %q", cfg.Store.Key)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected env log level, got %q", cfg.Log.Level)
	}
	if !cfg.Activity.Enabled || cfg.Activity.ActorID != "device-7" {
		t.Fatalf("unexpected activity %+v", cfg.Activity)
	}
}

func TestLoadFormatFromPath(t *testing.T) {
	t.Setenv("PREFS_STORE_PATH", "settings.yaml")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f, err := cfg.DocumentFormat()
	if err != nil || f.Name() != "yaml" {
		t.Fatalf("expected yaml from extension, got %v %v", f, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
	t.Setenv("PREFS_TICK_INTERVAL", "0s")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-positive tick interval")
	}
	t.Setenv("PREFS_TICK_INTERVAL", "")
	t.Setenv("PREFS_FORMAT", "toml")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.DocumentFormat(); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
