package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Prompt != "$ " {
		t.Fatalf("prompt = %q, want %q", cfg.Prompt, "$ ")
	}
	if cfg.Interactive != InteractiveAuto {
		t.Fatalf("interactive = %q, want %q", cfg.Interactive, InteractiveAuto)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log level = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("prompt: \"> \"\ninteractive: never\nlog_level: debug\nhome_dir: /tmp\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Prompt != "> " || cfg.Interactive != InteractiveNever || cfg.LogLevel != "debug" || cfg.HomeDir != "/tmp" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsUnknownInteractiveMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("interactive: sometimes\nhome_dir: /tmp\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown interactive mode")
	}
}
