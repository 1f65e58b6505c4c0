package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"keysync/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Directory.AutoSync || !cfg.Directory.GenerateKeys {
		t.Fatalf("defaults not applied: %+v", cfg.Directory)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("default log level %q", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	data := `[directory]
url = "https://keys.example.org"
auto_sync = false

[log]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(home, config.FileName), []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Directory.URL != "https://keys.example.org" {
		t.Fatalf("url %q", cfg.Directory.URL)
	}
	if cfg.Directory.AutoSync {
		t.Fatal("auto_sync override lost")
	}
	if !cfg.Directory.GenerateKeys {
		t.Fatal("unset key must keep its default")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level %q", cfg.Log.Level)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	home := t.TempDir()
	data := "[directory]\nunrecognized = true\nurl = \"https://keys.example.org\"\n"
	if err := os.WriteFile(filepath.Join(home, config.FileName), []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Directory.URL != "https://keys.example.org" {
		t.Fatalf("url %q", cfg.Directory.URL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, config.FileName), []byte("[directory\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(home); err == nil {
		t.Fatal("expected an error for a malformed file")
	}
}
