package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return NewManager(path)
}

func TestParseYAML(t *testing.T) {
	m := writeConfig(t, "config.yaml", `
log:
  level: debug
store:
  max_tasks: 10
scheduler:
  poll_interval: 500ms
storage:
  driver: file
  path: ./tasks.txt
`)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Store.MaxTasks != 10 {
		t.Fatalf("store.max_tasks = %d", cfg.Store.MaxTasks)
	}
	d, err := cfg.PollInterval()
	if err != nil || d != 500*time.Millisecond {
		t.Fatalf("poll interval = %v, err %v", d, err)
	}
	// Unset sections keep defaults.
	if u, _ := cfg.StageUnit(); u != time.Second {
		t.Fatalf("stage unit default = %v", u)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := writeConfig(t, "config.yaml", `
log:
  level: info
  verbosity: high
`)
	if _, err := m.Parse(); err == nil {
		t.Fatalf("unknown field accepted")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	m := writeConfig(t, "config.yaml", `
scheduler:
  poll_interval: soon
`)
	if _, err := m.Parse(); err == nil {
		t.Fatalf("invalid duration accepted")
	}
}

func TestParseMissingFileYieldsDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Store.MaxTasks != 256 {
		t.Fatalf("default max_tasks = %d", cfg.Store.MaxTasks)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("default storage driver = %q", cfg.Storage.Driver)
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("telegram enabled without token accepted")
	}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.ChatID = 42
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid telegram config rejected: %v", err)
	}
}

func TestValidateStorageDriver(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown storage driver accepted")
	}
	cfg.Storage.Driver = "none"
	cfg.Storage.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("driver none should not require a path: %v", err)
	}
}
