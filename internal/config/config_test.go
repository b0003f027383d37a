package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelbrown/codepad/internal/sandbox"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Judge.PollInterval != 1500*time.Millisecond {
		t.Errorf("poll_interval = %v, want 1.5s", cfg.Judge.PollInterval)
	}
	if cfg.Judge.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.Judge.Timeout)
	}
	if cfg.Sandbox.Mode != sandbox.ModeEmbedded {
		t.Errorf("sandbox mode = %q, want %q", cfg.Sandbox.Mode, sandbox.ModeEmbedded)
	}
	if cfg.Sandbox.Policy.MaxTimeout != 5*time.Second {
		t.Errorf("max_timeout = %v, want 5s", cfg.Sandbox.Policy.MaxTimeout)
	}
	if len(cfg.Sandbox.Policy.Images) == 0 {
		t.Error("images should default to the allowlist")
	}
}

func TestLoadFileAndEnvExpansion(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JUDGE_TOKEN", "secret")

	yaml := `
server:
  port: 9090
judge:
  base_url: https://judge.example.com
  api_key: ${JUDGE_TOKEN}
  timeout: 10s
sandbox:
  mode: docker
  max_memory: 256m
log:
  development: true
`
	if err := os.WriteFile(filepath.Join(dir, "codepad.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Judge.BaseURL != "https://judge.example.com" {
		t.Errorf("base_url = %q", cfg.Judge.BaseURL)
	}
	if cfg.Judge.APIKey != "secret" {
		t.Errorf("api_key = %q, want expanded %q", cfg.Judge.APIKey, "secret")
	}
	if cfg.Judge.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Judge.Timeout)
	}
	if cfg.Sandbox.Mode != sandbox.ModeDocker {
		t.Errorf("sandbox mode = %q, want docker", cfg.Sandbox.Mode)
	}
	if cfg.Sandbox.Policy.MaxMemory != "256m" {
		t.Errorf("max_memory = %q, want 256m", cfg.Sandbox.Policy.MaxMemory)
	}
	if !cfg.Log.Development {
		t.Error("log.development should be true")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CODEPAD_SERVER_PORT", "7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("X_KEY", "v")
	tests := map[string]string{
		"${X_KEY}": "v",
		"plain":    "plain",
		"":         "",
		"${":       "${",
	}
	for in, want := range tests {
		if got := expandEnv(in); got != want {
			t.Errorf("expandEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
