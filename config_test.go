package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "ALLOWED_ORIGIN", "RATE_LIMIT_PER_MINUTE", "UPLOAD_ROOT",
		"DATABASE_URL", "LOG_LEVEL", "LOG_PATH", "TRIGGER_MODE", "TRIGGER_URL",
		"TRIGGER_TOKEN", "TRIGGER_DIR", "TRIGGER_COMMAND", "TRIGGER_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("expected 0.0.0.0:8080, got %s", cfg.Addr())
	}
	if cfg.Storage.UploadRoot != "incoming_uploads" {
		t.Fatalf("expected incoming_uploads, got %s", cfg.Storage.UploadRoot)
	}
	if cfg.Trigger.Mode != "log" || cfg.Trigger.Timeout != 5*time.Minute {
		t.Fatalf("unexpected trigger defaults %+v", cfg.Trigger)
	}
	if cfg.Storage.MaxMemoryMB != 32 {
		t.Fatalf("expected 32MB multipart memory, got %d", cfg.Storage.MaxMemoryMB)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  rate_limit_per_minute: 30
storage:
  upload_root: /var/uploads
trigger:
  mode: command
  command: ["ssh", "builder@windows", "powershell.exe", "C:\\scripts\\doGitPush.ps1"]
  timeout: 2m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9191")
	t.Setenv("TRIGGER_TIMEOUT", "45s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("expected env port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimitPerMinute != 30 {
		t.Fatalf("expected rate limit 30, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Storage.UploadRoot != "/var/uploads" {
		t.Fatalf("expected /var/uploads, got %s", cfg.Storage.UploadRoot)
	}
	if len(cfg.Trigger.Command) != 4 || cfg.Trigger.Command[3] != `C:\scripts\doGitPush.ps1` {
		t.Fatalf("unexpected command %v", cfg.Trigger.Command)
	}
	if cfg.Trigger.Timeout != 45*time.Second {
		t.Fatalf("expected env timeout 45s, got %v", cfg.Trigger.Timeout)
	}
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "eighty")

	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for invalid PORT")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
