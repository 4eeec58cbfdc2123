package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":5000"
stories:
  ttl: 12h
  sweep_interval: 30m
  max_upload_size: 1048576
cors:
  allowed_origins:
    - https://propcid.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":5000" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Stories.TTL != 12*time.Hour {
		t.Fatalf("unexpected story ttl: %s", cfg.Stories.TTL)
	}
	if cfg.Stories.SweepInterval != 30*time.Minute {
		t.Fatalf("unexpected sweep interval: %s", cfg.Stories.SweepInterval)
	}
	if cfg.Stories.MaxUploadSize != 1<<20 {
		t.Fatalf("unexpected max upload size: %d", cfg.Stories.MaxUploadSize)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://propcid.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORS.AllowedOrigins)
	}

	if cfg.Stories.AuthorImage == "" {
		t.Fatalf("author image default should stay set")
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("jwt access ttl default should stay 15m, got %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Stories.TTL != 24*time.Hour {
		t.Fatalf("unexpected default story ttl: %s", cfg.Stories.TTL)
	}
	if cfg.Stories.SweepInterval != time.Hour {
		t.Fatalf("unexpected default sweep interval: %s", cfg.Stories.SweepInterval)
	}
	if cfg.Stories.MaxUploadSize != 50<<20 {
		t.Fatalf("unexpected default max upload size: %d", cfg.Stories.MaxUploadSize)
	}
	if cfg.HTTP.Addr != ":4000" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORY_TTL", "48h")
	t.Setenv("STORY_MAX_UPLOAD_SIZE", "2048")
	t.Setenv("CLIENT_URL", "https://front.propcid.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Stories.TTL != 48*time.Hour {
		t.Fatalf("env story ttl override not applied: %s", cfg.Stories.TTL)
	}
	if cfg.Stories.MaxUploadSize != 2048 {
		t.Fatalf("env max upload size override not applied: %d", cfg.Stories.MaxUploadSize)
	}
	found := false
	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "https://front.propcid.example" {
			found = true
		}
	}
	if !found {
		t.Fatalf("CLIENT_URL should be appended to cors origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"SESSION_TTL",
		"STORY_TTL",
		"STORY_SWEEP_INTERVAL",
		"STORY_MAX_UPLOAD_SIZE",
		"STORY_AUTHOR_IMAGE",
		"CLIENT_URL",
	} {
		t.Setenv(key, "")
	}
}
