package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"clipdeck/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CLIPDECK_ACCESS_TOKEN", "env-token")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "clipdeck")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.History.Path != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if cfg.YouTube.AccessToken != "env-token" {
		t.Fatalf("expected access token from env, got %q", cfg.YouTube.AccessToken)
	}
	if cfg.YouTube.TransportMode != config.TransportResumable {
		t.Fatalf("unexpected transport mode: %q", cfg.YouTube.TransportMode)
	}
	if cfg.ChunkSize() != 256*1024 {
		t.Fatalf("unexpected chunk size: %d", cfg.ChunkSize())
	}
	if cfg.MinLead() != 15*time.Minute || cfg.DefaultLead() != 30*time.Minute {
		t.Fatalf("unexpected schedule leads: min=%s default=%s", cfg.MinLead(), cfg.DefaultLead())
	}
	if cfg.YouTube.ForcePrivateUpload {
		t.Fatal("expected force_private_upload disabled by default")
	}
	if !cfg.Moderation.Enabled {
		t.Fatal("expected moderation enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("CLIPDECK_MODERATION_URL", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clipdeck.toml")

	type payload struct {
		YouTube struct {
			AccessToken   string `toml:"access_token"`
			TransportMode string `toml:"transport_mode"`
			ChunkSizeKiB  int    `toml:"chunk_size_kib"`
		} `toml:"youtube"`
		Moderation struct {
			URL      string  `toml:"url"`
			MinScore float64 `toml:"min_score"`
		} `toml:"moderation"`
	}
	custom := payload{}
	custom.YouTube.AccessToken = "file-token"
	custom.YouTube.TransportMode = "Multipart"
	custom.YouTube.ChunkSizeKiB = 1024
	custom.Moderation.URL = "http://moderator.local:9000/"
	custom.Moderation.MinScore = 0.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.YouTube.AccessToken != "file-token" {
		t.Fatalf("expected token from file, got %q", cfg.YouTube.AccessToken)
	}
	if cfg.YouTube.TransportMode != config.TransportMultipart {
		t.Fatalf("expected multipart transport, got %q", cfg.YouTube.TransportMode)
	}
	if cfg.ChunkSize() != 1024*1024 {
		t.Fatalf("unexpected chunk size: %d", cfg.ChunkSize())
	}
	if cfg.Moderation.URL != "http://moderator.local:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Moderation.URL)
	}
	if cfg.Moderation.MinScore != 0.5 {
		t.Fatalf("expected min score 0.5, got %v", cfg.Moderation.MinScore)
	}
}

func TestLoadReadsDotEnvBesideConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clipdeck.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte("NTFY_TOPIC=clipdeck-test\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("NTFY_TOPIC", "")
	os.Unsetenv("NTFY_TOPIC")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "clipdeck-test" {
		t.Fatalf("expected ntfy topic from .env, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_access_token_here") {
		t.Fatalf("sample config missing placeholder token: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StateDir, "clipdeck") {
		t.Fatalf("expected state dir to contain clipdeck, got %q", cfg.Paths.StateDir)
	}
	if cfg.YouTube.ChunkSizeKiB != 256 {
		t.Fatalf("expected sample chunk size 256, got %d", cfg.YouTube.ChunkSizeKiB)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"chunk not multiple of 256", func(c *config.Config) { c.YouTube.ChunkSizeKiB = 300 }},
		{"negative chunk", func(c *config.Config) { c.YouTube.ChunkSizeKiB = -256 }},
		{"unknown transport", func(c *config.Config) { c.YouTube.TransportMode = "ftp" }},
		{"bad upload url", func(c *config.Config) { c.YouTube.UploadURL = "ftp://example.com" }},
		{"zero request timeout", func(c *config.Config) { c.YouTube.RequestTimeoutSeconds = 0 }},
		{"min score above one", func(c *config.Config) { c.Moderation.MinScore = 1.5 }},
		{"moderation url missing host", func(c *config.Config) { c.Moderation.URL = "http://" }},
		{"default lead not after min lead", func(c *config.Config) { c.Schedule.DefaultLeadMinutes = c.Schedule.MinLeadMinutes }},
		{"negative min lead", func(c *config.Config) { c.Schedule.MinLeadMinutes = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg = config.Default()
	cfg.Moderation.Enabled = false
	cfg.Moderation.URL = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled moderation to skip url check, got %v", err)
	}
}
