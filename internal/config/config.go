package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// YouTube contains configuration for the hosting API and the upload transport.
type YouTube struct {
	UploadURL             string `toml:"upload_url"`
	APIURL                string `toml:"api_url"`
	AccessToken           string `toml:"access_token"`
	TokenFile             string `toml:"token_file"`
	TransportMode         string `toml:"transport_mode"`
	ChunkSizeKiB          int    `toml:"chunk_size_kib"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	UploadTimeoutSeconds  int    `toml:"upload_timeout_seconds"`
	CategoryID            string `toml:"category_id"`
	MadeForKids           bool   `toml:"made_for_kids"`
	// ForcePrivateUpload creates assets private and promotes them with a
	// follow-up visibility patch once the transfer completes.
	ForcePrivateUpload bool `toml:"force_private_upload"`
}

// Moderation contains configuration for the external content analysis service.
type Moderation struct {
	Enabled        bool    `toml:"enabled"`
	URL            string  `toml:"url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinScore       float64 `toml:"min_score"`
}

// Schedule contains the publish scheduling windows. MinLeadMinutes is enforced;
// DefaultLeadMinutes only seeds the suggested publish time.
type Schedule struct {
	MinLeadMinutes     int `toml:"min_lead_minutes"`
	DefaultLeadMinutes int `toml:"default_lead_minutes"`
}

// History contains configuration for the local upload history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Success        bool   `toml:"success"`
	Flagged        bool   `toml:"flagged"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipdeck.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - YouTube: hosting API endpoints, credential sources, transport tuning
//   - Moderation: content analysis endpoint and flag threshold policy
//   - Schedule: enforced and suggested publish lead windows
//   - History: local record of finished uploads
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Moderation    Moderation    `toml:"moderation"`
	Schedule      Schedule      `toml:"schedule"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipdeck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotEnv reads .env files next to the config and in the working directory.
// Variables already present in the environment win.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env")}
	if wd, err := os.Getwd(); err == nil {
		local := filepath.Join(wd, ".env")
		if local != candidates[0] {
			candidates = append(candidates, local)
		}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load %s: %w", candidate, err)
		}
	}
	return nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockDir returns the directory holding per-file upload locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// MinLead returns the enforced minimum distance between now and a publish time.
func (c *Config) MinLead() time.Duration {
	return time.Duration(c.Schedule.MinLeadMinutes) * time.Minute
}

// DefaultLead returns the suggested distance used to pre-fill a publish time.
func (c *Config) DefaultLead() time.Duration {
	return time.Duration(c.Schedule.DefaultLeadMinutes) * time.Minute
}

// RequestTimeout returns the per-call timeout for hosting API requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.YouTube.RequestTimeoutSeconds) * time.Second
}

// UploadTimeout returns the timeout for a single-shot multipart upload.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.YouTube.UploadTimeoutSeconds) * time.Second
}

// ModerationTimeout returns the timeout for one analysis round trip.
func (c *Config) ModerationTimeout() time.Duration {
	return time.Duration(c.Moderation.TimeoutSeconds) * time.Second
}

// ChunkSize returns the resumable chunk size in bytes.
func (c *Config) ChunkSize() int64 {
	return int64(c.YouTube.ChunkSizeKiB) * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
