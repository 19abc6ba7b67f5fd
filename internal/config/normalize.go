package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	c.normalizeModeration()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() error {
	c.YouTube.UploadURL = strings.TrimRight(strings.TrimSpace(c.YouTube.UploadURL), "/")
	if c.YouTube.UploadURL == "" {
		c.YouTube.UploadURL = defaultUploadURL
	}
	c.YouTube.APIURL = strings.TrimRight(strings.TrimSpace(c.YouTube.APIURL), "/")
	if c.YouTube.APIURL == "" {
		c.YouTube.APIURL = defaultAPIURL
	}
	c.YouTube.AccessToken = strings.TrimSpace(c.YouTube.AccessToken)
	if c.YouTube.AccessToken == "" {
		if value, ok := os.LookupEnv("CLIPDECK_ACCESS_TOKEN"); ok {
			c.YouTube.AccessToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("YOUTUBE_ACCESS_TOKEN"); ok {
			c.YouTube.AccessToken = strings.TrimSpace(value)
		}
	}
	var err error
	if c.YouTube.TokenFile, err = expandPath(strings.TrimSpace(c.YouTube.TokenFile)); err != nil {
		return fmt.Errorf("youtube.token_file: %w", err)
	}
	c.YouTube.TransportMode = strings.ToLower(strings.TrimSpace(c.YouTube.TransportMode))
	if c.YouTube.TransportMode == "" {
		c.YouTube.TransportMode = defaultTransportMode
	}
	if c.YouTube.ChunkSizeKiB == 0 {
		c.YouTube.ChunkSizeKiB = defaultChunkSizeKiB
	}
	if c.YouTube.RequestTimeoutSeconds <= 0 {
		c.YouTube.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.YouTube.UploadTimeoutSeconds <= 0 {
		c.YouTube.UploadTimeoutSeconds = defaultUploadTimeoutSeconds
	}
	c.YouTube.CategoryID = strings.TrimSpace(c.YouTube.CategoryID)
	if c.YouTube.CategoryID == "" {
		c.YouTube.CategoryID = defaultCategoryID
	}
	return nil
}

func (c *Config) normalizeModeration() {
	if value, ok := os.LookupEnv("CLIPDECK_MODERATION_URL"); ok && strings.TrimSpace(value) != "" {
		c.Moderation.URL = value
	}
	c.Moderation.URL = strings.TrimRight(strings.TrimSpace(c.Moderation.URL), "/")
	if c.Moderation.URL == "" {
		c.Moderation.URL = defaultModerationURL
	}
	if c.Moderation.TimeoutSeconds <= 0 {
		c.Moderation.TimeoutSeconds = defaultModerationTimeout
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
