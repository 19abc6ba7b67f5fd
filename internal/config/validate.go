package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not required
// here; a missing token is reported as unauthenticated by the upload pipeline.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateModeration(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if err := validateHTTPURL("youtube.upload_url", c.YouTube.UploadURL); err != nil {
		return err
	}
	if err := validateHTTPURL("youtube.api_url", c.YouTube.APIURL); err != nil {
		return err
	}
	switch c.YouTube.TransportMode {
	case TransportResumable, TransportMultipart:
	default:
		return fmt.Errorf("youtube.transport_mode must be %q or %q, got %q", TransportResumable, TransportMultipart, c.YouTube.TransportMode)
	}
	if c.YouTube.ChunkSizeKiB <= 0 || c.YouTube.ChunkSizeKiB%256 != 0 {
		return fmt.Errorf("youtube.chunk_size_kib must be a positive multiple of 256, got %d", c.YouTube.ChunkSizeKiB)
	}
	return ensurePositiveMap(map[string]int{
		"youtube.request_timeout_seconds": c.YouTube.RequestTimeoutSeconds,
		"youtube.upload_timeout_seconds":  c.YouTube.UploadTimeoutSeconds,
	})
}

func (c *Config) validateModeration() error {
	if c.Moderation.MinScore < 0 || c.Moderation.MinScore > 1 {
		return errors.New("moderation.min_score must be between 0 and 1")
	}
	if !c.Moderation.Enabled {
		return nil
	}
	return validateHTTPURL("moderation.url", c.Moderation.URL)
}

func (c *Config) validateSchedule() error {
	if c.Schedule.MinLeadMinutes < 0 {
		return errors.New("schedule.min_lead_minutes must not be negative")
	}
	if c.Schedule.DefaultLeadMinutes <= c.Schedule.MinLeadMinutes {
		return fmt.Errorf("schedule.default_lead_minutes (%d) must be greater than schedule.min_lead_minutes (%d)",
			c.Schedule.DefaultLeadMinutes, c.Schedule.MinLeadMinutes)
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must be set", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
