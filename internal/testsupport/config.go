package testsupport

import (
	"path/filepath"
	"testing"

	"clipdeck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.YouTube.AccessToken = "test-token"
	cfgVal.YouTube.RequestTimeoutSeconds = 5
	cfgVal.YouTube.UploadTimeoutSeconds = 5
	cfgVal.Moderation.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHosting points the upload and metadata endpoints at a fake server.
func WithHosting(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.UploadURL = baseURL + "/upload/youtube/v3/videos"
		b.cfg.YouTube.APIURL = baseURL + "/youtube/v3"
	}
}

// WithModeration points the moderation gate at a fake server.
func WithModeration(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Moderation.Enabled = true
		b.cfg.Moderation.URL = baseURL
	}
}

// WithoutModeration disables the moderation gate.
func WithoutModeration() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Moderation.Enabled = false
	}
}

// WithAccessToken overrides the bearer token; an empty value leaves the
// config unauthenticated.
func WithAccessToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.AccessToken = token
	}
}

// WithTransport selects the transport mode and chunk size.
func WithTransport(mode string, chunkKiB int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.TransportMode = mode
		if chunkKiB > 0 {
			b.cfg.YouTube.ChunkSizeKiB = chunkKiB
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
