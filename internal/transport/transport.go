package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipdeck/internal/config"
	"clipdeck/internal/credentials"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/metadata"
	"clipdeck/internal/services"
)

const (
	phase                 = "uploading"
	chunkQuantum          = 256 * 1024
	defaultRequestTimeout = 2 * time.Minute
	defaultUploadTimeout  = time.Hour
	maxResponseBody       = 1 << 20
)

// Transport is the upload capability shared by both strategies.
type Transport interface {
	// Initiate declares the upload and returns a fresh session.
	Initiate(ctx context.Context, meta metadata.Wire, src media.Source) (*Session, error)
	// Drive transfers src through session and returns the remote asset id.
	Drive(ctx context.Context, session *Session, src media.Source, onProgress ProgressFunc) (string, error)
}

// Config captures the endpoint and tuning shared by both strategies.
type Config struct {
	UploadURL      string
	ChunkSize      int64
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// ConfigFromApp maps application config onto transport settings.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		UploadURL:      cfg.YouTube.UploadURL,
		ChunkSize:      cfg.ChunkSize(),
		RequestTimeout: cfg.RequestTimeout(),
		UploadTimeout:  cfg.UploadTimeout(),
	}
}

// Option customizes a transport.
type Option func(*base)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *base) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// New returns the strategy selected by youtube.transport_mode.
func New(cfg *config.Config, creds credentials.Supplier, opts ...Option) (Transport, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, phase, "select transport", "config is nil", nil)
	}
	switch cfg.YouTube.TransportMode {
	case config.TransportResumable, "":
		return NewResumable(ConfigFromApp(cfg), creds, opts...), nil
	case config.TransportMultipart:
		return NewMultipart(ConfigFromApp(cfg), creds, opts...), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, phase, "select transport",
			fmt.Sprintf("unknown transport mode %q", cfg.YouTube.TransportMode), nil)
	}
}

// base holds what both strategies share.
type base struct {
	cfg        Config
	creds      credentials.Supplier
	httpClient *http.Client
	logger     *slog.Logger
}

func newBase(cfg Config, creds credentials.Supplier, component string, opts []Option) base {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunkQuantum
	}
	cfg.UploadURL = strings.TrimRight(strings.TrimSpace(cfg.UploadURL), "/")
	b := base{cfg: cfg, creds: creds, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = logging.NewComponentLogger(b.logger, component)
	return b
}

func (b *base) endpoint(uploadType string) string {
	values := url.Values{}
	values.Set("uploadType", uploadType)
	values.Set("part", "snippet,status")
	return b.cfg.UploadURL + "?" + values.Encode()
}

// authorize resolves the bearer credential for one request.
func (b *base) authorize(ctx context.Context, req *http.Request) error {
	token, err := credentials.Require(ctx, b.creds, phase)
	if err != nil {
		return err
	}
	credentials.Authorize(req, token)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", rid)
	}
	return nil
}

func validateSource(src media.Source) error {
	if src == nil || src.Size() <= 0 {
		return services.Wrap(services.ErrValidation, phase, "initiate", "file is empty", nil)
	}
	return nil
}

type videoResource struct {
	ID string `json:"id"`
}

// decodeRemoteID reads the asset id from a terminal response body.
func decodeRemoteID(resp *http.Response) (string, error) {
	var resource videoResource
	if err := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxResponseBody)).Decode(&resource); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if strings.TrimSpace(resource.ID) == "" {
		return "", fmt.Errorf("upload response carries no id")
	}
	return resource.ID, nil
}

func isSuccess(status int) bool { return status >= 200 && status <= 299 }
