package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clipdeck/internal/config"
	"clipdeck/internal/credentials"
	"clipdeck/internal/logging"
	"clipdeck/internal/metadata"
	"clipdeck/internal/services"
)

const patchPhase = "patching"

// HTTPDoer describes the HTTP client used by the videos service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusUpdater changes the visibility of an uploaded asset.
type StatusUpdater interface {
	UpdateVisibility(ctx context.Context, videoID string, visibility metadata.Visibility, madeForKids bool) error
}

// VideosClient talks to the videos resource of the data API.
type VideosClient struct {
	apiURL  string
	creds   credentials.Supplier
	client  HTTPDoer
	timeout time.Duration
	logger  *slog.Logger
}

// NewVideosClient constructs a client rooted at apiURL, for example
// https://www.googleapis.com/youtube/v3.
func NewVideosClient(apiURL string, creds credentials.Supplier, client HTTPDoer, timeout time.Duration, logger *slog.Logger) *VideosClient {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &VideosClient{
		apiURL:  strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		creds:   creds,
		client:  client,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "youtube.videos"),
	}
}

// NewConfiguredClient builds a VideosClient from application config.
func NewConfiguredClient(cfg *config.Config, creds credentials.Supplier, logger *slog.Logger) *VideosClient {
	if cfg == nil {
		return NewVideosClient("", creds, nil, 0, logger)
	}
	return NewVideosClient(cfg.YouTube.APIURL, creds, nil, cfg.RequestTimeout(), logger)
}

type statusPatch struct {
	ID     string `json:"id"`
	Status struct {
		PrivacyStatus           metadata.Visibility `json:"privacyStatus"`
		SelfDeclaredMadeForKids bool                `json:"selfDeclaredMadeForKids"`
	} `json:"status"`
}

// UpdateVisibility replaces the status part of videoID. Failures are marked
// services.ErrPatchFailed; the asset itself stays uploaded.
func (c *VideosClient) UpdateVisibility(ctx context.Context, videoID string, visibility metadata.Visibility, madeForKids bool) error {
	if c == nil || c.apiURL == "" {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "api url not configured", nil)
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "video id is empty", nil)
	}

	var body statusPatch
	body.ID = videoID
	body.Status.PrivacyStatus = visibility
	body.Status.SelfDeclaredMadeForKids = madeForKids
	payload, err := json.Marshal(body)
	if err != nil {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "encode body", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPut, c.apiURL+"/videos?part=status", bytes.NewReader(payload))
	if err != nil {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	token, err := credentials.Require(ctx, c.creds, patchPhase)
	if err != nil {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "credential unavailable", err)
	}
	credentials.Authorize(req, token)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrPatchFailed, patchPhase, "update visibility",
			fmt.Sprintf("status %d", resp.StatusCode), services.NewStatusError(resp))
	}

	logging.WithContext(ctx, c.logger).Info("visibility updated",
		logging.String("remote_id", videoID),
		logging.String("visibility", string(visibility)),
	)
	return nil
}
