package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/services"
)

const (
	analyzePath        = "/analyze_video"
	videoField         = "video"
	defaultHTTPTimeout = 5 * time.Minute
	phase              = "analyzing"
)

// Gate submits a file for analysis and returns the verdict. It never reports
// Clear when the analysis could not be performed.
type Gate interface {
	Submit(ctx context.Context, src media.Source) (Verdict, error)
}

// Config captures the analysis service settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the external analysis service over HTTP.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a moderation client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "moderation")
	return client
}

type analyzeResponse struct {
	FlaggedContent []struct {
		Timestamp       float64            `json:"timestamp"`
		FrameNumber     int                `json:"frame_number"`
		Text            string             `json:"text"`
		ToxicCategories map[string]float64 `json:"toxic_categories"`
	} `json:"flagged_content"`
	TotalFramesAnalyzed int `json:"total_frames_analyzed"`
}

// Submit streams the whole file to the analysis endpoint in one round trip.
func (c *Client) Submit(ctx context.Context, src media.Source) (Verdict, error) {
	if src == nil || src.Size() <= 0 {
		return Verdict{}, services.Wrap(services.ErrValidation, phase, "submit", "file is empty", nil)
	}
	if c.baseURL == "" {
		return Verdict{}, services.Wrap(services.ErrConfiguration, phase, "submit", "moderation url not configured", nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	reader, err := src.Open()
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrAnalysisUnavailable, phase, "open file", src.Name(), err)
	}
	defer reader.Close()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, contentType := multipartBody(reader, src.Name(), src.MIMEType())
	defer body.Close()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+analyzePath, body)
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrConfiguration, phase, "build request", c.baseURL, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", rid)
	}

	started := time.Now()
	logger.Info("submitting file for analysis",
		logging.String("file", src.Name()),
		logging.Int64("size_bytes", src.Size()),
	)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Verdict{}, services.Wrap(services.ErrCanceled, phase, "submit", "analysis canceled", ctx.Err())
		}
		return Verdict{}, services.Wrap(services.ErrAnalysisUnavailable, phase, "submit", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, services.Wrap(services.ErrAnalysisUnavailable, phase, "submit",
			fmt.Sprintf("status %d", resp.StatusCode), services.NewStatusError(resp))
	}

	var payload analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return Verdict{}, services.Wrap(services.ErrAnalysisUnavailable, phase, "decode response", "malformed analysis response", err)
	}

	verdict := Verdict{FramesAnalyzed: payload.TotalFramesAnalyzed}
	for _, item := range payload.FlaggedContent {
		verdict.Evidence = append(verdict.Evidence, FlaggedSegment{
			TimestampSeconds: item.Timestamp,
			FrameIndex:       item.FrameNumber,
			ExcerptText:      item.Text,
			CategoryScores:   item.ToxicCategories,
		})
	}
	logger.Info("analysis complete",
		logging.Bool("flagged", verdict.Flagged()),
		logging.Int("segments", len(verdict.Evidence)),
		logging.Int("frames_analyzed", verdict.FramesAnalyzed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return verdict, nil
}

// multipartBody streams r as the video form field through a pipe so the file
// is never buffered in memory.
func multipartBody(r io.Reader, name, mimeType string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreatePart(videoPartHeader(name, mimeType))
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, writer.FormDataContentType()
}
