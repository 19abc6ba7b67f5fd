package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"clipdeck/internal/credentials"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/metadata"
	"clipdeck/internal/services"
)

// Resumable uploads through a session URL in fixed-size ranges.
type Resumable struct {
	base
}

// NewResumable constructs the chunked-PUT strategy. The chunk size is rounded
// down to a multiple of 256 KiB.
func NewResumable(cfg Config, creds credentials.Supplier, opts ...Option) *Resumable {
	b := newBase(cfg, creds, "transport.resumable", opts)
	if rem := b.cfg.ChunkSize % chunkQuantum; rem != 0 {
		b.cfg.ChunkSize -= rem
		if b.cfg.ChunkSize <= 0 {
			b.cfg.ChunkSize = chunkQuantum
		}
	}
	return &Resumable{base: b}
}

// ChunkSize returns the effective chunk size in bytes.
func (r *Resumable) ChunkSize() int64 { return r.cfg.ChunkSize }

// Initiate declares size and type and returns a session bound to the
// Location the server hands back.
func (r *Resumable) Initiate(ctx context.Context, meta metadata.Wire, src media.Source) (*Session, error) {
	if err := validateSource(src); err != nil {
		return nil, err
	}
	body, err := json.Marshal(meta)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, phase, "initiate", "encode metadata", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, r.endpoint("resumable"), bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, phase, "initiate", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(src.Size(), 10))
	req.Header.Set("X-Upload-Content-Type", src.MIMEType())
	if err := r.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrCanceled, phase, "initiate", "canceled before upload started", ctx.Err())
		}
		return nil, services.Wrap(services.ErrInitiationFailed, phase, "initiate", "request failed", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, services.Wrap(services.ErrInitiationFailed, phase, "initiate",
			fmt.Sprintf("status %d", resp.StatusCode), services.NewStatusError(resp))
	}
	location := strings.TrimSpace(resp.Header.Get("Location"))
	if location == "" {
		return nil, services.Wrap(services.ErrInitiationFailed, phase, "initiate", "response carries no session location", nil)
	}
	sessionURL, err := req.URL.Parse(location)
	if err != nil {
		return nil, services.Wrap(services.ErrInitiationFailed, phase, "initiate", "invalid session location", err)
	}

	logging.WithContext(ctx, r.logger).Info("upload session opened",
		logging.Int64("total_bytes", src.Size()),
		logging.String("mime_type", src.MIMEType()),
		logging.Int64("chunk_bytes", r.cfg.ChunkSize),
		logging.String("session_host", sessionURLHost(sessionURL.String())),
	)
	return newSession(sessionURL.String(), src.Size(), body, src.MIMEType()), nil
}

// Drive sends ranges in offset order. Each range waits for the server's
// acknowledgment before the next is sent. Cancellation is honoured until the
// first acknowledgment; after that the in-flight range finishes and the
// session is abandoned between ranges.
func (r *Resumable) Drive(ctx context.Context, session *Session, src media.Source, onProgress ProgressFunc) (string, error) {
	if session == nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "no session", ErrSessionClosed)
	}
	if err := session.begin(); err != nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "session already used", err)
	}
	if session.UploadURL == "" {
		session.close()
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "session has no upload url", nil)
	}
	if src.Size() != session.TotalBytes {
		session.close()
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive",
			fmt.Sprintf("file size changed from %d to %d bytes", session.TotalBytes, src.Size()), nil)
	}

	reader, err := src.Open()
	if err != nil {
		session.close()
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "open file", err)
	}
	defer reader.Close()

	logger := logging.WithContext(ctx, r.logger)
	sampler := logging.NewProgressSampler(10)
	progress := newTracker(session.TotalBytes, onProgress)
	progress.report(0)

	total := session.TotalBytes
	for {
		acked := session.BytesAcknowledged()
		if err := ctx.Err(); err != nil {
			session.close()
			logger.Info("upload abandoned between chunks", logging.Bytes(acked, total))
			return "", services.Wrap(services.ErrCanceled, phase, "drive",
				fmt.Sprintf("canceled after %d of %d bytes acknowledged", acked, total), err)
		}

		start := acked
		end := min(start+r.cfg.ChunkSize, total) - 1

		reqBase := ctx
		if acked > 0 {
			reqBase = context.WithoutCancel(ctx)
		}
		status, resp, err := r.putChunk(ctx, reqBase, session, reader, start, end)
		if err != nil {
			session.close()
			if acked == 0 && ctx.Err() != nil {
				return "", services.Wrap(services.ErrCanceled, phase, "drive", "canceled before first acknowledged chunk", ctx.Err())
			}
			return "", services.Wrap(services.ErrTransportFailed, phase, "put chunk",
				fmt.Sprintf("bytes %d-%d/%d", start, end, total), err)
		}

		switch {
		case status == http.StatusPermanentRedirect:
			next, err := acknowledgedOffset(resp, end)
			resp.Body.Close()
			if err == nil && next > end+1 {
				err = fmt.Errorf("server acknowledged %d bytes beyond the %d sent", next, end+1)
			}
			if err == nil {
				err = session.acknowledge(next)
			}
			if err == nil && next == total {
				err = errors.New("server acknowledged every byte without completing the upload")
			}
			if err != nil {
				session.close()
				return "", services.Wrap(services.ErrTransportFailed, phase, "put chunk",
					fmt.Sprintf("bytes %d-%d/%d", start, end, total), err)
			}
			progress.report(next)
			if pct := float64(next) / float64(total) * 100; sampler.ShouldLog(pct, phase) {
				logger.Info("upload progress", logging.Bytes(next, total), logging.Float64("percent", pct))
			}
		case isSuccess(status):
			remoteID, err := decodeRemoteID(resp)
			resp.Body.Close()
			if err != nil {
				session.close()
				return "", services.Wrap(services.ErrTransportFailed, phase, "complete", "unreadable completion response", err)
			}
			if total > session.BytesAcknowledged() {
				_ = session.acknowledge(total)
			}
			session.close()
			progress.done()
			logger.Info("upload complete", logging.String("remote_id", remoteID), logging.Int64("total_bytes", total))
			return remoteID, nil
		default:
			statusErr := services.NewStatusError(resp)
			resp.Body.Close()
			session.close()
			logging.ErrorWithContext(logger, "chunk rejected", "chunk_rejected",
				logging.Int("status", status),
				logging.Bytes(session.BytesAcknowledged(), total),
				logging.String(logging.FieldErrorHint, "start a new upload; sessions are not resumed"),
			)
			return "", services.Wrap(services.ErrTransportFailed, phase, "put chunk",
				fmt.Sprintf("status %d for bytes %d-%d/%d", status, start, end, total), statusErr)
		}
	}
}

func (r *Resumable) putChunk(ctx, reqBase context.Context, session *Session, reader media.Reader, start, end int64) (int, *http.Response, error) {
	callCtx, cancel := context.WithTimeout(reqBase, r.cfg.RequestTimeout)
	length := end - start + 1
	req, err := http.NewRequestWithContext(callCtx, http.MethodPut, session.UploadURL, media.Section(reader, start, length))
	if err != nil {
		cancel()
		return 0, nil, err
	}
	req.ContentLength = length
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, session.TotalBytes))
	if session.mimeType != "" {
		req.Header.Set("Content-Type", session.mimeType)
	}
	if err := r.authorize(ctx, req); err != nil {
		cancel()
		return 0, nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		cancel()
		return 0, nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp.StatusCode, resp, nil
}

// acknowledgedOffset reads the Range header of a 308 response. Without one
// the whole chunk ending at end counts as received.
func acknowledgedOffset(resp *http.Response, end int64) (int64, error) {
	value := strings.TrimSpace(resp.Header.Get("Range"))
	if value == "" {
		return end + 1, nil
	}
	spec, ok := strings.CutPrefix(value, "bytes=")
	if !ok {
		return 0, fmt.Errorf("malformed Range header %q", value)
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok || first != "0" {
		return 0, fmt.Errorf("malformed Range header %q", value)
	}
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("malformed Range header %q", value)
	}
	return n + 1, nil
}

// sessionURLHost is used in log lines so session tokens in the query never leak.
func sessionURLHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Host
}
