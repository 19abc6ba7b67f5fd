package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"clipdeck/internal/credentials"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/metadata"
	"clipdeck/internal/services"
)

// Multipart uploads metadata and media in a single multipart/related request.
type Multipart struct {
	base
}

// NewMultipart constructs the single-shot strategy.
func NewMultipart(cfg Config, creds credentials.Supplier, opts ...Option) *Multipart {
	return &Multipart{base: newBase(cfg, creds, "transport.multipart", opts)}
}

// Initiate validates the request locally; the upload itself is declared
// inline by Drive, so no network call happens here.
func (m *Multipart) Initiate(_ context.Context, meta metadata.Wire, src media.Source) (*Session, error) {
	if err := validateSource(src); err != nil {
		return nil, err
	}
	body, err := json.Marshal(meta)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, phase, "initiate", "encode metadata", err)
	}
	return newSession("", src.Size(), body, src.MIMEType()), nil
}

// Drive streams the body and reports progress from the bytes the HTTP client
// has consumed. The request is bounded by the upload timeout.
func (m *Multipart) Drive(ctx context.Context, session *Session, src media.Source, onProgress ProgressFunc) (string, error) {
	if session == nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "no session", ErrSessionClosed)
	}
	if err := session.begin(); err != nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "session already used", err)
	}
	defer session.close()
	if src.Size() != session.TotalBytes {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive",
			fmt.Sprintf("file size changed from %d to %d bytes", session.TotalBytes, src.Size()), nil)
	}

	reader, err := src.Open()
	if err != nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "open file", err)
	}
	defer reader.Close()

	logger := logging.WithContext(ctx, m.logger)
	sampler := logging.NewProgressSampler(10)
	total := session.TotalBytes
	progress := newTracker(total, onProgress)
	progress.report(0)

	counted := media.NewCountingReader(reader, func(sent int64) {
		progress.report(sent)
		if pct := float64(sent) / float64(total) * 100; sampler.ShouldLog(pct, phase) {
			logger.Debug("upload progress", logging.Bytes(sent, total), logging.Float64("percent", pct))
		}
	})
	body, contentType := relatedBody(session.metadata, session.mimeType, counted)
	defer body.Close()

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, m.endpoint("multipart"), body)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, phase, "drive", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if err := m.authorize(ctx, req); err != nil {
		return "", err
	}

	logger.Info("multipart upload started", logging.Int64("total_bytes", total), logging.String("mime_type", session.mimeType))
	resp, err := m.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrCanceled, phase, "drive", "canceled during single-shot upload", ctx.Err())
		}
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive", "request failed", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", services.Wrap(services.ErrTransportFailed, phase, "drive",
			fmt.Sprintf("status %d", resp.StatusCode), services.NewStatusError(resp))
	}
	remoteID, err := decodeRemoteID(resp)
	if err != nil {
		return "", services.Wrap(services.ErrTransportFailed, phase, "complete", "unreadable completion response", err)
	}
	_ = session.acknowledge(total)
	progress.done()
	logger.Info("upload complete", logging.String("remote_id", remoteID), logging.Int64("total_bytes", total))
	return remoteID, nil
}

// relatedBody writes the JSON metadata part followed by the media part
// through a pipe so the file is streamed rather than buffered.
func relatedBody(meta []byte, mimeType string, payload io.Reader) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writePart(writer, "application/json; charset=UTF-8", func(w io.Writer) error {
			_, err := w.Write(meta)
			return err
		})
		if err == nil {
			err = writePart(writer, mimeType, func(w io.Writer) error {
				_, err := io.Copy(w, payload)
				return err
			})
		}
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, "multipart/related; boundary=" + writer.Boundary()
}

func writePart(writer *multipart.Writer, contentType string, fill func(io.Writer) error) error {
	header := make(textproto.MIMEHeader)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	return fill(part)
}
