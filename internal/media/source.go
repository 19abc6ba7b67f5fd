package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackMIMEType = "application/octet-stream"

// Reader is the handle returned by Source.Open.
type Reader interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// Source is an opaque binary handle for one selected file.
type Source interface {
	Name() string
	Size() int64
	MIMEType() string
	Open() (Reader, error)
}

// File is a Source backed by a file on disk.
type File struct {
	path     string
	size     int64
	mimeType string
}

// OpenFile stats path and sniffs its content type. Directories and empty
// paths are rejected; empty files are allowed here and rejected by callers
// that require content.
func OpenFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("media path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat media: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("media %q is not a regular file", path)
	}
	mimeType := fallbackMIMEType
	if info.Size() > 0 {
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("detect media type: %w", err)
		}
		mimeType = detected.String()
	}
	return &File{
		path:     path,
		size:     info.Size(),
		mimeType: resolveMIMEType(mimeType, path),
	}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Name() string { return filepath.Base(f.path) }

func (f *File) Size() int64 { return f.size }

func (f *File) MIMEType() string { return f.mimeType }

// Open returns a fresh handle; callers close it.
func (f *File) Open() (Reader, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	return file, nil
}

// Memory is a Source held in memory. It is used for small clips produced by
// other tooling and in tests.
type Memory struct {
	name     string
	data     []byte
	mimeType string
}

// NewMemory wraps data under the given display name.
func NewMemory(name string, data []byte) *Memory {
	mimeType := fallbackMIMEType
	if len(data) > 0 {
		mimeType = mimetype.Detect(data).String()
	}
	return &Memory{name: name, data: data, mimeType: resolveMIMEType(mimeType, name)}
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Size() int64 { return int64(len(m.data)) }

func (m *Memory) MIMEType() string { return m.mimeType }

func (m *Memory) Open() (Reader, error) {
	return nopCloser{bytes.NewReader(m.data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// Stem returns the base name of name without its extension.
func Stem(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveMIMEType drops parameters from a sniffed type and falls back to the
// extension when sniffing could not identify the container.
func resolveMIMEType(detected, name string) string {
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil || mediaType == "" {
		mediaType = fallbackMIMEType
	}
	if mediaType == fallbackMIMEType {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
				return parsed
			}
		}
	}
	return mediaType
}
