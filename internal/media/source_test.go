package media_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"clipdeck/internal/media"
)

// mp4Header is the start of an ISO BMFF file with an "isom" major brand.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

func TestOpenFileDetectsTypeAndSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holiday clip.mp4")
	payload := append(append([]byte{}, mp4Header...), make([]byte, 4096)...)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	src, err := media.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if src.Size() != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", src.Size(), len(payload))
	}
	if src.MIMEType() != "video/mp4" {
		t.Fatalf("mime = %q, want video/mp4", src.MIMEType())
	}
	if src.Name() != "holiday clip.mp4" {
		t.Fatalf("name = %q", src.Name())
	}

	r, err := src.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	section, err := io.ReadAll(media.Section(r, 4, 4))
	if err != nil {
		t.Fatalf("read section: %v", err)
	}
	if string(section) != "ftyp" {
		t.Fatalf("section = %q, want ftyp", section)
	}
}

func TestOpenFileRejectsDirectoryAndMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := media.OpenFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err := media.OpenFile(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := media.OpenFile("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestEmptyFileFallsBackToExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	src, err := media.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if src.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", src.Size())
	}
	if src.MIMEType() != "text/plain" {
		t.Fatalf("mime = %q, want text/plain", src.MIMEType())
	}
}

func TestMemorySource(t *testing.T) {
	src := media.NewMemory("clip.bin", []byte{0x01, 0x02, 0x03, 0xff})
	if src.Size() != 4 {
		t.Fatalf("size = %d", src.Size())
	}
	if src.MIMEType() != "application/octet-stream" {
		t.Fatalf("mime = %q", src.MIMEType())
	}
	r, err := src.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := make([]byte, 2)
	if _, err := r.ReadAt(buf, 2); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if buf[0] != 0x03 || buf[1] != 0xff {
		t.Fatalf("unexpected bytes %v", buf)
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"video.mp4":              "video",
		"/tmp/My Clip.final.mov": "My Clip.final",
		"noext":                  "noext",
		"":                       "",
	}
	for in, want := range tests {
		if got := media.Stem(in); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCountingReader(t *testing.T) {
	var seen []int64
	cr := media.NewCountingReader(media.Section(readerAt("abcdefghij"), 0, 10), func(total int64) {
		seen = append(seen, total)
	})
	buf := make([]byte, 4)
	for {
		if _, err := cr.Read(buf); err != nil {
			break
		}
	}
	if cr.Count() != 10 {
		t.Fatalf("count = %d, want 10", cr.Count())
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("counts not increasing: %v", seen)
		}
	}
}

type readerAt string

func (s readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s)) {
		return 0, io.EOF
	}
	n := copy(p, s[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
