package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFingerprintStableForSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")
	content := bytes.Repeat([]byte("frame"), 1000)
	if err := os.WriteFile(a, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Fatalf("expected equal fingerprints, got %s and %s", fa, fb)
	}
	if len(fa) != 64 {
		t.Fatalf("expected hex sha256, got %q", fa)
	}
}

func TestFingerprintDetectsSizeAndTailChanges(t *testing.T) {
	dir := t.TempDir()
	base := bytes.Repeat([]byte{0x42}, 3*sampleSize)
	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		changed bool
	}{
		{"identical", func(b []byte) []byte { return b }, false},
		{"appended byte", func(b []byte) []byte { return append(b, 0x00) }, true},
		{"last byte", func(b []byte) []byte { b[len(b)-1] = 0x01; return b }, true},
		{"first byte", func(b []byte) []byte { b[0] = 0x01; return b }, true},
		// The middle is not sampled.
		{"middle byte", func(b []byte) []byte { b[len(b)/2] = 0x01; return b }, false},
	}

	orig := filepath.Join(dir, "orig.bin")
	if err := os.WriteFile(orig, base, 0o644); err != nil {
		t.Fatal(err)
	}
	want, err := Fingerprint(orig)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(append([]byte(nil), base...))
			path := filepath.Join(t.TempDir(), "copy.bin")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := Fingerprint(path)
			if err != nil {
				t.Fatal(err)
			}
			if (got != want) != tc.changed {
				t.Fatalf("changed=%v, want %v", got != want, tc.changed)
			}
		})
	}
}

func TestFingerprintSmallFileHashesOnce(t *testing.T) {
	got, err := fingerprint(bytes.NewReader([]byte("tiny")), 4)
	if err != nil {
		t.Fatal(err)
	}
	other, err := fingerprint(bytes.NewReader([]byte("tinz")), 4)
	if err != nil {
		t.Fatal(err)
	}
	if got == other {
		t.Fatal("expected different fingerprints for different content")
	}
}

func TestFingerprintErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Fingerprint(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Fingerprint(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestShortFingerprint(t *testing.T) {
	if got := ShortFingerprint("0123456789abcdef0123"); got != "0123456789abcdef" {
		t.Fatalf("unexpected short fingerprint %q", got)
	}
	if got := ShortFingerprint("abc"); got != "abc" {
		t.Fatalf("unexpected short fingerprint %q", got)
	}
}
