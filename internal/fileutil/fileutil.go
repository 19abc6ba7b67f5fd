package fileutil

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// sampleSize is how much of each end of the file feeds a fingerprint.
const sampleSize = 1 << 20

// Fingerprint returns a stable identity for the file at path without reading
// it in full: SHA256 over the size, the first MiB and the last MiB. Two files
// with the same fingerprint are treated as the same upload source.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return fingerprint(f, info.Size())
}

func fingerprint(r io.ReaderAt, size int64) (string, error) {
	hasher := sha256.New()
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], uint64(size))
	hasher.Write(header[:])

	head := min(size, sampleSize)
	if _, err := io.Copy(hasher, io.NewSectionReader(r, 0, head)); err != nil {
		return "", fmt.Errorf("hash head: %w", err)
	}
	if size > sampleSize {
		tailStart := max(size-sampleSize, head)
		if _, err := io.Copy(hasher, io.NewSectionReader(r, tailStart, size-tailStart)); err != nil {
			return "", fmt.Errorf("hash tail: %w", err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ShortFingerprint trims a fingerprint for display and file names.
func ShortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
