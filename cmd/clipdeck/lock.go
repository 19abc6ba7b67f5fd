package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"clipdeck/internal/config"
	"clipdeck/internal/fileutil"
)

// acquireSourceLock takes the per-file upload lock keyed by fingerprint so
// two invocations never push the same file at once.
func acquireSourceLock(cfg *config.Config, fingerprint string) (*flock.Flock, error) {
	dir := cfg.LockDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lockPath := filepath.Join(dir, fileutil.ShortFingerprint(fingerprint)+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another clipdeck process is already uploading this file (lock %s)", lockPath)
	}
	return lock, nil
}
