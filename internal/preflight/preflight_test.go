package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"clipdeck/internal/config"
	"clipdeck/internal/credentials"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceFile(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		pass bool
	}{
		{"readable", full, true},
		{"empty", empty, false},
		{"missing", filepath.Join(dir, "missing.mp4"), false},
		{"directory", dir, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckSourceFile(tc.path)
			if result.Passed != tc.pass {
				t.Fatalf("passed=%v want %v (%s)", result.Passed, tc.pass, result.Detail)
			}
		})
	}
}

func TestCheckCredential(t *testing.T) {
	if r := CheckCredential(context.Background(), credentials.None()); r.Passed {
		t.Fatal("expected failure without credential")
	}
	if r := CheckCredential(context.Background(), credentials.Static("tok")); !r.Passed {
		t.Fatalf("expected pass with static token, got %s", r.Detail)
	}

	expired := credentials.SupplierFunc(func(context.Context) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(-time.Hour)}, nil
	})
	if r := CheckCredential(context.Background(), expired); r.Passed {
		t.Fatal("expected failure for expired token")
	}
}

func TestCheckEndpoint(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer ok.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	if r := CheckEndpoint(context.Background(), "svc", ok.URL); !r.Passed {
		t.Fatalf("expected 405 to count as reachable, got %s", r.Detail)
	}
	if r := CheckEndpoint(context.Background(), "svc", broken.URL); r.Passed {
		t.Fatal("expected 502 to fail")
	}
	if r := CheckEndpoint(context.Background(), "svc", ""); r.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestCheckHistory(t *testing.T) {
	result := CheckHistory(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if !result.Passed {
		t.Fatalf("expected history check to pass, got %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Moderation.Enabled = false
	cfg.History.Enabled = false

	results := RunAll(context.Background(), &cfg, credentials.Static("tok"))
	// Should have state directory + credential checks
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestForUpload_IncludesModerationHistoryAndSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Moderation.Enabled = true
	cfg.Moderation.URL = srv.URL
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(cfg.Paths.StateDir, "history.db")

	results := ForUpload(context.Background(), &cfg, credentials.None(), filepath.Join(t.TempDir(), "missing.mp4"))
	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = r.Passed
	}
	for name, want := range map[string]bool{
		"State directory":    true,
		"Credential":         false,
		"Moderation service": true,
		"History":            true,
		"Source file":        false,
	} {
		got, ok := names[name]
		if !ok {
			t.Fatalf("expected %q check in results", name)
		}
		if got != want {
			t.Errorf("check %q passed=%v want %v", name, got, want)
		}
	}
	if len(Failed(results)) != 2 {
		t.Fatalf("expected 2 failures, got %+v", Failed(results))
	}
}
