package credentials_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"clipdeck/internal/credentials"
	"clipdeck/internal/services"
	"clipdeck/internal/testsupport"
)

func TestRequireRejectsMissingToken(t *testing.T) {
	for name, supplier := range map[string]credentials.Supplier{
		"nil supplier": nil,
		"none":         credentials.None(),
		"blank static": credentials.Static("   "),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := credentials.Require(context.Background(), supplier, "idle")
			if !errors.Is(err, services.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestRequireRejectsExpiredToken(t *testing.T) {
	expired := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)})
	_, err := credentials.Require(context.Background(), credentials.FromTokenSource(expired), "idle")
	if !errors.Is(err, services.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestRequireWrapsSupplierError(t *testing.T) {
	failing := credentials.SupplierFunc(func(context.Context) (*oauth2.Token, error) {
		return nil, errors.New("keyring locked")
	})
	_, err := credentials.Require(context.Background(), failing, "idle")
	if !errors.Is(err, services.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireNamesCallerPhase(t *testing.T) {
	for _, phase := range []string{"idle", "uploading", "patching"} {
		_, err := credentials.Require(context.Background(), credentials.None(), phase)
		if !errors.Is(err, services.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if want := ": " + phase + ": resolve credential:"; !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not name phase %q", err, phase)
		}
	}
}

func TestStaticAuthorizesRequest(t *testing.T) {
	token, err := credentials.Require(context.Background(), credentials.Static("abc"), "idle")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	credentials.Authorize(req, token)
	if got := req.Header.Get("Authorization"); got != "Bearer abc" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestFileSupplier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")

	token, err := credentials.File(path).Token(context.Background())
	if err != nil || token != nil {
		t.Fatalf("missing file should be unauthenticated, got %v %v", token, err)
	}

	data, _ := json.Marshal(&oauth2.Token{AccessToken: "from-file", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	token, err = credentials.Require(context.Background(), credentials.File(path), "idle")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if token.AccessToken != "from-file" {
		t.Fatalf("unexpected token %q", token.AccessToken)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if _, err := credentials.File(path).Token(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFromConfigPrefersAccessToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.YouTube.AccessToken = "cfg-token"
	cfg.YouTube.TokenFile = filepath.Join(t.TempDir(), "missing.json")

	token, err := credentials.FromConfig(cfg).Token(context.Background())
	if err != nil || token == nil || token.AccessToken != "cfg-token" {
		t.Fatalf("unexpected token %v err %v", token, err)
	}

	cfg.YouTube.AccessToken = ""
	token, err = credentials.FromConfig(cfg).Token(context.Background())
	if err != nil || token != nil {
		t.Fatalf("expected unauthenticated from missing token file, got %v %v", token, err)
	}
}
