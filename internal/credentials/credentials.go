// Package credentials resolves the bearer credential the upload pipeline
// presents to the hosting API.
//
// Acquiring, refreshing, and storing tokens belongs to an external login
// helper. This package only reads what that helper left behind: a token in
// the configuration or environment, or an oauth2 token JSON file.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"clipdeck/internal/config"
	"clipdeck/internal/services"
)

// Supplier yields the current bearer token. A nil token with a nil error
// means the user is not signed in.
type Supplier interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// SupplierFunc adapts a function to Supplier.
type SupplierFunc func(ctx context.Context) (*oauth2.Token, error)

func (f SupplierFunc) Token(ctx context.Context) (*oauth2.Token, error) { return f(ctx) }

// Static returns a Supplier for a fixed access token. Blank tokens yield an
// unauthenticated supplier.
func Static(accessToken string) Supplier {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return None()
	}
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	return SupplierFunc(func(context.Context) (*oauth2.Token, error) { return token, nil })
}

// None returns a Supplier that is never authenticated.
func None() Supplier {
	return SupplierFunc(func(context.Context) (*oauth2.Token, error) { return nil, nil })
}

// FromTokenSource adapts an oauth2.TokenSource, such as one produced by an
// oauth2.Config owned by the login helper.
func FromTokenSource(ts oauth2.TokenSource) Supplier {
	if ts == nil {
		return None()
	}
	return SupplierFunc(func(context.Context) (*oauth2.Token, error) { return ts.Token() })
}

// File reads an oauth2 token JSON document on every call so a refresh by the
// login helper is picked up without restarting.
func File(path string) Supplier {
	return SupplierFunc(func(context.Context) (*oauth2.Token, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("read token file: %w", err)
		}
		var token oauth2.Token
		if err := json.Unmarshal(data, &token); err != nil {
			return nil, fmt.Errorf("parse token file %s: %w", path, err)
		}
		if strings.TrimSpace(token.AccessToken) == "" {
			return nil, nil
		}
		return &token, nil
	})
}

// FromConfig prefers an explicit access token and falls back to the token file.
func FromConfig(cfg *config.Config) Supplier {
	if cfg == nil {
		return None()
	}
	if cfg.YouTube.AccessToken != "" {
		return Static(cfg.YouTube.AccessToken)
	}
	if cfg.YouTube.TokenFile != "" {
		return File(cfg.YouTube.TokenFile)
	}
	return None()
}

// Require resolves a usable token or returns an error marked
// services.ErrUnauthenticated and tagged with the caller's phase. Expired
// tokens count as absent; refreshing them is the login helper's job.
func Require(ctx context.Context, supplier Supplier, phase string) (*oauth2.Token, error) {
	if supplier == nil {
		return nil, services.Wrap(services.ErrUnauthenticated, phase, "resolve credential", "no credential supplier configured", nil)
	}
	token, err := supplier.Token(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrUnauthenticated, phase, "resolve credential", "credential supplier failed", err)
	}
	if token == nil || strings.TrimSpace(token.AccessToken) == "" {
		return nil, services.Wrap(services.ErrUnauthenticated, phase, "resolve credential", "no access token available", nil)
	}
	if !token.Valid() {
		return nil, services.Wrap(services.ErrUnauthenticated, phase, "resolve credential", "access token expired", nil)
	}
	return token, nil
}

// Authorize sets the Authorization header for token on req.
func Authorize(req *http.Request, token *oauth2.Token) {
	if token == nil {
		return
	}
	token.SetAuthHeader(req)
}
