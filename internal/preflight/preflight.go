package preflight

import (
	"context"

	"clipdeck/internal/config"
	"clipdeck/internal/credentials"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config, supplier credentials.Supplier) []Result {
	if cfg == nil {
		return nil
	}
	if supplier == nil {
		supplier = credentials.FromConfig(cfg)
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	results = append(results, CheckCredential(ctx, supplier))

	if cfg.Moderation.Enabled {
		results = append(results, CheckEndpoint(ctx, "Moderation service", cfg.Moderation.URL))
	}

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.History.Path))
	}

	return results
}

// ForUpload runs RunAll plus the readability check for one source file.
func ForUpload(ctx context.Context, cfg *config.Config, supplier credentials.Supplier, sourcePath string) []Result {
	results := RunAll(ctx, cfg, supplier)
	return append(results, CheckSourceFile(sourcePath))
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
