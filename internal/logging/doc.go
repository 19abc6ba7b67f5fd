// Package logging assembles structured slog loggers and formatting helpers used
// across clipdeck.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with upload IDs, phases, and correlation IDs. The package also provides
// a no-op logger for tests and a sampler that keeps chunk progress logs terse.
package logging
