// Package services defines shared utilities consumed by the upload pipeline
// phases and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp upload IDs, phase names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the orchestrator
//     classify failures (local rejection, fatal network failure, advisory
//     warning) without string matching.
//   - Describe, which turns any marked error into a user-facing message naming
//     the failed phase.
//
// Use these helpers when adding new phases so error handling and observability
// stay uniform across the pipeline.
package services
