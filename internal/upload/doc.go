// Package upload sequences one media upload from a validated request to a
// single terminal Outcome.
//
// The Orchestrator is an explicit state machine:
//
//	Idle -> Analyzing -> (Flagged | Uploading) -> PatchingVisibility -> Succeeded
//
// with every non-terminal state able to move to Failed. Local checks
// (credential, metadata, schedule) run in Idle so a bad request never reaches
// the network. Moderation runs in Analyzing unless the caller or configuration
// skips it explicitly. The transport strategy and the visibility patch client
// are injected, so the same machine drives both resumable and multipart
// uploads.
//
// Each Run owns its per-attempt session (phase, progress, transport session).
// Nothing is shared between runs and nothing survives the process.
package upload
