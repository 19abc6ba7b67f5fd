// Package moderation submits selected videos to the external content analysis
// service and interprets its verdict.
//
// The Gate reports evidence exactly as the service returns it. Threshold
// decisions live in Policy and are applied by the caller, and Dedupe shapes
// the evidence for review.
package moderation
