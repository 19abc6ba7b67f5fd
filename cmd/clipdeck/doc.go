// Package main hosts the clipdeck CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into upload runs,
// standalone moderation checks, history queries, and configuration
// scaffolding. It centralizes configuration resolution, credential lookup,
// per-file locking, and structured logging setup so subcommands can focus on
// presentation.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
