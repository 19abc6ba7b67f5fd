// Package notifications delivers upload outcomes via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when no topic is set. Individual
// outcome kinds can be muted through the notifications section.
//
// Observer adapts a Service to the upload pipeline so a finished run pushes
// exactly one message without the orchestrator knowing about ntfy.
package notifications
