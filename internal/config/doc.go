// Package config loads, normalizes, and validates clipdeck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files, and honours
// environment fallbacks such as CLIPDECK_ACCESS_TOKEN. The Config type
// centralizes every knob the upload pipeline and CLI need: hosting API
// endpoints, transport tuning, the moderation endpoint and its flag threshold,
// and the publish scheduling windows.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
