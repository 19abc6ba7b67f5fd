// Package history persists an audit log of finished uploads in SQLite.
//
// Every terminal outcome (success, rejection, failure, moderation block) is
// appended once, keyed by the upload id. The log backs the dashboard's recent
// uploads list and the `clipdeck history` command. The upload pipeline never
// reads it back: there is no resume across restarts.
package history
