// Package metadata turns the user's upload form into the JSON resource the
// hosting API expects.
//
// Builder validates and normalizes titles, descriptions, tags, visibility,
// and publish schedules, and decides whether the final visibility can be sent
// with the upload itself or needs a follow-up patch.
package metadata
