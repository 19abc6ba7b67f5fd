// Package media describes the local video file selected for upload.
//
// A Source exposes the byte size, sniffed MIME type, and display name the
// pipeline needs up front, and opens a random-access reader so the transport
// can send byte ranges without loading the file into memory.
package media
