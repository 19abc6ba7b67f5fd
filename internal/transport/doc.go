// Package transport moves a validated video to the hosting API.
//
// Two strategies implement the same Transport capability. Resumable opens an
// upload session and sends fixed-size byte ranges in strict offset order,
// advancing only on the server's acknowledgment. Multipart sends metadata and
// media in one request and reports progress from the bytes written. A Session
// is single use: once it completes or fails it is closed and never reused, and
// nothing about it survives a process restart.
package transport
