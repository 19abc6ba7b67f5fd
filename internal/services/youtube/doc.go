// Package youtube wraps the small slice of the video data API used after an
// upload completes: replacing the status part of a video to promote it to its
// final visibility.
package youtube
