package metadata

import (
	"fmt"
	"strings"
	"time"
)

// Visibility is the privacy status of an uploaded asset.
type Visibility string

const (
	Private  Visibility = "private"
	Unlisted Visibility = "unlisted"
	Public   Visibility = "public"
)

// ParseVisibility accepts the three visibility names case-insensitively.
func ParseVisibility(value string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(value))); v {
	case Private, Unlisted, Public:
		return v, nil
	default:
		return "", fmt.Errorf("unknown visibility %q (want private, unlisted, or public)", value)
	}
}

// Request is the user's form input for one upload.
type Request struct {
	// SourceName is the file name used when Title is blank.
	SourceName  string
	Title       string
	Description string
	Tags        []string
	Visibility  Visibility
	// PublishAt schedules publication; nil publishes per Visibility.
	PublishAt *time.Time
}

// Snippet is the descriptive part of the video resource.
type Snippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

// Status is the privacy part of the video resource.
type Status struct {
	PrivacyStatus           Visibility `json:"privacyStatus"`
	PublishAt               string     `json:"publishAt,omitempty"`
	SelfDeclaredMadeForKids bool       `json:"selfDeclaredMadeForKids"`
}

// Wire is the JSON body sent when creating the asset.
type Wire struct {
	Snippet Snippet `json:"snippet"`
	Status  Status  `json:"status"`
}

// Result is a validated request ready for transport.
type Result struct {
	Wire Wire
	// FinalVisibility is the state the asset should end in once published.
	FinalVisibility Visibility
	PublishAt       *time.Time
	// NeedsPatch is set when the wire visibility differs from the final one
	// and a follow-up status update must promote the asset.
	NeedsPatch bool
}

// Scheduled reports whether the result carries a publish time.
func (r Result) Scheduled() bool { return r.PublishAt != nil }

// SuggestedPublishAt returns the publish time pre-filled for a new schedule:
// now plus the default lead, truncated to the minute.
func SuggestedPublishAt(now time.Time, defaultLead time.Duration) time.Time {
	return now.Add(defaultLead).Truncate(time.Minute)
}
