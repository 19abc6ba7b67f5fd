package moderation_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"clipdeck/internal/media"
	"clipdeck/internal/moderation"
	"clipdeck/internal/services"
	"clipdeck/internal/testsupport"
)

func TestSubmitClearVerdict(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	client := moderation.NewClient(moderation.Config{BaseURL: server.URL + "/"})

	src := media.NewMemory("clip.mp4", testsupport.Pattern(4096))
	verdict, err := client.Submit(context.Background(), src)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !verdict.Clear() || verdict.Flagged() {
		t.Fatalf("expected clear verdict, got %+v", verdict)
	}
	if verdict.FramesAnalyzed != 120 {
		t.Fatalf("frames analyzed = %d", verdict.FramesAnalyzed)
	}
	if sizes := server.UploadedSizes(); len(sizes) != 1 || sizes[0] != 4096 {
		t.Fatalf("expected full file submitted once, got %v", sizes)
	}
}

func TestSubmitFlaggedKeepsEveryScore(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	server.Flagged = []testsupport.FlaggedItem{
		{Timestamp: 1.234, FrameNumber: 30, Text: "bad word", ToxicCategories: map[string]float64{"insult": 0.02}},
		{Timestamp: 4.5, FrameNumber: 108, Text: "bad word", ToxicCategories: map[string]float64{"insult": 0.03}},
	}
	client := moderation.NewClient(moderation.Config{BaseURL: server.URL})

	verdict, err := client.Submit(context.Background(), media.NewMemory("clip.mp4", []byte("x")))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !verdict.Flagged() {
		t.Fatal("low scores must still yield a flagged verdict")
	}
	if len(verdict.Evidence) != 2 {
		t.Fatalf("gate must not dedupe, got %d segments", len(verdict.Evidence))
	}
	first := verdict.Evidence[0]
	if first.FrameIndex != 30 || first.ExcerptText != "bad word" || first.CategoryScores["insult"] != 0.02 {
		t.Fatalf("unexpected segment %+v", first)
	}
}

func TestSubmitIsRepeatable(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	server.Flagged = []testsupport.FlaggedItem{{Timestamp: 2, Text: "nope"}}
	client := moderation.NewClient(moderation.Config{BaseURL: server.URL})
	src := media.NewMemory("clip.mp4", []byte("payload"))

	first, err := client.Submit(context.Background(), src)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := client.Submit(context.Background(), src)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first.Flagged() != second.Flagged() {
		t.Fatal("classification changed between submissions")
	}
	if server.Calls() != 2 {
		t.Fatalf("expected two analyses, got %d", server.Calls())
	}
}

func TestSubmitFailuresAreAnalysisUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testsupport.ModerationServer)
	}{
		{"server error", func(s *testsupport.ModerationServer) { s.Status = http.StatusInternalServerError }},
		{"bad gateway", func(s *testsupport.ModerationServer) { s.Status = http.StatusBadGateway }},
		{"malformed json", func(s *testsupport.ModerationServer) { s.Raw = "{\"flagged_content\": [" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := testsupport.NewModerationServer(t)
			tc.setup(server)
			client := moderation.NewClient(moderation.Config{BaseURL: server.URL})
			verdict, err := client.Submit(context.Background(), media.NewMemory("clip.mp4", []byte("x")))
			if !errors.Is(err, services.ErrAnalysisUnavailable) {
				t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
			}
			if verdict.Flagged() {
				t.Fatal("failed analysis must not carry evidence")
			}
		})
	}
}

func TestSubmitTimeoutIsAnalysisUnavailable(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	server.Delay = 2 * time.Second

	client := moderation.NewClient(moderation.Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Submit(context.Background(), media.NewMemory("clip.mp4", []byte("x")))
	if !errors.Is(err, services.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable on timeout, got %v", err)
	}
}

func TestSubmitUnreachableIsAnalysisUnavailable(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	url := server.URL
	server.Close()

	client := moderation.NewClient(moderation.Config{BaseURL: url})
	_, err := client.Submit(context.Background(), media.NewMemory("clip.mp4", []byte("x")))
	if !errors.Is(err, services.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestSubmitRejectsEmptyFile(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	client := moderation.NewClient(moderation.Config{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), media.NewMemory("empty.mp4", nil))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if server.Calls() != 0 {
		t.Fatal("empty file must not reach the service")
	}
}

func TestSubmitCanceled(t *testing.T) {
	server := testsupport.NewModerationServer(t)
	client := moderation.NewClient(moderation.Config{BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Submit(ctx, media.NewMemory("clip.mp4", []byte("x")))
	if !services.IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
