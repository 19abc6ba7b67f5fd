package moderation

import "testing"

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	segments := []FlaggedSegment{
		{TimestampSeconds: 1.2345, FrameIndex: 30, ExcerptText: "bad word"},
		{TimestampSeconds: 2.5, FrameIndex: 60, ExcerptText: "other"},
		{TimestampSeconds: 7.891, FrameIndex: 190, ExcerptText: "bad word"},
	}
	got := Dedupe(segments)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].ExcerptText != "bad word" || got[0].FrameIndex != 30 {
		t.Fatalf("expected first occurrence kept, got %+v", got[0])
	}
	if got[0].TimestampSeconds != 1.23 {
		t.Fatalf("expected timestamp rounded to 1.23, got %v", got[0].TimestampSeconds)
	}
	if got[1].ExcerptText != "other" {
		t.Fatalf("expected source order preserved, got %+v", got[1])
	}
	if segments[0].TimestampSeconds != 1.2345 {
		t.Fatal("Dedupe must not mutate its input")
	}
}

func TestDedupeSingleExcerptTwice(t *testing.T) {
	got := Dedupe([]FlaggedSegment{
		{TimestampSeconds: 3, ExcerptText: "bad word"},
		{TimestampSeconds: 9, ExcerptText: "bad word"},
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(got))
	}
	if Dedupe(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestPolicyApply(t *testing.T) {
	verdict := Verdict{
		FramesAnalyzed: 10,
		Evidence: []FlaggedSegment{
			{ExcerptText: "mild", CategoryScores: map[string]float64{"insult": 0.2}},
			{ExcerptText: "severe", CategoryScores: map[string]float64{"insult": 0.4, "threat": 0.9}},
			{ExcerptText: "unscored"},
		},
	}

	if got := (Policy{}).Apply(verdict); len(got.Evidence) != 3 {
		t.Fatalf("zero threshold must keep every segment, got %d", len(got.Evidence))
	}

	got := Policy{MinScore: 0.5}.Apply(verdict)
	if len(got.Evidence) != 1 || got.Evidence[0].ExcerptText != "severe" {
		t.Fatalf("unexpected evidence %+v", got.Evidence)
	}
	if got.FramesAnalyzed != 10 {
		t.Fatal("frames analyzed lost")
	}

	if cleared := (Policy{MinScore: 0.95}).Apply(verdict); !cleared.Clear() {
		t.Fatalf("expected clear verdict above every score, got %+v", cleared.Evidence)
	}
}

func TestMaxScore(t *testing.T) {
	category, score := FlaggedSegment{CategoryScores: map[string]float64{"a": 0.1, "b": 0.7, "c": 0.7}}.MaxScore()
	if category != "b" || score != 0.7 {
		t.Fatalf("got %s %v", category, score)
	}
	if category, score := (FlaggedSegment{}).MaxScore(); category != "" || score != 0 {
		t.Fatalf("expected empty result, got %s %v", category, score)
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatScores(map[string]float64{"severe_toxicity": 0.12, "insult": 0.917}); got != "insult 92%, severe toxicity 12%" {
		t.Fatalf("FormatScores = %q", got)
	}
	if got := FormatScores(nil); got != "-" {
		t.Fatalf("FormatScores(nil) = %q", got)
	}
	if got := FormatTimestamp(75.5); got != "1:15.50" {
		t.Fatalf("FormatTimestamp = %q", got)
	}
	if got := FormatTimestamp(-3); got != "0:00.00" {
		t.Fatalf("FormatTimestamp(-3) = %q", got)
	}
}
