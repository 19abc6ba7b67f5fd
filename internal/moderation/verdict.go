package moderation

import (
	"math"
	"sort"
	"strings"
)

// FlaggedSegment is one timestamped excerpt the classifier associates with
// toxicity categories.
type FlaggedSegment struct {
	TimestampSeconds float64
	FrameIndex       int
	ExcerptText      string
	CategoryScores   map[string]float64
}

// MaxScore returns the highest scoring category. Segments without scores
// report an empty category and zero.
func (s FlaggedSegment) MaxScore() (string, float64) {
	var (
		best      string
		bestScore float64
	)
	for _, category := range sortedCategories(s.CategoryScores) {
		if score := s.CategoryScores[category]; best == "" || score > bestScore {
			best, bestScore = category, score
		}
	}
	return best, bestScore
}

// Verdict is the classifier's judgment on one file. Any evidence means the
// file is flagged; thresholds are applied separately by Policy.
type Verdict struct {
	Evidence       []FlaggedSegment
	FramesAnalyzed int
}

// Flagged reports whether the verdict carries evidence.
func (v Verdict) Flagged() bool { return len(v.Evidence) > 0 }

// Clear reports whether the verdict carries no evidence.
func (v Verdict) Clear() bool { return len(v.Evidence) == 0 }

// Dedupe keeps the first segment for each distinct excerpt text, preserving
// source order, and rounds timestamps to hundredths for display.
func Dedupe(segments []FlaggedSegment) []FlaggedSegment {
	if len(segments) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(segments))
	out := make([]FlaggedSegment, 0, len(segments))
	for _, segment := range segments {
		key := strings.TrimSpace(segment.ExcerptText)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		segment.TimestampSeconds = math.Round(segment.TimestampSeconds*100) / 100
		out = append(out, segment)
	}
	return out
}

// Policy decides which segments count against a file.
type Policy struct {
	// MinScore is the lowest top-category score that counts. Zero counts
	// every reported segment.
	MinScore float64
}

// Apply returns v restricted to the segments that meet the policy.
func (p Policy) Apply(v Verdict) Verdict {
	if p.MinScore <= 0 || len(v.Evidence) == 0 {
		return v
	}
	kept := make([]FlaggedSegment, 0, len(v.Evidence))
	for _, segment := range v.Evidence {
		if _, score := segment.MaxScore(); score >= p.MinScore {
			kept = append(kept, segment)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	return Verdict{Evidence: kept, FramesAnalyzed: v.FramesAnalyzed}
}

func sortedCategories(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
