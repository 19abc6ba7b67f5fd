package moderation

import (
	"fmt"
	"sort"
	"strings"
)

// FormatScores renders category scores as percentages, highest first.
func FormatScores(scores map[string]float64) string {
	if len(scores) == 0 {
		return "-"
	}
	categories := sortedCategories(scores)
	sort.SliceStable(categories, func(i, j int) bool {
		return scores[categories[i]] > scores[categories[j]]
	})
	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		label := strings.ReplaceAll(category, "_", " ")
		parts = append(parts, fmt.Sprintf("%s %.0f%%", label, scores[category]*100))
	}
	return strings.Join(parts, ", ")
}

// FormatTimestamp renders seconds as m:ss.cc.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%d:%05.2f", minutes, rest)
}
