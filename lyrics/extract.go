package lyrics

import (
	"strings"

	"lyricsearch/models"
)

// Extract returns every line containing keyword (case-insensitive, literal)
// with its neighbouring lines. A neighbour is only reported when it is lyric
// content of the same section as the matched line.
func Extract(lines []string, keyword string) []models.Match {
	if keyword == "" || len(lines) == 0 {
		return nil
	}
	needle := strings.ToLower(keyword)
	tracker := NewSectionTracker(lines)

	var matches []models.Match
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		m := models.Match{
			Match: line,
			Index: i,
		}
		if name, ok := tracker.Section(i); ok {
			m.Section = &name
		}
		if i > 0 && !IsLabel(lines[i-1]) && tracker.SameSection(i-1, i) {
			before := lines[i-1]
			m.Before = &before
		}
		if i < len(lines)-1 && !IsLabel(lines[i+1]) && tracker.SameSection(i, i+1) {
			after := lines[i+1]
			m.After = &after
		}
		matches = append(matches, m)
	}
	return matches
}
