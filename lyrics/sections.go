package lyrics

import "regexp"

// labelRegex matches a line wrapped entirely in one pair of square brackets,
// e.g. "[Chorus]" or "[Verse 2: Artist]". Nested brackets are not labels.
var labelRegex = regexp.MustCompile(`^\[([^\[\]]*)\]$`)

// IsLabel reports whether line is a section label.
func IsLabel(line string) bool {
	return labelRegex.MatchString(line)
}

// LabelName returns the label text without brackets.
func LabelName(line string) (string, bool) {
	m := labelRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SectionFor scans backwards from index and returns the name of the first
// label it finds. A label line is its own section.
func SectionFor(lines []string, index int) (string, bool) {
	if index >= len(lines) {
		return "", false
	}
	for i := index; i >= 0; i-- {
		if name, ok := LabelName(lines[i]); ok {
			return name, true
		}
	}
	return "", false
}

// SectionTracker answers SectionFor queries in constant time after a single
// forward pass over the lines.
type SectionTracker struct {
	lines []string
	// owner[i] is the index of the label line governing line i, or -1.
	owner []int
}

func NewSectionTracker(lines []string) *SectionTracker {
	owner := make([]int, len(lines))
	current := -1
	for i, line := range lines {
		if IsLabel(line) {
			current = i
		}
		owner[i] = current
	}
	return &SectionTracker{lines: lines, owner: owner}
}

// Section returns the section name for line i.
func (t *SectionTracker) Section(i int) (string, bool) {
	if i < 0 || i >= len(t.owner) || t.owner[i] < 0 {
		return "", false
	}
	return LabelName(t.lines[t.owner[i]])
}

// SameSection reports whether lines i and j carry the same section name.
// Lines before the first label share the unnamed section. Repeated labels
// such as two "[Chorus]" blocks count as one section.
func (t *SectionTracker) SameSection(i, j int) bool {
	if i < 0 || j < 0 || i >= len(t.owner) || j >= len(t.owner) {
		return false
	}
	ni, oki := t.Section(i)
	nj, okj := t.Section(j)
	return oki == okj && ni == nj
}
