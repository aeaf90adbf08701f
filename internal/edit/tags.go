package edit

import (
	"slices"
	"strings"
)

// AddTag appends the trimmed tag unless it is empty or already present.
// Matching is exact and case-sensitive.
func AddTag(labels []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(labels, tag) {
		return labels
	}
	return Append(labels, tag)
}

func RemoveTag(labels []string, i int) ([]string, error) {
	return RemoveAt(labels, i)
}

// RemoveLastTag is what backspace in an empty tag input does.
func RemoveLastTag(labels []string) []string {
	if len(labels) == 0 {
		return labels
	}
	out, _ := RemoveAt(labels, len(labels)-1)
	return out
}
