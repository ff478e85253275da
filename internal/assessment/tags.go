package assessment

import (
	"slices"
	"strings"
)

// AddTag appends the trimmed tag unless it is blank or already present
// (exact, case-sensitive match). The input slice is not modified.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(tags, tag) {
		return tags
	}
	out := make([]string, len(tags), len(tags)+1)
	copy(out, tags)
	return append(out, tag)
}

// RemoveTag drops every entry equal to tag.
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// Tags trims every label and drops blank ones. Duplicates are kept; the
// store does not enforce uniqueness.
func Tags(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
