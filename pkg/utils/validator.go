package utils

import (
	"regexp"
	"strings"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	fileNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)
)

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// SplitList splits a comma separated header value, dropping blanks and duplicates
func SplitList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		part = SanitizeString(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// SanitizeFileName reduces name to a single path segment safe for archives
// and Content-Disposition headers
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = fileNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "unnamed"
	}
	return name
}
