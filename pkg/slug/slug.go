package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from a display name.
//
// Examples:
//   - "JS Recon Radar" → "js-recon-radar"
//   - "Pro Hunter Bundle" → "pro-hunter-bundle"
//   - "DOM Sink  Tracker!" → "dom-sink-tracker"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Normalize lowercases and trims a slug received from a client so lookups
// are insensitive to case and surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Valid reports whether s is a canonical slug: lowercase alphanumeric words
// separated by single hyphens.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}
