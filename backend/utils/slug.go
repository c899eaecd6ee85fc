package utils

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify derives a URL slug from a title: lowercase, spaces to hyphens,
// everything outside [a-z0-9-] stripped. "Test Course!!" -> "test-course".
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	return nonSlugChars.ReplaceAllString(slug, "")
}
