// internal/utils/slug.go
package utils

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRuns     = regexp.MustCompile(`-{2,}`)
	leadingHyphens = regexp.MustCompile(`^-+|-+$`)
)

// Slugify turns a human title into a url/storage safe slug:
// lowercase, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	slug = leadingHyphens.ReplaceAllString(slug, "")
	return slug
}
