package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize converts a product name or user-supplied slug into the canonical
// URL-friendly form used by the catalog ("Night Sanctuary" -> "night-sanctuary").
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Replace any non-alphanumeric run with a single hyphen.
	s = slugRegexp.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
