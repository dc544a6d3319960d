// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips all HTML from user-entered text such as names, project
// descriptions, and task titles, and trims surrounding whitespace.
// Stored documents hold plain text only.
func Clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// CleanAll applies Clean to each element of a slice, dropping entries
// that are empty after sanitizing.
func CleanAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
