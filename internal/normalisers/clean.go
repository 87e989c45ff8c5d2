package normalisers

import (
	"regexp"
	"strings"
)

var (
	blankLines = regexp.MustCompile(`\n\s*\n`)
	hspace     = regexp.MustCompile(`[ \t]+`)
)

// Clean collapses blank-line runs to a single newline and horizontal
// whitespace runs to a single space, then trims the result.
func Clean(text string) string {
	text = blankLines.ReplaceAllString(text, "\n")
	text = hspace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
