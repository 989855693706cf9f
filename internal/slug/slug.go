package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make turns a display name into a URL-safe slug: accents are folded to
// ASCII, other non-ASCII runes and punctuation dropped, and runs of spaces or
// dashes collapsed into a single dash.
func Make(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}

	s := disallowed.ReplaceAllString(strings.ToLower(b.String()), "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}
