package reference

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	fold       = cases.Fold()
)

// normalizeHeader reduces a column header to a comparison key that
// ignores accents, case and surrounding or repeated whitespace.
func normalizeHeader(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = fold.String(out)
	return strings.Join(strings.Fields(out), " ")
}

// column locates the first alias present in headers, or -1.
func column(headers []string, aliases []string) int {
	keys := make(map[string]int, len(headers))
	for i, h := range headers {
		k := normalizeHeader(h)
		if _, seen := keys[k]; !seen {
			keys[k] = i
		}
	}
	for _, a := range aliases {
		if i, ok := keys[normalizeHeader(a)]; ok {
			return i
		}
	}
	return -1
}
