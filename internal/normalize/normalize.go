// Package normalize canonicalizes tokens before they are used as FST keys,
// so that the same surface word always maps to the same index key
// regardless of accents, case, or punctuation noise.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var noSymbols = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Word normalizes a single token: NFKD-decompose, strip everything outside
// [A-Za-z0-9], lowercase. Diacritics are dropped because NFKD splits a
// letter from its combining marks and the symbol stripper then removes the
// marks, leaving the bare base letter.
func Word(s string) string {
	decomposed := norm.NFKD.String(s)
	stripped := noSymbols.ReplaceAllString(decomposed, "")
	return strings.ToLower(stripped)
}

// Tokens splits free text on whitespace and normalizes each resulting word,
// dropping any token that normalizes to length <= 1 (single characters and
// the empty string carry no search value).
func Tokens(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := Word(f)
		if len(w) <= 1 {
			continue
		}
		out = append(out, w)
	}
	return out
}
