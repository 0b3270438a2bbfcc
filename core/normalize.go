package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for indexing and querying: lowercase,
// Unicode NFD decomposition with combining marks stripped ("café" ->
// "cafe"), whitespace runs collapsed to single spaces, and the result
// trimmed. It is idempotent, and it is the ONLY normalization in the
// module: the exact same function runs at build time and at query
// time.
//
// Stripping diacritics can merge distinct words across the corpus's
// language mix; that is the intended tradeoff, since users routinely
// type accent-free.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize returns the whitespace tokens of the normalized text.
// Empty or whitespace-only input yields no tokens.
func Tokenize(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}
