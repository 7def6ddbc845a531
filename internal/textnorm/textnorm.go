// Package textnorm folds free-text names into a comparable form and performs
// fuzzy matching over candidate names. It has no knowledge of tours or master
// data; importer and service build on it.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics, turns punctuation into spaces
// and collapses runs of whitespace. "Việt Á" and "viet a" normalize to the
// same string. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case r == 'đ' || r == 'Đ':
			r = 'd'
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			r = unicode.ToLower(r)
		default:
			// punctuation, symbols and whitespace all separate tokens
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens returns the whitespace-separated tokens of Normalize(s).
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Keywords builds the search keyword set stored alongside a master entity:
// the full normalized name followed by each distinct token, in first-seen
// order. An empty name yields no keywords.
func Keywords(name string) []string {
	full := Normalize(name)
	if full == "" {
		return []string{}
	}
	seen := map[string]bool{full: true}
	out := []string{full}
	for _, tok := range strings.Fields(full) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
