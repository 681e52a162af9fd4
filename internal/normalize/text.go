// Package normalize turns raw cell text into comparable values.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Fold maps full-width digits, letters and punctuation to their ASCII forms.
func Fold(s string) string {
	return width.Fold.String(s)
}

// Normalize folds s, collapses whitespace runs to a single space and trims it.
func Normalize(s string) string {
	s = Fold(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Compact folds s and removes every whitespace rune, including the ideographic space.
func Compact(s string) string {
	s = Fold(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ContainsAny reports whether text contains at least one of keys.
func ContainsAny(text string, keys []string) bool {
	for _, k := range keys {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether text contains every key. An empty key list never matches.
func ContainsAll(text string, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

// CountHits counts the keys present in text.
func CountHits(text string, keys []string) int {
	n := 0
	for _, k := range keys {
		if k != "" && strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// CompactAll compacts every element of keys.
func CompactAll(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if c := Compact(k); c != "" {
			out = append(out, c)
		}
	}
	return out
}
