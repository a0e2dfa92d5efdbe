package hcc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC, trims the ends and drops control characters
// other than newlines and tabs. Digitized text often carries full-width
// digits and stray form feeds.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

// normalizeKey folds a codebook key: NFKC, collapsed whitespace, lowercase.
func normalizeKey(key string) string {
	key = norm.NFKC.String(key)
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

// wordSet splits on whitespace into a set.
func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
