package scraper

import "strings"

// MatchesKeywords reports whether any keyword occurs in text. Both are
// expected to be lower-cased already.
func MatchesKeywords(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// MatchingKeywords returns every keyword found in text, in keyword order.
func MatchingKeywords(text string, keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}
