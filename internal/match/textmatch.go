// Package match scores title similarity between venues. Pairing decisions
// are made once at startup, so clarity wins over micro-optimization here.
package match

import "strings"

// stopWords are filler tokens excluded from similarity scoring.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "will": {}, "with": {}, "this": {}, "they": {}, "or": {},
}

// NormalizeTitle lowercases a title, replaces every non-alphanumeric rune
// with a space, and collapses runs of whitespace.
func NormalizeTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, title)

	return strings.Join(strings.Fields(mapped), " ")
}

// Tokenize splits a normalized title into words.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// RemoveStopWords drops filler tokens from a token list.
func RemoveStopWords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopWords[token]; !stop && token != "" {
			kept = append(kept, token)
		}
	}

	return kept
}

// JaccardSimilarity scores two token lists as |A ∩ B| / |A ∪ B| over their
// unique tokens. Two empty lists are identical (1.0); one empty list shares
// nothing (0.0).
func JaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// TitleSimilarity normalizes, tokenizes, and scores two raw titles.
func TitleSimilarity(a, b string) float64 {
	return JaccardSimilarity(
		Tokenize(NormalizeTitle(a)),
		Tokenize(NormalizeTitle(b)),
	)
}

// IsLikelyMatch reports whether two titles score at or above threshold.
func IsLikelyMatch(a, b string, threshold float64) bool {
	return TitleSimilarity(a, b) >= threshold
}
