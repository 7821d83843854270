// Package search implements trigram-based fuzzy text matching and ranking
// for story discovery. Matching is case-insensitive and Unicode-aware, so
// Arabic and Latin titles rank the same way.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultSimilarThreshold is the cutoff used by Similar. It mirrors the
// conventional trigram operator threshold.
const DefaultSimilarThreshold = 0.3

// Similarity computes the trigram similarity of two strings in [0, 1].
//
// Both inputs are NFC-normalized, lowercased, and split into words; each word
// is padded with two leading spaces and one trailing space before trigram
// extraction. The score is the Jaccard index of the two trigram sets:
// |intersection| / |union|. Identical strings score 1; if either side yields
// no trigrams the score is 0.
func Similarity(a, b string) float64 {
	ta := Trigrams(a)
	tb := Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Similar reports whether a and b score at or above DefaultSimilarThreshold.
func Similar(a, b string) bool {
	return Similarity(a, b) >= DefaultSimilarThreshold
}

// Greatest returns the largest of the given scores, or 0 when none are given.
func Greatest(scores ...float64) float64 {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	return max
}

// Trigrams extracts the padded trigram set of s.
// Exposed for tests and score debugging.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(s) {
		// Pad so that word boundaries produce distinct trigrams:
		// "cat" yields "  c", " ca", "cat", "at ".
		runes := []rune("  " + word + " ")
		for i := 0; i+3 <= len(runes); i++ {
			set[string(runes[i:i+3])] = struct{}{}
		}
	}
	return set
}

// splitWords normalizes s and splits it into lowercase alphanumeric words.
func splitWords(s string) []string {
	s = strings.ToLower(norm.NFC.String(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
