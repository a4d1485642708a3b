package match

import "unicode/utf8"

// FuzzyThreshold is the minimum similarity for a fuzzy header match.
const FuzzyThreshold = 0.8

// Levenshtein computes the Levenshtein distance (edit distance) between two
// strings, counting runes rather than bytes.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// LevenshteinNormalized computes a similarity score between 0 and 1.
// The score is: 1 - (distance / max(len(a), len(b))) in runes.
func LevenshteinNormalized(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// HeaderSimilarity scores a header against a schema name after
// normalization. The better of the plain and noise-stripped forms wins.
func HeaderSimilarity(header, name string) float64 {
	h := NormalizeHeader(header)
	if h == "" {
		return 0
	}

	score := LevenshteinNormalized(h, NormalizeHeader(name))

	stripped := LevenshteinNormalized(NormalizeHeaderWithNoiseStrip(header), NormalizeHeaderWithNoiseStrip(name))

	return max(score, stripped)
}
