package match

import (
	"slices"
	"strings"
	"unicode"
)

// noiseTokens are trailing header words that carry no field identity.
var noiseTokens = []string{"number", "num", "nr", "no", "id"}

// NormalizeHeader normalizes header text or a schema name for comparison.
// The normalization pipeline:
// 1. Tokenize CamelCase and split on anything that is not a letter or digit.
// 2. Case-fold to lower.
// 3. Join without separators.
func NormalizeHeader(s string) string {
	return strings.Join(TokenizeHeader(s), "")
}

// NormalizeHeaderWithNoiseStrip normalizes and drops one trailing noise
// token such as "number" or "no", unless it is the only token.
// Examples:
//   - "Catalog No." -> "catalog"
//   - "catalogNumber" -> "catalog"
//   - "Number" -> "number"
func NormalizeHeaderWithNoiseStrip(s string) string {
	tokens := TokenizeHeader(s)
	if len(tokens) > 1 && slices.Contains(noiseTokens, tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, "")
}

// FormatHeader returns the lower-case tokens of s joined by single spaces.
// "Start_Date", "startDate" and " start  date " all format to "start date".
func FormatHeader(s string) string {
	return strings.Join(TokenizeHeader(s), " ")
}

// TokenizeHeader splits header text into normalized lowercase tokens.
func TokenizeHeader(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// tokenizeCamelCase splits a string into tokens on separators and case
// changes.
// Examples:
//   - "catalogNumber" -> ["catalog", "Number"]
//   - "GUID Value" -> ["GUID", "Value"]
//   - "Cat #" -> ["Cat"]
//   - "latitude1" -> ["latitude1"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true for any rune that is not a letter or digit.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "startDate" -> split before 'D'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "GUIDValue" -> "GUID" + "Value", split before 'V'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
