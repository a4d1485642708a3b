package match

import (
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		// Identical strings
		{"", "", 0},
		{"a", "a", 0},
		{"hello", "hello", 0},

		// Empty vs non-empty
		{"", "abc", 3},
		{"abc", "", 3},

		// Single character operations
		{"a", "b", 1},    // substitution
		{"a", "ab", 1},   // insertion
		{"ab", "a", 1},   // deletion
		{"abc", "ab", 1}, // deletion
		{"ab", "abc", 1}, // insertion

		// Multiple operations
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"algorithm", "altruistic", 6},

		// Case-sensitive
		{"ABC", "abc", 3},

		// Runes, not bytes
		{"année", "annee", 1},
		{"ñandú", "nandu", 2},

		// Header examples
		{"catalognumber", "catalognumbr", 1},
		{"startdate", "enddate", 5},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := Levenshtein(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}

			resultReverse := Levenshtein(tt.b, tt.a)
			if result != resultReverse {
				t.Errorf("Levenshtein symmetry failed: (%q, %q) = %d, (%q, %q) = %d",
					tt.a, tt.b, result, tt.b, tt.a, resultReverse)
			}
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1.0},
		{"hello", "hello", 1.0},
		{"abc", "xyz", 0.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"abc", "ab", 1.0 - 1.0/3.0},
		{"année", "annee", 1.0 - 1.0/5.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := LevenshteinNormalized(tt.a, tt.b)
			if diff := result - tt.expected; diff < -0.001 || diff > 0.001 {
				t.Errorf("LevenshteinNormalized(%q, %q) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestHeaderSimilarity(t *testing.T) {
	tests := []struct {
		header   string
		name     string
		minScore float64
		maxScore float64
	}{
		// Exact after normalization
		{"Start Date", "startDate", 1.0, 1.0},
		{"CATALOG_NUMBER", "catalogNumber", 1.0, 1.0},

		// Noise stripping
		{"Catalog No.", "catalogNumber", 1.0, 1.0},

		// Typos
		{"Catalog Numbr", "catalogNumber", FuzzyThreshold, 1.0},

		// Unrelated
		{"Email", "Password", 0.0, 0.5},
		{"#", "name", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.header+"_"+tt.name, func(t *testing.T) {
			result := HeaderSimilarity(tt.header, tt.name)
			if result < tt.minScore-0.001 || result > tt.maxScore+0.001 {
				t.Errorf("HeaderSimilarity(%q, %q) = %f, want in [%f, %f]",
					tt.header, tt.name, result, tt.minScore, tt.maxScore)
			}
		})
	}
}

func BenchmarkLevenshtein(b *testing.B) {
	a := "algorithm"
	bStr := "altruistic"
	for b.Loop() {
		Levenshtein(a, bStr)
	}
}

func BenchmarkHeaderSimilarity(b *testing.B) {
	for b.Loop() {
		HeaderSimilarity("Determined Date (yyyy)", "determinedDate")
	}
}
