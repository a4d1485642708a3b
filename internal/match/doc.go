// Package match provides header normalization, Levenshtein similarity, and
// candidate ranking for header-to-path matching.
//
// Key functions:
//   - NormalizeHeader: normalizes header text and schema names for comparison
//   - FormatHeader: the space-separated form used by formatted synonyms
//   - Levenshtein: computes edit distance between strings
//   - CandidateList: orders mapping-path candidates by rule, score and usage
package match
