package match

import (
	"cmp"
	"slices"

	"wbplanner/internal/mapping"
)

// Rule names the heuristic that produced a candidate. Lower values win.
type Rule int

const (
	RuleShortcut Rule = iota
	RuleSynonym
	RuleFormattedSynonym
	RuleLiteral
	RuleFuzzy
)

func (r Rule) String() string {
	switch r {
	case RuleShortcut:
		return "shortcut"
	case RuleSynonym:
		return "synonym"
	case RuleFormattedSynonym:
		return "formatted_synonym"
	case RuleLiteral:
		return "literal"
	case RuleFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Family groups rules whose candidates compete with each other. Synonyms
// and formatted synonyms form one family.
func (r Rule) Family() Rule {
	if r == RuleFormattedSynonym {
		return RuleSynonym
	}

	return r
}

// Candidate is one possible mapping path for a header.
type Candidate struct {
	Path mapping.Path
	Rule Rule
	// Score is the match quality, 1 for exact rules.
	Score float64
	// UseCount is how often the header was mapped to Path before.
	UseCount int
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// compareCandidates orders by rule family, score descending, use count
// descending, shorter path, then path text.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(a.Rule.Family(), b.Rule.Family()); c != 0 {
		return c
	}

	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}

	if c := cmp.Compare(b.UseCount, a.UseCount); c != 0 {
		return c
	}

	if c := cmp.Compare(len(a.Path), len(b.Path)); c != 0 {
		return c
	}

	return cmp.Compare(a.Path.String(), b.Path.String())
}

// Sort orders the list in place and drops repeated paths, keeping the
// best-ranked occurrence.
func (c CandidateList) Sort() CandidateList {
	slices.SortStableFunc(c, compareCandidates)

	seen := make(map[string]bool, len(c))
	out := c[:0]

	for _, cand := range c {
		key := cand.Path.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, cand)
	}

	return out
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// FirstFamily returns the leading run of candidates from the best rule
// family.
func (c CandidateList) FirstFamily() CandidateList {
	if len(c) == 0 {
		return c
	}

	family := c[0].Rule.Family()
	for i, cand := range c {
		if cand.Rule.Family() != family {
			return c[:i]
		}
	}

	return c
}

// Tied returns the candidates that rank equal to the best one on every key
// except path text. A sorted list with more than one tied candidate is
// ambiguous.
func (c CandidateList) Tied() CandidateList {
	if len(c) == 0 {
		return nil
	}

	best := c[0]
	n := 1

	for _, cand := range c[1:] {
		if cand.Rule.Family() != best.Rule.Family() || cand.Score != best.Score ||
			cand.UseCount != best.UseCount || len(cand.Path) != len(best.Path) {
			break
		}

		n++
	}

	return c[:n]
}

// IsAmbiguous returns true if the best candidate shares its rank.
func (c CandidateList) IsAmbiguous() bool {
	return len(c.Tied()) > 1
}

// Paths returns the candidate paths in order.
func (c CandidateList) Paths() []mapping.Path {
	out := make([]mapping.Path, len(c))
	for i, cand := range c {
		out[i] = cand.Path
	}

	return out
}
