package plan

import (
	"fmt"
	"strings"

	"wbplanner/internal/automapper"
)

// SuggestionReport is a human-readable summary of an automapper result.
type SuggestionReport struct {
	BaseTable string
	Scope     string
	Mapped    []MatchReport
	Unmapped  []UnmappedReport
	// Ambiguous counts mapped headers whose best candidates tie.
	Ambiguous   int
	NeedsReview bool
}

// MatchReport describes a mapped header.
type MatchReport struct {
	Header     string
	Path       string
	Rule       string
	Confidence float64
	// Alternatives lists the other tied paths of an ambiguous header.
	Alternatives []string
}

// UnmappedReport describes an unmapped header with suggestions.
type UnmappedReport struct {
	Header     string
	Candidates []CandidateReport
}

// CandidateReport describes a potential match candidate.
type CandidateReport struct {
	Path  string
	Rule  string
	Score float64
}

// GenerateReport creates a report from an automapper result, listing up to
// maxCandidates suggestions per unmapped header.
func GenerateReport(res *automapper.Result, maxCandidates int) *SuggestionReport {
	report := &SuggestionReport{
		BaseTable: res.BaseTable,
		Scope:     string(res.Scope),
		Mapped:    []MatchReport{},
		Unmapped:  []UnmappedReport{},
	}

	for _, h := range res.Headers {
		if h.Path == nil {
			umr := UnmappedReport{Header: h.Header, Candidates: []CandidateReport{}}

			for _, c := range h.Suggestions.Top(maxCandidates) {
				umr.Candidates = append(umr.Candidates, CandidateReport{
					Path:  c.Path.String(),
					Rule:  c.Rule.String(),
					Score: c.Score,
				})
			}

			report.Unmapped = append(report.Unmapped, umr)

			continue
		}

		mr := MatchReport{Header: h.Header, Path: h.Path.String()}
		if best := h.Suggestions.Best(); best != nil {
			mr.Rule = best.Rule.String()
			mr.Confidence = best.Score
		}

		if h.Ambiguity != nil {
			report.Ambiguous++

			for _, p := range h.Ambiguity.Candidates {
				if s := p.String(); s != mr.Path {
					mr.Alternatives = append(mr.Alternatives, s)
				}
			}
		}

		report.Mapped = append(report.Mapped, mr)
	}

	report.NeedsReview = len(report.Unmapped) > 0 || report.Ambiguous > 0

	return report
}

// FormatReport formats a suggestion report as human-readable text.
func FormatReport(report *SuggestionReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n=== %s (%s) ===\n", report.BaseTable, report.Scope)
	fmt.Fprintf(&sb, "Mapped: %d, Ambiguous: %d, Unmapped: %d\n",
		len(report.Mapped), report.Ambiguous, len(report.Unmapped))

	if len(report.Mapped) > 0 {
		sb.WriteString("\nMapped headers:\n")

		for _, m := range report.Mapped {
			fmt.Fprintf(&sb, "  ✓ %s -> %s (%.0f%%, %s)\n", m.Header, m.Path, m.Confidence*100, m.Rule)

			if len(m.Alternatives) > 0 {
				fmt.Fprintf(&sb, "    ambiguous with: %s\n", strings.Join(m.Alternatives, ", "))
			}
		}
	}

	if len(report.Unmapped) > 0 {
		sb.WriteString("\nUnmapped headers (need review):\n")

		for _, um := range report.Unmapped {
			fmt.Fprintf(&sb, "  ✗ %s\n", um.Header)

			if len(um.Candidates) > 0 {
				sb.WriteString("    Suggestions:\n")

				for i, c := range um.Candidates {
					fmt.Fprintf(&sb, "      %d. %s (%.0f%%, %s)\n", i+1, c.Path, c.Score*100, c.Rule)
				}
			}
		}
	}

	if report.NeedsReview {
		sb.WriteString("\n⚠ This plan needs manual review.\n")
	} else {
		sb.WriteString("\n✓ All headers mapped.\n")
	}

	return sb.String()
}
