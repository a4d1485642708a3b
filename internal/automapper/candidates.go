package automapper

import (
	"strings"

	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/match"
)

// Literal and fuzzy scores. Exact rules score 1.
const (
	scoreNormalized = 0.95
	scorePathLabel  = 0.9
)

// reachable is a field path from a base table with the tables it crosses.
type reachable struct {
	path mapping.Path
	// tables[i] is the table element i is resolved on.
	tables []string
	field  string
	// label is the normalized concatenation of the path's display names.
	label string
}

func (r reachable) fieldTable() string {
	return r.tables[len(r.tables)-1]
}

func (a *AutoMapper) reachableFrom(base string) []reachable {
	g := a.nav.Graph()
	key := memoKey(g.Version(), base, a.nav.MaxDepth())

	if cached, ok := a.memo.Get(key); ok {
		return cached
	}

	var out []reachable

	for p := range a.nav.EnumeratePaths(base, 0) {
		last, ok := p.Last()
		if !ok || last.Kind != mapping.ElementField {
			continue
		}

		r := reachable{path: p, tables: make([]string, len(p)), field: last.Name}

		var label strings.Builder

		table := base
		for i, el := range p {
			r.tables[i] = table

			switch el.Kind {
			case mapping.ElementRelationship:
				label.WriteString(g.LocalizedName(table, el.Name))
				table = el.Table
			case mapping.ElementField:
				label.WriteString(g.LocalizedName(table, el.Name))
			case mapping.ElementTreeRank:
				label.WriteString(el.Name)
			}
		}

		r.label = match.NormalizeHeader(label.String())
		out = append(out, r)
	}

	a.memo.Add(key, out)

	return out
}

// candidates ranks every rule match for one header.
func (a *AutoMapper) candidates(header, base string, scope Scope, universe []reachable) match.CandidateList {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	text, allowed := a.applyTableSynonyms(header, base, universe)

	var list match.CandidateList

	add := func(r reachable, rule match.Rule, score float64) {
		list = append(list, match.Candidate{
			Path:     r.path,
			Rule:     rule,
			Score:    score,
			UseCount: a.useCount(header, r.path),
		})
	}

	g := a.nav.Graph()

	for _, r := range allowed {
		if a.config.excluded(r.fieldTable(), r.field, scope) {
			continue
		}

		for _, sc := range a.config.shortcuts {
			if !sc.appliesTo(r) {
				continue
			}

			if rule, ok := sc.opts.matches(text, match.RuleShortcut); ok {
				add(r, rule, 1)
			}
		}

		for _, sy := range a.config.synonyms {
			if common.FoldKey(sy.table) != common.FoldKey(r.fieldTable()) || common.FoldKey(sy.field) != common.FoldKey(r.field) {
				continue
			}

			if rule, ok := sy.opts.matches(text, match.RuleSynonym); ok {
				add(r, rule, 1)
			}
		}

		if score, ok := literalScore(text, r, g.LocalizedName(r.fieldTable(), r.field)); ok {
			add(r, match.RuleLiteral, score)
			continue
		}

		if scope == ScopeSuggestion {
			score := max(match.HeaderSimilarity(text, r.field),
				match.HeaderSimilarity(text, g.LocalizedName(r.fieldTable(), r.field)))
			if score >= match.FuzzyThreshold {
				add(r, match.RuleFuzzy, score)
			}
		}
	}

	return list.Sort()
}

// applyTableSynonyms restricts the universe when the header names a table
// through one of its synonyms, and strips that synonym from the header.
func (a *AutoMapper) applyTableSynonyms(header, base string, universe []reachable) (string, []reachable) {
	formatted := " " + match.FormatHeader(header) + " "

	for _, ts := range a.config.tableSynonyms {
		if ts.filter != nil && common.FoldKey(ts.baseTable) != common.FoldKey(base) {
			continue
		}

		for _, syn := range ts.synonyms {
			if !strings.Contains(formatted, " "+syn+" ") {
				continue
			}

			var allowed []reachable

			for _, r := range universe {
				if ts.accepts(r) {
					allowed = append(allowed, r)
				}
			}

			residual := strings.TrimSpace(strings.Replace(formatted, " "+syn+" ", " ", 1))
			if residual == "" {
				residual = header
			}

			return residual, allowed
		}
	}

	return header, universe
}

func (ts tableSynonym) accepts(r reachable) bool {
	if ts.filter != nil {
		return len(r.path) > len(ts.filter) && r.path.HasPrefix(ts.filter)
	}

	return common.FoldKey(r.fieldTable()) == common.FoldKey(ts.table)
}

// appliesTo reports whether r ends with the shortcut path taken from the
// shortcut's table.
func (sc shortcut) appliesTo(r reachable) bool {
	start := len(r.path) - len(sc.path)
	if start < 0 || common.FoldKey(r.tables[start]) != common.FoldKey(sc.table) {
		return false
	}

	return mapping.DivergencePoint(r.path[start:], sc.path) == len(sc.path)
}

// literalScore compares the header with a field's raw and display names,
// then with the display names of the whole path.
func literalScore(header string, r reachable, label string) (float64, bool) {
	trimmed := strings.TrimSpace(header)

	if strings.EqualFold(trimmed, r.field) || strings.EqualFold(trimmed, label) {
		return 1, true
	}

	norm := match.NormalizeHeader(header)
	if norm == "" {
		return 0, false
	}

	if norm == match.NormalizeHeader(r.field) || norm == match.NormalizeHeader(label) {
		return scoreNormalized, true
	}

	if len(r.path) > 1 && norm == r.label {
		return scorePathLabel, true
	}

	return 0, false
}
