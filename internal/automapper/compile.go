package automapper

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"wbplanner/internal/common"
	"wbplanner/internal/diagnostic"
	"wbplanner/internal/mapping"
	"wbplanner/internal/match"
	"wbplanner/internal/navigator"
	"wbplanner/internal/schema"
)

// Config is the compiled, schema-checked form of Rules. It is immutable and
// safe for concurrent use.
type Config struct {
	tableSynonyms []tableSynonym
	shortcuts     []shortcut
	synonyms      []synonym
	dontMatch     map[string][]Scope
}

type options struct {
	regex     []*regexp.Regexp
	exact     []string
	contains  []string
	formatted []string
}

type tableSynonym struct {
	table     string
	baseTable string
	filter    mapping.Path
	synonyms  []string
}

type shortcut struct {
	table string
	path  mapping.Path
	opts  options
}

type synonym struct {
	table string
	field string
	opts  options
}

// Compile checks rules against the navigator's schema and compiles them.
// Entries that fail validation are reported and left out of the Config.
func Compile(rules *Rules, nav *navigator.Navigator) (*Config, *diagnostic.Diagnostics) {
	res := &diagnostic.Diagnostics{}
	cfg := &Config{dontMatch: map[string][]Scope{}}

	if rules == nil {
		return cfg, res
	}

	g := nav.Graph()

	for i, ts := range rules.TableSynonyms {
		where := fmt.Sprintf("table_synonyms[%d]", i)

		if !g.HasTable(ts.Table) {
			res.AddError("unknown_table", fmt.Sprintf("table %q not found", ts.Table), ts.Table, where)
			continue
		}

		c := tableSynonym{table: g.TableName(ts.Table)}

		for _, s := range ts.Synonyms {
			if f := match.FormatHeader(s); f != "" {
				c.synonyms = append(c.synonyms, f)
			}
		}

		if len(c.synonyms) == 0 {
			res.AddWarning("empty_synonyms", "table synonym has no usable synonyms", c.table, where)
			continue
		}

		if ts.MappingPathFilter != "" {
			filter, ok := compileFilter(ts, nav, res, where)
			if !ok {
				continue
			}

			c.baseTable = g.TableName(ts.BaseTable)
			c.filter = filter
		}

		cfg.tableSynonyms = append(cfg.tableSynonyms, c)
	}

	for i, sc := range rules.Shortcuts {
		where := fmt.Sprintf("shortcuts[%d]", i)

		if !g.HasTable(sc.Table) {
			res.AddError("unknown_table", fmt.Sprintf("table %q not found", sc.Table), sc.Table, where)
			continue
		}

		raw, err := mapping.ParsePath(sc.Path)
		if err != nil {
			res.AddError("invalid_path", err.Error(), sc.Table, where)
			continue
		}

		path, err := nav.ValidatePath(sc.Table, raw)
		if err != nil {
			res.AddError("invalid_path", err.Error(), sc.Table, where)
			continue
		}

		opts, ok := compileOptions(sc.Headers, res, sc.Table, where)
		if !ok {
			continue
		}

		cfg.shortcuts = append(cfg.shortcuts, shortcut{table: g.TableName(sc.Table), path: path, opts: opts})
	}

	for i, sy := range rules.Synonyms {
		where := fmt.Sprintf("synonyms[%d]", i)

		if !g.HasTable(sy.Table) {
			res.AddError("unknown_table", fmt.Sprintf("table %q not found", sy.Table), sy.Table, where)
			continue
		}

		f, ok := schema.FindField(g, sy.Table, sy.Field)
		if !ok {
			res.AddError("unknown_field", fmt.Sprintf("field %q not found", sy.Field), sy.Table, where)
			continue
		}

		opts, ok := compileOptions(sy.Headers, res, sy.Table, where)
		if !ok {
			continue
		}

		cfg.synonyms = append(cfg.synonyms, synonym{table: g.TableName(sy.Table), field: f.Name, opts: opts})
	}

	for i, dm := range rules.DontMatch {
		where := fmt.Sprintf("dont_match[%d]", i)

		f, ok := schema.FindField(g, dm.Table, dm.Field)
		if !ok {
			res.AddError("unknown_field", fmt.Sprintf("field %q not found", dm.Field), dm.Table, where)
			continue
		}

		valid := true

		for _, s := range dm.Scopes {
			if !s.IsValid() {
				res.AddError("unknown_scope", fmt.Sprintf("unknown scope %q", s), dm.Table, where)
				valid = false
			}
		}

		if !valid {
			continue
		}

		key := fieldKey(dm.Table, f.Name)
		if len(dm.Scopes) == 0 {
			cfg.dontMatch[key] = []Scope{ScopeAutomapper, ScopeSuggestion}
		} else {
			cfg.dontMatch[key] = append(cfg.dontMatch[key], dm.Scopes...)
		}
	}

	return cfg, res
}

func compileFilter(ts TableSynonym, nav *navigator.Navigator, res *diagnostic.Diagnostics, where string) (mapping.Path, bool) {
	g := nav.Graph()

	if ts.BaseTable == "" {
		res.AddError("missing_base_table", "mapping_path_filter requires base_table", ts.Table, where)
		return nil, false
	}

	raw, err := mapping.ParsePath(ts.MappingPathFilter)
	if err != nil {
		res.AddError("invalid_path", err.Error(), ts.Table, where)
		return nil, false
	}

	filter, table, err := nav.ValidatePrefix(ts.BaseTable, raw)
	if err != nil {
		res.AddError("invalid_path", err.Error(), ts.BaseTable, where)
		return nil, false
	}

	if common.FoldKey(table) != common.FoldKey(g.TableName(ts.Table)) {
		res.AddError("filter_table_mismatch",
			fmt.Sprintf("mapping_path_filter %s reaches %s, not %s", filter, table, ts.Table), ts.Table, where)

		return nil, false
	}

	return filter, true
}

func compileOptions(h HeaderOptions, res *diagnostic.Diagnostics, table, where string) (options, bool) {
	var o options

	ok := true

	for _, expr := range h.Regex {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			res.AddError("invalid_regex", fmt.Sprintf("invalid regex %q: %v", expr, err), table, where)
			ok = false

			continue
		}

		o.regex = append(o.regex, re)
	}

	for _, s := range h.String {
		o.exact = append(o.exact, common.FoldKey(s))
	}

	for _, s := range h.Contains {
		if s = common.FoldKey(s); s != "" {
			o.contains = append(o.contains, s)
		}
	}

	for _, s := range h.Formatted {
		if s = match.FormatHeader(s); s != "" {
			o.formatted = append(o.formatted, s)
		}
	}

	if ok && len(o.regex)+len(o.exact)+len(o.contains)+len(o.formatted) == 0 {
		res.AddWarning("empty_headers", "rule has no header options", table, where)
		ok = false
	}

	return o, ok
}

// matches reports whether header satisfies the options and with which rule.
// Formatted synonyms are only consulted when no plain option family
// matches.
func (o options) matches(header string, plain match.Rule) (match.Rule, bool) {
	trimmed := strings.TrimSpace(header)

	if slices.ContainsFunc(o.regex, func(re *regexp.Regexp) bool { return re.MatchString(trimmed) }) {
		return plain, true
	}

	folded := common.FoldKey(header)

	if slices.Contains(o.exact, folded) {
		return plain, true
	}

	if slices.ContainsFunc(o.contains, func(s string) bool { return strings.Contains(folded, s) }) {
		return plain, true
	}

	if len(o.formatted) > 0 && slices.Contains(o.formatted, match.FormatHeader(header)) {
		return match.RuleFormattedSynonym, true
	}

	return 0, false
}

func (c *Config) excluded(table, field string, scope Scope) bool {
	return slices.Contains(c.dontMatch[fieldKey(table, field)], scope)
}

func fieldKey(table, field string) string {
	return common.FoldKey(table) + mapping.PathSeparator + common.FoldKey(field)
}
