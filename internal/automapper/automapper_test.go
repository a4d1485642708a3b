package automapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbplanner/internal/cache"
	"wbplanner/internal/mapping"
	"wbplanner/internal/match"
	"wbplanner/internal/navigator"
	"wbplanner/internal/schema/schematest"
)

const testRules = `
table_synonyms:
  - table: Agent
    base_table: CollectionObject
    mapping_path_filter: determinations.determiner
    synonyms: [determiner, determined by]
shortcuts:
  - table: CollectionObject
    path: catalogNumber
    headers:
      contains: cat
synonyms:
  - table: CollectingEvent
    field: stationFieldNumber
    headers:
      string: [field no, station]
      formatted: field number
  - table: Locality
    field: latitude1
    headers:
      regex: '^lat(itude)?\b'
dont_match:
  - table: CollectionObject
    field: remarks
    scopes: [automapper]
`

func newMapper(t *testing.T, rules string, opts ...Option) *AutoMapper {
	t.Helper()

	nav := navigator.New(schematest.Fixture(t))

	r, err := ParseRules([]byte(rules))
	require.NoError(t, err)

	cfg, diags := Compile(r, nav)
	require.True(t, diags.IsValid(), "%v", diags.Error())

	a, err := New(nav, cfg, opts...)
	require.NoError(t, err)

	return a
}

func suggestOne(t *testing.T, a *AutoMapper, header string, scope Scope) HeaderResult {
	t.Helper()

	res, err := a.Suggest([]string{header}, "CollectionObject", scope)
	require.NoError(t, err)
	require.Len(t, res.Headers, 1)

	return res.Headers[0]
}

func TestSuggest_ShortcutContains(t *testing.T) {
	a := newMapper(t, testRules)

	hr := suggestOne(t, a, "Cat #", ScopeAutomapper)

	require.NotEmpty(t, hr.Suggestions)
	assert.Equal(t, "catalogNumber", hr.Suggestions[0].Path.String())
	assert.Equal(t, match.RuleShortcut, hr.Suggestions[0].Rule)
	assert.Equal(t, "catalogNumber", hr.Path.String())
	assert.Nil(t, hr.Ambiguity)
}

func TestSuggest_Rules(t *testing.T) {
	a := newMapper(t, testRules)

	tests := []struct {
		header string
		want   string
		rule   match.Rule
	}{
		{header: "Start Date", want: "collectingEvent.startDate", rule: match.RuleLiteral},
		{header: "startdate", want: "collectingEvent.startDate", rule: match.RuleLiteral},
		{header: "Field No", want: "collectingEvent.stationFieldNumber", rule: match.RuleSynonym},
		{header: "Field_Number", want: "collectingEvent.stationFieldNumber", rule: match.RuleFormattedSynonym},
		{header: "Lat", want: "collectingEvent.locality.latitude1", rule: match.RuleSynonym},
		{header: "Determiner Last Name", want: "determinations.#1.determiner.lastName", rule: match.RuleLiteral},
		{header: "Collecting Event Start Date", want: "collectingEvent.startDate", rule: match.RuleLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			hr := suggestOne(t, a, tt.header, ScopeAutomapper)

			require.NotNil(t, hr.Path)
			assert.Equal(t, tt.want, hr.Path.String())
			assert.Equal(t, tt.rule, hr.Suggestions[0].Rule)
		})
	}
}

func TestSuggest_DontMatchIsScoped(t *testing.T) {
	a := newMapper(t, testRules)

	auto := suggestOne(t, a, "Remarks", ScopeAutomapper)
	assert.Equal(t, "accession.remarks", auto.Path.String())

	for _, c := range auto.Suggestions {
		assert.NotEqual(t, "remarks", c.Path.String())
	}

	sugg := suggestOne(t, a, "Remarks", ScopeSuggestion)
	assert.Equal(t, "remarks", sugg.Path.String())
}

func TestSuggest_UnmappedIsNotAnError(t *testing.T) {
	a := newMapper(t, testRules)

	res, err := a.Suggest([]string{"Zzz Unknown", ""}, "CollectionObject", ScopeAutomapper)
	require.NoError(t, err)
	assert.Len(t, res.Unmapped(), 2)
	assert.Empty(t, res.Mapped())

	for _, line := range res.Lines() {
		assert.True(t, line.Path.IsEmpty())
	}
}

func TestSuggest_UniquePerHeader(t *testing.T) {
	a := newMapper(t, testRules)

	res, err := a.Suggest([]string{"Start Date", "Start Date", "Determined Date", "Determined Date"},
		"CollectionObject", ScopeAutomapper)
	require.NoError(t, err)

	assert.Equal(t, "collectingEvent.startDate", res.Headers[0].Path.String())
	assert.Nil(t, res.Headers[1].Path, "to-one path cannot repeat")
	assert.Equal(t, "determinations.#1.determinedDate", res.Headers[2].Path.String())
	assert.Equal(t, "determinations.#2.determinedDate", res.Headers[3].Path.String())

	lines := res.Lines()
	assert.Empty(t, mapping.FindDuplicates(lines))
}

func TestSuggest_SuggestionScopeAllowsRepeats(t *testing.T) {
	a := newMapper(t, testRules)

	res, err := a.Suggest([]string{"Start Date", "Start Date"}, "CollectionObject", ScopeSuggestion)
	require.NoError(t, err)

	assert.Equal(t, "collectingEvent.startDate", res.Headers[0].Path.String())
	assert.Equal(t, "collectingEvent.startDate", res.Headers[1].Path.String())
}

func TestSuggest_Ambiguity(t *testing.T) {
	a := newMapper(t, "")

	hr := suggestOne(t, a, "Name", ScopeAutomapper)

	require.NotNil(t, hr.Ambiguity)
	assert.Len(t, hr.Ambiguity.Candidates, 11)
	assert.Equal(t, "collectingEvent.locality.geography.$Continent.name", hr.Path.String())
	assert.Contains(t, hr.Ambiguity.Error(), `"Name"`)
}

func TestSuggest_RecordedChoiceBreaksTie(t *testing.T) {
	c := cache.New()
	a := newMapper(t, "", WithCache(c))

	genus := mapping.MustParsePath("determinations.#1.taxon.$Genus.name")
	a.RecordChoice("Name", genus)

	hr := suggestOne(t, a, "name", ScopeAutomapper)

	assert.Equal(t, genus.String(), hr.Path.String())
	assert.Nil(t, hr.Ambiguity)

	typ, ok := c.BucketType(ChoiceBucket)
	require.True(t, ok)
	assert.Equal(t, cache.BucketLocal, typ)

	_, n, ok := c.Peek(ChoiceBucket, choiceKey("NAME", genus))
	require.True(t, ok)
	assert.Equal(t, 1, n, "ranking does not count as a use")
}

func TestSuggest_FuzzyOnlyInSuggestionScope(t *testing.T) {
	a := newMapper(t, "")

	auto := suggestOne(t, a, "Catalog Numbr", ScopeAutomapper)
	assert.Nil(t, auto.Path)

	sugg := suggestOne(t, a, "Catalog Numbr", ScopeSuggestion)
	require.NotNil(t, sugg.Path)
	assert.Equal(t, "catalogNumber", sugg.Path.String())
	assert.Equal(t, match.RuleFuzzy, sugg.Suggestions[0].Rule)
	assert.GreaterOrEqual(t, sugg.Suggestions[0].Score, match.FuzzyThreshold)
}

func TestSuggest_Errors(t *testing.T) {
	a := newMapper(t, "")

	_, err := a.Suggest([]string{"x"}, "CollectionObject", Scope("other"))
	assert.True(t, errors.Is(err, ErrUnknownScope))

	_, err = a.Suggest([]string{"x"}, "Nope", ScopeAutomapper)

	var ufe *navigator.UnknownFieldError
	assert.ErrorAs(t, err, &ufe)
}

func TestReachable_Memoized(t *testing.T) {
	a := newMapper(t, "", WithMemoSize(2))

	first := a.reachableFrom("CollectionObject")
	second := a.reachableFrom("CollectionObject")

	assert.Len(t, second, len(first))
	assert.Equal(t, 1, a.memo.Len())

	for _, r := range first {
		assert.Len(t, r.tables, len(r.path))
	}
}

func TestBumpIndex(t *testing.T) {
	taken := map[string]bool{
		mapping.MustParsePath("accession.accessionAgents.#1.role").Key(): true,
		mapping.MustParsePath("accession.accessionAgents.#2.role").Key(): true,
	}

	got, ok := bumpIndex(mapping.MustParsePath("accession.accessionAgents.#1.role"), taken)
	require.True(t, ok)
	assert.Equal(t, "accession.accessionAgents.#3.role", got.String())

	_, ok = bumpIndex(mapping.MustParsePath("catalogNumber"), taken)
	assert.False(t, ok)
}
