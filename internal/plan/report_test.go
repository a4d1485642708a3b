package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbplanner/internal/automapper"
)

func TestGenerateReport(t *testing.T) {
	f := newFixture(t)

	res, err := f.mapper.Suggest([]string{"Cat #", "Remarks", "Nope"}, "CollectionObject", automapper.ScopeAutomapper)
	require.NoError(t, err)

	report := GenerateReport(res, 3)
	assert.Equal(t, "CollectionObject", report.BaseTable)
	assert.Equal(t, "automapper", report.Scope)
	require.Len(t, report.Mapped, 2)
	assert.Equal(t, "catalogNumber", report.Mapped[0].Path)
	assert.Equal(t, "shortcut", report.Mapped[0].Rule)
	assert.InDelta(t, 1.0, report.Mapped[0].Confidence, 1e-9)

	require.Len(t, report.Unmapped, 1)
	assert.Equal(t, "Nope", report.Unmapped[0].Header)
	assert.True(t, report.NeedsReview)

	text := FormatReport(report)
	assert.Contains(t, text, "=== CollectionObject (automapper) ===")
	assert.Contains(t, text, "✓ Cat # -> catalogNumber")
	assert.Contains(t, text, "✗ Nope")
	assert.Contains(t, text, "⚠ This plan needs manual review.")
}

func TestGenerateReport_Ambiguous(t *testing.T) {
	f := newFixture(t)

	res, err := f.mapper.Suggest([]string{"Remarks"}, "CollectionObject", automapper.ScopeSuggestion)
	require.NoError(t, err)

	report := GenerateReport(res, 5)
	require.Len(t, report.Mapped, 1)
	assert.Equal(t, "remarks", report.Mapped[0].Path)
	assert.Empty(t, report.Mapped[0].Alternatives, "the shortest path wins outright")

	res, err = f.mapper.Suggest([]string{"Name"}, "CollectionObject", automapper.ScopeAutomapper)
	require.NoError(t, err)

	report = GenerateReport(res, 5)
	require.Len(t, report.Mapped, 1)
	assert.Equal(t, 1, report.Ambiguous)
	assert.NotEmpty(t, report.Mapped[0].Alternatives)
	assert.True(t, report.NeedsReview)
	assert.Contains(t, FormatReport(report), "ambiguous with:")
}
