package uploadplan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbplanner/internal/mapping"
)

func header(path, name string) mapping.Line {
	return mapping.Line{Path: mapping.MustParsePath(path), Binding: mapping.ExistingHeader{Name: name}}
}

func static(path, value string) mapping.Line {
	return mapping.Line{Path: mapping.MustParsePath(path), Binding: mapping.NewStaticColumn{Value: value}}
}

func sampleLines() []mapping.Line {
	return []mapping.Line{
		header("catalogNumber", "Cat #"),
		static("remarks", "imported"),
		header("collectingEvent.startDate", "Start Date"),
		header("collectingEvent.locality.geography.$Country.name", "Country"),
		header("collectingEvent.locality.geography.$State.name", "State"),
		header("collectingEvent.locality.geography.$State.centroidLat", "State Lat"),
		header("determinations.#1.taxon.$Genus.name", "Genus"),
		header("determinations.#2.remarks", "Det 2 Remarks"),
		header("determinations.#1.remarks", "Det 1 Remarks"),
		{Path: mapping.MustParsePath("determinations.#1.determiner.lastName")},
		header("accession.accessionAgents.#1.agent.lastName", "Agent"),
	}
}

const samplePlanJSON = `{
  "baseTableName": "CollectionObject",
  "uploadable": {"uploadTable": {
    "wbcols": {"catalogNumber": "Cat #"},
    "static": {"remarks": "imported"},
    "toOne": {
      "collectingEvent": {"uploadTable": {
        "wbcols": {"startDate": "Start Date"},
        "static": {},
        "toOne": {
          "locality": {"uploadTable": {
            "wbcols": {},
            "static": {},
            "toOne": {
              "geography": {"treeRecord": {"ranks": {
                "Country": "Country",
                "State": {"treeNodeCols": {"name": "State", "centroidLat": "State Lat"}}
              }}}
            },
            "toMany": {}
          }}
        },
        "toMany": {}
      }},
      "accession": {"uploadTable": {
        "wbcols": {},
        "static": {},
        "toOne": {},
        "toMany": {
          "accessionAgents": [{
            "wbcols": {},
            "static": {},
            "toOne": {"agent": {"uploadTable": {"wbcols": {"lastName": "Agent"}, "static": {}, "toOne": {}, "toMany": {}}}},
            "toMany": {}
          }]
        }
      }}
    },
    "toMany": {
      "determinations": [
        {
          "wbcols": {"remarks": "Det 1 Remarks"},
          "static": {},
          "toOne": {"taxon": {"treeRecord": {"ranks": {"Genus": "Genus"}}}},
          "toMany": {}
        },
        {"wbcols": {"remarks": "Det 2 Remarks"}, "static": {}, "toOne": {}, "toMany": {}}
      ]
    }
  }}
}`

func TestFromTree(t *testing.T) {
	plan, err := FromTree(mapping.ToTree(sampleLines()), "CollectionObject")
	require.NoError(t, err)

	data, err := Marshal(plan)
	require.NoError(t, err)
	assert.JSONEq(t, samplePlanJSON, string(data))
}

func TestToTree_RoundTrip(t *testing.T) {
	plan, err := Unmarshal([]byte(samplePlanJSON))
	require.NoError(t, err)

	tree := ToTree(plan)

	again, err := FromTree(tree, plan.BaseTableName)
	require.NoError(t, err)
	assert.Equal(t, plan, again)

	lines := mapping.ToFlatPaths(tree)

	var got []string
	for _, l := range lines {
		got = append(got, l.String())
	}

	assert.Contains(t, got, `collectingEvent.locality.geography.$State.centroidLat -> header "State Lat"`)
	assert.Contains(t, got, `remarks -> static "imported"`)
	assert.Contains(t, got, `determinations.#2.remarks -> header "Det 2 Remarks"`)
	assert.Len(t, got, 10)
}

func TestToTree_RenumbersRecords(t *testing.T) {
	tree := mapping.ToTree([]mapping.Line{
		header("determinations.#5.remarks", "B"),
		header("determinations.#2.remarks", "A"),
		{Path: mapping.MustParsePath("determinations.#3.remarks")},
	})

	plan, err := FromTree(tree, "CollectionObject")
	require.NoError(t, err)

	records := plan.Uploadable.UploadTable.ToMany["determinations"]
	require.Len(t, records, 2)
	assert.Equal(t, "B", records[0].WBCols["remarks"])
	assert.Equal(t, "A", records[1].WBCols["remarks"])

	back := ToTree(plan)
	assert.NotNil(t, back.Lookup(mapping.MustParsePath("determinations.#1.remarks")))
	assert.NotNil(t, back.Lookup(mapping.MustParsePath("determinations.#2.remarks")))
	assert.Nil(t, back.Lookup(mapping.MustParsePath("determinations.#5")))
}

func TestFromTree_RecordsKeepCreationOrder(t *testing.T) {
	tree := mapping.ToTree([]mapping.Line{
		header("determinations.#2.remarks", "created first"),
		header("determinations.#1.remarks", "created second"),
		header("determinations.#2.determinedDate", "first date"),
	})

	plan, err := FromTree(tree, "CollectionObject")
	require.NoError(t, err)

	records := plan.Uploadable.UploadTable.ToMany["determinations"]
	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"remarks": "created first", "determinedDate": "first date"}, records[0].WBCols)
	assert.Equal(t, map[string]string{"remarks": "created second"}, records[1].WBCols)

	back := ToTree(plan)
	first := back.Lookup(mapping.MustParsePath("determinations.#1.remarks"))
	require.NotNil(t, first)
	assert.Equal(t, []mapping.HeaderBinding{mapping.ExistingHeader{Name: "created first"}}, first.Bindings)
}

func TestFromTree_TreeBaseTable(t *testing.T) {
	plan, err := FromTree(mapping.ToTree([]mapping.Line{
		header("$Family.name", "Family"),
		header("$Genus.name", "Genus"),
		header("$Genus.author", "Author"),
	}), "Taxon")
	require.NoError(t, err)

	require.NotNil(t, plan.Uploadable.TreeRecord)
	assert.Nil(t, plan.Uploadable.UploadTable)
	assert.Equal(t, map[string]string{"name": "Genus", "author": "Author"},
		plan.Uploadable.TreeRecord.Ranks["Genus"].TreeNodeCols)
}

func TestFromTree_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []mapping.Line
	}{
		{
			name:  "static under rank",
			lines: []mapping.Line{static("determinations.#1.taxon.$Genus.name", "Homo")},
		},
		{
			name:  "ranks mixed with fields",
			lines: []mapping.Line{header("$Genus.name", "G"), header("name", "N")},
		},
		{
			name:  "records mixed with fields",
			lines: []mapping.Line{header("determinations.#1.remarks", "R"), header("determinations.remarks", "S")},
		},
		{
			name:  "binding on inner node",
			lines: []mapping.Line{header("collectingEvent", "CE"), header("collectingEvent.startDate", "SD")},
		},
		{
			name:  "root binding",
			lines: []mapping.Line{{Binding: mapping.ExistingHeader{Name: "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTree(mapping.ToTree(tt.lines), "CollectionObject")
			assert.True(t, errors.Is(err, ErrInvalidPlan), "%v", err)
		})
	}
}

func TestFromTree_ConflictingBindings(t *testing.T) {
	_, err := FromTree(mapping.ToTree([]mapping.Line{
		header("catalogNumber", "A"),
		header("catalogNumber", "B"),
	}), "CollectionObject")

	var dup *mapping.DuplicateMappingError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"catalogNumber"}, dup.Paths)
}
