package uploadplan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTreeRankRecord_JSON(t *testing.T) {
	tests := []struct {
		name   string
		record TreeRankRecord
		json   string
	}{
		{
			name:   "name only",
			record: TreeRankRecord{TreeNodeCols: map[string]string{"name": "Genus"}},
			json:   `"Genus"`,
		},
		{
			name:   "several fields",
			record: TreeRankRecord{TreeNodeCols: map[string]string{"name": "Genus", "author": "Author"}},
			json:   `{"treeNodeCols":{"author":"Author","name":"Genus"}}`,
		},
		{
			name:   "single other field",
			record: TreeRankRecord{TreeNodeCols: map[string]string{"author": "Author"}},
			json:   `{"treeNodeCols":{"author":"Author"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.record)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var back TreeRankRecord
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.record, back)
		})
	}

	var bad TreeRankRecord
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "syntax", data: `{`},
		{name: "missing base table", data: `{"uploadable":{"uploadTable":{}}}`},
		{name: "empty uploadable", data: `{"baseTableName":"A","uploadable":{}}`},
		{name: "both variants", data: `{"baseTableName":"A","uploadable":{"uploadTable":{},"treeRecord":{"ranks":{}}}}`},
		{name: "column and static", data: `{"baseTableName":"A","uploadable":{"uploadTable":{"wbcols":{"f":"h"},"static":{"f":"v"}}}}`},
		{name: "empty rank", data: `{"baseTableName":"A","uploadable":{"treeRecord":{"ranks":{"Genus":{"treeNodeCols":{}}}}}}`},
		{
			name: "nested",
			data: `{"baseTableName":"A","uploadable":{"uploadTable":{"toMany":{"r":[{"toOne":{"x":{}}}]}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.Error(t, err)

			if tt.name != "syntax" {
				assert.True(t, errors.Is(err, ErrInvalidPlan), "%v", err)
			}
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	plan, err := Unmarshal([]byte(samplePlanJSON))
	require.NoError(t, err)

	data, err := MarshalYAML(plan)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "baseTableName: CollectionObject")
	assert.Contains(t, out, "treeNodeCols:")
	assert.Contains(t, out, "Country: Country")

	var back UploadPlan
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, plan, &back)
}
