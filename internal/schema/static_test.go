package schema_test

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbplanner/internal/schema"
	"wbplanner/internal/schema/schematest"
)

func TestParseFixture(t *testing.T) {
	g := schematest.Fixture(t)

	assert.Equal(t, "test-1", g.Version())
	assert.True(t, g.HasTable("collectionobject"))
	assert.Equal(t, "CollectionObject", g.TableName("COLLECTIONOBJECT"))
	assert.False(t, g.HasTable("Nope"))

	assert.True(t, g.IsTreeTable("Taxon"))
	assert.False(t, g.IsTreeTable("Agent"))
	assert.Equal(t, []string{"Continent", "Country", "State", "County"}, g.RanksOf("Geography"))

	assert.Equal(t, "Catalog Number", g.LocalizedName("CollectionObject", "catalogNumber"))
	assert.Equal(t, "title", g.LocalizedName("Agent", "title"))
	assert.Equal(t, "Collection Object", g.LocalizedName("CollectionObject", ""))
	assert.Equal(t, "Collecting Event", g.LocalizedName("CollectionObject", "collectingEvent"))

	rel, ok := schema.FindRelationship(g, "Accession", "AccessionAgents")
	require.True(t, ok)
	assert.True(t, rel.IsToMany())
	assert.Equal(t, "AccessionAgent", rel.Target)

	f, ok := schema.FindField(g, "Agent", "FIRSTNAME")
	require.True(t, ok)
	assert.Equal(t, "firstName", f.Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown target",
			yaml: `
tables:
  - name: A
    relationships:
      - name: b
        target: B
`,
			want: `unknown target table "B"`,
		},
		{
			name: "duplicate table",
			yaml: `
tables:
  - name: A
  - name: a
`,
			want: `duplicate table "a"`,
		},
		{
			name: "bad type",
			yaml: `
tables:
  - name: A
    relationships:
      - name: self
        target: A
        type: sideways
`,
			want: `invalid relationship type "sideways"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_ReportsEveryRelationshipError(t *testing.T) {
	_, err := schema.Parse([]byte(`
tables:
  - name: A
    relationships:
      - name: b
        target: B
      - name: self
        target: A
        type: sideways
  - name: C
    relationships:
      - name: d
        target: D
`))

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 3)
	assert.Contains(t, merr.Errors[0].Error(), `A.b: unknown target table "B"`)
	assert.Contains(t, merr.Errors[1].Error(), `A.self: invalid relationship type "sideways"`)
	assert.Contains(t, merr.Errors[2].Error(), `C.d: unknown target table "D"`)
}

func TestParse_DefaultsRelationshipType(t *testing.T) {
	g, err := schema.Parse([]byte(`
tables:
  - name: A
    relationships:
      - name: parent
        target: a
`))
	require.NoError(t, err)

	assert.Equal(t, "1", g.Version())
	rels := g.RelationshipsOf("A")
	require.Len(t, rels, 1)
	assert.Equal(t, schema.ManyToOne, rels[0].Type)
	assert.Equal(t, "A", rels[0].Target)
}
