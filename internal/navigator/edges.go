package navigator

import (
	"wbplanner/internal/cache"
	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/schema"
)

// EdgeBucket is the session cache bucket holding memoized one-step edges.
const EdgeBucket = "navigator-edges"

// Edge is one step available from a table.
type Edge struct {
	Kind      mapping.ElementKind `json:"kind"`
	Name      string              `json:"name"`
	Target    string              `json:"target,omitempty"`
	ToMany    bool                `json:"to_many,omitempty"`
	OtherSide string              `json:"other_side,omitempty"`
	Hidden    bool                `json:"hidden,omitempty"`
}

func (e Edge) relationship() schema.Relationship {
	typ := schema.ManyToOne
	if e.ToMany {
		typ = schema.OneToMany
	}

	return schema.Relationship{
		Name:      e.Name,
		Target:    e.Target,
		Type:      typ,
		OtherSide: e.OtherSide,
	}
}

// Edges returns the one-step edges of a table: rank edges for tree tables,
// otherwise fields followed by relationships.
func (n *Navigator) Edges(table string) []Edge {
	key := n.graph.Version() + ":" + common.FoldKey(table)
	if n.cache != nil {
		if edges, ok := cache.GetAs[[]Edge](n.cache, EdgeBucket, key); ok {
			return edges
		}
	}

	edges := n.computeEdges(table)

	if n.cache != nil {
		n.cache.Set(EdgeBucket, key, edges, cache.SetOptions{BucketType: cache.BucketSession})
	}

	return edges
}

func (n *Navigator) computeEdges(table string) []Edge {
	if n.graph.IsTreeTable(table) {
		ranks := n.graph.RanksOf(table)
		edges := make([]Edge, 0, len(ranks))

		for _, rank := range ranks {
			edges = append(edges, Edge{Kind: mapping.ElementTreeRank, Name: rank, Target: n.graph.TableName(table)})
		}

		return edges
	}

	edges := n.fieldEdges(table)

	for _, rel := range n.graph.RelationshipsOf(table) {
		edges = append(edges, Edge{
			Kind:      mapping.ElementRelationship,
			Name:      rel.Name,
			Target:    rel.Target,
			ToMany:    rel.IsToMany(),
			OtherSide: rel.OtherSide,
			Hidden:    rel.Hidden,
		})
	}

	return edges
}

func (n *Navigator) fieldEdges(table string) []Edge {
	fields := n.graph.FieldsOf(table)
	edges := make([]Edge, 0, len(fields))

	for _, f := range fields {
		edges = append(edges, Edge{Kind: mapping.ElementField, Name: f.Name, Hidden: f.Hidden})
	}

	return edges
}
