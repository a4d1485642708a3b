package navigator

import (
	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/schema"
)

// state is the traversal cursor of one navigator call. It is never shared
// between calls.
type state struct {
	table string
	path  mapping.Path
	// parentTable and parentRel describe the edge that led to table.
	parentTable string
	parentRel   *schema.Relationship
	// visited counts the tables on the current path.
	visited map[string]int
	depth   int
}

func newState(table string) *state {
	return &state{
		table:   table,
		visited: map[string]int{common.FoldKey(table): 1},
	}
}

// enter returns the state after following rel.
func (s *state) enter(rel schema.Relationship, elements ...mapping.Element) *state {
	visited := make(map[string]int, len(s.visited)+1)
	for k, v := range s.visited {
		visited[k] = v
	}

	visited[common.FoldKey(rel.Target)]++

	return &state{
		table:       rel.Target,
		path:        s.path.Append(elements...),
		parentTable: s.table,
		parentRel:   &rel,
		visited:     visited,
		depth:       s.depth + 1,
	}
}

func (s *state) seen(table string) bool {
	return s.visited[common.FoldKey(table)] > 0
}
