package navigator

import (
	"fmt"

	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/schema"
)

// ValidatePath resolves candidate against the schema starting at baseTable.
// Names are replaced by their canonical spelling and element kinds, a
// missing record index after a to-many relationship is completed with #1,
// and paths the enumeration would never produce are rejected with an
// *UnknownFieldError or a *CycleError.
func (n *Navigator) ValidatePath(baseTable string, candidate mapping.Path) (mapping.Path, error) {
	path, _, err := n.resolve(baseTable, candidate, true)
	return path, err
}

// ValidatePrefix resolves candidate like ValidatePath but accepts a path
// that stops at a relationship, record index, or rank. It also returns the
// table reached at the end of the path.
func (n *Navigator) ValidatePrefix(baseTable string, candidate mapping.Path) (mapping.Path, string, error) {
	return n.resolve(baseTable, candidate, false)
}

func (n *Navigator) resolve(baseTable string, candidate mapping.Path, requireField bool) (mapping.Path, string, error) {
	if !n.graph.HasTable(baseTable) {
		return nil, "", &UnknownFieldError{Table: baseTable, Reason: "unknown base table"}
	}

	s := newState(n.graph.TableName(baseTable))
	inRank := false

	for i := 0; i < len(candidate); i++ {
		el := candidate[i]
		last := i == len(candidate)-1

		switch el.Kind {
		case mapping.ElementToManyIndex:
			return nil, "", &UnknownFieldError{
				Table:    s.table,
				Name:     el.String(),
				Position: i,
				Reason:   "record index does not follow a to-many relationship",
			}

		case mapping.ElementTreeRank:
			if inRank || !n.graph.IsTreeTable(s.table) {
				return nil, "", &UnknownFieldError{Table: s.table, Name: el.String(), Position: i, Reason: "not a tree table"}
			}

			rank, ok := n.findRank(s.table, el.Name)
			if !ok {
				return nil, "", &UnknownFieldError{Table: s.table, Name: el.String(), Position: i, Reason: "unknown rank"}
			}

			s.path = s.path.Append(mapping.TreeRank(rank))
			inRank = true

			continue
		}

		if n.graph.IsTreeTable(s.table) && !inRank {
			return nil, "", &UnknownFieldError{Table: s.table, Name: el.Name, Position: i, Reason: "tree table requires a rank"}
		}

		if f, ok := schema.FindField(n.graph, s.table, el.Name); ok {
			if !last {
				return nil, "", &UnknownFieldError{
					Table:    s.table,
					Name:     candidate[i+1].String(),
					Position: i + 1,
					Reason:   fmt.Sprintf("field %s ends a path", f.Name),
				}
			}

			return s.path.Append(mapping.Field(f.Name)), s.table, nil
		}

		rel, ok := schema.FindRelationship(n.graph, s.table, el.Name)
		if !ok || inRank {
			return nil, "", &UnknownFieldError{Table: s.table, Name: el.Name, Position: i}
		}

		index := 1
		next := i + 1

		if next < len(candidate) && candidate[next].Kind == mapping.ElementToManyIndex {
			if !rel.IsToMany() {
				return nil, "", &UnknownFieldError{
					Table:    rel.Target,
					Name:     candidate[next].String(),
					Position: next,
					Reason:   fmt.Sprintf("%s is a to-one relationship", rel.Name),
				}
			}

			index = candidate[next].Index
			next++
		}

		if n.isBackward(s, rel) {
			return nil, "", &CycleError{
				Table:        s.table,
				Relationship: rel.Name,
				Position:     i,
				Reason:       fmt.Sprintf("returns to %s along the inverse of %s", s.parentTable, s.parentRel.Name),
			}
		}

		elements := relationshipElements(rel, index)

		if n.isForwardCycle(s, rel) {
			if next < len(candidate) {
				return nil, "", &CycleError{
					Table:        s.table,
					Relationship: rel.Name,
					Position:     i,
					Reason:       fmt.Sprintf("revisits table %s", rel.Target),
				}
			}

			return s.path.Append(elements...), rel.Target, nil
		}

		if s.depth+1 > n.maxDepth {
			return nil, "", &CycleError{
				Table:        s.table,
				Relationship: rel.Name,
				Position:     i,
				Reason:       fmt.Sprintf("exceeds maximum depth %d", n.maxDepth),
			}
		}

		s = s.enter(rel, elements...)
		i = next - 1
	}

	if requireField {
		return nil, "", &UnknownFieldError{
			Table:    s.table,
			Position: len(candidate),
			Reason:   "path does not end in a field",
		}
	}

	return s.path, s.table, nil
}

func (n *Navigator) findRank(table, name string) (string, bool) {
	key := common.FoldKey(name)
	for _, rank := range n.graph.RanksOf(table) {
		if common.FoldKey(rank) == key {
			return rank, true
		}
	}

	return "", false
}
