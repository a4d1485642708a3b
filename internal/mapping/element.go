package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"wbplanner/internal/common"
)

//go:generate go tool stringer -type=ElementKind -trimprefix=Element -output=elementkind_string.go

// ElementKind tags the variant of a path Element.
type ElementKind int

const (
	ElementField ElementKind = iota
	ElementRelationship
	ElementToManyIndex
	ElementTreeRank
)

const (
	// PathSeparator joins elements in a flattened path string.
	PathSeparator = "."
	// ToManyPrefix marks a to-many record index.
	ToManyPrefix = "#"
	// TreeRankPrefix marks a tree rank name.
	TreeRankPrefix = "$"
)

// Element is one step of a mapping path.
type Element struct {
	Kind ElementKind
	// Name is the field, relationship, or rank name.
	Name string
	// Table is the relationship's target table. It is empty for parsed
	// paths that have not been resolved against a schema.
	Table string
	// Index is the 1-based record index of a ToManyIndex element.
	Index int
}

// Field returns a field element.
func Field(name string) Element {
	return Element{Kind: ElementField, Name: name}
}

// Relationship returns a relationship element leading to table.
func Relationship(name, table string) Element {
	return Element{Kind: ElementRelationship, Name: name, Table: table}
}

// ToManyIndex returns a to-many record index element.
func ToManyIndex(n int) Element {
	return Element{Kind: ElementToManyIndex, Index: n}
}

// TreeRank returns a tree rank element.
func TreeRank(name string) Element {
	return Element{Kind: ElementTreeRank, Name: name}
}

// Key returns the tree edge key of the element. Fields and relationships
// share a namespace and compare case-insensitively.
func (e Element) Key() string {
	switch e.Kind {
	case ElementToManyIndex:
		return ToManyPrefix + strconv.Itoa(e.Index)
	case ElementTreeRank:
		return TreeRankPrefix + common.FoldKey(e.Name)
	default:
		return common.FoldKey(e.Name)
	}
}

// String returns the element as written in a path string.
func (e Element) String() string {
	switch e.Kind {
	case ElementToManyIndex:
		return ToManyPrefix + strconv.Itoa(e.Index)
	case ElementTreeRank:
		return TreeRankPrefix + e.Name
	default:
		return e.Name
	}
}

// SameAs reports whether two elements denote the same tree edge.
func (e Element) SameAs(other Element) bool {
	return e.Key() == other.Key()
}

// IsName reports whether the element is a field or relationship.
func (e Element) IsName() bool {
	return e.Kind == ElementField || e.Kind == ElementRelationship
}

// ParseElement parses a single path segment.
func ParseElement(segment string) (Element, error) {
	switch {
	case segment == "":
		return Element{}, fmt.Errorf("empty segment")
	case strings.HasPrefix(segment, ToManyPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(segment, ToManyPrefix))
		if err != nil || n < 1 {
			return Element{}, fmt.Errorf("invalid to-many index %q", segment)
		}

		return ToManyIndex(n), nil
	case strings.HasPrefix(segment, TreeRankPrefix):
		name := strings.TrimPrefix(segment, TreeRankPrefix)
		if name == "" {
			return Element{}, fmt.Errorf("tree rank without name")
		}

		return TreeRank(name), nil
	default:
		return Field(segment), nil
	}
}
