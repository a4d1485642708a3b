package mapping

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"wbplanner/internal/common"
)

// Path is an ordered sequence of schema steps from a base table.
type Path []Element

// ParsePath parses a path string into a Path.
// Supports: "field", "rel.field", "rel.#2.field", "rel.$Rank.field".
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var elements Path

	for part := range strings.SplitSeq(path, PathSeparator) {
		el, err := ParseElement(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}

		elements = append(elements, el)
	}

	return elements, nil
}

// MustParsePath is like ParsePath but panics on error. Intended for
// literals in tests and static tables.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the path as a string.
func (p Path) String() string {
	var sb strings.Builder

	for i, el := range p {
		if i > 0 {
			sb.WriteString(PathSeparator)
		}

		sb.WriteString(el.String())
	}

	return sb.String()
}

// Key returns the canonical, case-folded string of the path. Two paths with
// equal keys map to the same tree node.
func (p Path) Key() string {
	keys := make([]string, len(p))
	for i, el := range p {
		keys[i] = el.Key()
	}

	return strings.Join(keys, PathSeparator)
}

// Equals returns true if two paths denote the same tree node.
func (p Path) Equals(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if !p[i].SameAs(other[i]) {
			return false
		}
	}

	return true
}

// Clone returns a copy that does not share storage with p.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// Append returns a new path with elements appended; p is not modified.
func (p Path) Append(elements ...Element) Path {
	out := make(Path, 0, len(p)+len(elements))
	out = append(out, p...)

	return append(out, elements...)
}

// HasPrefix reports whether prefix is a leading part of p.
func (p Path) HasPrefix(prefix Path) bool {
	return DivergencePoint(p, prefix) == len(prefix)
}

// IsEmpty returns true if the path has no elements.
func (p Path) IsEmpty() bool {
	return common.IsEmpty(p)
}

// Last returns the final element of the path.
func (p Path) Last() (Element, bool) {
	return common.Last(p)
}

// DivergencePoint returns how many leading elements search shares with
// source before the two diverge. It is 0 when search is empty and
// len(search) when search is a prefix of source.
func DivergencePoint(source, search Path) int {
	n := 0
	for n < len(search) && n < len(source) {
		if !source[n].SameAs(search[n]) {
			break
		}

		n++
	}

	return n
}
