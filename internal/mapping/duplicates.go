package mapping

import (
	"fmt"
	"strings"
)

// DuplicateMappingError blocks committing a plan whose lines repeat an
// earlier line or bind one field to several columns.
type DuplicateMappingError struct {
	// Indices are the duplicate line positions, ascending.
	Indices []int
	// Paths are the tree paths carrying more than one binding.
	Paths []string
}

func (e *DuplicateMappingError) Error() string {
	var parts []string
	if len(e.Indices) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate mapping lines %v", e.Indices))
	}

	if len(e.Paths) > 0 {
		parts = append(parts, fmt.Sprintf("multiple columns mapped to %s", strings.Join(e.Paths, ", ")))
	}

	return strings.Join(parts, "; ")
}

// FindDuplicates returns the indices of lines that are structurally
// identical to an earlier line: the same path and, when both are bound, the
// same binding. The first occurrence is never flagged. Lines with empty
// paths are unmapped and are never duplicates.
func FindDuplicates(lines []Line) []int {
	var dups []int

	seen := make(map[string][]int)

	for i, line := range lines {
		if line.Path.IsEmpty() {
			continue
		}

		key := line.Path.Key()
		for _, j := range seen[key] {
			other := lines[j]
			if line.Binding == nil || other.Binding == nil || SameBinding(line.Binding, other.Binding) {
				dups = append(dups, i)
				break
			}
		}

		seen[key] = append(seen[key], i)
	}

	return dups
}

// ConflictingLeaves returns the paths of tree nodes holding more than one
// binding.
func ConflictingLeaves(t *Tree) []string {
	var paths []string
	t.Walk(func(path Path, node *Tree) {
		if len(node.Bindings) > 1 {
			paths = append(paths, path.String())
		}
	})

	return paths
}
