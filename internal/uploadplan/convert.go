package uploadplan

import (
	"fmt"
	"maps"
	"slices"

	"wbplanner/internal/mapping"
)

// FromTree compiles a mappings tree into an upload plan. The structure is
// inferred from the tree: a node whose children are record indexes is a
// to-many relationship, a node whose children are ranks is a tree record,
// a bound leaf is a field, and any other inner node is a to-one
// relationship. Leaves without a binding are skipped.
func FromTree(tree *mapping.Tree, baseTable string) (*UploadPlan, error) {
	if len(tree.Bindings) > 0 {
		return nil, fmt.Errorf("%w: binding on the tree root", ErrInvalidPlan)
	}

	u, err := uploadableFrom(tree, nil)
	if err != nil {
		return nil, err
	}

	return &UploadPlan{BaseTableName: baseTable, Uploadable: u}, nil
}

func uploadableFrom(node *mapping.Tree, path mapping.Path) (Uploadable, error) {
	if children := node.Children(); len(children) > 0 && children[0].Element.Kind == mapping.ElementTreeRank {
		tr, err := treeRecordFrom(node, path)
		if err != nil {
			return Uploadable{}, err
		}

		return Uploadable{TreeRecord: tr}, nil
	}

	t, err := uploadTableFrom(node, path)
	if err != nil {
		return Uploadable{}, err
	}

	return Uploadable{UploadTable: t}, nil
}

func uploadTableFrom(node *mapping.Tree, path mapping.Path) (*UploadTable, error) {
	t := newUploadTable()

	for _, child := range node.Children() {
		childPath := path.Append(child.Element)
		name := child.Element.Name

		switch {
		case !child.Element.IsName():
			return nil, fmt.Errorf("%w: %s: unexpected %s", ErrInvalidPlan, childPath, child.Element.Kind)

		case child.IsLeaf():
			if err := addField(t, child, childPath); err != nil {
				return nil, err
			}

		case len(child.Bindings) > 0:
			return nil, fmt.Errorf("%w: %s: bound node has children", ErrInvalidPlan, childPath)

		case child.Children()[0].Element.Kind == mapping.ElementToManyIndex:
			records, err := toManyFrom(child, childPath)
			if err != nil {
				return nil, err
			}

			if len(records) > 0 {
				t.ToMany[name] = records
			}

		default:
			u, err := uploadableFrom(child, childPath)
			if err != nil {
				return nil, err
			}

			if !u.isEmpty() {
				t.ToOne[name] = u
			}
		}
	}

	return t, nil
}

func addField(t *UploadTable, leaf *mapping.Tree, path mapping.Path) error {
	b, ok, err := singleBinding(leaf, path)
	if err != nil || !ok {
		return err
	}

	field := leaf.Element.Name

	switch b := b.(type) {
	case mapping.ExistingHeader:
		t.WBCols[field] = b.Name
	case mapping.NewColumn:
		t.WBCols[field] = b.Name
	case mapping.NewStaticColumn:
		t.Static[field] = b.Value
	}

	return nil
}

// singleBinding returns the one non-nil binding of a leaf.
func singleBinding(leaf *mapping.Tree, path mapping.Path) (mapping.HeaderBinding, bool, error) {
	var found []mapping.HeaderBinding

	for _, b := range leaf.Bindings {
		if b != nil {
			found = append(found, b)
		}
	}

	switch len(found) {
	case 0:
		return nil, false, nil
	case 1:
		return found[0], true, nil
	default:
		return nil, false, &mapping.DuplicateMappingError{Paths: []string{path.String()}}
	}
}

// toManyFrom returns one UploadTable per record in the order the records
// were created. Record indices are not carried over.
func toManyFrom(node *mapping.Tree, path mapping.Path) ([]UploadTable, error) {
	records := make([]UploadTable, 0, len(node.Children()))

	for _, child := range node.Children() {
		childPath := path.Append(child.Element)

		if child.Element.Kind != mapping.ElementToManyIndex {
			return nil, fmt.Errorf("%w: %s: to-many relationship mixes records and fields", ErrInvalidPlan, childPath)
		}

		t, err := uploadTableFrom(child, childPath)
		if err != nil {
			return nil, err
		}

		if t.isEmpty() {
			continue
		}

		records = append(records, *t)
	}

	return records, nil
}

func treeRecordFrom(node *mapping.Tree, path mapping.Path) (*TreeRecord, error) {
	tr := &TreeRecord{Ranks: map[string]TreeRankRecord{}}

	for _, rank := range node.Children() {
		rankPath := path.Append(rank.Element)

		if rank.Element.Kind != mapping.ElementTreeRank {
			return nil, fmt.Errorf("%w: %s: tree table mixes ranks and fields", ErrInvalidPlan, rankPath)
		}

		cols := map[string]string{}

		for _, leaf := range rank.Children() {
			leafPath := rankPath.Append(leaf.Element)

			if !leaf.IsLeaf() || leaf.Element.Kind == mapping.ElementToManyIndex || leaf.Element.Kind == mapping.ElementTreeRank {
				return nil, fmt.Errorf("%w: %s: rank children must be fields", ErrInvalidPlan, leafPath)
			}

			b, ok, err := singleBinding(leaf, leafPath)
			if err != nil {
				return nil, err
			}

			if !ok {
				continue
			}

			if _, static := b.(mapping.NewStaticColumn); static {
				return nil, fmt.Errorf("%w: %s: static values are not allowed in tree ranks", ErrInvalidPlan, leafPath)
			}

			cols[leaf.Element.Name] = b.Text()
		}

		if len(cols) > 0 {
			tr.Ranks[rank.Element.Name] = TreeRankRecord{TreeNodeCols: cols}
		}
	}

	return tr, nil
}

func (u Uploadable) isEmpty() bool {
	if u.TreeRecord != nil {
		return len(u.TreeRecord.Ranks) == 0
	}

	return u.UploadTable == nil || u.UploadTable.isEmpty()
}

func (t *UploadTable) isEmpty() bool {
	return len(t.WBCols) == 0 && len(t.Static) == 0 && len(t.ToOne) == 0 && len(t.ToMany) == 0
}

// ToTree decodes a plan into a mappings tree. Column bindings become
// ExistingHeader bindings, static values NewStaticColumn bindings, and
// to-many records are numbered #1, #2, ... in plan order. Names are visited
// in sorted order so the result is deterministic.
func ToTree(p *UploadPlan) *mapping.Tree {
	root := mapping.NewTree()
	insertUploadable(root, nil, p.Uploadable)

	return root
}

func insertUploadable(root *mapping.Tree, prefix mapping.Path, u Uploadable) {
	switch {
	case u.UploadTable != nil:
		insertTable(root, prefix, u.UploadTable)
	case u.TreeRecord != nil:
		for _, rank := range slices.Sorted(maps.Keys(u.TreeRecord.Ranks)) {
			cols := u.TreeRecord.Ranks[rank].TreeNodeCols
			rankPath := prefix.Append(mapping.TreeRank(rank))

			for _, field := range slices.Sorted(maps.Keys(cols)) {
				root.Insert(mapping.Line{
					Path:    rankPath.Append(mapping.Field(field)),
					Binding: mapping.ExistingHeader{Name: cols[field]},
				})
			}
		}
	}
}

func insertTable(root *mapping.Tree, prefix mapping.Path, t *UploadTable) {
	for _, field := range slices.Sorted(maps.Keys(t.WBCols)) {
		root.Insert(mapping.Line{
			Path:    prefix.Append(mapping.Field(field)),
			Binding: mapping.ExistingHeader{Name: t.WBCols[field]},
		})
	}

	for _, field := range slices.Sorted(maps.Keys(t.Static)) {
		root.Insert(mapping.Line{
			Path:    prefix.Append(mapping.Field(field)),
			Binding: mapping.NewStaticColumn{Value: t.Static[field]},
		})
	}

	for _, name := range slices.Sorted(maps.Keys(t.ToOne)) {
		insertUploadable(root, prefix.Append(mapping.Relationship(name, "")), t.ToOne[name])
	}

	for _, name := range slices.Sorted(maps.Keys(t.ToMany)) {
		for i := range t.ToMany[name] {
			path := prefix.Append(mapping.Relationship(name, ""), mapping.ToManyIndex(i+1))
			insertTable(root, path, &t.ToMany[name][i])
		}
	}
}
