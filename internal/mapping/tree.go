package mapping

import "slices"

// Tree is a node of a mappings tree. The root has a zero Element. Every
// child is reached through one path element; children are kept in
// insertion order and are unique by Element.Key.
type Tree struct {
	// Element is the edge leading into this node.
	Element Element
	// Bindings holds the bindings of every line that ends at this node, in
	// insertion order. A nil entry marks a line without a binding.
	Bindings []HeaderBinding

	children []*Tree
	byKey    map[string]*Tree
}

// NewTree returns an empty root node.
func NewTree() *Tree {
	return &Tree{}
}

// Children returns the child nodes in insertion order.
func (t *Tree) Children() []*Tree {
	return t.children
}

// Child returns the child reached through an element with the given key.
func (t *Tree) Child(key string) *Tree {
	if t.byKey == nil {
		return nil
	}

	return t.byKey[key]
}

// Lookup walks a path from t and returns the node at its end, or nil.
func (t *Tree) Lookup(path Path) *Tree {
	node := t
	for _, el := range path {
		node = node.Child(el.Key())
		if node == nil {
			return nil
		}
	}

	return node
}

// IsLeaf returns true if the node has no children.
func (t *Tree) IsLeaf() bool {
	return len(t.children) == 0
}

// ensureChild returns the child for el, creating it when absent.
func (t *Tree) ensureChild(el Element) *Tree {
	key := el.Key()
	if child := t.Child(key); child != nil {
		// Resolved elements carry more information than parsed ones.
		if child.Element.Kind == ElementField && el.Kind == ElementRelationship {
			child.Element = el
		}

		return child
	}

	if t.byKey == nil {
		t.byKey = make(map[string]*Tree)
	}

	child := &Tree{Element: el}
	t.children = append(t.children, child)
	t.byKey[key] = child

	return child
}

// Insert folds one line into the tree.
func (t *Tree) Insert(line Line) {
	node := t
	for _, el := range line.Path {
		node = node.ensureChild(el)
	}

	node.Bindings = append(node.Bindings, line.Binding)
}

// ToTree folds a flat list of lines into a mappings tree. Lines that share a
// structural prefix share the nodes of that prefix.
func ToTree(lines []Line) *Tree {
	root := NewTree()
	for _, line := range lines {
		root.Insert(line)
	}

	return root
}

// ToFlatPaths flattens a tree into lines in depth-first, insertion order.
// A node's own bindings precede those of its descendants.
func ToFlatPaths(t *Tree) []Line {
	var lines []Line
	for _, b := range t.Bindings {
		lines = append(lines, Line{Binding: b})
	}

	t.walk(nil, func(path Path, node *Tree) {
		for _, b := range node.Bindings {
			lines = append(lines, Line{Path: path.Clone(), Binding: b})
		}
	})

	return lines
}

// Walk calls fn for every node below t with the path leading to it.
func (t *Tree) Walk(fn func(path Path, node *Tree)) {
	t.walk(nil, fn)
}

func (t *Tree) walk(prefix Path, fn func(Path, *Tree)) {
	for _, child := range t.children {
		path := prefix.Append(child.Element)
		fn(path, child)
		child.walk(path, fn)
	}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		Element:  t.Element,
		Bindings: slices.Clone(t.Bindings),
	}

	for _, child := range t.children {
		c := child.Clone()
		if out.byKey == nil {
			out.byKey = make(map[string]*Tree, len(t.children))
		}

		out.children = append(out.children, c)
		out.byKey[c.Element.Key()] = c
	}

	return out
}

// Equal reports whether two trees have the same shape, edges, child order,
// and bindings.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}

	if !t.Element.SameAs(other.Element) || len(t.Bindings) != len(other.Bindings) ||
		len(t.children) != len(other.children) {
		return false
	}

	for i := range t.Bindings {
		if !SameBinding(t.Bindings[i], other.Bindings[i]) {
			return false
		}
	}

	for i := range t.children {
		if !t.children[i].Equal(other.children[i]) {
			return false
		}
	}

	return true
}

// Merge deep-unions source into a copy of target. Where both trees have a
// node, the merge recurses into children; where only source has one, it is
// copied wholesale. Target bindings win: source bindings are only taken for
// nodes that have none in target.
func Merge(target, source *Tree) *Tree {
	out := target.Clone()
	mergeInto(out, source)

	return out
}

func mergeInto(dst, src *Tree) {
	if len(dst.Bindings) == 0 && len(src.Bindings) > 0 {
		dst.Bindings = slices.Clone(src.Bindings)
	}

	for _, child := range src.children {
		existing := dst.Child(child.Element.Key())
		if existing == nil {
			c := child.Clone()
			if dst.byKey == nil {
				dst.byKey = make(map[string]*Tree)
			}

			dst.children = append(dst.children, c)
			dst.byKey[c.Element.Key()] = c

			continue
		}

		mergeInto(existing, child)
	}
}

// MaxToManyIndex returns the highest record index among t's children.
func (t *Tree) MaxToManyIndex() int {
	n := 0
	for _, child := range t.children {
		if child.Element.Kind == ElementToManyIndex && child.Element.Index > n {
			n = child.Element.Index
		}
	}

	return n
}
