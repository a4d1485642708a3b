package mapping

import "fmt"

// BindingKind tags the variant of a HeaderBinding.
type BindingKind string

const (
	BindingExistingHeader  BindingKind = "existingHeader"
	BindingNewColumn       BindingKind = "newColumn"
	BindingNewStaticColumn BindingKind = "newStaticColumn"
)

// HeaderBinding terminates a mapping path. The set of implementations is
// closed: ExistingHeader, NewColumn, and NewStaticColumn.
type HeaderBinding interface {
	// Kind returns the variant tag.
	Kind() BindingKind
	// Text returns the header name or the static value.
	Text() string

	isHeaderBinding()
}

// ExistingHeader binds a path to a column already in the spreadsheet.
type ExistingHeader struct {
	Name string
}

// NewColumn binds a path to a column the planner adds to the spreadsheet.
type NewColumn struct {
	Name string
}

// NewStaticColumn binds a path to a literal value for every row.
type NewStaticColumn struct {
	Value string
}

func (ExistingHeader) Kind() BindingKind  { return BindingExistingHeader }
func (NewColumn) Kind() BindingKind       { return BindingNewColumn }
func (NewStaticColumn) Kind() BindingKind { return BindingNewStaticColumn }

func (b ExistingHeader) Text() string  { return b.Name }
func (b NewColumn) Text() string       { return b.Name }
func (b NewStaticColumn) Text() string { return b.Value }

func (ExistingHeader) isHeaderBinding()  {}
func (NewColumn) isHeaderBinding()       {}
func (NewStaticColumn) isHeaderBinding() {}

// String renders the binding for reports.
func (b ExistingHeader) String() string  { return fmt.Sprintf("header %q", b.Name) }
func (b NewColumn) String() string       { return fmt.Sprintf("new column %q", b.Name) }
func (b NewStaticColumn) String() string { return fmt.Sprintf("static %q", b.Value) }

// NewBinding constructs a binding from its kind and text.
func NewBinding(kind BindingKind, text string) (HeaderBinding, error) {
	switch kind {
	case BindingExistingHeader:
		return ExistingHeader{Name: text}, nil
	case BindingNewColumn:
		return NewColumn{Name: text}, nil
	case BindingNewStaticColumn:
		return NewStaticColumn{Value: text}, nil
	default:
		return nil, fmt.Errorf("unknown binding kind %q", kind)
	}
}

// SameBinding reports whether two bindings are identical. Two nil bindings
// are equal.
func SameBinding(a, b HeaderBinding) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Kind() == b.Kind() && a.Text() == b.Text()
}

// Line is one spreadsheet column's mapping: a path and an optional binding.
type Line struct {
	Path    Path
	Binding HeaderBinding
}

// String renders the line as "path -> binding".
func (l Line) String() string {
	if l.Binding == nil {
		return l.Path.String()
	}

	return fmt.Sprintf("%s -> %v", l.Path, l.Binding)
}
