package navigator

import "fmt"

// UnknownFieldError reports a path element that does not exist on the
// table reached at that position.
type UnknownFieldError struct {
	Table    string
	Name     string
	Position int
	Reason   string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown element %q on table %s at position %d", e.Name, e.Table, e.Position)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

// CycleError reports a path the navigator's cycle rules would not produce.
type CycleError struct {
	Table        string
	Relationship string
	Position     int
	Reason       string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle at position %d following %s.%s: %s", e.Position, e.Table, e.Relationship, e.Reason)
}
