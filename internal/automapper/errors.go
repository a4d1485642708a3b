package automapper

import (
	"fmt"
	"strings"

	"wbplanner/internal/mapping"
)

// AmbiguousHeaderMatch reports a header whose best candidates rank equal.
// It is informational: the first candidate is still used.
type AmbiguousHeaderMatch struct {
	Header     string
	Candidates []mapping.Path
}

func (e *AmbiguousHeaderMatch) Error() string {
	paths := make([]string, len(e.Candidates))
	for i, p := range e.Candidates {
		paths[i] = p.String()
	}

	return fmt.Sprintf("ambiguous match for header %q: %s", e.Header, strings.Join(paths, ", "))
}
