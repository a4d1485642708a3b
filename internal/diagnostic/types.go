package diagnostic

import (
	"errors"
	"iter"
	"strings"

	"github.com/hashicorp/go-multierror"

	"wbplanner/internal/common"
)

// Diagnostics collects the findings of a plan or rules check, bucketed by
// severity. The zero value is ready to use.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is one finding about a mapping path, a header or a rules entry.
type Diagnostic struct {
	Severity DiagnosticSeverity
	// Code is a stable snake_case identifier such as "unknown_field".
	Code    string
	Message string
	// Table is the schema table the finding is about, if any.
	Table string
	// Path is the mapping path, header or rules location, if any.
	Path string
}

// DiagnosticSeverity orders findings from informational to blocking.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

func (d *Diagnostics) add(sev DiagnosticSeverity, code, message, table, path string) {
	item := Diagnostic{Severity: sev, Code: code, Message: message, Table: table, Path: path}

	switch sev {
	case DiagnosticError:
		d.Errors = append(d.Errors, item)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, item)
	default:
		d.Infos = append(d.Infos, item)
	}
}

// AddError records a finding that blocks a commit.
func (d *Diagnostics) AddError(code, message, table, path string) {
	d.add(DiagnosticError, code, message, table, path)
}

// AddWarning records a finding that does not block a commit.
func (d *Diagnostics) AddWarning(code, message, table, path string) {
	d.add(DiagnosticWarning, code, message, table, path)
}

func (d *Diagnostics) AddInfo(code, message, table, path string) {
	d.add(DiagnosticInfo, code, message, table, path)
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends every finding of other, keeping its order within each severity.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid reports whether a plan with these findings may be committed.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// All yields errors first, then warnings, then infos.
func (d *Diagnostics) All() iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
			for _, item := range group {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Error joins the error findings with "; ", or returns nil when there are none.
func (d *Diagnostics) Error() error {
	var result *multierror.Error
	for _, e := range d.Errors {
		result = multierror.Append(result, errors.New(e.String()))
	}

	if result == nil {
		return nil
	}

	result.ErrorFormat = func(errs []error) string {
		parts := make([]string, len(errs))
		for i, err := range errs {
			parts[i] = err.Error()
		}

		return strings.Join(parts, "; ")
	}

	return result
}

// String renders "[Table] path: [code] message", omitting empty parts.
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Table != "" {
		b.WriteString("[" + d.Table + "]")
	}

	if d.Path != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(d.Path)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	return b.String()
}
