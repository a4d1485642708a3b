package plan

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"wbplanner/internal/automapper"
	"wbplanner/internal/diagnostic"
	"wbplanner/internal/mapping"
	"wbplanner/internal/navigator"
	"wbplanner/internal/uploadplan"
)

// Diagnostic codes reported by Validate.
const (
	CodeUnmappedHeader   = "unmapped_header"
	CodeUnknownField     = "unknown_field"
	CodeCycle            = "cycle"
	CodeIncompletePath   = "incomplete_path"
	CodeDuplicateMapping = "duplicate_mapping"
	CodeMissingBinding   = "missing_binding"
)

// Validate checks every line against the schema and reports duplicates.
func (s *Session) Validate() *diagnostic.Diagnostics {
	return s.validate(s.Lines())
}

func (s *Session) validate(lines []mapping.Line) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for i, line := range lines {
		where := lineRef(i, line)

		if line.Path.IsEmpty() {
			if line.Binding != nil {
				res.AddWarning(CodeUnmappedHeader, "header is not mapped", s.BaseTable, where)
			}

			continue
		}

		if line.Binding == nil {
			res.AddInfo(CodeMissingBinding, "path has no column", s.BaseTable, where)
		}

		resolved, err := s.nav.ValidatePath(s.BaseTable, line.Path)
		if err != nil {
			addPathError(res, err, where)
			continue
		}

		if last, _ := resolved.Last(); last.Kind != mapping.ElementField {
			res.AddError(CodeIncompletePath, "path must end in a field", s.BaseTable, where)
		}
	}

	for _, i := range mapping.FindDuplicates(lines) {
		res.AddError(CodeDuplicateMapping, "same path as an earlier line", s.BaseTable, lineRef(i, lines[i]))
	}

	return res
}

func addPathError(res *diagnostic.Diagnostics, err error, where string) {
	var (
		ufe *navigator.UnknownFieldError
		ce  *navigator.CycleError
	)

	switch {
	case errors.As(err, &ufe):
		res.AddError(CodeUnknownField, err.Error(), ufe.Table, where)
	case errors.As(err, &ce):
		res.AddError(CodeCycle, err.Error(), ce.Table, where)
	default:
		res.AddError(CodeUnknownField, err.Error(), "", where)
	}
}

func lineRef(i int, line mapping.Line) string {
	if line.Binding != nil {
		return fmt.Sprintf("line %d (%s)", i, line.Binding.Text())
	}

	return fmt.Sprintf("line %d", i)
}

// Commit compiles the session into an upload plan. Duplicate lines and
// leaves bound more than once fail with a *mapping.DuplicateMappingError.
// Other validation errors fail with the diagnostics' combined error.
// Accepted header choices are recorded for later ranking.
func (s *Session) Commit() (*uploadplan.UploadPlan, *diagnostic.Diagnostics, error) {
	lines := s.Lines()

	if dups := mapping.FindDuplicates(lines); len(dups) > 0 {
		err := &mapping.DuplicateMappingError{Indices: dups}
		for _, i := range dups {
			err.Paths = append(err.Paths, lines[i].Path.String())
		}

		s.log.WithField("lines", dups).Warn("commit blocked by duplicate mappings")

		return nil, s.validate(lines), err
	}

	diags := s.validate(lines)
	if diags.HasErrors() {
		return nil, diags, diags.Error()
	}

	resolved := make([]mapping.Line, 0, len(lines))

	for _, line := range mappedLines(lines) {
		path, err := s.nav.ValidatePath(s.BaseTable, line.Path)
		if err != nil {
			return nil, diags, err
		}

		resolved = append(resolved, mapping.Line{Path: path, Binding: line.Binding})
	}

	tree := mapping.ToTree(resolved)
	if conflicts := mapping.ConflictingLeaves(tree); len(conflicts) > 0 {
		return nil, diags, &mapping.DuplicateMappingError{Paths: conflicts}
	}

	plan, err := uploadplan.FromTree(tree, s.BaseTable)
	if err != nil {
		return nil, diags, fmt.Errorf("failed to build upload plan: %w", err)
	}

	for _, line := range resolved {
		if h, ok := line.Binding.(mapping.ExistingHeader); ok {
			s.mapper.RecordChoice(h.Name, line.Path)
		}
	}

	s.log.WithFields(logrus.Fields{
		"table": s.BaseTable,
		"lines": len(resolved),
	}).Info("plan committed")

	return plan, diags, nil
}

// Resume starts a session from an existing upload plan. The plan's lines
// are re-validated against the schema; lines that no longer resolve are
// kept as they are and reported.
func Resume(
	nav *navigator.Navigator,
	mapper *automapper.AutoMapper,
	p *uploadplan.UploadPlan,
	opts ...Option,
) (*Session, *diagnostic.Diagnostics, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := NewSession(nav, mapper, p.BaseTableName, opts...)
	if err != nil {
		return nil, nil, err
	}

	lines := mapping.ToFlatPaths(uploadplan.ToTree(p))
	for i, line := range lines {
		if resolved, err := nav.ValidatePath(s.BaseTable, line.Path); err == nil {
			lines[i].Path = resolved
		}
	}

	s.lines = lines

	diags := s.validate(lines)

	s.log.WithFields(logrus.Fields{
		"table":  s.BaseTable,
		"lines":  len(lines),
		"errors": len(diags.Errors),
	}).Info("plan resumed")

	return s, diags, nil
}
