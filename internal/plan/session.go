package plan

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"wbplanner/internal/automapper"
	"wbplanner/internal/cache"
	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/navigator"
)

// Session holds the mapping lines of one plan being edited. It is safe for
// concurrent use.
type Session struct {
	ID        uuid.UUID
	BaseTable string

	nav    *navigator.Navigator
	mapper *automapper.AutoMapper
	cache  *cache.Cache
	log    logrus.FieldLogger

	mu    sync.Mutex
	lines []mapping.Line
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id, for example to match a session cache store.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.ID = id }
}

// WithCache hands the session ownership of c's lifecycle.
func WithCache(c *cache.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession starts an empty session for baseTable.
func NewSession(nav *navigator.Navigator, mapper *automapper.AutoMapper, baseTable string, opts ...Option) (*Session, error) {
	g := nav.Graph()
	if !g.HasTable(baseTable) {
		return nil, &navigator.UnknownFieldError{Table: baseTable, Reason: "unknown base table"}
	}

	s := &Session{
		ID:        uuid.New(),
		BaseTable: g.TableName(baseTable),
		nav:       nav,
		mapper:    mapper,
		log:       logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.WithField("session", s.ID.String())

	return s, nil
}

// AutoMap replaces the session lines with one line per header, mapped by
// the automapper in the Automapper scope.
func (s *Session) AutoMap(headers []string) (*automapper.Result, error) {
	res, err := s.mapper.Suggest(headers, s.BaseTable, automapper.ScopeAutomapper)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-map headers: %w", err)
	}

	s.mu.Lock()
	s.lines = res.Lines()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"headers": len(headers),
		"mapped":  len(res.Mapped()),
	}).Info("headers auto-mapped")

	return res, nil
}

// Suggest ranks every candidate for header without changing the session.
func (s *Session) Suggest(header string) (*automapper.HeaderResult, error) {
	res, err := s.mapper.Suggest([]string{header}, s.BaseTable, automapper.ScopeSuggestion)
	if err != nil {
		return nil, err
	}

	hr, _ := common.First(res.Headers)

	return &hr, nil
}

// Lines returns a copy of the session lines.
func (s *Session) Lines() []mapping.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.lines)
}

// SetMapping validates path and stores it with binding at index. An index
// equal to the number of lines appends a new line. An empty path unmaps the
// line.
func (s *Session) SetMapping(index int, path mapping.Path, binding mapping.HeaderBinding) (mapping.Path, error) {
	resolved := path

	if !path.IsEmpty() {
		var err error

		resolved, err = s.nav.ValidatePath(s.BaseTable, path)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := mapping.Line{Path: resolved, Binding: binding}

	switch {
	case index == len(s.lines):
		s.lines = append(s.lines, line)
	case index >= 0 && index < len(s.lines):
		s.lines[index] = line
	default:
		return nil, fmt.Errorf("line %d out of range [0, %d]", index, len(s.lines))
	}

	s.log.WithFields(logrus.Fields{"line": index, "path": resolved.String()}).Debug("mapping set")

	return resolved, nil
}

// Tree folds the mapped lines into a mappings tree.
func (s *Session) Tree() *mapping.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()

	return mapping.ToTree(mappedLines(s.lines))
}

// MergeTree folds src into the session's tree. Existing bindings win; lines
// only present in src are appended after validation. Unmapped lines are
// kept.
func (s *Session) MergeTree(src *mapping.Tree) error {
	var errs *multierror.Error

	var resolved []mapping.Line

	for _, line := range mapping.ToFlatPaths(src) {
		if line.Path.IsEmpty() {
			continue
		}

		path, err := s.nav.ValidatePath(s.BaseTable, line.Path)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", line.Path, err))
			continue
		}

		resolved = append(resolved, mapping.Line{Path: path, Binding: line.Binding})
	}

	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := mapping.Merge(mapping.ToTree(mappedLines(s.lines)), mapping.ToTree(resolved))

	lines := mapping.ToFlatPaths(merged)
	for _, line := range s.lines {
		if line.Path.IsEmpty() {
			lines = append(lines, line)
		}
	}

	s.lines = lines

	return nil
}

// Save persists every cache bucket to its store and keeps the cache
// session open, so a later run with the same session id can restore it.
func (s *Session) Save(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.Persist(ctx); err != nil {
		return err
	}

	s.log.Debug("session saved")

	return nil
}

// Close persists durable cache buckets and ends the cache session.
func (s *Session) Close(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	var errs *multierror.Error

	if err := s.Save(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := s.cache.EndSession(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}

	s.log.Debug("session closed")

	return errs.ErrorOrNil()
}

func mappedLines(lines []mapping.Line) []mapping.Line {
	out := make([]mapping.Line, 0, len(lines))

	for _, line := range lines {
		if !line.Path.IsEmpty() {
			out = append(out, line)
		}
	}

	return out
}
