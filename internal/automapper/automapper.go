package automapper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"wbplanner/internal/cache"
	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/match"
	"wbplanner/internal/navigator"
)

const (
	// ChoiceBucket is the local cache bucket counting accepted mappings.
	ChoiceBucket = "automapper-choices"
	// DefaultMemoSize bounds the number of memoized reachable-path sets.
	DefaultMemoSize = 64
)

// ErrUnknownScope is returned for a scope other than ScopeAutomapper or
// ScopeSuggestion.
var ErrUnknownScope = errors.New("unknown scope")

// AutoMapper suggests mapping paths for headers. It is safe for concurrent
// use.
type AutoMapper struct {
	nav      *navigator.Navigator
	config   *Config
	cache    *cache.Cache
	memo     *lru.Cache[string, []reachable]
	memoSize int
	log      logrus.FieldLogger
}

// Option configures an AutoMapper.
type Option func(*AutoMapper)

// WithCache makes ranking prefer previously recorded choices.
func WithCache(c *cache.Cache) Option {
	return func(a *AutoMapper) { a.cache = c }
}

// WithMemoSize sets how many base tables keep their reachable paths
// memoized.
func WithMemoSize(n int) Option {
	return func(a *AutoMapper) {
		if n > 0 {
			a.memoSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *AutoMapper) { a.log = l }
}

// New creates an AutoMapper. A nil config behaves as an empty rule set.
func New(nav *navigator.Navigator, config *Config, opts ...Option) (*AutoMapper, error) {
	if config == nil {
		config = &Config{dontMatch: map[string][]Scope{}}
	}

	a := &AutoMapper{
		nav:      nav,
		config:   config,
		memoSize: DefaultMemoSize,
		log:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	memo, err := lru.New[string, []reachable](a.memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create path memo: %w", err)
	}

	a.memo = memo

	return a, nil
}

// HeaderResult is the outcome for one header.
type HeaderResult struct {
	// Index is the header's position in the input.
	Index  int
	Header string
	// Suggestions is ranked best first.
	Suggestions match.CandidateList
	// Path is the chosen path, nil when the header stays unmapped.
	Path mapping.Path
	// Ambiguity is set when the best suggestions tie.
	Ambiguity *AmbiguousHeaderMatch
}

// Result is the outcome of Suggest.
type Result struct {
	BaseTable string
	Scope     Scope
	Headers   []HeaderResult
}

// Mapped returns the results that have a chosen path.
func (r *Result) Mapped() []HeaderResult {
	var out []HeaderResult

	for _, h := range r.Headers {
		if h.Path != nil {
			out = append(out, h)
		}
	}

	return out
}

// Unmapped returns the results without a chosen path.
func (r *Result) Unmapped() []HeaderResult {
	var out []HeaderResult

	for _, h := range r.Headers {
		if h.Path == nil {
			out = append(out, h)
		}
	}

	return out
}

// Ambiguities returns every ambiguity found.
func (r *Result) Ambiguities() []*AmbiguousHeaderMatch {
	var out []*AmbiguousHeaderMatch

	for _, h := range r.Headers {
		if h.Ambiguity != nil {
			out = append(out, h.Ambiguity)
		}
	}

	return out
}

// Lines returns one mapping line per header in input order. Unmapped
// headers yield a line with an empty path.
func (r *Result) Lines() []mapping.Line {
	lines := make([]mapping.Line, len(r.Headers))
	for i, h := range r.Headers {
		lines[i] = mapping.Line{Path: h.Path, Binding: mapping.ExistingHeader{Name: h.Header}}
	}

	return lines
}

// Suggest proposes mapping paths for headers starting at baseTable.
//
// In ScopeAutomapper only the best rule family is considered and every
// header receives a distinct path: a taken path with a record index is
// moved to the next free index, otherwise the next candidate is used.
// In ScopeSuggestion every candidate is returned, fuzzy matches included,
// and paths may repeat across headers.
func (a *AutoMapper) Suggest(headers []string, baseTable string, scope Scope) (*Result, error) {
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	g := a.nav.Graph()
	if !g.HasTable(baseTable) {
		return nil, &navigator.UnknownFieldError{Table: baseTable, Reason: "unknown base table"}
	}

	base := g.TableName(baseTable)
	universe := a.reachableFrom(base)

	res := &Result{BaseTable: base, Scope: scope, Headers: make([]HeaderResult, len(headers))}
	taken := make(map[string]bool)

	for i, header := range headers {
		hr := HeaderResult{Index: i, Header: header}

		list := a.candidates(header, base, scope, universe)
		if scope == ScopeAutomapper {
			list = list.FirstFamily()
		}

		hr.Suggestions = list

		if list.IsAmbiguous() {
			hr.Ambiguity = &AmbiguousHeaderMatch{Header: header, Candidates: list.Tied().Paths()}
		}

		switch scope {
		case ScopeAutomapper:
			hr.Path = pickUnique(list, taken)
			if hr.Path != nil {
				taken[hr.Path.Key()] = true
			}
		case ScopeSuggestion:
			if best := list.Best(); best != nil {
				hr.Path = best.Path
			}
		}

		a.log.WithFields(logrus.Fields{
			"header":     header,
			"candidates": len(list),
			"path":       hr.Path.String(),
		}).Debug("header suggested")

		res.Headers[i] = hr
	}

	a.log.WithFields(logrus.Fields{
		"table":     base,
		"scope":     scope,
		"headers":   len(headers),
		"mapped":    len(res.Mapped()),
		"ambiguous": len(res.Ambiguities()),
	}).Info("auto-mapping finished")

	return res, nil
}

// pickUnique returns the first candidate not yet taken, moving a taken path
// with a record index to its next free index.
func pickUnique(list match.CandidateList, taken map[string]bool) mapping.Path {
	for _, c := range list {
		if !taken[c.Path.Key()] {
			return c.Path
		}

		if bumped, ok := bumpIndex(c.Path, taken); ok {
			return bumped
		}
	}

	return nil
}

// bumpIndex increments the deepest record index of p until the path is
// free.
func bumpIndex(p mapping.Path, taken map[string]bool) (mapping.Path, bool) {
	pos := -1

	for i, el := range p {
		if el.Kind == mapping.ElementToManyIndex {
			pos = i
		}
	}

	if pos < 0 {
		return nil, false
	}

	out := p.Clone()
	for n := p[pos].Index + 1; ; n++ {
		out[pos] = mapping.ToManyIndex(n)
		if !taken[out.Key()] {
			return out, true
		}
	}
}

// RecordChoice remembers that header was mapped to path, making the pair
// rank higher in later suggestions.
func (a *AutoMapper) RecordChoice(header string, path mapping.Path) {
	if a.cache == nil || path.IsEmpty() {
		return
	}

	key := choiceKey(header, path)
	a.cache.Set(ChoiceBucket, key, path.String(), cache.SetOptions{BucketType: cache.BucketLocal})
	a.cache.Get(ChoiceBucket, key)
}

func (a *AutoMapper) useCount(header string, path mapping.Path) int {
	if a.cache == nil {
		return 0
	}

	_, n, _ := a.cache.Peek(ChoiceBucket, choiceKey(header, path))

	return n
}

func choiceKey(header string, path mapping.Path) string {
	return match.FormatHeader(header) + "=>" + path.Key()
}

func memoKey(version, table string, depth int) string {
	return strings.Join([]string{version, common.FoldKey(table), strconv.Itoa(depth)}, ":")
}
