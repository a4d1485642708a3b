package navigator

import (
	"iter"
	"slices"

	"github.com/sirupsen/logrus"

	"wbplanner/internal/cache"
	"wbplanner/internal/common"
	"wbplanner/internal/mapping"
	"wbplanner/internal/schema"
)

// DefaultMaxDepth is the default limit on relationship hops from the base
// table.
const DefaultMaxDepth = 6

// Navigator walks a schema graph. It is safe for concurrent use when the
// cache is; each call owns its traversal state.
type Navigator struct {
	graph         schema.Graph
	cache         *cache.Cache
	maxDepth      int
	includeHidden bool
	log           logrus.FieldLogger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithCache memoizes one-step edges in c.
func WithCache(c *cache.Cache) Option {
	return func(n *Navigator) { n.cache = c }
}

// WithMaxDepth sets the default relationship-hop limit.
func WithMaxDepth(depth int) Option {
	return func(n *Navigator) {
		if depth > 0 {
			n.maxDepth = depth
		}
	}
}

// WithHiddenFields makes enumeration include hidden fields and relationships.
func WithHiddenFields(include bool) Option {
	return func(n *Navigator) { n.includeHidden = include }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(n *Navigator) { n.log = l }
}

// New creates a Navigator over graph.
func New(graph schema.Graph, opts ...Option) *Navigator {
	n := &Navigator{
		graph:    graph,
		maxDepth: DefaultMaxDepth,
		log:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Graph returns the schema graph the navigator walks.
func (n *Navigator) Graph() schema.Graph {
	return n.graph
}

// MaxDepth returns the default relationship-hop limit.
func (n *Navigator) MaxDepth() int {
	return n.maxDepth
}

// EnumeratePaths returns every field path reachable from baseTable within
// maxDepth relationship hops (maxDepth <= 0 uses the navigator default).
// Paths ending at a forward cycle are yielded ending with the relationship.
// The sequence is finite and restartable; stop ranging to end it early.
func (n *Navigator) EnumeratePaths(baseTable string, maxDepth int) iter.Seq[mapping.Path] {
	if maxDepth <= 0 {
		maxDepth = n.maxDepth
	}

	return func(yield func(mapping.Path) bool) {
		if !n.graph.HasTable(baseTable) {
			return
		}

		n.log.WithFields(logrus.Fields{"table": baseTable, "max_depth": maxDepth}).Debug("enumerating paths")
		n.walk(newState(n.graph.TableName(baseTable)), false, maxDepth, yield)
	}
}

func (n *Navigator) walk(s *state, inRank bool, maxDepth int, yield func(mapping.Path) bool) bool {
	edges := n.Edges(s.table)
	if inRank {
		edges = n.fieldEdges(s.table)
	}

	for _, e := range edges {
		if e.Hidden && !n.includeHidden {
			continue
		}

		switch e.Kind {
		case mapping.ElementField:
			if !yield(s.path.Append(mapping.Field(e.Name))) {
				return false
			}

		case mapping.ElementTreeRank:
			rank := &state{
				table:       s.table,
				path:        s.path.Append(mapping.TreeRank(e.Name)),
				parentTable: s.parentTable,
				parentRel:   s.parentRel,
				visited:     s.visited,
				depth:       s.depth,
			}
			if !n.walk(rank, true, maxDepth, yield) {
				return false
			}

		case mapping.ElementRelationship:
			rel := e.relationship()
			if n.isBackward(s, rel) {
				continue
			}

			elements := relationshipElements(rel, 1)

			if n.isForwardCycle(s, rel) {
				if !yield(s.path.Append(elements...)) {
					return false
				}

				continue
			}

			if s.depth+1 > maxDepth {
				continue
			}

			if !n.walk(s.enter(rel, elements...), false, maxDepth, yield) {
				return false
			}
		}
	}

	return true
}

func relationshipElements(rel schema.Relationship, index int) []mapping.Element {
	elements := []mapping.Element{mapping.Relationship(rel.Name, rel.Target)}
	if rel.IsToMany() {
		elements = append(elements, mapping.ToManyIndex(index))
	}

	return elements
}

// isBackward reports whether rel is the inverse of the edge that led to the
// current table.
func (n *Navigator) isBackward(s *state, rel schema.Relationship) bool {
	if s.parentRel == nil || common.FoldKey(rel.Target) != common.FoldKey(s.parentTable) {
		return false
	}

	parent := s.parentRel

	if parent.OtherSide != "" && common.FoldKey(parent.OtherSide) == common.FoldKey(rel.Name) {
		return true
	}

	return rel.OtherSide != "" && common.FoldKey(rel.OtherSide) == common.FoldKey(parent.Name)
}

// isForwardCycle reports whether following rel revisits a table on the path.
// Tree tables never reach this check: their relationships are replaced by
// rank edges, so a self-parenting tree is walked through its ranks.
func (n *Navigator) isForwardCycle(s *state, rel schema.Relationship) bool {
	return s.seen(rel.Target)
}

// CollectPaths drains EnumeratePaths into a slice.
func (n *Navigator) CollectPaths(baseTable string, maxDepth int) []mapping.Path {
	return slices.Collect(n.EnumeratePaths(baseTable, maxDepth))
}
