// Package navigator walks a schema graph to enumerate every mapping path
// reachable from a base table, or to validate and complete one candidate
// path.
//
// The walk is depth-first. Fields end a branch. Relationships recurse into
// their target table after two cycle checks:
//   - Backward: following the inverse of the edge just taken is skipped.
//   - Forward: reaching a table already on the path ends the branch at the
//     relationship.
//
// Tree tables expose one rank edge per configured rank instead of their
// relationships, including any parent/children self-reference; each rank
// is followed by the tree table's fields.
//
// One-step edges are memoized in the session cache keyed by schema version
// and table. Full enumerations are not cached.
package navigator
