// Package mapping provides mapping paths through a data-model schema, the
// header bindings that terminate them, and the mappings tree that merges all
// paths of one upload plan.
//
// # Path Syntax
//
// A path is a sequence of elements joined by ".":
//   - Fields and relationships: "determinations"
//   - To-many record indices (1-based): "#1"
//   - Tree ranks: "$Species"
//
// For example:
//
//	accession.accessionAgents.#1.agent.lastName
//	determinations.#2.taxon.$Genus.name
//
// # Header Bindings
//
// A path may end in one of three bindings:
//   - ExistingHeader: a column already present in the spreadsheet
//   - NewColumn: a column the planner adds to the spreadsheet
//   - NewStaticColumn: a literal value applied to every row
//
// # Mappings Tree
//
// ToTree folds a flat list of lines into a tree so that paths sharing a
// prefix share nodes; ToFlatPaths reverses it. Merge deep-unions two trees,
// DivergencePoint measures shared prefixes, and FindDuplicates flags lines
// that repeat an earlier one.
package mapping
