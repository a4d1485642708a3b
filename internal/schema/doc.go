// Package schema describes the read-only data-model graph the planner walks:
// tables, scalar fields, to-one/to-many relationships, and tree tables with
// ordered ranks.
//
// Graph is the capability surface consumed by the navigator and the
// auto-mapper. Static is an in-memory Graph built from a YAML description:
//
//	version: "7.9"
//	tables:
//	  - name: CollectionObject
//	    label: Collection Object
//	    fields:
//	      - name: catalogNumber
//	        label: Catalog Number
//	    relationships:
//	      - name: determinations
//	        target: Determination
//	        type: one-to-many
//	        other_side: collectionObject
//	  - name: Taxon
//	    ranks: [Kingdom, Phylum, Class, Order, Family, Genus, Species]
//	    fields:
//	      - name: name
package schema
