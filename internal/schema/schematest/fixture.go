// Package schematest provides a small natural-history schema for tests.
package schematest

import (
	"testing"

	"wbplanner/internal/schema"
)

// FixtureYAML is a cut-down collections schema with to-one, to-many,
// self-referential, and tree tables.
const FixtureYAML = `
version: "test-1"
tables:
  - name: CollectionObject
    label: Collection Object
    fields:
      - name: catalogNumber
        label: Catalog Number
      - name: remarks
        label: Remarks
      - name: text1
        label: Text 1
        hidden: true
    relationships:
      - name: collectingEvent
        label: Collecting Event
        target: CollectingEvent
        type: many-to-one
        other_side: collectionObjects
      - name: determinations
        label: Determinations
        target: Determination
        type: one-to-many
        other_side: collectionObject
      - name: accession
        label: Accession
        target: Accession
        type: many-to-one
        other_side: collectionObjects
      - name: cataloger
        label: Cataloger
        target: Agent
        type: many-to-one
  - name: CollectingEvent
    label: Collecting Event
    fields:
      - name: startDate
        label: Start Date
      - name: endDate
        label: End Date
      - name: stationFieldNumber
        label: Field Number
    relationships:
      - name: collectionObjects
        target: CollectionObject
        type: one-to-many
        other_side: collectingEvent
      - name: locality
        label: Locality
        target: Locality
        type: many-to-one
      - name: collectors
        label: Collectors
        target: Collector
        type: one-to-many
        other_side: collectingEvent
  - name: Collector
    fields:
      - name: isPrimary
        label: Is Primary
      - name: remarks
    relationships:
      - name: agent
        target: Agent
        type: many-to-one
      - name: collectingEvent
        target: CollectingEvent
        type: many-to-one
        other_side: collectors
  - name: Locality
    fields:
      - name: localityName
        label: Locality Name
      - name: latitude1
        label: Latitude
      - name: longitude1
        label: Longitude
    relationships:
      - name: geography
        target: Geography
        type: many-to-one
  - name: Geography
    ranks: [Continent, Country, State, County]
    fields:
      - name: name
      - name: centroidLat
        label: Centroid Latitude
  - name: Determination
    fields:
      - name: determinedDate
        label: Determined Date
      - name: remarks
    relationships:
      - name: taxon
        target: Taxon
        type: many-to-one
      - name: determiner
        target: Agent
        type: many-to-one
      - name: collectionObject
        target: CollectionObject
        type: many-to-one
        other_side: determinations
  - name: Taxon
    ranks: [Kingdom, Phylum, Class, Order, Family, Genus, Species]
    fields:
      - name: name
      - name: author
  - name: Accession
    fields:
      - name: accessionNumber
        label: Accession Number
      - name: remarks
    relationships:
      - name: accessionAgents
        target: AccessionAgent
        type: one-to-many
        other_side: accession
      - name: collectionObjects
        target: CollectionObject
        type: one-to-many
        other_side: accession
  - name: AccessionAgent
    fields:
      - name: role
      - name: remarks
    relationships:
      - name: agent
        target: Agent
        type: many-to-one
      - name: accession
        target: Accession
        type: many-to-one
        other_side: accessionAgents
  - name: Agent
    fields:
      - name: firstName
        label: First Name
      - name: lastName
        label: Last Name
      - name: title
    relationships:
      - name: addresses
        target: Address
        type: one-to-many
        other_side: agent
      - name: createdByAgent
        target: Agent
        type: many-to-one
      - name: groupMembers
        target: Agent
        type: one-to-many
  - name: Address
    fields:
      - name: address
      - name: city
    relationships:
      - name: agent
        target: Agent
        type: many-to-one
        other_side: addresses
`

// Fixture parses FixtureYAML, failing the test on error.
func Fixture(t testing.TB) *schema.Static {
	t.Helper()

	g, err := schema.Parse([]byte(FixtureYAML))
	if err != nil {
		t.Fatalf("failed to parse fixture schema: %v", err)
	}

	return g
}
