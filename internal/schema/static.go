package schema

import (
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"wbplanner/internal/common"
)

// Table is one table of a static schema description.
type Table struct {
	Name          string         `yaml:"name"`
	Label         string         `yaml:"label,omitempty"`
	Fields        []Field        `yaml:"fields,omitempty"`
	Relationships []Relationship `yaml:"relationships,omitempty"`
	// Ranks makes the table a tree table when non-empty.
	Ranks []string `yaml:"ranks,omitempty"`
}

// Description is the root of a YAML schema description.
type Description struct {
	Version string  `yaml:"version"`
	Tables  []Table `yaml:"tables"`
}

// Static is an in-memory Graph. It is immutable after construction and safe
// for concurrent use.
type Static struct {
	version string
	order   []string
	tables  map[string]*Table
}

var _ Graph = (*Static)(nil)

// LoadFile loads and parses a YAML schema description from the given path.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Static graph.
func Parse(data []byte) (*Static, error) {
	var desc Description

	err := yaml.Unmarshal(data, &desc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	return New(desc)
}

// New builds a Static graph from a description, checking that every
// relationship points to a declared table.
func New(desc Description) (*Static, error) {
	if desc.Version == "" {
		desc.Version = "1"
	}

	s := &Static{
		version: desc.Version,
		tables:  make(map[string]*Table, len(desc.Tables)),
	}

	for i := range desc.Tables {
		t := desc.Tables[i]
		if t.Name == "" {
			return nil, fmt.Errorf("table #%d has no name", i+1)
		}

		key := common.FoldKey(t.Name)
		if _, ok := s.tables[key]; ok {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}

		s.tables[key] = &t
		s.order = append(s.order, t.Name)
	}

	var errs *multierror.Error

	for _, name := range s.order {
		t := s.tables[common.FoldKey(name)]
		for j := range t.Relationships {
			rel := &t.Relationships[j]
			if rel.Type == "" {
				rel.Type = ManyToOne
			}

			if !rel.Type.IsValid() {
				errs = multierror.Append(errs, fmt.Errorf("%s.%s: invalid relationship type %q", t.Name, rel.Name, rel.Type))
			}

			target, ok := s.tables[common.FoldKey(rel.Target)]
			if !ok {
				errs = multierror.Append(errs, fmt.Errorf("%s.%s: unknown target table %q", t.Name, rel.Name, rel.Target))
				continue
			}

			rel.Target = target.Name
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return s, nil
}

// Version implements Graph.
func (s *Static) Version() string {
	return s.version
}

func (s *Static) table(name string) *Table {
	return s.tables[common.FoldKey(name)]
}

// HasTable implements Graph.
func (s *Static) HasTable(table string) bool {
	return s.table(table) != nil
}

// TableName implements Graph.
func (s *Static) TableName(table string) string {
	if t := s.table(table); t != nil {
		return t.Name
	}

	return table
}

// Tables implements Graph.
func (s *Static) Tables() []string {
	return slices.Clone(s.order)
}

// FieldsOf implements Graph.
func (s *Static) FieldsOf(table string) []Field {
	if t := s.table(table); t != nil {
		return slices.Clone(t.Fields)
	}

	return nil
}

// RelationshipsOf implements Graph.
func (s *Static) RelationshipsOf(table string) []Relationship {
	if t := s.table(table); t != nil {
		return slices.Clone(t.Relationships)
	}

	return nil
}

// IsTreeTable implements Graph.
func (s *Static) IsTreeTable(table string) bool {
	t := s.table(table)
	return t != nil && len(t.Ranks) > 0
}

// RanksOf implements Graph.
func (s *Static) RanksOf(table string) []string {
	if t := s.table(table); t != nil {
		return slices.Clone(t.Ranks)
	}

	return nil
}

// LocalizedName implements Graph.
func (s *Static) LocalizedName(table, field string) string {
	t := s.table(table)
	if t == nil {
		return field
	}

	if field == "" {
		return labelOr(t.Label, t.Name)
	}

	key := common.FoldKey(field)
	for _, f := range t.Fields {
		if common.FoldKey(f.Name) == key {
			return labelOr(f.Label, f.Name)
		}
	}

	for _, r := range t.Relationships {
		if common.FoldKey(r.Name) == key {
			return labelOr(r.Label, r.Name)
		}
	}

	return field
}

func labelOr(label, name string) string {
	if label != "" {
		return label
	}

	return name
}

// FindField looks up a field of a table by case-insensitive name.
func FindField(g Graph, table, name string) (Field, bool) {
	key := common.FoldKey(name)
	for _, f := range g.FieldsOf(table) {
		if common.FoldKey(f.Name) == key {
			return f, true
		}
	}

	return Field{}, false
}

// FindRelationship looks up a relationship of a table by case-insensitive name.
func FindRelationship(g Graph, table, name string) (Relationship, bool) {
	key := common.FoldKey(name)
	for _, r := range g.RelationshipsOf(table) {
		if common.FoldKey(r.Name) == key {
			return r, true
		}
	}

	return Relationship{}, false
}
