package schema

// Field describes a scalar column of a table.
type Field struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty"`
}

// RelationshipType is the cardinality of a relationship as written in the
// schema description.
type RelationshipType string

const (
	ManyToOne  RelationshipType = "many-to-one"
	OneToOne   RelationshipType = "one-to-one"
	OneToMany  RelationshipType = "one-to-many"
	ManyToMany RelationshipType = "many-to-many"
)

// IsToMany returns true for relationships that produce repeated records.
func (t RelationshipType) IsToMany() bool {
	return t == OneToMany || t == ManyToMany
}

// IsValid returns true if the type is a recognized value.
func (t RelationshipType) IsValid() bool {
	switch t {
	case ManyToOne, OneToOne, OneToMany, ManyToMany:
		return true
	default:
		return false
	}
}

// Relationship describes an edge from one table to another.
type Relationship struct {
	Name   string           `yaml:"name"`
	Label  string           `yaml:"label,omitempty"`
	Target string           `yaml:"target"`
	Type   RelationshipType `yaml:"type"`
	// OtherSide names the inverse relationship on Target, if any.
	OtherSide string `yaml:"other_side,omitempty"`
	Hidden    bool   `yaml:"hidden,omitempty"`
}

// IsToMany reports whether following the relationship yields many records.
func (r Relationship) IsToMany() bool {
	return r.Type.IsToMany()
}

// Graph is the read-only schema surface used by the planner.
// Table and field lookups are case-insensitive.
type Graph interface {
	// Version identifies the schema revision; it is part of cache keys.
	Version() string
	// HasTable reports whether the table exists.
	HasTable(table string) bool
	// TableName returns the canonical spelling of a table name.
	TableName(table string) string
	// Tables returns all table names in declaration order.
	Tables() []string
	// FieldsOf returns the scalar fields of a table.
	FieldsOf(table string) []Field
	// RelationshipsOf returns the relationships leaving a table.
	RelationshipsOf(table string) []Relationship
	// IsTreeTable reports whether the table is a rank hierarchy.
	IsTreeTable(table string) bool
	// RanksOf returns the ordered rank names of a tree table.
	RanksOf(table string) []string
	// LocalizedName returns the label of a table (field == "") or of a field
	// or relationship of that table, falling back to the raw name.
	LocalizedName(table, field string) string
}
