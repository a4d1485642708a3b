package automapper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scope selects how suggestions are produced.
type Scope string

const (
	// ScopeAutomapper picks one unique path per header.
	ScopeAutomapper Scope = "automapper"
	// ScopeSuggestion returns every ranked candidate for a header.
	ScopeSuggestion Scope = "suggestion"
)

// IsValid returns true if s is a known scope.
func (s Scope) IsValid() bool {
	return s == ScopeAutomapper || s == ScopeSuggestion
}

// Rules is the root of a rules YAML file.
type Rules struct {
	Version       string         `yaml:"version,omitempty"`
	TableSynonyms []TableSynonym `yaml:"table_synonyms,omitempty"`
	Shortcuts     []Shortcut     `yaml:"shortcuts,omitempty"`
	Synonyms      []Synonym      `yaml:"synonyms,omitempty"`
	DontMatch     []DontMatch    `yaml:"dont_match,omitempty"`
}

// HeaderOptions lists the ways a header can satisfy a rule. Regex, String,
// and Contains are tried in that order; the first family that matches wins.
type HeaderOptions struct {
	Regex    StringOrArray `yaml:"regex,omitempty"`
	String   StringOrArray `yaml:"string,omitempty"`
	Contains StringOrArray `yaml:"contains,omitempty"`
	// Formatted entries compare against the header after FormatHeader.
	Formatted StringOrArray `yaml:"formatted,omitempty"`
}

// TableSynonym directs headers that mention one of Synonyms into Table.
// With a MappingPathFilter, only paths below that prefix (relative to
// BaseTable) are accepted.
type TableSynonym struct {
	Table             string        `yaml:"table"`
	BaseTable         string        `yaml:"base_table,omitempty"`
	MappingPathFilter string        `yaml:"mapping_path_filter,omitempty"`
	Synonyms          StringOrArray `yaml:"synonyms"`
}

// Shortcut maps headers straight to Path, which is relative to Table.
type Shortcut struct {
	Table   string        `yaml:"table"`
	Path    string        `yaml:"path"`
	Headers HeaderOptions `yaml:"headers"`
}

// Synonym maps headers to a single field of a table.
type Synonym struct {
	Table   string        `yaml:"table"`
	Field   string        `yaml:"field"`
	Headers HeaderOptions `yaml:"headers"`
}

// DontMatch excludes a field from the given scopes, or from all scopes when
// Scopes is empty.
type DontMatch struct {
	Table  string  `yaml:"table"`
	Field  string  `yaml:"field"`
	Scopes []Scope `yaml:"scopes,omitempty"`
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise a list.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// LoadRules loads and parses a rules YAML file from the given path.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	return ParseRules(data)
}

// ParseRules parses YAML data into Rules.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules

	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	if r.Version == "" {
		r.Version = "1"
	}

	return &r, nil
}
