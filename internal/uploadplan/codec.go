package uploadplan

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Marshal encodes a plan as JSON.
func Marshal(p *UploadPlan) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return json.MarshalIndent(p, "", "  ")
}

// Unmarshal decodes and validates a JSON plan.
func Unmarshal(data []byte) (*UploadPlan, error) {
	var p UploadPlan

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse upload plan JSON: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// MarshalYAML encodes a plan as YAML for review.
func MarshalYAML(p *UploadPlan) ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks the structural rules of a plan.
func (p *UploadPlan) Validate() error {
	if p.BaseTableName == "" {
		return fmt.Errorf("%w: missing baseTableName", ErrInvalidPlan)
	}

	return p.Uploadable.validate(p.BaseTableName)
}

func (u Uploadable) validate(where string) error {
	switch {
	case u.UploadTable != nil && u.TreeRecord != nil:
		return fmt.Errorf("%w: %s: both uploadTable and treeRecord set", ErrInvalidPlan, where)
	case u.UploadTable != nil:
		return u.UploadTable.validate(where)
	case u.TreeRecord != nil:
		return u.TreeRecord.validate(where)
	default:
		return fmt.Errorf("%w: %s: empty uploadable", ErrInvalidPlan, where)
	}
}

func (t *UploadTable) validate(where string) error {
	for field := range t.WBCols {
		if _, ok := t.Static[field]; ok {
			return fmt.Errorf("%w: %s.%s: both column and static value", ErrInvalidPlan, where, field)
		}
	}

	for name, u := range t.ToOne {
		if err := u.validate(where + "." + name); err != nil {
			return err
		}
	}

	for name, records := range t.ToMany {
		for i := range records {
			if err := records[i].validate(fmt.Sprintf("%s.%s[%d]", where, name, i)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (t *TreeRecord) validate(where string) error {
	for rank, r := range t.Ranks {
		if len(r.TreeNodeCols) == 0 {
			return fmt.Errorf("%w: %s.%s: rank without columns", ErrInvalidPlan, where, rank)
		}
	}

	return nil
}
