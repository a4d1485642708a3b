package uploadplan

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NameField is the tree field that a bare rank header binds to.
const NameField = "name"

// UploadPlan is the root of the wire format.
type UploadPlan struct {
	BaseTableName string     `json:"baseTableName" yaml:"baseTableName"`
	Uploadable    Uploadable `json:"uploadable" yaml:"uploadable"`
}

// Uploadable holds exactly one of UploadTable or TreeRecord.
type Uploadable struct {
	UploadTable *UploadTable `json:"uploadTable,omitempty" yaml:"uploadTable,omitempty"`
	TreeRecord  *TreeRecord  `json:"treeRecord,omitempty" yaml:"treeRecord,omitempty"`
}

// UploadTable describes the records of one ordinary table.
type UploadTable struct {
	// WBCols maps field names to spreadsheet headers.
	WBCols map[string]string `json:"wbcols" yaml:"wbcols"`
	// Static maps field names to literal values.
	Static map[string]string `json:"static" yaml:"static"`
	// ToOne maps relationship names to nested uploadables.
	ToOne map[string]Uploadable `json:"toOne" yaml:"toOne"`
	// ToMany maps relationship names to one UploadTable per record.
	ToMany map[string][]UploadTable `json:"toMany" yaml:"toMany"`
}

// TreeRecord describes the rank records of a tree table.
type TreeRecord struct {
	Ranks map[string]TreeRankRecord `json:"ranks" yaml:"ranks"`
}

// TreeRankRecord maps the fields of one rank to headers. A record whose only
// field is NameField is written as a plain header string.
type TreeRankRecord struct {
	TreeNodeCols map[string]string
}

type treeRankObject struct {
	TreeNodeCols map[string]string `json:"treeNodeCols" yaml:"treeNodeCols"`
}

// ErrInvalidPlan reports a structurally invalid upload plan.
var ErrInvalidPlan = errors.New("invalid upload plan")

func newUploadTable() *UploadTable {
	return &UploadTable{
		WBCols: map[string]string{},
		Static: map[string]string{},
		ToOne:  map[string]Uploadable{},
		ToMany: map[string][]UploadTable{},
	}
}

// nameOnly returns the header of a record that only binds NameField.
func (r TreeRankRecord) nameOnly() (string, bool) {
	if len(r.TreeNodeCols) != 1 {
		return "", false
	}

	header, ok := r.TreeNodeCols[NameField]

	return header, ok
}

// MarshalJSON implements json.Marshaler.
func (r TreeRankRecord) MarshalJSON() ([]byte, error) {
	if header, ok := r.nameOnly(); ok {
		return json.Marshal(header)
	}

	return json.Marshal(treeRankObject{TreeNodeCols: r.TreeNodeCols})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *TreeRankRecord) UnmarshalJSON(data []byte) error {
	var header string
	if err := json.Unmarshal(data, &header); err == nil {
		r.TreeNodeCols = map[string]string{NameField: header}
		return nil
	}

	var obj treeRankObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tree rank must be a header or an object with treeNodeCols: %w", err)
	}

	r.TreeNodeCols = obj.TreeNodeCols

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r TreeRankRecord) MarshalYAML() (any, error) {
	if header, ok := r.nameOnly(); ok {
		return header, nil
	}

	return treeRankObject{TreeNodeCols: r.TreeNodeCols}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *TreeRankRecord) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.TreeNodeCols = map[string]string{NameField: node.Value}
		return nil
	}

	var obj treeRankObject
	if err := node.Decode(&obj); err != nil {
		return err
	}

	r.TreeNodeCols = obj.TreeNodeCols

	return nil
}
