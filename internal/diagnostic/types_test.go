package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	assert.NoError(t, d.Error())
	assert.True(t, d.IsValid())

	d.AddWarning("w", "just a warning", "", "")
	assert.NoError(t, d.Error())

	d.AddError("unknown_field", "field \"foo\" not found", "Agent", "foo")
	d.AddError("unknown_table", "table \"Bar\" not found", "", "")

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"[Agent] foo: [unknown_field] field \"foo\" not found; [unknown_table] table \"Bar\" not found",
		err.Error())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("i", "info", "", "")
	b.AddError("e", "error", "", "")
	b.AddWarning("w", "warning", "", "")

	a.Merge(b)
	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Len(t, a.Infos, 1)
	assert.True(t, a.HasErrors())
	assert.Equal(t, "error", a.Errors[0].Severity.String())
}

func TestDiagnostics_AllOrdersBySeverity(t *testing.T) {
	var d Diagnostics
	d.AddInfo("i", "info", "", "")
	d.AddWarning("w", "warning", "", "")
	d.AddError("e1", "first", "", "")
	d.AddError("e2", "second", "", "")

	var codes []string
	for item := range d.All() {
		codes = append(codes, item.Code)
	}

	assert.Equal(t, []string{"e1", "e2", "w", "i"}, codes)
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"message only", Diagnostic{Message: "m"}, "m"},
		{"code", Diagnostic{Code: "c", Message: "m"}, "[c] m"},
		{"path", Diagnostic{Path: "agent.name", Message: "m"}, "agent.name: m"},
		{"table and path", Diagnostic{Table: "Agent", Path: "name", Code: "c", Message: "m"}, "[Agent] name: [c] m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}
