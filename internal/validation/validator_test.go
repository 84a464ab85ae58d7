package validation

import (
	"reflect"
	"testing"

	"github.com/fastkit/fastkit/internal/models"
)

func defs() []models.VariableDefinition {
	return []models.VariableDefinition{
		{Name: "code", Type: models.VariableCode, Required: true},
		{Name: "language", Type: models.VariableString, Required: true, Validation: &models.VariableRules{
			AllowedValues: []string{"go", "python", "typescript"},
		}},
		{Name: "strict", Type: models.VariableBoolean, Required: false},
		{Name: "files", Type: models.VariableList, Required: false, Validation: &models.VariableRules{
			MinLength: 1,
			MaxLength: 3,
		}},
	}
}

func TestMissingRequiredVariable(t *testing.T) {
	errs := ValidateVariables(defs(), map[string]interface{}{
		"language": "go",
	})

	want := []string{"Missing required variable: code"}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("got %v, want %v", errs, want)
	}
}

func TestPresenceNotTruthiness(t *testing.T) {
	// A present-but-empty string satisfies the required check
	errs := ValidateVariables(defs(), map[string]interface{}{
		"code":     "",
		"language": "go",
	})
	if len(errs) != 0 {
		t.Errorf("Expected no errors for empty-but-present value, got %v", errs)
	}
}

func TestNilValueSkipsRemainingChecks(t *testing.T) {
	errs := ValidateVariables(defs(), map[string]interface{}{
		"code":     "x",
		"language": nil, // explicitly cleared: no type or membership error
	})
	if len(errs) != 0 {
		t.Errorf("Expected no errors for nil value, got %v", errs)
	}
}

func TestTypeChecks(t *testing.T) {
	errs := ValidateVariables(defs(), map[string]interface{}{
		"code":     "x",
		"language": 42,
		"strict":   "yes",
		"files":    "not-a-list",
	})

	want := []string{
		"Variable language must be a string",
		"Variable strict must be a boolean",
		"Variable files must be a list",
	}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("got %v, want %v", errs, want)
	}
}

func TestAllowedValues(t *testing.T) {
	errs := ValidateVariables(defs(), map[string]interface{}{
		"code":     "x",
		"language": "rust",
	})

	want := []string{"Variable language must be one of: go, python, typescript"}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("got %v, want %v", errs, want)
	}
}

func TestLengthBoundsOnSequences(t *testing.T) {
	base := map[string]interface{}{"code": "x", "language": "go"}

	tests := []struct {
		name  string
		files interface{}
		want  int
	}{
		{"within bounds", []interface{}{"a.go"}, 0},
		{"empty below min", []interface{}{}, 1},
		{"above max", []interface{}{"a", "b", "c", "d"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]interface{}{"files": tt.files}
			for k, v := range base {
				values[k] = v
			}
			errs := ValidateVariables(defs(), values)
			if len(errs) != tt.want {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.want)
			}
		})
	}
}

func TestStringLengthBounds(t *testing.T) {
	definitions := []models.VariableDefinition{
		{Name: "summary", Type: models.VariableString, Required: true, Validation: &models.VariableRules{
			MinLength: 5,
			MaxLength: 10,
		}},
	}

	if errs := ValidateVariables(definitions, map[string]interface{}{"summary": "ok"}); len(errs) != 1 {
		t.Errorf("Expected min length violation, got %v", errs)
	}
	if errs := ValidateVariables(definitions, map[string]interface{}{"summary": "just right"}); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
	if errs := ValidateVariables(definitions, map[string]interface{}{"summary": "far far too long"}); len(errs) != 1 {
		t.Errorf("Expected max length violation, got %v", errs)
	}
}

func TestDeclarationOrderIsPreserved(t *testing.T) {
	definitions := []models.VariableDefinition{
		{Name: "zeta", Type: models.VariableString, Required: true},
		{Name: "alpha", Type: models.VariableString, Required: true},
	}

	errs := ValidateVariables(definitions, map[string]interface{}{})
	want := []string{
		"Missing required variable: zeta",
		"Missing required variable: alpha",
	}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("got %v, want %v", errs, want)
	}
}
