// Package validation checks supplied variable values against a prompt
// template's declared variable contract.
//
// Rules run per definition in declaration order so error reports are
// deterministic and reproducible. A non-empty result means "do not render":
// rendering on invalid input is forbidden, and callers gate composition on
// an empty result.
//
// Presence is checked, not truthiness: a present-but-empty value satisfies a
// required variable, and a present-but-nil value skips the remaining checks
// entirely ("explicitly cleared" semantics).
package validation

import (
	"fmt"
	"strings"

	"github.com/fastkit/fastkit/internal/models"
)

// ValidateVariables returns an ordered list of contract violations. The
// result is empty iff every definition passes.
func ValidateVariables(definitions []models.VariableDefinition, values map[string]interface{}) []string {
	var errs []string

	for _, def := range definitions {
		value, present := values[def.Name]

		if def.Required && !present {
			errs = append(errs, fmt.Sprintf("Missing required variable: %s", def.Name))
			continue
		}
		if !present || value == nil {
			continue
		}

		// Type validation. code and file_path are free text at this layer.
		// A mistyped value skips the rule checks; one finding per variable
		// is enough to block rendering.
		typeOK := true
		switch def.Type {
		case models.VariableString:
			if _, ok := value.(string); !ok {
				errs = append(errs, fmt.Sprintf("Variable %s must be a string", def.Name))
				typeOK = false
			}
		case models.VariableBoolean:
			if _, ok := value.(bool); !ok {
				errs = append(errs, fmt.Sprintf("Variable %s must be a boolean", def.Name))
				typeOK = false
			}
		case models.VariableList:
			if !isSequence(value) {
				errs = append(errs, fmt.Sprintf("Variable %s must be a list", def.Name))
				typeOK = false
			}
		}

		if typeOK && def.Validation != nil {
			errs = append(errs, checkRules(def, value)...)
		}
	}

	return errs
}

// checkRules applies the optional validation block: length bounds over
// values that have a length concept, and allowed-values membership.
func checkRules(def models.VariableDefinition, value interface{}) []string {
	var errs []string
	rules := def.Validation

	if length, ok := lengthOf(value); ok {
		if rules.MinLength > 0 && length < rules.MinLength {
			errs = append(errs, fmt.Sprintf("Variable %s must be at least %d characters", def.Name, rules.MinLength))
		}
		if rules.MaxLength > 0 && length > rules.MaxLength {
			errs = append(errs, fmt.Sprintf("Variable %s must be at most %d characters", def.Name, rules.MaxLength))
		}
	}

	if len(rules.AllowedValues) > 0 {
		if s, ok := value.(string); ok && !contains(rules.AllowedValues, s) {
			errs = append(errs, fmt.Sprintf("Variable %s must be one of: %s", def.Name, strings.Join(rules.AllowedValues, ", ")))
		}
	}

	return errs
}

func isSequence(value interface{}) bool {
	switch value.(type) {
	case []interface{}, []string:
		return true
	default:
		return false
	}
}

// lengthOf reports the length of strings and sequences; other values have
// no length concept and are exempt from length bounds
func lengthOf(value interface{}) (int, bool) {
	switch v := value.(type) {
	case string:
		return len(v), true
	case []interface{}:
		return len(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
