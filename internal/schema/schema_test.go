package schema

import (
	"testing"

	"github.com/fastkit/fastkit/internal/models"
)

func validADRContent() map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":    "Use YAML storage",
			"status":   "accepted",
			"deciders": []interface{}{"alice", "bob"},
		},
		"context":  "We need durable flat-file persistence.",
		"decision": "Store one YAML document per file.",
		"consequences": map[string]interface{}{
			"positive": []interface{}{"human-readable files"},
			"negative": []interface{}{"no transactional writes"},
		},
	}
}

func TestRegistryKnowsAllTemplates(t *testing.T) {
	registry := NewRegistry()
	for _, tmpl := range models.SpecTemplates {
		if _, ok := registry.Get(tmpl); !ok {
			t.Errorf("Expected schema registered for %s", tmpl)
		}
	}
}

func TestADRValidContent(t *testing.T) {
	registry := NewRegistry()
	s, _ := registry.Get(models.SpecADR)

	if s.Status() != StatusEnforced {
		t.Fatalf("Expected adr schema to be enforced")
	}
	if issues := s.Validate(validADRContent()); len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
}

func TestADRMissingFields(t *testing.T) {
	registry := NewRegistry()
	s, _ := registry.Get(models.SpecADR)

	content := map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":  "Incomplete",
			"status": "wat",
		},
	}

	issues := s.Validate(content)
	if len(issues) == 0 {
		t.Fatal("Expected issues for incomplete ADR")
	}

	// Issue ordering follows declaration order for reproducible reports
	expected := []string{
		"metadata.status",
		"metadata.deciders",
		"context",
		"decision",
	}
	if len(issues) != len(expected) {
		t.Fatalf("Expected %d issues, got %d: %v", len(expected), len(issues), issues)
	}
	for i, path := range expected {
		if issues[i].Path != path {
			t.Errorf("Issue %d: expected path %q, got %q", i, path, issues[i].Path)
		}
	}
}

func TestPRDValidation(t *testing.T) {
	registry := NewRegistry()
	s, _ := registry.Get(models.SpecPRD)

	content := map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":  "Search revamp",
			"status": "draft",
		},
		"overview": map[string]interface{}{
			"problem":         "Search misses relevant docs",
			"solution":        "Weighted scoring",
			"target_users":    []interface{}{"engineers"},
			"success_metrics": []interface{}{"precision > 0.8"},
		},
		"requirements": map[string]interface{}{
			"functional": []interface{}{
				map[string]interface{}{
					"title":               "Rank by name match",
					"description":         "Name substring outranks description",
					"acceptance_criteria": []interface{}{"name match scores 3"},
					"priority":            "must",
				},
			},
		},
	}

	if issues := s.Validate(content); len(issues) != 0 {
		t.Errorf("Expected valid PRD, got issues: %v", issues)
	}

	// Break the nested requirement priority enum
	reqs := content["requirements"].(map[string]interface{})
	functional := reqs["functional"].([]interface{})
	functional[0].(map[string]interface{})["priority"] = "urgent"

	issues := s.Validate(content)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Path != "requirements.functional[0].priority" {
		t.Errorf("Unexpected issue path %q", issues[0].Path)
	}
}

func TestRFCValidation(t *testing.T) {
	registry := NewRegistry()
	s, _ := registry.Get(models.SpecRFC)

	issues := s.Validate(map[string]interface{}{})
	if len(issues) != 3 {
		t.Fatalf("Expected 3 missing-section issues, got %d: %v", len(issues), issues)
	}
	for i, path := range []string{"metadata", "summary", "proposal"} {
		if issues[i].Path != path {
			t.Errorf("Issue %d: expected path %q, got %q", i, path, issues[i].Path)
		}
	}
}

func TestPlaceholderSchemasAreUnchecked(t *testing.T) {
	registry := NewRegistry()

	for _, tmpl := range []models.SpecTemplate{models.SpecUserStory, models.SpecAPISpec} {
		s, _ := registry.Get(tmpl)
		if s.Status() != StatusUnchecked {
			t.Errorf("Expected %s to be unchecked", tmpl)
		}
		if issues := s.Validate(map[string]interface{}{"anything": true}); len(issues) != 0 {
			t.Errorf("Placeholder %s must not report issues, got %v", tmpl, issues)
		}
		if got := Completeness(s, map[string]interface{}{}); got != 100 {
			t.Errorf("Zero-field schema completeness: expected 100, got %v", got)
		}
	}
}

type fourFieldSchema struct{}

func (f *fourFieldSchema) Validate(map[string]interface{}) []Issue { return nil }
func (f *fourFieldSchema) Fields() []string {
	return []string{"a", "b", "c", "d"}
}
func (f *fourFieldSchema) Status() Status { return StatusEnforced }

func TestCompleteness(t *testing.T) {
	content := map[string]interface{}{"a": 1, "c": "x"}
	if got := Completeness(&fourFieldSchema{}, content); got != 50 {
		t.Errorf("Expected completeness 50, got %v", got)
	}

	s, _ := NewRegistry().Get(models.SpecADR)
	adr := validADRContent() // 4 of 5 declared fields present (no rationale)
	if got := Completeness(s, adr); got != 80 {
		t.Errorf("Expected ADR completeness 80, got %v", got)
	}
}
