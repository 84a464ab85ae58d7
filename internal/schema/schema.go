// Package schema maps a specification's template type to its structural
// contract. A schema serves two purposes: validation (does the content
// satisfy the required shape) and completeness scoring (what fraction of
// expected top-level fields are present).
//
// Not every type is enforced yet. Placeholder schemas validate trivially but
// report StatusUnchecked, which callers must surface instead of folding it
// into "validated and clean".
package schema

import (
	"github.com/fastkit/fastkit/internal/models"
)

// Status tells whether a schema actually enforces structure
type Status string

const (
	StatusEnforced  Status = "enforced"
	StatusUnchecked Status = "unchecked"
)

// Issue is a single structural validation finding
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Schema is the per-type structural contract
type Schema interface {
	// Validate returns structural issues in a deterministic order
	Validate(content map[string]interface{}) []Issue
	// Fields returns the top-level expected field names, in declaration order
	Fields() []string
	// Status reports whether this schema is enforced or a placeholder
	Status() Status
}

// Registry resolves a template type to its schema
type Registry struct {
	schemas map[models.SpecTemplate]Schema
}

// NewRegistry builds the registry with every known template type. prd, rfc
// and adr are enforced; user_story and api_spec are unchecked placeholders.
func NewRegistry() *Registry {
	return &Registry{
		schemas: map[models.SpecTemplate]Schema{
			models.SpecPRD:       &prdSchema{},
			models.SpecRFC:       &rfcSchema{},
			models.SpecADR:       &adrSchema{},
			models.SpecUserStory: &placeholderSchema{},
			models.SpecAPISpec:   &placeholderSchema{},
		},
	}
}

// Get returns the schema for a template type
func (r *Registry) Get(tmpl models.SpecTemplate) (Schema, bool) {
	s, ok := r.schemas[tmpl]
	return s, ok
}

// Completeness scores the fraction of declared top-level fields present in
// the content, as a percentage. A schema declaring zero fields scores 100.
// This is a shallow heuristic: it does not recurse into nested required
// fields and is not a substitute for Validate.
func Completeness(s Schema, content map[string]interface{}) float64 {
	fields := s.Fields()
	if len(fields) == 0 {
		return 100
	}

	present := 0
	for _, field := range fields {
		if _, ok := content[field]; ok {
			present++
		}
	}
	return float64(present) / float64(len(fields)) * 100
}

// placeholderSchema is the "not yet enforced" state: zero issues, full
// completeness, StatusUnchecked
type placeholderSchema struct{}

func (p *placeholderSchema) Validate(map[string]interface{}) []Issue { return nil }
func (p *placeholderSchema) Fields() []string                       { return nil }
func (p *placeholderSchema) Status() Status                         { return StatusUnchecked }
