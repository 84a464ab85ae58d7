// Package renderer turns stored documents into output text.
//
// Two independent paths share no state: template expansion fills a prompt
// template's placeholders from a validated variable map, and spec export
// flattens a specification's content tree into a target format. Both are
// pure functions of their inputs; identical inputs always produce identical
// output.
package renderer

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/fastkit/fastkit/internal/models"
)

// PromptRenderer expands a prompt template against supplied variables
type PromptRenderer struct {
	prompt *models.PromptTemplate
}

// NewPromptRenderer creates a renderer for the given template
func NewPromptRenderer(prompt *models.PromptTemplate) *PromptRenderer {
	return &PromptRenderer{prompt: prompt}
}

// Render executes the template body with declared defaults overlaid by the
// supplied values. Callers must validate the variable map first; rendering
// never substitutes a missing required variable silently.
func (r *PromptRenderer) Render(values map[string]interface{}) (string, error) {
	tmpl, err := template.New(r.prompt.ID).Option("missingkey=zero").Parse(r.prompt.Template)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := make(map[string]interface{})
	for _, def := range r.prompt.Variables {
		if def.Default != nil {
			data[def.Name] = def.Default
		}
	}
	for name, value := range values {
		data[name] = value
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
