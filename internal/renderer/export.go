package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fastkit/fastkit/internal/models"
	"gopkg.in/yaml.v3"
)

// Format selects a spec export representation
type Format string

const (
	FormatYAML     Format = "yaml"     // native serialization
	FormatJSON     Format = "json"     // generic machine-readable dump
	FormatMarkdown Format = "markdown" // structure restated as prose headings
	FormatPrompt   Format = "prompt"   // type-aware narrative export
)

// notAvailable is the stable token emitted for missing expected fields so
// the section skeleton survives incomplete documents
const notAvailable = "N/A"

// ExportSpec flattens a specification into the requested format
func ExportSpec(spec *models.Spec, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal spec: %w", err)
		}
		return string(data), nil

	case FormatMarkdown:
		return specToMarkdown(spec)

	case FormatPrompt:
		return SpecToPrompt(spec), nil

	case FormatYAML, "":
		data, err := yaml.Marshal(spec)
		if err != nil {
			return "", fmt.Errorf("failed to marshal spec: %w", err)
		}
		return string(data), nil

	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
}

// specToMarkdown restates the document verbatim under prose headings, with
// the content tree in a fenced block
func specToMarkdown(spec *models.Spec) (string, error) {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", spec.Metadata.Title))
	md.WriteString(fmt.Sprintf("**Status**: %s\n", spec.Metadata.Status))
	md.WriteString(fmt.Sprintf("**Template**: %s\n", spec.Metadata.Template))
	md.WriteString(fmt.Sprintf("**Created**: %s\n\n", spec.Metadata.CreatedAt.Format("2006-01-02T15:04:05Z07:00")))

	content, err := yaml.Marshal(spec.Content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}

	md.WriteString("## Content\n\n")
	md.WriteString("```yaml\n")
	md.Write(content)
	md.WriteString("```\n")

	return md.String(), nil
}

// SpecToPrompt projects the fields meaningful for the spec's type into
// ordered prose sections. Missing fields render as N/A so downstream
// consumers always see the same skeleton.
func SpecToPrompt(spec *models.Spec) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Task: %s\n\n", spec.Metadata.Title))

	switch spec.Metadata.Template {
	case models.SpecPRD:
		writePRDPrompt(&b, spec)
	case models.SpecRFC:
		writeRFCPrompt(&b, spec)
	case models.SpecADR:
		writeADRPrompt(&b, spec)
	default:
		// No narrative projection for this type yet; fall back to the
		// generic content dump
		content, err := yaml.Marshal(spec.Content)
		if err == nil {
			b.WriteString("## Content\n\n")
			b.Write(content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n---\n")
	b.WriteString(fmt.Sprintf("*Generated from %s spec: %s*\n", spec.Metadata.Template, spec.Metadata.SpecID))
	return b.String()
}

func writePRDPrompt(b *strings.Builder, spec *models.Spec) {
	overview := spec.Section("overview")

	b.WriteString("## Overview\n")
	b.WriteString(fmt.Sprintf("**Problem**: %s\n\n", stringField(overview, "problem")))
	b.WriteString(fmt.Sprintf("**Solution**: %s\n\n", stringField(overview, "solution")))

	b.WriteString("## Functional Requirements\n")
	requirements := spec.Section("requirements")
	functional := listField(requirements, "functional")
	if len(functional) == 0 {
		b.WriteString(notAvailable + "\n")
		return
	}

	for idx, raw := range functional {
		req, _ := raw.(map[string]interface{})
		b.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", idx+1, stringField(req, "title"), stringField(req, "priority")))
		b.WriteString(fmt.Sprintf("   %s\n", stringField(req, "description")))
		if criteria := listField(req, "acceptance_criteria"); len(criteria) > 0 {
			b.WriteString("   Acceptance Criteria:\n")
			for _, ac := range criteria {
				b.WriteString(fmt.Sprintf("   - %v\n", ac))
			}
		}
		b.WriteString("\n")
	}
}

func writeRFCPrompt(b *strings.Builder, spec *models.Spec) {
	summary := spec.Section("summary")

	b.WriteString("## Summary\n")
	b.WriteString(fmt.Sprintf("**Problem**: %s\n", stringField(summary, "problem")))
	b.WriteString(fmt.Sprintf("**Proposed Solution**: %s\n\n", stringField(summary, "proposed_solution")))

	proposal := spec.Section("proposal")
	b.WriteString(fmt.Sprintf("## Detailed Design\n%s\n\n", stringField(proposal, "detailed_design")))
}

func writeADRPrompt(b *strings.Builder, spec *models.Spec) {
	b.WriteString(fmt.Sprintf("## Context\n%s\n\n", topStringField(spec, "context")))
	b.WriteString(fmt.Sprintf("## Decision\n%s\n\n", topStringField(spec, "decision")))

	b.WriteString("## Consequences\n")
	consequences := spec.Section("consequences")
	// Fixed sub-list order regardless of content shape
	wrote := false
	for _, kind := range []struct{ key, label string }{
		{"positive", "Positive"},
		{"negative", "Negative"},
		{"neutral", "Neutral"},
	} {
		items := listField(consequences, kind.key)
		if len(items) == 0 {
			continue
		}
		wrote = true
		b.WriteString(fmt.Sprintf("**%s**:\n", kind.label))
		for _, item := range items {
			b.WriteString(fmt.Sprintf("- %v\n", item))
		}
	}
	if !wrote {
		b.WriteString(notAvailable + "\n")
	}
}

// stringField reads a scalar string from a section, degrading to N/A
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return notAvailable
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return notAvailable
}

func topStringField(spec *models.Spec, key string) string {
	return stringField(spec.Content, key)
}

func listField(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	items, _ := m[key].([]interface{})
	return items
}
