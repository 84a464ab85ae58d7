package models

import (
	"strings"
	"time"
)

// PromptTemplate represents a reusable prompt definition stored as a YAML document
type PromptTemplate struct {
	ID          string               `yaml:"id" json:"id"`
	Category    string               `yaml:"category" json:"category"`
	Name        string               `yaml:"name" json:"name"`
	Summary     string               `yaml:"description" json:"description"`
	Version     string               `yaml:"version" json:"version"`
	Metadata    PromptMetadata       `yaml:"metadata" json:"metadata"`
	Variables   []VariableDefinition `yaml:"variables" json:"variables"`
	Template    string               `yaml:"template" json:"template"`
	Examples    []PromptExample      `yaml:"examples,omitempty" json:"examples,omitempty"`
	Settings    *PromptSettings      `yaml:"settings,omitempty" json:"settings,omitempty"`

	FilePath string `yaml:"-" json:"-"` // Path to the file, relative to the library root
}

// PromptMetadata carries authorship and discovery information
type PromptMetadata struct {
	Author            string    `yaml:"author" json:"author"`
	CreatedAt         time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt         time.Time `yaml:"updated_at" json:"updated_at"`
	Tags              []string  `yaml:"tags" json:"tags"`
	ModelOptimizedFor []string  `yaml:"model_optimized_for,omitempty" json:"model_optimized_for,omitempty"`
	AvgSuccessRate    *float64  `yaml:"avg_success_rate,omitempty" json:"avg_success_rate,omitempty"`
}

// VariableType enumerates the supported variable kinds
type VariableType string

const (
	VariableString   VariableType = "string"
	VariableCode     VariableType = "code"
	VariableFilePath VariableType = "file_path"
	VariableList     VariableType = "list"
	VariableBoolean  VariableType = "boolean"
)

// VariableDefinition describes a named placeholder in a prompt template
type VariableDefinition struct {
	Name        string          `yaml:"name" json:"name"`
	Type        VariableType    `yaml:"type" json:"type"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool            `yaml:"required" json:"required"`
	Default     interface{}     `yaml:"default,omitempty" json:"default,omitempty"`
	Validation  *VariableRules  `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// VariableRules defines optional validation constraints for a variable
type VariableRules struct {
	Pattern       string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinLength     int      `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength     int      `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	AllowedValues []string `yaml:"allowed_values,omitempty" json:"allowed_values,omitempty"`
}

// PromptExample is a worked input/output pair attached to a template
type PromptExample struct {
	Input       map[string]interface{} `yaml:"input" json:"input"`
	Output      string                 `yaml:"output" json:"output"`
	Explanation string                 `yaml:"explanation,omitempty" json:"explanation,omitempty"`
}

// PromptSettings carries optional model hints
type PromptSettings struct {
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// HasTag reports whether the template carries the given tag (case-insensitive)
func (p *PromptTemplate) HasTag(tag string) bool {
	for _, t := range p.Metadata.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SearchName exposes the field ranked with the highest search weight
func (p *PromptTemplate) SearchName() string { return p.Name }

// SearchDescription exposes the field ranked with medium search weight
func (p *PromptTemplate) SearchDescription() string { return p.Summary }

// SearchTags exposes the fields ranked with the lowest search weight
func (p *PromptTemplate) SearchTags() []string { return p.Metadata.Tags }

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (p PromptTemplate) FilterValue() string {
	return cleanString(p.Name)
}

// Title satisfies the list.Item interface
func (p PromptTemplate) Title() string {
	if p.Name != "" {
		return cleanString(p.Name)
	}
	return cleanString(p.ID)
}

// Description satisfies the list.Item interface
func (p PromptTemplate) Description() string {
	var parts []string

	if p.Summary != "" {
		summary := cleanString(p.Summary)
		maxSummaryLength := 60
		if len(summary) > maxSummaryLength {
			summary = summary[:maxSummaryLength-3] + "..."
		}
		if summary != "" {
			parts = append(parts, summary)
		}
	}

	if p.Category != "" {
		parts = append(parts, "Category: "+p.Category)
	}

	if len(p.Metadata.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(p.Metadata.Tags, ", "))
	}

	return joinParts(parts)
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	cleaned := ""
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			cleaned += " "
		} else if r >= 32 && r != 127 {
			cleaned += string(r)
		}
	}

	for cleaned != strings.ReplaceAll(cleaned, "  ", " ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return strings.TrimSpace(cleaned)
}

func joinParts(parts []string) string {
	result := ""
	for i, part := range parts {
		cleanPart := cleanString(part)
		if cleanPart != "" {
			if i > 0 {
				result += " • "
			}
			result += cleanPart
		}
	}

	maxTotalLength := 100
	if len(result) > maxTotalLength {
		result = result[:maxTotalLength-3] + "..."
	}

	return cleanString(result)
}
