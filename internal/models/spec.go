package models

import (
	"strings"
	"time"
)

// SpecTemplate identifies which structural schema a specification follows
type SpecTemplate string

const (
	SpecPRD       SpecTemplate = "prd"
	SpecRFC       SpecTemplate = "rfc"
	SpecADR       SpecTemplate = "adr"
	SpecUserStory SpecTemplate = "user_story"
	SpecAPISpec   SpecTemplate = "api_spec"
)

// SpecTemplates lists every known specification template, in storage
// enumeration order
var SpecTemplates = []SpecTemplate{SpecPRD, SpecRFC, SpecADR, SpecUserStory, SpecAPISpec}

// IsValid reports whether the template tag is one of the known set
func (t SpecTemplate) IsValid() bool {
	for _, known := range SpecTemplates {
		if t == known {
			return true
		}
	}
	return false
}

// SpecStatus tracks a specification through its review lifecycle
type SpecStatus string

const (
	StatusDraft      SpecStatus = "draft"
	StatusReview     SpecStatus = "review"
	StatusApproved   SpecStatus = "approved"
	StatusDeprecated SpecStatus = "deprecated"
)

// SpecMetadata is the fixed header every specification carries
type SpecMetadata struct {
	SpecID    string       `yaml:"spec_id" json:"spec_id"`
	Template  SpecTemplate `yaml:"template" json:"template"`
	Title     string       `yaml:"title" json:"title"`
	Status    SpecStatus   `yaml:"status" json:"status"`
	CreatedAt time.Time    `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time    `yaml:"updated_at" json:"updated_at"`
	Author    string       `yaml:"author,omitempty" json:"author,omitempty"`
	Tags      []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Spec is a structured specification document. Content is an open tree keyed
// by schema-defined section names; its shape depends on Metadata.Template.
type Spec struct {
	Metadata SpecMetadata           `yaml:"metadata" json:"metadata"`
	Content  map[string]interface{} `yaml:"content" json:"content"`

	FilePath string `yaml:"-" json:"-"`
}

// HasTag reports whether the spec carries the given tag (case-insensitive)
func (s *Spec) HasTag(tag string) bool {
	for _, t := range s.Metadata.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Section returns a nested mapping under the given top-level content key,
// or nil when absent or not a mapping
func (s *Spec) Section(key string) map[string]interface{} {
	if s.Content == nil {
		return nil
	}
	section, _ := s.Content[key].(map[string]interface{})
	return section
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (s Spec) FilterValue() string {
	return cleanString(s.Metadata.Title)
}

// Title satisfies the list.Item interface
func (s Spec) Title() string {
	if s.Metadata.Title != "" {
		return cleanString(s.Metadata.Title)
	}
	return cleanString(s.Metadata.SpecID)
}

// Description satisfies the list.Item interface
func (s Spec) Description() string {
	parts := []string{
		string(s.Metadata.Template),
		"Status: " + string(s.Metadata.Status),
	}
	if !s.Metadata.UpdatedAt.IsZero() {
		parts = append(parts, "Updated: "+s.Metadata.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return joinParts(parts)
}
