package service

import (
	"context"
	"time"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/schema"
	"github.com/fastkit/fastkit/internal/search"
)

// ValidationReport summarizes a spec's standing against its template schema
type ValidationReport struct {
	Valid        bool          `json:"valid"`
	SchemaStatus schema.Status `json:"schema_status"`
	Completeness float64       `json:"completeness"`
	Errors       []string      `json:"errors"`
	Warnings     []string      `json:"warnings"`
}

// TemplateInfo describes one supported spec template
type TemplateInfo struct {
	Name         models.SpecTemplate `json:"name"`
	DisplayName  string              `json:"display_name"`
	Description  string              `json:"description"`
	Version      string              `json:"version"`
	SchemaStatus schema.Status       `json:"schema_status"`
}

// templateCatalogVersion tags the static template catalog; bumped when a
// template's declared shape changes
const templateCatalogVersion = "1.0.0"

var templateDisplayNames = map[models.SpecTemplate]string{
	models.SpecPRD:       "Product Requirements Document",
	models.SpecRFC:       "Request for Comments",
	models.SpecADR:       "Architecture Decision Record",
	models.SpecUserStory: "User Story",
	models.SpecAPISpec:   "API Specification",
}

// CreateSpecInput carries the caller-supplied fields of a new spec
type CreateSpecInput struct {
	Template models.SpecTemplate
	Title    string
	Content  map[string]interface{}
	Author   string
	Tags     []string
}

var templateDescriptions = map[models.SpecTemplate]string{
	models.SpecPRD:       "Product Requirements Document: problem, solution, users and requirements",
	models.SpecRFC:       "Request for Comments: proposal with design detail and alternatives",
	models.SpecADR:       "Architecture Decision Record: context, decision and consequences",
	models.SpecUserStory: "User story with acceptance criteria",
	models.SpecAPISpec:   "API endpoint specification",
}

// CreateSpec stores a new spec with generated ID and draft status, and
// reports its validation standing. Invalid content is stored as-is; the
// report tells the caller what to fix.
func (s *Service) CreateSpec(ctx context.Context, input CreateSpecInput) (*models.Spec, *ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if !input.Template.IsValid() {
		return nil, nil, errors.ValidationError("unknown spec template: " + string(input.Template))
	}
	if input.Title == "" {
		return nil, nil, errors.ValidationError("spec title is required")
	}
	if input.Content == nil {
		input.Content = map[string]interface{}{}
	}

	now := time.Now().UTC()
	spec := &models.Spec{
		Metadata: models.SpecMetadata{
			SpecID:    newToken(),
			Template:  input.Template,
			Title:     input.Title,
			Status:    models.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
			Author:    input.Author,
			Tags:      input.Tags,
		},
		Content: input.Content,
	}

	report := s.validateContent(input.Template, input.Content)
	if err := s.store.SaveSpec(spec); err != nil {
		return nil, nil, err
	}

	s.log.Infow("created spec",
		"spec_id", spec.Metadata.SpecID,
		"template", spec.Metadata.Template,
		"valid", report.Valid)
	return spec, report, nil
}

// GetSpec returns a spec by ID
func (s *Service) GetSpec(ctx context.Context, id string) (*models.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.LoadSpec(id)
}

// ListSpecs reloads the spec collection and returns entries matching the
// filter. The second return reports result truncation.
func (s *Service) ListSpecs(ctx context.Context, filter search.SpecFilter) ([]*models.Spec, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	specs, err := s.store.ListSpecs()
	if err != nil {
		return nil, false, err
	}
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.ListLimit
	}
	matched, truncated := search.FilterSpecs(specs, filter)
	return matched, truncated, nil
}

// ValidateSpec re-validates a stored spec against its template schema. In
// strict mode warnings are promoted to errors, so a spec whose template has
// no enforced schema fails instead of passing with a caveat.
func (s *Service) ValidateSpec(ctx context.Context, id string, strict bool) (*ValidationReport, error) {
	spec, err := s.GetSpec(ctx, id)
	if err != nil {
		return nil, err
	}
	report := s.validateContent(spec.Metadata.Template, spec.Content)
	if strict && len(report.Warnings) > 0 {
		report.Errors = append(report.Errors, report.Warnings...)
		report.Warnings = nil
		report.Valid = false
	}
	return report, nil
}

// ExportSpec renders a stored spec in the requested format
func (s *Service) ExportSpec(ctx context.Context, id string, format renderer.Format) (string, error) {
	spec, err := s.GetSpec(ctx, id)
	if err != nil {
		return "", err
	}
	return renderer.ExportSpec(spec, format)
}

// ExportSpecToPrompt renders a stored spec as an implementation-task
// narrative and estimates its token count
func (s *Service) ExportSpecToPrompt(ctx context.Context, id string) (string, int, error) {
	spec, err := s.GetSpec(ctx, id)
	if err != nil {
		return "", 0, err
	}
	text := renderer.SpecToPrompt(spec)
	return text, renderer.EstimateTokens(text), nil
}

// ListSpecTemplates returns the static template catalog in declaration order
func (s *Service) ListSpecTemplates() []TemplateInfo {
	infos := make([]TemplateInfo, 0, len(models.SpecTemplates))
	for _, tmpl := range models.SpecTemplates {
		sch, _ := s.schemas.Get(tmpl)
		infos = append(infos, TemplateInfo{
			Name:         tmpl,
			DisplayName:  templateDisplayNames[tmpl],
			Description:  templateDescriptions[tmpl],
			Version:      templateCatalogVersion,
			SchemaStatus: sch.Status(),
		})
	}
	return infos
}

func (s *Service) validateContent(tmpl models.SpecTemplate, content map[string]interface{}) *ValidationReport {
	sch, ok := s.schemas.Get(tmpl)
	if !ok {
		return &ValidationReport{
			Valid:        false,
			SchemaStatus: schema.StatusUnchecked,
			Errors:       []string{"unknown spec template: " + string(tmpl)},
		}
	}

	report := &ValidationReport{
		SchemaStatus: sch.Status(),
		Completeness: schema.Completeness(sch, content),
	}

	if sch.Status() == schema.StatusUnchecked {
		// Placeholder schemas accept any shape; surface that openly rather
		// than implying the content was checked
		report.Valid = true
		report.Warnings = append(report.Warnings,
			"template '"+string(tmpl)+"' has no enforced schema; content stored without validation")
		return report
	}

	issues := sch.Validate(content)
	report.Valid = len(issues) == 0
	for _, issue := range issues {
		report.Errors = append(report.Errors, issue.Path+": "+issue.Message)
	}
	return report
}
