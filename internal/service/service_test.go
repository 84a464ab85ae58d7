package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fastkit/fastkit/internal/config"
	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/schema"
	"github.com/fastkit/fastkit/internal/search"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		LibraryDir:  t.TempDir(),
		ListLimit:   50,
		SearchLimit: 10,
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewSeedsBuiltinPrompts(t *testing.T) {
	svc := newTestService(t)

	prompts, err := svc.ListPrompts(context.Background(), search.PromptFilter{})
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(prompts) != 5 {
		t.Fatalf("expected 5 seeded builtins, got %d", len(prompts))
	}

	categories := make(map[string]bool)
	for _, p := range prompts {
		categories[p.Category] = true
	}
	for _, want := range []string{"code_generation", "refactoring", "testing", "debugging", "documentation"} {
		if !categories[want] {
			t.Errorf("missing builtin category %s", want)
		}
	}
}

func TestSeedingIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	// rebuilding over the same directory must not duplicate builtins
	again, err := New(svc.cfg)
	if err != nil {
		t.Fatalf("second New failed: %v", err)
	}
	defer again.Close()

	prompts, err := again.ListPrompts(context.Background(), search.PromptFilter{})
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(prompts) != 5 {
		t.Errorf("expected 5 prompts after reseeding, got %d", len(prompts))
	}
}

func TestCreateAndGetPrompt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePrompt(ctx, CreatePromptInput{
		Name:        "Changelog Writer",
		Description: "Writes changelog entries from commit messages",
		Template:    "Write a changelog entry for: {{.commits}}",
		Variables: []models.VariableDefinition{
			{Name: "commits", Type: models.VariableString, Required: true},
		},
		Tags: []string{"release"},
	})
	if err != nil {
		t.Fatalf("CreatePrompt failed: %v", err)
	}
	if !strings.HasPrefix(created.ID, "custom_") {
		t.Errorf("custom prompt ID must carry the custom_ prefix, got %s", created.ID)
	}
	if created.Category != "custom" {
		t.Errorf("expected category custom, got %s", created.Category)
	}
	if created.Metadata.CreatedAt.IsZero() || !created.Metadata.CreatedAt.Equal(created.Metadata.UpdatedAt) {
		t.Error("timestamps must be set and equal on creation")
	}

	got, stats, err := svc.GetPrompt(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if got.Name != "Changelog Writer" {
		t.Errorf("unexpected name %s", got.Name)
	}
	if stats.TotalUses != 0 {
		t.Errorf("fresh prompt must have zero usage, got %+v", stats)
	}
}

func TestCreatePromptRequiresNameAndTemplate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePrompt(ctx, CreatePromptInput{Template: "x"}); !errors.IsAppError(err) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.CreatePrompt(ctx, CreatePromptInput{Name: "x"}); !errors.IsAppError(err) {
		t.Errorf("expected validation error for missing template, got %v", err)
	}
}

func TestComposeValidatesBeforeRender(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ComposePrompt(ctx, "refactor_code", map[string]interface{}{
		"goal": "hi", // violates min_length 5, and code is missing entirely
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	appErr := errors.GetAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeValidation {
		t.Fatalf("expected validation app error, got %v", err)
	}
	if !strings.Contains(appErr.Details, "Missing required variable: code") {
		t.Errorf("details must list the missing variable, got %q", appErr.Details)
	}
	if !strings.Contains(appErr.Details, "at least 5 characters") {
		t.Errorf("details must list the length violation, got %q", appErr.Details)
	}
}

func TestComposeExpandsTemplate(t *testing.T) {
	svc := newTestService(t)

	comp, err := svc.ComposePrompt(context.Background(), "code_gen_function", map[string]interface{}{
		"language":    "Go",
		"description": "reverse a string",
		"constraints": []interface{}{"no allocation", "handle unicode"},
	})
	if err != nil {
		t.Fatalf("ComposePrompt failed: %v", err)
	}
	if !strings.Contains(comp.Text, "Write a Go function") {
		t.Errorf("interpolation missing: %q", comp.Text)
	}
	if !strings.Contains(comp.Text, "- no allocation") || !strings.Contains(comp.Text, "- handle unicode") {
		t.Errorf("iteration missing: %q", comp.Text)
	}
	if comp.TokenEstimate <= 0 {
		t.Errorf("expected positive token estimate, got %d", comp.TokenEstimate)
	}
	if comp.PromptID != "code_gen_function" {
		t.Errorf("unexpected prompt id %s", comp.PromptID)
	}
}

func TestComposeAppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	comp, err := svc.ComposePrompt(context.Background(), "test_generator", map[string]interface{}{
		"code": "func Add(a, b int) int { return a + b }",
	})
	if err != nil {
		t.Fatalf("ComposePrompt failed: %v", err)
	}
	if !strings.Contains(comp.Text, "using standard library") {
		t.Errorf("default value not applied: %q", comp.Text)
	}
	// code was supplied, framework came from its default
	want := []string{"code", "framework"}
	if len(comp.VariablesUsed) != len(want) {
		t.Fatalf("expected variables used %v, got %v", want, comp.VariablesUsed)
	}
	for i, name := range want {
		if comp.VariablesUsed[i] != name {
			t.Errorf("variables used[%d]: expected %s, got %s", i, name, comp.VariablesUsed[i])
		}
	}
}

func TestPromptCategories(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePrompt(ctx, CreatePromptInput{Name: "n", Template: "t"}); err != nil {
		t.Fatalf("CreatePrompt failed: %v", err)
	}

	categories, err := svc.PromptCategories(ctx)
	if err != nil {
		t.Fatalf("PromptCategories failed: %v", err)
	}
	want := []string{"code_generation", "custom", "debugging", "documentation", "refactoring", "testing"}
	if len(categories) != len(want) {
		t.Fatalf("expected %v, got %v", want, categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("categories[%d]: expected %s, got %s", i, want[i], categories[i])
		}
	}
}

func TestSearchPromptsRanking(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.SearchPrompts(context.Background(), "unit test", 0)
	if err != nil {
		t.Fatalf("SearchPrompts failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	top := results[0]
	if top.Prompt.ID != "test_generator" {
		t.Errorf("expected test_generator first, got %s", top.Prompt.ID)
	}
	if top.Reason != search.ReasonName {
		t.Errorf("dominant signal should be the name, got %q", top.Reason)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results must be sorted by descending score")
		}
	}
}

func TestSearchPromptsNoMatches(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.SearchPrompts(context.Background(), "quantum chromodynamics", 0)
	if err != nil {
		t.Fatalf("SearchPrompts failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("zero-score prompts must be excluded, got %d results", len(results))
	}
}

func TestBrokenAnalyticsDoesNotBlockService(t *testing.T) {
	dir := t.TempDir()
	// A directory squatting on the database path makes sqlite fail to open
	if err := os.MkdirAll(filepath.Join(dir, "analytics.db"), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg := &config.Config{
		LibraryDir:       dir,
		ListLimit:        50,
		SearchLimit:      10,
		AnalyticsEnabled: true,
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("broken usage database must not abort construction: %v", err)
	}
	defer svc.Close()

	if svc.AnalyticsEnabled() {
		t.Error("tracker must degrade to disabled")
	}

	prompt, stats, err := svc.GetPrompt(context.Background(), "code_gen_function")
	if err != nil {
		t.Fatalf("core operations must keep working: %v", err)
	}
	if prompt.ID != "code_gen_function" {
		t.Errorf("unexpected prompt %s", prompt.ID)
	}
	if stats.TotalUses != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}

func TestTrackPromptUsageUnknownPrompt(t *testing.T) {
	svc := newTestService(t)

	err := svc.TrackPromptUsage(context.Background(), "missing", true, 10, 10)
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func validADRContent() map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":    "Use flat files for storage",
			"status":   "accepted",
			"deciders": []interface{}{"core team"},
		},
		"context":  "We need durable storage without operational overhead.",
		"decision": "Store every document as one YAML file.",
		"rationale": map[string]interface{}{
			"factors": []interface{}{"simplicity"},
		},
		"consequences": map[string]interface{}{
			"positive": []interface{}{"diffable history"},
			"negative": []interface{}{"full reload per query"},
		},
	}
}

func TestCreateSpecWithValidContent(t *testing.T) {
	svc := newTestService(t)

	spec, report, err := svc.CreateSpec(context.Background(), CreateSpecInput{
		Template: models.SpecADR,
		Title:    "Use flat files for storage",
		Content:  validADRContent(),
		Author:   "alex",
		Tags:     []string{"storage"},
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}
	if spec.Metadata.SpecID == "" {
		t.Error("spec ID must be generated")
	}
	if spec.Metadata.Status != models.StatusDraft {
		t.Errorf("new specs must start as draft, got %s", spec.Metadata.Status)
	}
	if !report.Valid {
		t.Errorf("expected valid report, got errors %v", report.Errors)
	}
	if report.SchemaStatus != schema.StatusEnforced {
		t.Errorf("adr schema must be enforced, got %s", report.SchemaStatus)
	}
	if report.Completeness != 100 {
		t.Errorf("expected completeness 100, got %v", report.Completeness)
	}
}

func TestCreateSpecStoresInvalidContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	spec, report, err := svc.CreateSpec(ctx, CreateSpecInput{
		Template: models.SpecADR,
		Title:    "Half-written decision",
		Content: map[string]interface{}{
			"context": "Some context.",
		},
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}
	if report.Valid {
		t.Error("incomplete content must report invalid")
	}
	if len(report.Errors) == 0 {
		t.Error("expected validation errors")
	}

	// invalid content is still persisted and retrievable
	if _, err := svc.GetSpec(ctx, spec.Metadata.SpecID); err != nil {
		t.Errorf("invalid spec must still be stored: %v", err)
	}
}

func TestCreateSpecUncheckedTemplate(t *testing.T) {
	svc := newTestService(t)

	_, report, err := svc.CreateSpec(context.Background(), CreateSpecInput{
		Template: models.SpecUserStory,
		Title:    "Login flow",
		Content:  map[string]interface{}{"anything": "goes"},
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}
	if !report.Valid {
		t.Error("unchecked templates accept any shape")
	}
	if report.SchemaStatus != schema.StatusUnchecked {
		t.Errorf("expected unchecked status, got %s", report.SchemaStatus)
	}
	if len(report.Warnings) == 0 {
		t.Error("unchecked validation must carry a warning")
	}
}

func TestCreateSpecRejectsUnknownTemplate(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.CreateSpec(context.Background(), CreateSpecInput{
		Template: "whitepaper",
		Title:    "x",
	})
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestValidateStoredSpec(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	spec, _, err := svc.CreateSpec(ctx, CreateSpecInput{
		Template: models.SpecADR,
		Title:    "Decision",
		Content:  validADRContent(),
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}

	report, err := svc.ValidateSpec(ctx, spec.Metadata.SpecID, false)
	if err != nil {
		t.Fatalf("ValidateSpec failed: %v", err)
	}
	if !report.Valid {
		t.Errorf("expected valid, got errors %v", report.Errors)
	}
}

func TestValidateStrictPromotesWarnings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	spec, _, err := svc.CreateSpec(ctx, CreateSpecInput{
		Template: models.SpecUserStory,
		Title:    "As a user",
		Content:  map[string]interface{}{"story": "I want search"},
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}

	report, err := svc.ValidateSpec(ctx, spec.Metadata.SpecID, false)
	if err != nil {
		t.Fatalf("ValidateSpec failed: %v", err)
	}
	if !report.Valid || len(report.Warnings) == 0 {
		t.Fatalf("expected valid with warnings, got %+v", report)
	}

	strict, err := svc.ValidateSpec(ctx, spec.Metadata.SpecID, true)
	if err != nil {
		t.Fatalf("ValidateSpec failed: %v", err)
	}
	if strict.Valid {
		t.Error("strict mode must fail an unchecked-schema spec")
	}
	if len(strict.Errors) == 0 || len(strict.Warnings) != 0 {
		t.Errorf("expected warnings promoted to errors, got %+v", strict)
	}
}

func TestListSpecsFiltering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, in := range []CreateSpecInput{
		{Template: models.SpecADR, Title: "Storage decision", Tags: []string{"storage"}},
		{Template: models.SpecPRD, Title: "Auth PRD", Tags: []string{"auth"}},
		{Template: models.SpecADR, Title: "Auth decision", Tags: []string{"auth"}},
	} {
		if _, _, err := svc.CreateSpec(ctx, in); err != nil {
			t.Fatalf("CreateSpec failed: %v", err)
		}
	}

	specs, truncated, err := svc.ListSpecs(ctx, search.SpecFilter{Template: "adr", Tags: []string{"auth"}})
	if err != nil {
		t.Fatalf("ListSpecs failed: %v", err)
	}
	if truncated {
		t.Error("no truncation expected")
	}
	if len(specs) != 1 || specs[0].Metadata.Title != "Auth decision" {
		t.Fatalf("expected only the auth ADR, got %d results", len(specs))
	}
}

func TestExportSpecToPrompt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	spec, _, err := svc.CreateSpec(ctx, CreateSpecInput{
		Template: models.SpecADR,
		Title:    "Use flat files",
		Content:  validADRContent(),
	})
	if err != nil {
		t.Fatalf("CreateSpec failed: %v", err)
	}

	text, tokens, err := svc.ExportSpecToPrompt(ctx, spec.Metadata.SpecID)
	if err != nil {
		t.Fatalf("ExportSpecToPrompt failed: %v", err)
	}
	if !strings.Contains(text, "# Task: Use flat files") {
		t.Errorf("missing task heading: %q", text)
	}
	if tokens <= 0 {
		t.Errorf("expected positive token estimate, got %d", tokens)
	}
}

func TestListSpecTemplates(t *testing.T) {
	svc := newTestService(t)

	infos := svc.ListSpecTemplates()
	if len(infos) != 5 {
		t.Fatalf("expected 5 templates, got %d", len(infos))
	}
	byName := make(map[models.SpecTemplate]TemplateInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}
	if byName[models.SpecPRD].SchemaStatus != schema.StatusEnforced {
		t.Error("prd must be enforced")
	}
	if byName[models.SpecUserStory].SchemaStatus != schema.StatusUnchecked {
		t.Error("user_story must be unchecked")
	}
	for _, info := range infos {
		if info.Description == "" {
			t.Errorf("template %s missing description", info.Name)
		}
		if info.DisplayName == "" || info.Version == "" {
			t.Errorf("template %s missing display name or version", info.Name)
		}
	}
}
