package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.InitLayout(); err != nil {
		t.Fatalf("Failed to init layout: %v", err)
	}
	return store
}

func testPrompt(id string) *models.PromptTemplate {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.PromptTemplate{
		ID:       id,
		Category: "testing",
		Name:     "Unit Test Generator",
		Summary:  "Generates unit tests for a function",
		Version:  "1.0.0",
		Metadata: models.PromptMetadata{
			Author:    "user",
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"testing", "custom"},
		},
		Variables: []models.VariableDefinition{
			{Name: "code", Type: models.VariableCode, Required: true},
			{Name: "framework", Type: models.VariableString, Required: false, Default: "testing"},
		},
		Template: "Write tests for:\n{{.code}}\nusing {{.framework}}",
	}
}

func TestInitLayoutIdempotent(t *testing.T) {
	store := newTestStore(t)

	// Calling again on existing directories must not fail
	if err := store.InitLayout(); err != nil {
		t.Fatalf("Second InitLayout failed: %v", err)
	}

	for _, dir := range []string{
		"prompts/custom",
		"prompts/builtin/testing",
		"specs/prd",
		"specs/user_stories",
		"specs/api_specs",
	} {
		if _, err := os.Stat(filepath.Join(store.BaseDir(), dir)); err != nil {
			t.Errorf("Expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestPromptRoundTrip(t *testing.T) {
	store := newTestStore(t)

	original := testPrompt("custom_abc123")
	if err := store.SavePrompt(original); err != nil {
		t.Fatalf("Failed to save prompt: %v", err)
	}

	loaded, err := store.LoadPrompt("custom_abc123")
	if err != nil {
		t.Fatalf("Failed to load prompt: %v", err)
	}

	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("Round-trip mismatch:\n got: %+v\nwant: %+v", loaded, original)
	}
	if !loaded.Metadata.UpdatedAt.Equal(loaded.Metadata.CreatedAt) {
		t.Errorf("Expected updated_at == created_at at creation time")
	}
}

func TestLoadPromptNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadPrompt("missing_id")
	if err == nil {
		t.Fatal("Expected error for missing prompt")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("Expected NOT_FOUND error, got %v", err)
	}
}

func TestLoadPromptCorruptFileIsNotMaskedAsNotFound(t *testing.T) {
	store := newTestStore(t)

	badPath := filepath.Join(store.BaseDir(), "prompts", "custom", "custom_bad.yaml")
	if err := os.WriteFile(badPath, []byte("{{{not yaml: ["), 0644); err != nil {
		t.Fatalf("Failed to write malformed file: %v", err)
	}

	_, err := store.LoadPrompt("custom_bad")
	if err == nil {
		t.Fatal("Expected error for corrupt prompt file")
	}
	if errors.IsNotFound(err) {
		t.Fatal("Corrupt file for an existing id must not be reported as not found")
	}
	if appErr := errors.GetAppError(err); appErr.Code != errors.ErrCodeFileCorrupted {
		t.Errorf("Expected FILE_CORRUPTED, got %s", appErr.Code)
	}
}

func TestSpecRoundTripAllTypes(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, tmpl := range models.SpecTemplates {
		spec := &models.Spec{
			Metadata: models.SpecMetadata{
				SpecID:    "spec_" + string(tmpl),
				Template:  tmpl,
				Title:     "Test " + string(tmpl),
				Status:    models.StatusDraft,
				CreatedAt: now,
				UpdatedAt: now,
				Tags:      []string{"test"},
			},
			Content: map[string]interface{}{
				"context":  "some context",
				"decision": "some decision",
				"nested": map[string]interface{}{
					"items": []interface{}{"a", "b"},
				},
			},
		}

		if err := store.SaveSpec(spec); err != nil {
			t.Fatalf("Failed to save %s spec: %v", tmpl, err)
		}

		loaded, err := store.LoadSpec(spec.Metadata.SpecID)
		if err != nil {
			t.Fatalf("Failed to load %s spec: %v", tmpl, err)
		}
		if !reflect.DeepEqual(loaded, spec) {
			t.Errorf("%s round-trip mismatch:\n got: %+v\nwant: %+v", tmpl, loaded, spec)
		}
	}
}

func TestListPromptsSkipsMalformedFiles(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		if err := store.SavePrompt(testPrompt(id)); err != nil {
			t.Fatalf("Failed to save prompt %s: %v", id, err)
		}
	}

	// One unparseable file must not abort the collection listing
	badPath := filepath.Join(store.BaseDir(), "prompts", "custom", "broken.yaml")
	if err := os.WriteFile(badPath, []byte("{{{not yaml: ["), 0644); err != nil {
		t.Fatalf("Failed to write malformed file: %v", err)
	}

	prompts, err := store.ListPrompts()
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(prompts) != 5 {
		t.Errorf("Expected 5 prompts, got %d", len(prompts))
	}
}

func TestListSpecsSkipsMalformedFiles(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	spec := &models.Spec{
		Metadata: models.SpecMetadata{
			SpecID:    "ok1",
			Template:  models.SpecADR,
			Title:     "Keep me",
			Status:    models.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Content: map[string]interface{}{"context": "c"},
	}
	if err := store.SaveSpec(spec); err != nil {
		t.Fatalf("Failed to save spec: %v", err)
	}

	badPath := filepath.Join(store.BaseDir(), "specs", "adr", "junk.yaml")
	if err := os.WriteFile(badPath, []byte(":\n\t- bad"), 0644); err != nil {
		t.Fatalf("Failed to write malformed file: %v", err)
	}

	specs, err := store.ListSpecs()
	if err != nil {
		t.Fatalf("ListSpecs failed: %v", err)
	}
	if len(specs) != 1 {
		t.Errorf("Expected 1 spec, got %d", len(specs))
	}
}

func TestSaveOverwritesUnconditionally(t *testing.T) {
	store := newTestStore(t)

	p := testPrompt("custom_over")
	if err := store.SavePrompt(p); err != nil {
		t.Fatalf("Failed to save prompt: %v", err)
	}

	p.Summary = "Rewritten summary"
	if err := store.SavePrompt(p); err != nil {
		t.Fatalf("Failed to overwrite prompt: %v", err)
	}

	loaded, err := store.LoadPrompt("custom_over")
	if err != nil {
		t.Fatalf("Failed to load prompt: %v", err)
	}
	if loaded.Summary != "Rewritten summary" {
		t.Errorf("Expected overwritten summary, got %q", loaded.Summary)
	}
}
