package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastkit/fastkit/internal/config"
	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/service"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := &config.Config{
		LibraryDir:  t.TempDir(),
		ListLimit:   50,
		SearchLimit: 10,
	}
	svc, err := service.New(cfg)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return NewModel(svc)
}

func TestPromptMarkdown(t *testing.T) {
	p := &models.PromptTemplate{
		ID:       "custom_abc",
		Name:     "Release Notes",
		Summary:  "Writes release notes",
		Category: "custom",
		Template: "Summarize: {{.changes}}",
		Variables: []models.VariableDefinition{
			{Name: "changes", Type: models.VariableString, Required: true, Description: "The change list"},
		},
	}

	md := promptMarkdown(p)
	for _, want := range []string{
		"# Release Notes",
		"`custom_abc`",
		"`changes` (string) *(required)*",
		"Summarize: {{.changes}}",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(t)

	if m.activeTab != tabPrompts {
		t.Fatal("browser must start on the prompts tab")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(*Model)
	if m.activeTab != tabSpecs {
		t.Error("tab key should switch to specs")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(*Model)
	if m.activeTab != tabPrompts {
		t.Error("tab key should switch back to prompts")
	}
}

func TestLoadCompletePopulatesLists(t *testing.T) {
	m := newTestModel(t)

	msg := loadCmd(m.service)()
	loaded, ok := msg.(loadCompleteMsg)
	if !ok {
		t.Fatalf("unexpected message type %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("load failed: %v", loaded.err)
	}
	if len(loaded.prompts) != 5 {
		t.Errorf("expected 5 seeded prompts, got %d", len(loaded.prompts))
	}

	updated, _ := m.Update(loaded)
	m = updated.(*Model)
	if len(m.promptList.Items()) != 5 {
		t.Errorf("prompt list not populated, got %d items", len(m.promptList.Items()))
	}
	if !strings.Contains(m.status, "5 prompts") {
		t.Errorf("status not updated: %q", m.status)
	}
}
