// Package ui implements the interactive terminal browser for the prompt
// library and the spec collection
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/service"
)

// createGlamourRenderer creates a glamour renderer with contrast handling
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	var styleOption glamour.TermRendererOption
	if lipgloss.HasDarkBackground() {
		styleOption = glamour.WithStandardStyle("dark")
	} else {
		styleOption = glamour.WithStandardStyle("light")
	}
	if profile == termenv.Ascii {
		styleOption = glamour.WithAutoStyle()
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

type tab int

const (
	tabPrompts tab = iota
	tabSpecs
)

type viewMode int

const (
	modeBrowse viewMode = iota
	modePreview
)

type loadCompleteMsg struct {
	prompts []*models.PromptTemplate
	specs   []*models.Spec
	err     error
}

type previewMsg struct {
	content string
	err     error
}

// loadCmd reloads both document families from disk
func loadCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		prompts, promptErr := svc.ListPrompts(ctx, search.PromptFilter{})
		specs, _, specErr := svc.ListSpecs(ctx, search.SpecFilter{})

		err := promptErr
		if err == nil {
			err = specErr
		}
		return loadCompleteMsg{prompts: prompts, specs: specs, err: err}
	}
}

// Model is the root bubbletea model
type Model struct {
	service *service.Service

	activeTab  tab
	mode       viewMode
	promptList list.Model
	specList   list.Model
	preview    viewport.Model
	markdown   *glamour.TermRenderer

	width  int
	height int
	status string
	err    error
}

type keyMap struct {
	Tab    key.Binding
	Enter  key.Binding
	Back   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// NewModel builds the root model
func NewModel(svc *service.Service) *Model {
	initializeColors()
	initializeStyles()

	delegate := list.NewDefaultDelegate()
	promptList := list.New(nil, delegate, 0, 0)
	promptList.Title = "Prompts"
	promptList.SetShowHelp(false)

	specList := list.New(nil, delegate, 0, 0)
	specList.Title = "Specs"
	specList.SetShowHelp(false)

	markdown, _ := createGlamourRenderer(100)

	return &Model{
		service:    svc,
		promptList: promptList,
		specList:   specList,
		preview:    viewport.New(0, 0),
		markdown:   markdown,
		status:     "Loading library...",
	}
}

func (m *Model) Init() tea.Cmd {
	return loadCmd(m.service)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 4
		m.promptList.SetSize(m.width, listHeight)
		m.specList.SetSize(m.width, listHeight)
		m.preview.Width = m.width - 4
		m.preview.Height = m.height - 4
		return m, nil

	case loadCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		promptItems := make([]list.Item, len(msg.prompts))
		for i, p := range msg.prompts {
			promptItems[i] = *p
		}
		specItems := make([]list.Item, len(msg.specs))
		for i, s := range msg.specs {
			specItems[i] = *s
		}
		m.promptList.SetItems(promptItems)
		m.specList.SetItems(specItems)
		m.status = fmt.Sprintf("%d prompts, %d specs", len(msg.prompts), len(msg.specs))
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = modePreview
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
		return m, nil

	case tea.KeyMsg:
		// Don't steal keys while the list filter input is active
		if m.mode == modeBrowse && m.currentList().FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			if m.mode == modeBrowse {
				if m.activeTab == tabPrompts {
					m.activeTab = tabSpecs
				} else {
					m.activeTab = tabPrompts
				}
			}
			return m, nil
		case key.Matches(msg, keys.Reload):
			if m.mode == modeBrowse {
				m.status = "Reloading..."
				return m, loadCmd(m.service)
			}
		case key.Matches(msg, keys.Enter):
			if m.mode == modeBrowse {
				return m, m.previewSelectedCmd()
			}
		case key.Matches(msg, keys.Back):
			if m.mode == modePreview {
				m.mode = modeBrowse
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modePreview:
		m.preview, cmd = m.preview.Update(msg)
	default:
		if m.activeTab == tabPrompts {
			m.promptList, cmd = m.promptList.Update(msg)
		} else {
			m.specList, cmd = m.specList.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) currentList() *list.Model {
	if m.activeTab == tabSpecs {
		return &m.specList
	}
	return &m.promptList
}

// previewSelectedCmd renders the selected document as markdown
func (m *Model) previewSelectedCmd() tea.Cmd {
	if m.activeTab == tabPrompts {
		item, ok := m.promptList.SelectedItem().(models.PromptTemplate)
		if !ok {
			return nil
		}
		return func() tea.Msg {
			content, err := m.renderMarkdown(promptMarkdown(&item))
			return previewMsg{content: content, err: err}
		}
	}

	item, ok := m.specList.SelectedItem().(models.Spec)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		raw, err := m.service.ExportSpec(context.Background(), item.Metadata.SpecID, renderer.FormatMarkdown)
		if err != nil {
			return previewMsg{err: err}
		}
		content, err := m.renderMarkdown(raw)
		return previewMsg{content: content, err: err}
	}
}

func (m *Model) renderMarkdown(raw string) (string, error) {
	if m.markdown == nil {
		return raw, nil
	}
	return m.markdown.Render(raw)
}

// promptMarkdown formats a prompt template as a markdown document
func promptMarkdown(p *models.PromptTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Summary)
	}
	fmt.Fprintf(&b, "**ID:** `%s`  \n**Category:** %s\n\n", p.ID, p.Category)
	if len(p.Metadata.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(p.Metadata.Tags, ", "))
	}
	if len(p.Variables) > 0 {
		b.WriteString("## Variables\n\n")
		for _, v := range p.Variables {
			required := ""
			if v.Required {
				required = " *(required)*"
			}
			fmt.Fprintf(&b, "- `%s` (%s)%s: %s\n", v.Name, v.Type, required, v.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Template\n\n```\n")
	b.WriteString(p.Template)
	b.WriteString("\n```\n")
	return b.String()
}

func (m *Model) View() string {
	if m.mode == modePreview {
		help := statusStyle.Render("esc back • q quit • ↑/↓ scroll")
		return previewStyle.Render(m.preview.View()) + "\n" + help
	}

	promptsTab := tabStyle.Render("Prompts")
	specsTab := tabStyle.Render("Specs")
	if m.activeTab == tabPrompts {
		promptsTab = activeTab.Render("Prompts")
	} else {
		specsTab = activeTab.Render("Specs")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("fast-kit"), promptsTab, specsTab)

	body := m.currentList().View()

	footer := statusStyle.Render(m.status + " • tab switch • enter preview • / filter • r reload • q quit")
	if m.err != nil {
		footer = errorStyle.Render("Error: " + m.err.Error())
	}

	return header + "\n" + body + "\n" + footer
}
