package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color palette, resolved once at startup against the terminal
// background
var (
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorError     lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorBorder    lipgloss.Color
)

func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
		return
	case "dark":
		setDarkThemeColors()
		return
	}

	if lipgloss.HasDarkBackground() {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205")
	ColorAccent = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("10")
	ColorError = lipgloss.Color("9")
	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("238")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125")
	ColorAccent = lipgloss.Color("130")
	ColorSuccess = lipgloss.Color("22")
	ColorError = lipgloss.Color("160")
	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("248")
}

var (
	titleStyle   lipgloss.Style
	tabStyle     lipgloss.Style
	activeTab    lipgloss.Style
	statusStyle  lipgloss.Style
	errorStyle   lipgloss.Style
	previewStyle lipgloss.Style
)

func initializeStyles() {
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 2)

	activeTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Padding(0, 2)

	statusStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	errorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	previewStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
}
