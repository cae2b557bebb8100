// ABOUTME: Rendering for the WordBuddy TUI
// ABOUTME: Lays out the language picker, input field, result card and help line
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/wordbuddy/internal/translate"
	"github.com/harperreed/wordbuddy/internal/version"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(40)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 2).
			Width(40)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s v%s", version.Product, version.Version)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLanguages())
	b.WriteString("\n\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString(m.renderResult())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderLanguages renders the picker with the selection highlighted
func (m Model) renderLanguages() string {
	parts := make([]string, 0, len(translate.Languages))
	for i, lang := range translate.Languages {
		if i == m.langIdx {
			style := lipgloss.NewStyle().
				Bold(true).
				Reverse(true).
				Foreground(lipgloss.Color(lang.Color))
			parts = append(parts, style.Render(" "+lang.String()+" "))
			continue
		}
		parts = append(parts, dimStyle.Render(lang.Flag))
	}
	return strings.Join(parts, " ") + "\n" + dimStyle.Render(m.language().Greeting)
}

// renderInput renders the word being typed
func (m Model) renderInput() string {
	text := m.input
	if !m.suggesting {
		text += "█"
	}

	status := ""
	if m.translating {
		status = dimStyle.Render(" translating...")
	}
	return inputStyle.Render(text) + status
}

// renderResult renders the translation card
func (m Model) renderResult() string {
	r := m.result
	lang := m.language()

	speak := "ctrl+s: hear it"
	if m.speaking {
		speak = "speaking..."
	}

	body := fmt.Sprintf("%s  %s\n%s\n\n%s\n%s\n\n%s",
		r.Emoji,
		lipgloss.NewStyle().Bold(true).Render(r.TranslatedText),
		dimStyle.Render(r.Original),
		"Say it: "+r.Phonetic,
		dimStyle.Render(r.PronunciationNote),
		r.FunFact,
	)
	body += "\n\n" + dimStyle.Render(speak)

	return cardStyle.BorderForeground(lipgloss.Color(lang.Color)).Render(body)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return dimStyle.Render("enter:Translate  tab:Language  ctrl+s:Speak  ctrl+n:Suggest  esc:Quit")
}
