// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the WordBuddy UI
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/wordbuddy/internal/translate"
)

// NewModel creates a new TUI model. word pre-fills the input; when empty a
// suggestion is fetched on start.
func NewModel(ctx context.Context, backend Backend, word string, langIdx int) Model {
	if langIdx < 0 || langIdx >= len(translate.Languages) {
		langIdx = 0
	}

	m := Model{
		backend: backend,
		ctx:     ctx,
		input:   word,
		langIdx: langIdx,
	}
	if word == "" {
		m.input = thinking
		m.suggesting = true
	}
	return m
}

// Run creates the TUI program
func Run(ctx context.Context, backend Backend, word string, langIdx int) *tea.Program {
	return tea.NewProgram(NewModel(ctx, backend, word, langIdx), tea.WithAltScreen(), tea.WithContext(ctx))
}
