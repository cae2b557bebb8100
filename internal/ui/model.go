// ABOUTME: Bubbletea model for the WordBuddy TUI
// ABOUTME: Defines learner state, key handling and async translate/speak/suggest commands
package ui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/wordbuddy/internal/app"
	"github.com/harperreed/wordbuddy/internal/translate"
)

// thinking is shown in the input while a suggestion loads
const thinking = "Thinking..."

// Backend is the part of the app the TUI drives
type Backend interface {
	Translate(ctx context.Context, text string, lang translate.Language) (translate.Result, error)
	Speak(ctx context.Context, text string, lang translate.Language) error
	Suggest(ctx context.Context) string
}

// Model represents the TUI state
type Model struct {
	backend Backend
	ctx     context.Context

	// Input
	input   string
	langIdx int

	// Result
	result *translate.Result
	errMsg string

	// Busy flags
	translating bool
	speaking    bool
	suggesting  bool

	// Dimensions
	width  int
	height int
}

// translatedMsg carries a finished translation
type translatedMsg struct {
	result translate.Result
	err    error
}

// spokeMsg reports the end of speech playback
type spokeMsg struct {
	err error
}

// suggestionMsg carries a suggested word
type suggestionMsg struct {
	word string
}

// Init preloads a suggestion
func (m Model) Init() tea.Cmd {
	if !m.suggesting {
		return nil
	}
	return m.suggestCmd()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case translatedMsg:
		m.translating = false
		if msg.err != nil {
			m.errMsg = userMessage(msg.err, app.MsgTranslateFailed)
			return m, nil
		}
		if msg.result.TranslatedText != "" {
			result := msg.result
			m.result = &result
		}

	case spokeMsg:
		m.speaking = false
		if msg.err != nil {
			m.errMsg = userMessage(msg.err, app.MsgSpeakFailed)
		}

	case suggestionMsg:
		m.suggesting = false
		m.input = msg.word
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		return m.startTranslate()

	case tea.KeyTab:
		m.langIdx = (m.langIdx + 1) % len(translate.Languages)

	case tea.KeyShiftTab:
		m.langIdx = (m.langIdx + len(translate.Languages) - 1) % len(translate.Languages)

	case tea.KeyCtrlS:
		return m.startSpeak()

	case tea.KeyCtrlN:
		if m.suggesting {
			return m, nil
		}
		m.suggesting = true
		m.input = thinking
		return m, m.suggestCmd()

	case tea.KeyBackspace:
		if m.suggesting {
			return m, nil
		}
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}

	case tea.KeySpace:
		m.typeText(" ")

	case tea.KeyRunes:
		m.typeText(string(msg.Runes))
	}

	return m, nil
}

// typeText appends text when the result still passes the input filter
func (m *Model) typeText(text string) {
	if m.suggesting {
		return
	}
	if next, ok := translate.FilterInput(m.input + text); ok {
		m.input = next
	}
}

// startTranslate clears the last result and starts a translation
func (m Model) startTranslate() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	if text == "" || m.translating || m.suggesting {
		return m, nil
	}

	m.translating = true
	m.errMsg = ""
	m.result = nil

	backend, ctx, lang := m.backend, m.ctx, m.language()
	return m, func() tea.Msg {
		result, err := backend.Translate(ctx, text, lang)
		return translatedMsg{result: result, err: err}
	}
}

// startSpeak speaks the current translation
func (m Model) startSpeak() (tea.Model, tea.Cmd) {
	if m.result == nil || m.speaking {
		return m, nil
	}

	m.speaking = true

	backend, ctx, lang, text := m.backend, m.ctx, m.language(), m.result.TranslatedText
	return m, func() tea.Msg {
		return spokeMsg{err: backend.Speak(ctx, text, lang)}
	}
}

func (m Model) suggestCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return suggestionMsg{word: backend.Suggest(ctx)}
	}
}

// language returns the selected language
func (m Model) language() translate.Language {
	return translate.Languages[m.langIdx]
}

// userMessage picks the friendly text for an error
func userMessage(err error, fallback string) string {
	var userErr *app.UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	if errors.Is(err, app.ErrBusy) {
		return ""
	}
	return fallback
}
