package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is an Elm-style confirmation prompt rendering the planned mutations
// and waiting for the operator to apply or abort.
type Model struct {
	keys     keyMap
	title    string
	summary  []string
	accepted bool
	done     bool
}

var _ tea.Model = Model{}

// NewConfirm creates a confirmation model for the given plan summary lines.
func NewConfirm(title string, summary []string) Model {
	return Model{
		keys:    newKeyMap(),
		title:   title,
		summary: summary,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.confirm):
		m.accepted = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.abort):
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.done {
		if m.accepted {
			return styles.ok.Render("Applying changes...") + "\n"
		}
		return styles.warn.Render("Aborted, no mutations applied.") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.title))
	b.WriteString("\n")
	for _, line := range m.summary {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render("enter/y apply • esc/n abort"))
	b.WriteString("\n")
	return b.String()
}

// Accepted reports whether the operator confirmed the plan.
func (m Model) Accepted() bool {
	return m.accepted
}
