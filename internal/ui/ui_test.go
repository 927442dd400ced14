package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestConfirmModel(t *testing.T) {
	newModel := func() Model {
		return NewConfirm("Planned changes", []string{"2 assets will be added"})
	}

	t.Run("enter accepts", func(t *testing.T) {
		model, cmd := newModel().Update(tea.KeyMsg{Type: tea.KeyEnter})

		if cmd == nil {
			t.Error("expected a quit command")
		}
		if !model.(Model).Accepted() {
			t.Error("expected the plan to be accepted")
		}
	})

	t.Run("y accepts", func(t *testing.T) {
		model, _ := newModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

		if !model.(Model).Accepted() {
			t.Error("expected the plan to be accepted")
		}
	})

	t.Run("esc aborts", func(t *testing.T) {
		model, cmd := newModel().Update(tea.KeyMsg{Type: tea.KeyEsc})

		if cmd == nil {
			t.Error("expected a quit command")
		}
		if model.(Model).Accepted() {
			t.Error("expected the plan to be rejected")
		}
	})

	t.Run("n aborts", func(t *testing.T) {
		model, _ := newModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

		if model.(Model).Accepted() {
			t.Error("expected the plan to be rejected")
		}
	})

	t.Run("other keys are ignored", func(t *testing.T) {
		model, cmd := newModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

		if cmd != nil {
			t.Error("expected no command")
		}
		if model.(Model).Accepted() {
			t.Error("expected no acceptance")
		}
	})

	t.Run("view renders the summary", func(t *testing.T) {
		view := newModel().View()

		if !strings.Contains(view, "Planned changes") {
			t.Error("expected the title in the view")
		}
		if !strings.Contains(view, "2 assets will be added") {
			t.Error("expected the summary in the view")
		}
	})

	t.Run("view after accepting", func(t *testing.T) {
		model, _ := newModel().Update(tea.KeyMsg{Type: tea.KeyEnter})

		if !strings.Contains(model.View(), "Applying changes") {
			t.Error("expected the accepted view")
		}
	})
}
