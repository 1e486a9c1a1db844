package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/dfmea/pkg/model"
)

// EditPurpose says what a submitted EditModal value is applied to.
type EditPurpose int

const (
	EditAddRoot EditPurpose = iota
	EditAddChild
	EditListItem
)

// EditModal is a single-line text prompt for naming components and list
// entries.
type EditModal struct {
	Purpose EditPurpose
	// Target is the parent for EditAddChild and the owning node for
	// EditListItem.
	Target *model.ComponentNode
	Kind   model.ListKind
	Index  int

	input           textinput.Model
	title           string
	width           int
	height          int
	theme           Theme
	submitRequested bool
	cancelRequested bool
}

// NewAddRootModal prompts for a new root component name.
func NewAddRootModal(theme Theme) EditModal {
	return newEditModal(EditAddRoot, "New root component", "", theme)
}

// NewAddChildModal prompts for a subcomponent name under parent.
func NewAddChildModal(parent *model.ComponentNode, theme Theme) EditModal {
	m := newEditModal(EditAddChild, fmt.Sprintf("New subcomponent of %s", parent.Name), "", theme)
	m.Target = parent
	return m
}

// NewListItemModal edits entry index of node's kind list.
func NewListItemModal(node *model.ComponentNode, kind model.ListKind, index int, theme Theme) EditModal {
	value := ""
	if list := node.List(kind); index >= 0 && index < len(list) {
		value = list[index].Label
	}
	singular := "Function"
	if kind == model.ListFailureModes {
		singular = "Failure mode"
	}
	m := newEditModal(EditListItem, fmt.Sprintf("%s %d of %s", singular, index+1, node.Name), value, theme)
	m.Target = node
	m.Kind = kind
	m.Index = index
	return m
}

func newEditModal(purpose EditPurpose, title, value string, theme Theme) EditModal {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 0 // names are unbounded in the model
	ti.Width = 50
	ti.Placeholder = "name"
	ti.Focus()

	return EditModal{
		Purpose: purpose,
		input:   ti,
		title:   title,
		theme:   theme,
	}
}

// Update handles input for the edit modal
func (m EditModal) Update(msg tea.Msg) (EditModal, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.submitRequested = true
			return m, nil
		case "esc":
			m.cancelRequested = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Value returns the current input.
func (m EditModal) Value() string {
	return m.input.Value()
}

// SetValue replaces the current input.
func (m *EditModal) SetValue(s string) {
	m.input.SetValue(s)
}

// IsSubmitRequested returns true if enter was pressed
func (m EditModal) IsSubmitRequested() bool {
	return m.submitRequested
}

// IsCancelRequested returns true if esc was pressed
func (m EditModal) IsCancelRequested() bool {
	return m.cancelRequested
}

// Reopen clears a pending submit so the prompt keeps accepting input.
func (m *EditModal) Reopen() {
	m.submitRequested = false
}

// SetSize sets the modal dimensions
func (m *EditModal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the edit modal
func (m EditModal) View() string {
	r := m.theme.Renderer

	boxWidth := m.width - 10
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > 70 {
		boxWidth = 70
	}

	headerStyle := r.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary)
	subtextStyle := r.NewStyle().
		Foreground(m.theme.Subtext).
		Italic(true)

	content := headerStyle.Render(m.title) + "\n\n" +
		m.input.View() + "\n\n" +
		subtextStyle.Render("[Enter] Save   [Esc] Cancel")

	boxStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
