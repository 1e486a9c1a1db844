package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/dfmea/pkg/export"
)

// ExportPicker is the format chooser opened with "x".
type ExportPicker struct {
	form    *huh.Form
	choice  *export.Format
	aborted bool
	width   int
	height  int
}

// NewExportPicker builds the picker with every export format.
func NewExportPicker() ExportPicker {
	choice := new(export.Format)
	*choice = export.FormatWorkbook

	opts := make([]huh.Option[export.Format], 0, len(export.AllFormats))
	for _, f := range export.AllFormats {
		opts = append(opts, huh.NewOption(f.Label(), f))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[export.Format]().
				Title("Export the whole forest as").
				Options(opts...).
				Value(choice),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)

	return ExportPicker{form: form, choice: choice}
}

// Init starts the embedded form.
func (p ExportPicker) Init() tea.Cmd {
	return p.form.Init()
}

// Update forwards input to the form. Esc aborts.
func (p ExportPicker) Update(msg tea.Msg) (ExportPicker, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		p.aborted = true
		return p, nil
	}
	m, cmd := p.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		p.form = f
	}
	return p, cmd
}

// Done reports whether a format was chosen.
func (p ExportPicker) Done() bool {
	return p.form.State == huh.StateCompleted
}

// Aborted reports whether the picker was dismissed without a choice.
func (p ExportPicker) Aborted() bool {
	return p.aborted || p.form.State == huh.StateAborted
}

// Choice returns the selected format.
func (p ExportPicker) Choice() export.Format {
	return *p.choice
}

// SetSize sets the overlay dimensions
func (p *ExportPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the picker centered in the body area.
func (p ExportPicker) View() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Render(p.form.View())
	if p.width == 0 || p.height == 0 {
		return box
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}
