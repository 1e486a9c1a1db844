package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/dfmea/pkg/model"
)

// TreeModel is the component tree pane: every root flattened in forest
// order, one line per component, indented by depth.
type TreeModel struct {
	rows     []model.Row
	cursor   int
	offset   int
	width    int
	height   int
	theme    Theme
	selected *model.ComponentNode
}

// NewTreeModel creates an empty tree pane.
func NewTreeModel(theme Theme) TreeModel {
	return TreeModel{theme: theme}
}

// SetRows replaces the rows and moves the cursor onto the selected node
// when it is visible.
func (t *TreeModel) SetRows(rows []model.Row, selected *model.ComponentNode) {
	t.rows = rows
	t.selected = selected
	for i, r := range rows {
		if r.Node == selected {
			t.cursor = i
			break
		}
	}
	t.clamp()
}

// SetSize sets the pane's inner dimensions.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.clamp()
}

// Len returns the number of rows.
func (t TreeModel) Len() int {
	return len(t.rows)
}

// Cursor returns the cursor row index.
func (t TreeModel) Cursor() int {
	return t.cursor
}

// Current returns the node under the cursor, or nil for an empty tree.
func (t TreeModel) Current() *model.ComponentNode {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return nil
	}
	return t.rows[t.cursor].Node
}

// MoveBy moves the cursor by delta rows, stopping at the ends.
func (t *TreeModel) MoveBy(delta int) {
	t.cursor += delta
	t.clamp()
}

// MoveTo moves the cursor to row i; negative i counts from the end.
func (t *TreeModel) MoveTo(i int) {
	if i < 0 {
		i = len(t.rows) + i
	}
	t.cursor = i
	t.clamp()
}

func (t *TreeModel) clamp() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.height <= 0 {
		t.offset = 0
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// View renders the visible window of rows. focused highlights the cursor.
func (t TreeModel) View(focused bool) string {
	if len(t.rows) == 0 {
		return t.theme.MutedText.Render("No components.\nPress a to add a root.")
	}

	end := len(t.rows)
	if t.height > 0 && t.offset+t.height < end {
		end = t.offset + t.height
	}

	lines := make([]string, 0, end-t.offset)
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderRow(i, focused))
	}
	return strings.Join(lines, "\n")
}

func (t TreeModel) renderRow(i int, focused bool) string {
	row := t.rows[i]
	node := row.Node

	marker := "  "
	if node == t.selected {
		marker = "▸ "
	}
	counts := fmt.Sprintf(" %d/%d", len(node.Functions), len(node.FailureModes))
	indent := strings.Repeat("  ", row.Depth)

	nameWidth := t.width - lipgloss.Width(indent) - lipgloss.Width(marker) - lipgloss.Width(counts)
	if t.width <= 0 {
		nameWidth = len(node.Name) + 1
	}
	name := padRight(node.Name, nameWidth)

	var nameStyled string
	switch {
	case i == t.cursor && focused:
		nameStyled = t.theme.Selected.Render(marker + name)
	case node == t.selected:
		nameStyled = t.theme.PrimaryBold.Render(marker + name)
	default:
		nameStyled = t.theme.Base.Render(marker + name)
	}
	return indent + nameStyled + t.theme.MutedText.Render(counts)
}
