package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/dfmea/pkg/model"
)

// itemRef addresses one entry of the selected node in the structure editor.
type itemRef struct {
	Kind  model.ListKind
	Index int
}

// structureItems lists the editable entries in display order: functions
// first, then failure modes.
func structureItems(p model.Projection) []itemRef {
	if p.Editable == nil {
		return nil
	}
	items := make([]itemRef, 0, len(p.Editable.Functions)+len(p.Editable.FailureModes))
	for i := range p.Editable.Functions {
		items = append(items, itemRef{Kind: model.ListFunctions, Index: i})
	}
	for i := range p.Editable.FailureModes {
		items = append(items, itemRef{Kind: model.ListFailureModes, Index: i})
	}
	return items
}

func (m Model) renderDetail(width, height int) string {
	p := m.projection
	if p.Selected == nil {
		return m.theme.MutedText.Render("No component selected.\nPress a to add a root component.")
	}
	if p.IsMatrix() {
		return m.renderMatrix(width, height)
	}
	return m.renderStructure(width, height)
}

func (m Model) renderStructure(width, height int) string {
	t := m.theme
	p := m.projection
	node := p.Selected
	focused := m.focused == focusDetail

	var lines []string
	lines = append(lines, t.PrimaryBold.Render(truncate("Component: "+m.selectedPath(), width)))
	lines = append(lines, t.MutedText.Render(fmt.Sprintf("%d subcomponents  ·  c add subcomponent", len(node.Subcomponents))))

	flat := 0
	section := func(title string, entries []model.Entry, addKey string) {
		lines = append(lines, "", t.SecondaryText.Render(fmt.Sprintf("%s (%d)", title, len(entries))))
		if len(entries) == 0 {
			lines = append(lines, t.MutedText.Render("  none · "+addKey+" add"))
			return
		}
		for i, e := range entries {
			line := padRight(fmt.Sprintf("  %d. %s", i+1, displayLabel(e.Label)), width)
			if focused && flat == m.itemCursor {
				line = t.Selected.Render(line)
			} else {
				line = t.Base.Render(line)
			}
			lines = append(lines, line)
			flat++
		}
	}
	section("Functions", p.Editable.Functions, "f")
	section("Failure Modes", p.Editable.FailureModes, "m")

	return clipLines(lines, height, m.itemCursorLine())
}

// itemCursorLine maps the structure cursor to its rendered line, for
// scrolling.
func (m Model) itemCursorLine() int {
	fn := 0
	if m.projection.Editable != nil {
		fn = len(m.projection.Editable.Functions)
	}
	// Two header lines, a blank and a section title before the first item.
	line := 4 + m.itemCursor
	if m.itemCursor >= fn {
		line += 2
		if fn == 0 {
			line++
		}
	}
	return line
}

func (m Model) renderMatrix(width, height int) string {
	t := m.theme
	p := m.projection
	focused := m.focused == focusDetail
	noun := strings.ToLower(p.Mode.String()) + "s"

	header := t.PrimaryBold.Render(truncate(fmt.Sprintf("%s matrix: %s", p.Mode, m.selectedPath()), width))
	if len(p.Columns) == 0 {
		key := "f"
		if p.Mode == model.ViewFailureMode {
			key = "m"
		}
		return header + "\n\n" + t.MutedText.Render(fmt.Sprintf("No %s defined for %s.\nPress %s to add one.", noun, p.Selected.Name, key))
	}

	nameW := width / 3
	if nameW > 32 {
		nameW = 32
	}
	if nameW < 8 {
		nameW = 8
	}
	colW := 12
	avail := width - nameW
	visibleCols := avail / colW
	if visibleCols < 1 {
		visibleCols = 1
	}
	first := 0
	if m.colCursor >= visibleCols {
		first = m.colCursor - visibleCols + 1
	}
	last := first + visibleCols
	if last > len(p.Columns) {
		last = len(p.Columns)
	}

	var colHeader strings.Builder
	colHeader.WriteString(padRight("", nameW))
	for c := first; c < last; c++ {
		label := padRight(" "+displayLabel(p.Columns[c].Label), colW)
		if focused && c == m.colCursor {
			label = t.PrimaryBold.Render(label)
		} else {
			label = t.SecondaryText.Render(label)
		}
		colHeader.WriteString(label)
	}

	rows := make([]string, 0, len(p.Rows))
	for r, row := range p.Rows {
		var b strings.Builder
		name := padRight(strings.Repeat(" ", 2*row.Depth)+row.Node.Name, nameW)
		if focused && r == m.rowCursor {
			name = t.PrimaryBold.Render(name)
		} else {
			name = t.Base.Render(name)
		}
		b.WriteString(name)
		for c := first; c < last; c++ {
			mark, style := "·", t.CellOff
			if p.Cell(r, c) {
				mark, style = "✓", t.CellOn
			}
			cell := padRight("  "+mark, colW)
			if focused && r == m.rowCursor && c == m.colCursor {
				style = t.CellCursor
			}
			b.WriteString(style.Render(cell))
		}
		rows = append(rows, b.String())
	}

	footer := t.MutedText.Render(truncate(m.coverage.Summary(), width))
	bodyHeight := height - 4
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := clipLines(rows, bodyHeight, m.rowCursor)
	return strings.Join([]string{header, "", colHeader.String(), body, footer}, "\n")
}

// clipLines keeps a window of at most height lines that contains cursor.
func clipLines(lines []string, height, cursor int) string {
	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return strings.Join(lines[start:start+height], "\n")
}

func (m Model) selectedPath() string {
	sel := m.projection.Selected
	for _, r := range m.treeRows {
		if r.Node == sel {
			return r.Name
		}
	}
	if sel != nil {
		return sel.Name
	}
	return ""
}
