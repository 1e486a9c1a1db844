package model

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/dfmea/pkg/metrics"
)

// ViewMode selects what the detail pane shows for the selected node.
type ViewMode int

const (
	ViewStructure ViewMode = iota
	ViewFunction
	ViewFailureMode
)

// AllViewModes lists the modes in display order.
var AllViewModes = []ViewMode{ViewStructure, ViewFunction, ViewFailureMode}

// String returns the display name of the mode.
func (v ViewMode) String() string {
	switch v {
	case ViewStructure:
		return "Structure"
	case ViewFunction:
		return "Function"
	case ViewFailureMode:
		return "Failure Mode"
	}
	return fmt.Sprintf("ViewMode(%d)", int(v))
}

// Next returns the following mode, wrapping around.
func (v ViewMode) Next() ViewMode {
	return AllViewModes[(int(v)+1)%len(AllViewModes)]
}

// ParseViewMode accepts "structure", "function", "failure_mode",
// "failure-mode" or "failure mode" (case-insensitive).
func ParseViewMode(s string) (ViewMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "structure", "":
		return ViewStructure, nil
	case "function", "functions":
		return ViewFunction, nil
	case "failure mode", "failure modes", "failuremode":
		return ViewFailureMode, nil
	}
	return ViewStructure, fmt.Errorf("unknown view mode %q", s)
}

// ListKind returns the list that supplies columns in this mode. The bool
// is false for ViewStructure.
func (v ViewMode) ListKind() (ListKind, bool) {
	switch v {
	case ViewFunction:
		return ListFunctions, true
	case ViewFailureMode:
		return ListFailureModes, true
	}
	return 0, false
}

// Projection is what the detail pane renders for one selection and mode.
type Projection struct {
	Mode     ViewMode
	Selected *ComponentNode
	// Columns are the selected node's entries for matrix modes, in list
	// order. Empty in structure mode.
	Columns []Entry
	// Rows is Flatten(selected) for matrix modes.
	Rows []Row
	// Editable is set in structure mode only.
	Editable *Editable
}

// Editable exposes the selected node's lists for direct editing.
type Editable struct {
	Node         *ComponentNode
	Functions    []Entry
	FailureModes []Entry
}

// Project derives the projection for selected in mode. A nil selection
// yields an empty projection.
func Project(selected *ComponentNode, mode ViewMode) Projection {
	defer metrics.Timer(metrics.Project)()

	p := Projection{Mode: mode, Selected: selected}
	if selected == nil {
		return p
	}
	kind, isMatrix := mode.ListKind()
	if !isMatrix {
		p.Editable = &Editable{
			Node:         selected,
			Functions:    selected.Functions,
			FailureModes: selected.FailureModes,
		}
		return p
	}
	p.Columns = selected.List(kind)
	p.Rows = Flatten(selected, "")
	return p
}

// IsMatrix reports whether the projection renders a matrix.
func (p Projection) IsMatrix() bool {
	_, ok := p.Mode.ListKind()
	return ok && p.Selected != nil
}

// Cell returns the value at row r, column c. Out-of-range positions are false.
func (p Projection) Cell(r, c int) bool {
	if r < 0 || r >= len(p.Rows) || c < 0 || c >= len(p.Columns) {
		return false
	}
	return p.Rows[r].Cell(p.Columns[c].ID)
}

// ColumnLabels returns the column labels in order.
func (p Projection) ColumnLabels() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Label
	}
	return out
}
