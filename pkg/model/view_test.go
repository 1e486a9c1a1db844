package model

import "testing"

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ViewMode
		wantErr bool
	}{
		{"Structure", ViewStructure, false},
		{"", ViewStructure, false},
		{"function", ViewFunction, false},
		{"Functions", ViewFunction, false},
		{"failure_mode", ViewFailureMode, false},
		{"Failure-Mode", ViewFailureMode, false},
		{"failure mode", ViewFailureMode, false},
		{"matrix", ViewStructure, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseViewMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseViewMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewMode_Next(t *testing.T) {
	if ViewStructure.Next() != ViewFunction || ViewFunction.Next() != ViewFailureMode ||
		ViewFailureMode.Next() != ViewStructure {
		t.Error("Next should cycle Structure -> Function -> Failure Mode -> Structure")
	}
	if ViewFailureMode.String() != "Failure Mode" {
		t.Errorf("String() = %q", ViewFailureMode.String())
	}
}

func TestProject(t *testing.T) {
	f, a := buildSample(t)
	flow, _ := f.AppendListItem(a, ListFunctions)
	_ = f.SetListItem(a, ListFunctions, 0, "Flow")
	cool, _ := f.AppendListItem(a, ListFunctions)
	_ = f.SetListItem(a, ListFunctions, 1, "Cool")
	leak, _ := f.AppendListItem(a, ListFailureModes)
	_ = f.SetListItem(a, ListFailureModes, 0, "Leak")

	d := a.Subcomponents[0].Subcomponents[0]
	_, _ = f.ToggleMatrixCell(d, cool.ID)
	_, _ = f.ToggleMatrixCell(a, leak.ID)

	t.Run("Structure", func(t *testing.T) {
		p := Project(a, ViewStructure)
		if p.IsMatrix() || len(p.Columns) != 0 || len(p.Rows) != 0 {
			t.Fatalf("structure projection should have no matrix: %+v", p)
		}
		if p.Editable == nil || p.Editable.Node != a || len(p.Editable.Functions) != 2 {
			t.Fatalf("editable = %+v", p.Editable)
		}
	})

	t.Run("Function", func(t *testing.T) {
		p := Project(a, ViewFunction)
		if !p.IsMatrix() {
			t.Fatal("expected matrix")
		}
		labels := p.ColumnLabels()
		if len(labels) != 2 || labels[0] != "Flow" || labels[1] != "Cool" {
			t.Fatalf("columns = %v", labels)
		}
		if len(p.Rows) != 4 {
			t.Fatalf("rows = %d, want 4", len(p.Rows))
		}
		// D is row 2, Cool is column 1.
		for r := range p.Rows {
			for c := range p.Columns {
				want := r == 2 && c == 1
				if got := p.Cell(r, c); got != want {
					t.Errorf("cell(%d,%d) = %v, want %v", r, c, got, want)
				}
			}
		}
		if p.Columns[0].ID != flow.ID {
			t.Error("column IDs should match entry IDs")
		}
	})

	t.Run("FailureMode", func(t *testing.T) {
		p := Project(a, ViewFailureMode)
		if len(p.Columns) != 1 || p.Columns[0].Label != "Leak" {
			t.Fatalf("columns = %v", p.ColumnLabels())
		}
		if !p.Cell(0, 0) || p.Cell(1, 0) {
			t.Error("only the root row relates to Leak")
		}
		if p.Cell(9, 0) || p.Cell(0, 9) || p.Cell(-1, 0) {
			t.Error("out-of-range cells should read false")
		}
	})

	t.Run("NilSelection", func(t *testing.T) {
		p := Project(nil, ViewFunction)
		if p.IsMatrix() || p.Rows != nil || p.Editable != nil {
			t.Errorf("nil selection projection = %+v", p)
		}
	})

	t.Run("SubtreeSelection", func(t *testing.T) {
		b := a.Subcomponents[0]
		p := Project(b, ViewFunction)
		if len(p.Columns) != 0 {
			t.Errorf("B defines no functions, got %v", p.ColumnLabels())
		}
		if len(p.Rows) != 2 || p.Rows[0].Name != "B" || p.Rows[1].Name != "B > D" {
			t.Errorf("rows = %v", rowNames(p.Rows))
		}
	})
}
