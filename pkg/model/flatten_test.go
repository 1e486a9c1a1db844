package model

import (
	"testing"
)

// buildSample returns A{B{D}, C}.
func buildSample(t *testing.T) (*Forest, *ComponentNode) {
	t.Helper()
	f := NewForest()
	a := f.AddRoot("A")
	b := f.AddChild(a, "B")
	f.AddChild(b, "D")
	f.AddChild(a, "C")
	return f, a
}

func rowNames(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestFlatten_PreOrder(t *testing.T) {
	_, a := buildSample(t)

	rows := Flatten(a, "")
	want := []string{"A", "A > B", "A > B > D", "A > C"}
	got := rowNames(rows)
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}

	wantDepth := []int{0, 1, 2, 1}
	for i, r := range rows {
		if r.Depth != wantDepth[i] {
			t.Errorf("row %q depth = %d, want %d", r.Name, r.Depth, wantDepth[i])
		}
	}
	if rows[0].Node != a {
		t.Error("first row must be the node itself")
	}
}

func TestFlatten_ParentPath(t *testing.T) {
	_, a := buildSample(t)
	b := a.Subcomponents[0]

	rows := Flatten(b, "A")
	if rows[0].Name != "A > B" || rows[1].Name != "A > B > D" {
		t.Fatalf("names = %v", rowNames(rows))
	}
	if rows[0].Depth != 1 || rows[1].Depth != 2 {
		t.Errorf("depths = %d, %d", rows[0].Depth, rows[1].Depth)
	}
}

func TestFlatten_NilMatrixDefaultsEmpty(t *testing.T) {
	node := &ComponentNode{Name: "Bare"}
	rows := Flatten(node, "")
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Matrix == nil {
		t.Fatal("row matrix should never be nil")
	}
	if rows[0].Cell("anything") {
		t.Error("unset cell should read false")
	}
	if Flatten(nil, "") != nil {
		t.Error("nil node should flatten to nil")
	}
}

func TestFlattenForest(t *testing.T) {
	f, _ := buildSample(t)
	z := f.AddRoot("Z")
	f.AddChild(z, "Y")

	got := rowNames(FlattenForest(f.Roots()))
	want := []string{"A", "A > B", "A > B > D", "A > C", "Z", "Z > Y"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
	if rows := FlattenForest(nil); len(rows) != 0 {
		t.Errorf("empty forest produced %d rows", len(rows))
	}
}
