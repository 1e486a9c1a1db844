package model

import (
	"testing"

	"pgregory.net/rapid"
)

// genForest builds a random forest through the public mutators only.
func genForest(t *rapid.T) *Forest {
	f := NewForest()
	var nodes []*ComponentNode
	steps := rapid.IntRange(1, 30).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		name := rapid.StringMatching(`[A-Za-z][A-Za-z0-9]{0,6}`).Draw(t, "name")
		if len(nodes) == 0 || rapid.IntRange(0, 4).Draw(t, "rootChance") == 0 {
			nodes = append(nodes, f.AddRoot(name))
			continue
		}
		parent := nodes[rapid.IntRange(0, len(nodes)-1).Draw(t, "parent")]
		nodes = append(nodes, f.AddChild(parent, name))
	}
	return f
}

func countNodes(n *ComponentNode) int {
	total := 1
	for _, sub := range n.Subcomponents {
		total += countNodes(sub)
	}
	return total
}

func TestProperty_AddRootGrowsByOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genForest(t)
		before := f.Len()
		name := rapid.StringMatching(`\s*[A-Za-z]+\s*`).Draw(t, "name")
		node := f.AddRoot(name)
		if f.Len() != before+1 {
			t.Fatalf("len %d -> %d", before, f.Len())
		}
		if len(node.Functions)+len(node.FailureModes)+len(node.Subcomponents)+len(node.Matrix) != 0 {
			t.Fatalf("new root not empty: %+v", node)
		}
	})
}

func TestProperty_BlankRootIsNoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genForest(t)
		before, rev := f.Len(), f.Revision()
		name := rapid.StringMatching(`[ \t\n]{0,4}`).Draw(t, "blank")
		if f.AddRoot(name) != nil || f.Len() != before || f.Revision() != rev {
			t.Fatalf("blank name %q changed the forest", name)
		}
	})
}

func TestProperty_FlattenCountAndHead(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genForest(t)
		for _, root := range f.Roots() {
			root.Walk(func(n *ComponentNode) bool {
				rows := Flatten(n, "")
				if rows[0].Node != n {
					t.Fatalf("first row of %q is %q", n.Name, rows[0].Name)
				}
				want := 1
				for _, sub := range n.Subcomponents {
					want += len(Flatten(sub, ""))
				}
				if len(rows) != want || len(rows) != countNodes(n) {
					t.Fatalf("flatten(%q) = %d rows, want %d", n.Name, len(rows), want)
				}
				return true
			})
		}
	})
}

func TestProperty_ParentPrecedesDescendants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genForest(t)
		rows := FlattenForest(f.Roots())
		pos := make(map[*ComponentNode]int, len(rows))
		for i, r := range rows {
			pos[r.Node] = i
		}
		for _, r := range rows {
			for _, sub := range r.Node.Subcomponents {
				if pos[sub] <= pos[r.Node] {
					t.Fatalf("%q appears before its parent", sub.Name)
				}
			}
			for i := 1; i < len(r.Node.Subcomponents); i++ {
				if pos[r.Node.Subcomponents[i]] <= pos[r.Node.Subcomponents[i-1]] {
					t.Fatalf("siblings of %q out of insertion order", r.Name)
				}
			}
		}
	})
}

func TestProperty_ToggleIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := NewComponentNode("X")
		f := NewForest()
		key := rapid.String().Draw(t, "key")
		if rapid.Bool().Draw(t, "preset") {
			n.Matrix[key] = rapid.Bool().Draw(t, "value")
		}
		orig := n.Matrix[key]
		_, _ = f.ToggleMatrixCell(n, key)
		if n.Matrix[key] == orig {
			t.Fatal("toggle did not flip")
		}
		_, _ = f.ToggleMatrixCell(n, key)
		if n.Matrix[key] != orig {
			t.Fatal("double toggle did not restore")
		}
	})
}

func TestProperty_RemoveShifts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := NewForest()
		n := f.AddRoot("X")
		kind := ListKind(rapid.IntRange(0, 1).Draw(t, "kind"))
		size := rapid.IntRange(1, 10).Draw(t, "size")
		for i := 0; i < size; i++ {
			_, _ = f.AppendListItem(n, kind)
		}
		idx := rapid.IntRange(0, size-1).Draw(t, "idx")
		before := append([]Entry{}, n.List(kind)...)

		if err := f.RemoveListItem(n, kind, idx); err != nil {
			t.Fatal(err)
		}
		after := n.List(kind)
		if len(after) != size-1 {
			t.Fatalf("len %d -> %d", size, len(after))
		}
		if idx+1 < size && after[idx] != before[idx+1] {
			t.Fatalf("index %d holds %+v, want %+v", idx, after[idx], before[idx+1])
		}
	})
}
