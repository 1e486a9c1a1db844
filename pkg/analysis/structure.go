package analysis

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/dfmea/pkg/model"
)

// StructureStats describes the shape of the component forest.
type StructureStats struct {
	Components int `json:"components"`
	Roots      int `json:"roots"`
	Leaves     int `json:"leaves"`
	MaxDepth   int `json:"max_depth"`
	MaxFanOut  int `json:"max_fan_out"`
	// Bare counts components with neither functions nor failure modes.
	Bare int `json:"bare"`
}

// Structure computes StructureStats for the forest rooted at roots.
func Structure(roots []*model.ComponentNode) StructureStats {
	var stats StructureStats

	g := simple.NewDirectedGraph()
	ids := make(map[*model.ComponentNode]int64)
	var nextID int64
	idOf := func(n *model.ComponentNode) int64 {
		if id, ok := ids[n]; ok {
			return id
		}
		id := nextID
		nextID++
		ids[n] = id
		g.AddNode(simple.Node(id))
		return id
	}

	for _, row := range model.FlattenForest(roots) {
		n := row.Node
		from := idOf(n)
		for _, child := range n.Subcomponents {
			if child == nil {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(idOf(child))))
		}
		if row.Depth > stats.MaxDepth {
			stats.MaxDepth = row.Depth
		}
		if len(n.Functions) == 0 && len(n.FailureModes) == 0 {
			stats.Bare++
		}
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		stats.Components++
		if g.To(id).Len() == 0 {
			stats.Roots++
		}
		out := g.From(id).Len()
		if out == 0 {
			stats.Leaves++
		}
		if out > stats.MaxFanOut {
			stats.MaxFanOut = out
		}
	}
	return stats
}
