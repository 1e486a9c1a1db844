package export

import (
	"github.com/vanderheijden86/dfmea/pkg/model"
)

// Record is one exported component: a detached copy of a flattened row with
// matrix keys resolved to labels.
type Record struct {
	Name         string          `json:"name"`
	Functions    []string        `json:"functions"`
	FailureModes []string        `json:"failureModes"`
	Matrix       map[string]bool `json:"matrix"`

	// Component is the node's own name (the last path segment).
	Component string `json:"-"`
	Depth     int    `json:"-"`
}

// Snapshot flattens every root in forest order and copies the rows so the
// result can be encoded on another goroutine while the forest keeps
// changing.
//
// Matrix keys are entry IDs in the model. They are resolved against every
// live entry in the forest; keys whose entry was removed are dropped, and
// when two live entries share a label their values are OR-ed.
func Snapshot(roots []*model.ComponentNode) []Record {
	labels := make(map[string]string)
	for _, root := range roots {
		root.Walk(func(n *model.ComponentNode) bool {
			for _, e := range n.Functions {
				labels[e.ID] = e.Label
			}
			for _, e := range n.FailureModes {
				labels[e.ID] = e.Label
			}
			return true
		})
	}

	rows := model.FlattenForest(roots)
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Name:         row.Name,
			Component:    row.Node.Name,
			Depth:        row.Depth,
			Functions:    entryLabels(row.Functions),
			FailureModes: entryLabels(row.FailureModes),
			Matrix:       make(map[string]bool, len(row.Matrix)),
		}
		for id, v := range row.Matrix {
			label, ok := labels[id]
			if !ok {
				continue
			}
			rec.Matrix[label] = rec.Matrix[label] || v
		}
		records = append(records, rec)
	}
	return records
}

func entryLabels(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

// rootGroups splits records into per-root runs.
func rootGroups(records []Record) [][]Record {
	var groups [][]Record
	for i, rec := range records {
		if rec.Depth == 0 || i == 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], rec)
	}
	return groups
}
