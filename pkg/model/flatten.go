package model

import (
	"strings"

	"github.com/vanderheijden86/dfmea/pkg/metrics"
)

// Row is the flattened view of one node: its qualified path plus the data
// the matrix and exporters read. Node points back at the live node so
// callers can route mutations to it.
type Row struct {
	Node         *ComponentNode
	Name         string
	Depth        int
	Functions    []Entry
	FailureModes []Entry
	Matrix       map[string]bool
}

// Cell returns the matrix value for key, false when unset.
func (r Row) Cell(key string) bool {
	return r.Matrix[key]
}

// QualifiedName joins parentPath and name with PathSeparator.
func QualifiedName(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + PathSeparator + name
}

// Flatten lists node and its descendants in pre-order: the node first, then
// each subcomponent's subtree in insertion order.
func Flatten(node *ComponentNode, parentPath string) []Row {
	if node == nil {
		return nil
	}
	defer metrics.Timer(metrics.Flatten)()

	depth := 0
	if parentPath != "" {
		depth = strings.Count(parentPath, PathSeparator) + 1
	}
	return flattenInto(nil, node, parentPath, depth)
}

func flattenInto(rows []Row, node *ComponentNode, parentPath string, depth int) []Row {
	name := QualifiedName(parentPath, node.Name)
	matrix := node.Matrix
	if matrix == nil {
		matrix = map[string]bool{}
	}
	rows = append(rows, Row{
		Node:         node,
		Name:         name,
		Depth:        depth,
		Functions:    node.Functions,
		FailureModes: node.FailureModes,
		Matrix:       matrix,
	})
	for _, sub := range node.Subcomponents {
		rows = flattenInto(rows, sub, name, depth+1)
	}
	return rows
}

// FlattenForest concatenates Flatten of every root in forest order.
func FlattenForest(roots []*ComponentNode) []Row {
	var rows []Row
	for _, root := range roots {
		rows = append(rows, Flatten(root, "")...)
	}
	return rows
}
