package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNilNode         = errors.New("nil component node")
	ErrUnknownList     = errors.New("unknown list kind")
)

// PathSeparator joins ancestor names in a qualified display path.
const PathSeparator = " > "

// nameSeparatorSubstitute stands in for PathSeparator inside component names.
const nameSeparatorSubstitute = " / "

// CleanName keeps PathSeparator out of a component name, so a qualified
// path splits back into exactly one segment per ancestor.
func CleanName(name string) string {
	for strings.Contains(name, PathSeparator) {
		name = strings.ReplaceAll(name, PathSeparator, nameSeparatorSubstitute)
	}
	return name
}

// Entry is one function or failure mode on a component.
// ID is assigned once at append time and never changes; Label is the
// user-editable text. Matrix cells are keyed by ID so renaming an entry
// keeps its relations.
type Entry struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// NewEntry returns an entry with a fresh identifier.
func NewEntry(label string) Entry {
	return Entry{ID: uuid.NewString(), Label: label}
}

// ListKind selects one of the two editable lists on a component.
type ListKind int

const (
	ListFunctions ListKind = iota
	ListFailureModes
)

// String returns the display name of the list.
func (k ListKind) String() string {
	switch k {
	case ListFunctions:
		return "Functions"
	case ListFailureModes:
		return "Failure Modes"
	}
	return fmt.Sprintf("ListKind(%d)", int(k))
}

// IsValid returns true if the kind is a recognized value
func (k ListKind) IsValid() bool {
	return k == ListFunctions || k == ListFailureModes
}

// ComponentNode is one component in the analysis tree.
type ComponentNode struct {
	Name          string           `json:"name"`
	Functions     []Entry          `json:"functions"`
	FailureModes  []Entry          `json:"failureModes"`
	Matrix        map[string]bool  `json:"matrix"`
	Subcomponents []*ComponentNode `json:"subcomponents"`
}

// NewComponentNode creates an empty component.
func NewComponentNode(name string) *ComponentNode {
	return &ComponentNode{
		Name:          CleanName(name),
		Functions:     []Entry{},
		FailureModes:  []Entry{},
		Matrix:        make(map[string]bool),
		Subcomponents: []*ComponentNode{},
	}
}

// List returns the entries of the given kind.
func (n *ComponentNode) List(kind ListKind) []Entry {
	switch kind {
	case ListFunctions:
		return n.Functions
	case ListFailureModes:
		return n.FailureModes
	}
	return nil
}

// Labels returns the labels of the given list in order.
func (n *ComponentNode) Labels(kind ListKind) []string {
	list := n.List(kind)
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Label
	}
	return out
}

func (n *ComponentNode) setList(kind ListKind, list []Entry) {
	switch kind {
	case ListFunctions:
		n.Functions = list
	case ListFailureModes:
		n.FailureModes = list
	}
}

// Cell returns the matrix value for key, false when unset.
func (n *ComponentNode) Cell(key string) bool {
	if n == nil || n.Matrix == nil {
		return false
	}
	return n.Matrix[key]
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk below that node.
func (n *ComponentNode) Walk(fn func(*ComponentNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, sub := range n.Subcomponents {
		sub.Walk(fn)
	}
}
