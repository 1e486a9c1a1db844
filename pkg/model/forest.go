package model

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/dfmea/pkg/debug"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAddRoot    ChangeKind = "add_root"
	ChangeAddChild   ChangeKind = "add_child"
	ChangeSetItem    ChangeKind = "set_item"
	ChangeAppendItem ChangeKind = "append_item"
	ChangeRemoveItem ChangeKind = "remove_item"
	ChangeToggleCell ChangeKind = "toggle_cell"
	ChangeSelect     ChangeKind = "select"
)

// Change describes one applied mutation.
type Change struct {
	Kind     ChangeKind
	Node     *ComponentNode
	Revision uint64
}

// Forest is the ordered collection of root components plus the current
// selection. It is not safe for concurrent use; the UI owns it and mutates
// it from its update loop only.
type Forest struct {
	roots     []*ComponentNode
	selected  *ComponentNode
	revision  uint64
	listeners []func(Change)
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{}
}

// Roots returns the root components in insertion order.
func (f *Forest) Roots() []*ComponentNode {
	return f.roots
}

// Len returns the number of roots.
func (f *Forest) Len() int {
	return len(f.roots)
}

// Selected returns the current selection, or nil.
func (f *Forest) Selected() *ComponentNode {
	return f.selected
}

// Revision increases by one on every applied mutation.
func (f *Forest) Revision() uint64 {
	return f.revision
}

// OnChange registers fn to be called after every applied mutation.
func (f *Forest) OnChange(fn func(Change)) {
	if fn != nil {
		f.listeners = append(f.listeners, fn)
	}
}

func (f *Forest) notify(kind ChangeKind, node *ComponentNode) {
	f.revision++
	c := Change{Kind: kind, Node: node, Revision: f.revision}
	debug.Log("model: %s rev=%d", kind, f.revision)
	for _, fn := range f.listeners {
		fn(c)
	}
}

// Select makes node the current selection. A nil node clears it.
func (f *Forest) Select(node *ComponentNode) {
	if f.selected == node {
		return
	}
	f.selected = node
	f.notify(ChangeSelect, node)
}

// AddRoot appends a new empty root and selects it. Blank names are ignored
// and return nil.
func (f *Forest) AddRoot(name string) *ComponentNode {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	node := NewComponentNode(name)
	f.roots = append(f.roots, node)
	f.selected = node
	f.notify(ChangeAddRoot, node)
	return node
}

// AddChild appends a new empty subcomponent to parent. Blank names and a
// nil parent are ignored and return nil.
func (f *Forest) AddChild(parent *ComponentNode, name string) *ComponentNode {
	name = strings.TrimSpace(name)
	if parent == nil || name == "" {
		return nil
	}
	node := NewComponentNode(name)
	parent.Subcomponents = append(parent.Subcomponents, node)
	f.notify(ChangeAddChild, node)
	return node
}

// SetListItem replaces the label at index. The entry keeps its ID.
func (f *Forest) SetListItem(node *ComponentNode, kind ListKind, index int, value string) error {
	list, err := checkList(node, kind, index)
	if err != nil {
		return err
	}
	list[index].Label = value
	f.notify(ChangeSetItem, node)
	return nil
}

// AppendListItem appends an empty placeholder entry and returns it.
func (f *Forest) AppendListItem(node *ComponentNode, kind ListKind) (Entry, error) {
	if node == nil {
		return Entry{}, ErrNilNode
	}
	if !kind.IsValid() {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownList, int(kind))
	}
	e := NewEntry("")
	node.setList(kind, append(node.List(kind), e))
	f.notify(ChangeAppendItem, node)
	return e, nil
}

// RemoveListItem deletes the entry at index and shifts later entries down.
// Matrix cells keyed by the removed entry stay on their rows but no longer
// resolve to a column.
func (f *Forest) RemoveListItem(node *ComponentNode, kind ListKind, index int) error {
	list, err := checkList(node, kind, index)
	if err != nil {
		return err
	}
	out := make([]Entry, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	node.setList(kind, out)
	f.notify(ChangeRemoveItem, node)
	return nil
}

// ToggleMatrixCell flips node.Matrix[key] (absent counts as false) and
// returns the new value.
func (f *Forest) ToggleMatrixCell(node *ComponentNode, key string) (bool, error) {
	if node == nil {
		return false, ErrNilNode
	}
	if node.Matrix == nil {
		node.Matrix = make(map[string]bool)
	}
	node.Matrix[key] = !node.Matrix[key]
	f.notify(ChangeToggleCell, node)
	return node.Matrix[key], nil
}

// Find resolves a qualified display path ("A > B > C") to a node by
// matching one name per level. Unknown or empty paths return nil.
func (f *Forest) Find(path string) *ComponentNode {
	if path == "" {
		return nil
	}
	var node *ComponentNode
	level := f.roots
	for _, name := range strings.Split(path, PathSeparator) {
		node = nil
		for _, n := range level {
			if n.Name == name {
				node = n
				break
			}
		}
		if node == nil {
			return nil
		}
		level = node.Subcomponents
	}
	return node
}

// Contains reports whether node is reachable from one of the roots.
func (f *Forest) Contains(node *ComponentNode) bool {
	if node == nil {
		return false
	}
	found := false
	for _, root := range f.roots {
		root.Walk(func(n *ComponentNode) bool {
			if n == node {
				found = true
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

func checkList(node *ComponentNode, kind ListKind, index int) ([]Entry, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownList, int(kind))
	}
	list := node.List(kind)
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%s[%d] on %q (len %d): %w", kind, index, node.Name, len(list), ErrIndexOutOfRange)
	}
	return list, nil
}
