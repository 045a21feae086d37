package boxtree

import (
	"github.com/npillmayer/outflow/engine/dom/style"
)

// Tree is a box tree together with document-wide information.
type Tree struct {
	Root *Node
	// Paginated documents are laid out into pages.
	Paginated bool
	// Tries are the position-fallback rules of the document.
	Tries  *style.TryRegistry
	byName map[string]*Node
	size   int
}

// NewTree numbers the boxes below root in pre-order.
func NewTree(root *Node) *Tree {
	t := &Tree{Root: root, Tries: style.NewTryRegistry()}
	t.Renumber()
	return t
}

// Renumber numbers boxes in pre-order. It has to be called after changes to
// the tree structure.
func (t *Tree) Renumber() {
	t.byName = make(map[string]*Node)
	t.size = 0
	t.Walk(func(n *Node) bool {
		n.index = t.size
		t.size++
		if n.Name != "" {
			if _, dup := t.byName[n.Name]; dup {
				tracer().Infof("box tree: duplicate box name %q", n.Name)
			} else {
				t.byName[n.Name] = n
			}
		}
		return true
	})
	tracer().Debugf("box tree has %d boxes", t.size)
}

// Walk visits all boxes in pre-order. If fn returns false, the children of a
// box are skipped.
func (t *Tree) Walk(fn func(*Node) bool) {
	var walk func(*Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
}

// Lookup finds a box by name.
func (t *Tree) Lookup(name string) *Node {
	return t.byName[name]
}

// Size returns the number of boxes.
func (t *Tree) Size() int {
	return t.size
}
