package anchor

import (
	"sort"

	"github.com/derekparker/trie"
	"github.com/npillmayer/outflow/engine/frame"
)

// Entry is the geometry of an anchor box.
type Entry struct {
	Name string
	Rect frame.PhysicalRect // border box, relative to the owner of the map
	// InScroller is set for anchors inside a scroll container which does not
	// contain the owner of the map.
	InScroller bool
}

// Query is the read-only interface anchor resolution works with.
type Query interface {
	Lookup(name string) (Entry, bool)
}

// Map maps anchor names to anchor geometry. The zero value is not usable,
// create maps with NewMap. A nil *Map is an empty map.
type Map struct {
	names *trie.Trie
	size  int
}

// NewMap creates an empty anchor map.
func NewMap() *Map {
	return &Map{names: trie.New()}
}

// Add records an anchor. A later anchor with the same name replaces an
// earlier one, so anchors added in tree order make the last box win.
func (m *Map) Add(e Entry) {
	if e.Name == "" {
		return
	}
	if _, ok := m.names.Find(e.Name); ok {
		m.names.Remove(e.Name)
		m.size--
	}
	m.names.Add(e.Name, e)
	m.size++
	tracer().Debugf("anchor %q at %v", e.Name, e.Rect)
}

// Lookup finds an anchor by name.
func (m *Map) Lookup(name string) (Entry, bool) {
	if m == nil || m.size == 0 {
		return Entry{}, false
	}
	node, ok := m.names.Find(name)
	if !ok {
		return Entry{}, false
	}
	e, ok := node.Meta().(Entry)
	return e, ok
}

// Len returns the number of anchors in m.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Names lists the anchor names starting with prefix, sorted.
func (m *Map) Names(prefix string) []string {
	if m == nil || m.size == 0 {
		return nil
	}
	var names []string
	if prefix == "" {
		names = m.names.Keys()
	} else {
		names = m.names.PrefixSearch(prefix)
	}
	sort.Strings(names)
	return names
}

// Merge adds the anchors of other, shifted by offset. If scroller is set,
// the anchors are flagged as being inside a scroll container.
func (m *Map) Merge(other *Map, offset frame.PhysicalOffset, scroller bool) {
	for _, name := range other.Names("") {
		e, _ := other.Lookup(name)
		e.Rect.Offset = e.Rect.Offset.Add(offset)
		e.InScroller = e.InScroller || scroller
		m.Add(e)
	}
}

// Shifted returns a copy of m with all rectangles moved by offset.
func (m *Map) Shifted(offset frame.PhysicalOffset) *Map {
	c := NewMap()
	c.Merge(m, offset, false)
	return c
}
