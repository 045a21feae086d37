package boxtree

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
)

// Kind is the type of a box.
type Kind uint8

// Box kinds
const (
	BlockBox Kind = iota
	InlineBox
	ReplacedBox
	TableGridBox
)

func (k Kind) String() string {
	switch k {
	case InlineBox:
		return "inline"
	case ReplacedBox:
		return "replaced"
	case TableGridBox:
		return "grid"
	}
	return "block"
}

// LayoutState is the mutable part of a box, updated by layout.
type LayoutState struct {
	Scrollbars frame.Scrollbars
	// IntrinsicWidthsDirty is set when a change of scrollbars invalidated the
	// intrinsic inline sizes of the box.
	IntrinsicWidthsDirty bool
	// AnchorScroll is the scroll offset accumulated between the box and its
	// default anchor.
	AnchorScroll frame.PhysicalOffset
	// BoundsScroll is the scroll offset of the position-fallback bounds.
	BoundsScroll frame.PhysicalOffset
}

// Node is a box in the box tree.
type Node struct {
	Kind      Kind
	Style     *style.Style
	Name      string
	Words     []dimen.Dimen      // inline content, widths of unbreakable runs
	Intrinsic frame.PhysicalSize // intrinsic size of replaced content
	Layout    LayoutState
	parent    *Node
	children  []*Node
	index     int // pre-order position
}

// NewBox creates a box of a given kind. If st is nil, the initial style is used.
func NewBox(kind Kind, name string, st *style.Style) *Node {
	if st == nil {
		st = style.Default()
		if kind == InlineBox {
			st.Display = style.DisplayInline
		}
	}
	return &Node{Kind: kind, Style: st, Name: name, index: -1}
}

// Block creates a block box.
func Block(name string, st *style.Style) *Node {
	return NewBox(BlockBox, name, st)
}

// Inline creates an inline box holding content runs of the given widths.
func Inline(name string, st *style.Style, words ...dimen.Dimen) *Node {
	n := NewBox(InlineBox, name, st)
	n.Words = words
	return n
}

// Replaced creates a replaced box with an intrinsic size.
func Replaced(name string, st *style.Style, size frame.PhysicalSize) *Node {
	n := NewBox(ReplacedBox, name, st)
	n.Intrinsic = size
	return n
}

// Grid creates a grid container.
func Grid(name string, st *style.Style) *Node {
	return NewBox(TableGridBox, name, st)
}

// Add appends children to n and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Parent returns the parent box or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child boxes of n.
func (n *Node) Children() []*Node {
	return n.children
}

// Index returns the pre-order number of n, or -1 if the tree has not been
// numbered yet.
func (n *Node) Index() int {
	return n.index
}

// IsRoot is true for the root box.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// IsOutOfFlowPositioned is true for absolutely and fixed positioned boxes.
func (n *Node) IsOutOfFlowPositioned() bool {
	return n.Style.IsOutOfFlowPositioned()
}

// IsInlineLevel is true for boxes taking part in an inline formatting context.
func (n *Node) IsInlineLevel() bool {
	if n.IsOutOfFlowPositioned() {
		return false
	}
	return n.Kind == InlineBox || n.Style.Display == style.DisplayInline ||
		n.Style.Display == style.DisplayInlineBlock
}

// IsMulticol is true for multi-column containers.
func (n *Node) IsMulticol() bool {
	return n.Kind == BlockBox && n.Style.IsMulticol()
}

// IsSpanner is true for a `column-span: all` child of a multi-column container.
func (n *Node) IsSpanner() bool {
	return n.Style.ColumnSpanAll && n.parent != nil && n.parent.IsMulticol() &&
		!n.IsOutOfFlowPositioned()
}

// IsMonolithic is true for boxes which are never fragmented.
func (n *Node) IsMonolithic() bool {
	return n.Kind == ReplacedBox
}

// IsDescendantOf is true if a is a proper ancestor of n.
func (n *Node) IsDescendantOf(a *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// ContainingBlock returns the box establishing the containing block of an
// out-of-flow positioned box n. It may be an inline box. If no ancestor
// qualifies the root box is returned, standing for the initial containing block.
func (n *Node) ContainingBlock() *Node {
	fixed := n.Style.Position == style.PositionFixed
	var p *Node
	for p = n.parent; p != nil && !p.IsRoot(); p = p.parent {
		if fixed && p.Style.IsFixedContainer() {
			return p
		}
		if !fixed && p.Style.IsAbsoluteContainer() {
			return p
		}
	}
	return p
}

// LayoutContainer returns the box whose layout places n. This is the
// containing block, or for inline containing blocks the block box the inline
// box takes part in.
func (n *Node) LayoutContainer() *Node {
	cb := n.ContainingBlock()
	for cb != nil && cb.Kind == InlineBox {
		cb = cb.parent
	}
	return cb
}

// InlineContainer returns the inline box establishing the containing
// block of n, or nil.
func (n *Node) InlineContainer() *Node {
	if cb := n.ContainingBlock(); cb != nil && cb.Kind == InlineBox {
		return cb
	}
	return nil
}

func (n *Node) String() string {
	if n == nil {
		return "<nil-box>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s#%s", n.Kind, n.Name)
	}
	return fmt.Sprintf("%s@%d", n.Kind, n.index)
}
