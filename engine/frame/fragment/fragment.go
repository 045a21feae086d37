package fragment

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
)

// Kind is the type of a fragment.
type Kind uint8

// Fragment kinds. Columns and pages are fragmentainers.
const (
	BoxFragment Kind = iota
	ColumnFragment
	PageFragment
)

func (k Kind) String() string {
	switch k {
	case ColumnFragment:
		return "column"
	case PageFragment:
		return "page"
	}
	return "box"
}

// Link is a child of a fragment, placed at a physical offset relative to
// the border box of its parent.
type Link struct {
	Ref    Ref
	Offset frame.PhysicalOffset
}

// Item is a piece of an inline box on a line, relative to the fragment of the
// block the line belongs to.
type Item struct {
	Box  *boxtree.Node
	Rect frame.PhysicalRect
}

// Fragment is the result of laying out a box, or a part of it, into a
// fragmentainer.
type Fragment struct {
	Kind       Kind
	Box        *boxtree.Node // nil for fragmentainers
	Writing    frame.WritingDirection
	Size       frame.PhysicalSize // border box
	Border     frame.Strut
	Padding    frame.Strut
	Scrollbar  frame.Strut
	Children   []Link
	Items      []Item
	BreakToken *frame.BreakToken // set if layout continues in a later fragment
	// ConsumedBlockSize is the block size of Box laid out in preceding fragments.
	ConsumedBlockSize dimen.Dimen
	Anchors           *anchor.Map
	// OutOfFlowDescendants are positioned boxes the box is not the containing
	// block of. Static positions are relative to this fragment.
	OutOfFlowDescendants []PositionedNode
	// FragmentainerDescendants wait for the fragmentation context root.
	FragmentainerDescendants []FragmentainerDescendant
	// MulticolsWithPending are nested multi-column containers with
	// fragmentainer descendants stored on their fragments.
	MulticolsWithPending []MulticolWithPendingOOFs
	oof                  *OutOfFlowData
	ref                  Ref
	superseded           bool
	hasOOF, hasFragOOF   bool
}

// Ref returns the arena reference of f, or NoRef if f is not in an arena.
func (f *Fragment) Ref() Ref {
	return f.ref
}

// Superseded is true if f has been replaced by another fragment.
func (f *Fragment) Superseded() bool {
	return f.superseded
}

// IsFragmentainer is true for columns and pages.
func (f *Fragment) IsFragmentainer() bool {
	return f.Kind == ColumnFragment || f.Kind == PageFragment
}

// IsColumnSpanner is true for the fragment of a `column-span: all` box.
func (f *Fragment) IsColumnSpanner() bool {
	return f.Box != nil && f.Box.IsSpanner()
}

// LogicalSize returns the size of f in its own writing mode.
func (f *Fragment) LogicalSize() frame.LogicalSize {
	return f.Size.ToLogical(f.Writing.Mode)
}

// BlockSize returns the block size of f in writing mode wm.
func (f *Fragment) BlockSize(wm frame.WritingMode) dimen.Dimen {
	return f.Size.ToLogical(wm).Block
}

// ContentStrut is the distance of the content edge from the border edge.
func (f *Fragment) ContentStrut() frame.Strut {
	return f.Border.Add(f.Scrollbar).Add(f.Padding)
}

// HasOutOfFlowDescendants is true if positioned boxes have been laid out in
// the subtree of f.
func (f *Fragment) HasOutOfFlowDescendants() bool {
	return f.hasOOF
}

// HasFragmentainerDescendants is true if positioned boxes below f are placed
// in fragmentainers.
func (f *Fragment) HasFragmentainerDescendants() bool {
	return f.hasFragOOF
}

// SetOutOfFlow attaches the placement of a positioned box to its fragment.
// It may be called once.
func (f *Fragment) SetOutOfFlow(d OutOfFlowData) error {
	if f.oof != nil {
		return fmt.Errorf("%w: %v", ErrAlreadyFinalized, f.Box)
	}
	f.oof = &d
	return nil
}

// OutOfFlow returns the placement data of a positioned box, or nil.
func (f *Fragment) OutOfFlow() *OutOfFlowData {
	return f.oof
}

// Clone returns an unattached copy of f. Child links are copied, the children
// themselves are shared.
func (f *Fragment) Clone() *Fragment {
	c := *f
	c.Children = append([]Link(nil), f.Children...)
	c.Items = append([]Item(nil), f.Items...)
	c.OutOfFlowDescendants = append([]PositionedNode(nil), f.OutOfFlowDescendants...)
	c.FragmentainerDescendants = append([]FragmentainerDescendant(nil), f.FragmentainerDescendants...)
	c.MulticolsWithPending = append([]MulticolWithPendingOOFs(nil), f.MulticolsWithPending...)
	if f.oof != nil {
		d := *f.oof
		c.oof = &d
	}
	c.ref = NoRef
	c.superseded = false
	return &c
}

// AppendChild adds a child link to an unattached fragment, e.g. a clone.
func (f *Fragment) AppendChild(r Ref, offset frame.PhysicalOffset) {
	f.Children = append(f.Children, Link{Ref: r, Offset: offset})
}

// MarkOutOfFlowDescendants sets the flag for laid out positioned boxes.
// Used for clones receiving positioned children.
func (f *Fragment) MarkOutOfFlowDescendants() {
	f.hasOOF = true
}

func (f *Fragment) String() string {
	name := f.Kind.String()
	if f.Box != nil {
		name = f.Box.String()
	}
	return fmt.Sprintf("%s%v%v", name, f.ref, f.Size)
}

// --- Result ----------------------------------------------------------------

// Result is the outcome of laying out a box.
type Result struct {
	Ref      Ref
	Fragment *Fragment
	// IntrinsicBlockSize is the block size of the content before clamping.
	IntrinsicBlockSize dimen.Dimen
}

// NewResult wraps an arena fragment.
func NewResult(f *Fragment) *Result {
	return &Result{Ref: f.ref, Fragment: f}
}

// BreakToken returns the break token of the fragment.
func (r *Result) BreakToken() *frame.BreakToken {
	if r == nil || r.Fragment == nil {
		return nil
	}
	return r.Fragment.BreakToken
}
