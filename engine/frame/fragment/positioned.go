package fragment

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
)

// StaticPosition is the position a positioned box would have had in flow.
type StaticPosition = frame.LogicalStaticPosition

// InlineContainer is a split inline box establishing the containing block of
// a positioned box.
type InlineContainer struct {
	Box            *boxtree.Node
	RelativeOffset frame.LogicalOffset
}

// PositionedNode is a positioned box waiting for layout. The static position
// is relative to the border box of the fragment or builder holding the node.
type PositionedNode struct {
	Box    *boxtree.Node
	Static StaticPosition
	Inline *InlineContainer
	// RequiresContentBeforeBreaking is set for boxes found before any
	// content of their fragmentainer.
	RequiresContentBeforeBreaking bool
}

// Shifted returns n with the static position moved by offset.
func (n PositionedNode) Shifted(offset frame.LogicalOffset) PositionedNode {
	n.Static.Offset = n.Static.Offset.Add(offset)
	return n
}

func (n PositionedNode) String() string {
	return fmt.Sprintf("oof(%v@%v)", n.Box, n.Static.Offset)
}

// ContainingBlock refers to the fragment of a containing block inside a
// fragmentation context.
//
// Offsets are in the stitched coordinate space of the fragmentation context
// root: fragmentainers are put one after the other in the block direction,
// with the origin at the start of the first fragmentainer. Offset is the
// position where the containing block box starts, i.e. before any block size
// consumed by preceding fragments.
type ContainingBlock struct {
	Ref            Ref
	Offset         frame.LogicalOffset
	RelativeOffset frame.LogicalOffset
	// A containing block fragmented inside a clipped container.
	HasClippedContainer    bool
	ClippedContainerOffset frame.LogicalOffset
	// IsInsideSpanner is set for containing blocks in a column spanner.
	IsInsideSpanner bool
	// Rect, if set, is the content rectangle of the containing block, e.g.
	// of an inline containing block.
	Rect        *frame.LogicalRect
	pendingSelf bool // Ref is set when the builder creates its fragment
}

// IsSet is false for an unset containing block, which denotes the default
// containing block of the fragmentation context root.
func (cb ContainingBlock) IsSet() bool {
	return !cb.Ref.IsNil() || cb.Rect != nil || cb.pendingSelf
}

// Shifted returns cb moved by offset.
func (cb ContainingBlock) Shifted(offset frame.LogicalOffset) ContainingBlock {
	if !cb.IsSet() {
		return cb
	}
	cb.Offset = cb.Offset.Add(offset)
	if cb.HasClippedContainer {
		cb.ClippedContainerOffset = cb.ClippedContainerOffset.Add(offset)
	}
	if cb.Rect != nil {
		r := *cb.Rect
		r.Offset = r.Offset.Add(offset)
		cb.Rect = &r
	}
	return cb
}

// FragmentainerDescendant is a positioned box placed by the fragmentation
// context root.
type FragmentainerDescendant struct {
	PositionedNode
	ContainingBlock ContainingBlock
	// containing block of fixed positioned boxes inside this one
	FixedposContainingBlock ContainingBlock
	FixedposInlineContainer *InlineContainer
}

// Shifted returns d with all offsets moved by offset.
func (d FragmentainerDescendant) Shifted(offset frame.LogicalOffset) FragmentainerDescendant {
	d.PositionedNode = d.PositionedNode.Shifted(offset)
	d.ContainingBlock = d.ContainingBlock.Shifted(offset)
	d.FixedposContainingBlock = d.FixedposContainingBlock.Shifted(offset)
	return d
}

// MulticolWithPendingOOFs is a nested multi-column container whose
// fragmentainer descendants can only be placed once the outer fragmentation
// context has finished.
type MulticolWithPendingOOFs struct {
	Box                     *boxtree.Node
	FixedposContainingBlock ContainingBlock
	FixedposInlineContainer *InlineContainer
}

// --- Placement results -----------------------------------------------------

// Interval is a closed range of offsets.
type Interval struct {
	Min, Max dimen.Dimen
}

// IsValid is false for empty intervals.
func (iv Interval) IsValid() bool {
	return iv.Min <= iv.Max
}

// Contains tells if d lies within iv.
func (iv Interval) Contains(d dimen.Dimen) bool {
	return iv.Min <= d && d <= iv.Max
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s,%s]", iv.Min, iv.Max)
}

// NonOverflowingRange is the range of anchor scroll offsets for which a
// fallback placement stays inside its containing block. Ranges are physical.
type NonOverflowingRange struct {
	StyleIndex int // -1 for the base style
	FlipBlock  bool
	FlipInline bool
	X, Y       Interval
	// ranges for position-fallback-bounds
	HasAdditional bool
	AdditionalX   Interval
	AdditionalY   Interval
}

// Contains tells if scroll offsets are within r.
func (r NonOverflowingRange) Contains(scroll, boundsScroll frame.PhysicalOffset) bool {
	if !r.X.Contains(scroll.X) || !r.Y.Contains(scroll.Y) {
		return false
	}
	if r.HasAdditional {
		return r.AdditionalX.Contains(boundsScroll.X) && r.AdditionalY.Contains(boundsScroll.Y)
	}
	return true
}

// OutOfFlowData is the placement of a positioned box, attached to its fragment.
type OutOfFlowData struct {
	// Offset is relative to the border box of the containing block layout
	// container, in its writing direction.
	Offset frame.LogicalOffset
	// Insets are the used physical insets. Specified insets are kept,
	// auto insets are filled in.
	Insets        frame.Strut
	FallbackIndex int
	FlipBlock     bool
	FlipInline    bool
	Ranges        []NonOverflowingRange
	// NeedsScrollAdjustment is set if the default anchor is in a scroll
	// container the containing block does not include.
	NeedsScrollAdjustmentX bool
	NeedsScrollAdjustmentY bool
}
