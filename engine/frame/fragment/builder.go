package fragment

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
)

// ChildLink is a child of a builder, placed at a logical offset.
// Fragmentainers and column spanners carry their block offset in the
// stitched coordinate space of the fragmentation context as well.
type ChildLink struct {
	Ref           Ref
	Offset        frame.LogicalOffset
	Stitched      dimen.Dimen
	Fragmentainer bool
	Spanner       bool
}

// Builder collects the parts of a fragment during layout of a box.
type Builder struct {
	Box     *boxtree.Node
	Kind    Kind
	Space   frame.ConstraintSpace
	Writing frame.WritingDirection
	// border box size, set by the layout algorithm
	InlineSize dimen.Dimen
	BlockSize  dimen.Dimen
	Border     frame.Strut
	Padding    frame.Strut
	Scrollbar  frame.Strut
	BreakToken *frame.BreakToken
	// ConsumedBlockSize is the block size consumed by previous fragments of Box.
	ConsumedBlockSize dimen.Dimen
	// IsFragmentationContextRoot is set for multi-column containers and
	// paginated roots.
	IsFragmentationContextRoot bool
	arena                      *Arena
	children                   []ChildLink
	items                      []Item
	candidates                 []PositionedNode
	handedBack                 []PositionedNode
	fragDescs                  []FragmentainerDescendant
	multicols                  *linkedhashmap.Map // box → MulticolWithPendingOOFs
	hasOOF                     bool
}

// NewBuilder creates a builder for a fragment of box, laid out in space.
func NewBuilder(arena *Arena, box *boxtree.Node, kind Kind, space frame.ConstraintSpace) *Builder {
	return &Builder{
		Box:       box,
		Kind:      kind,
		Space:     space,
		Writing:   space.Writing,
		BlockSize: frame.Indefinite,
		arena:     arena,
		multicols: linkedhashmap.New(),
	}
}

// Arena returns the arena the fragment will be created in.
func (b *Builder) Arena() *Arena {
	return b.arena
}

// Size returns the border box size as far as known.
func (b *Builder) Size() frame.LogicalSize {
	return frame.LogicalSize{Inline: b.InlineSize, Block: b.BlockSize}
}

// PhysicalSize returns the border box size, with an indefinite block size
// taken as zero.
func (b *Builder) PhysicalSize() frame.PhysicalSize {
	sz := b.Size()
	if sz.Block == frame.Indefinite {
		sz.Block = 0
	}
	return sz.ToPhysical(b.Writing.Mode)
}

// HasBlockFragmentation is true if the box is laid out into a fragmentainer.
func (b *Builder) HasBlockFragmentation() bool {
	return b.Space.HasBlockFragmentation()
}

// ContentStrut returns border, scrollbar and padding in logical terms.
func (b *Builder) ContentStrut() frame.LogicalStrut {
	return b.Border.Add(b.Scrollbar).Add(b.Padding).ToLogical(b.Writing)
}

// Children returns the children added so far.
func (b *Builder) Children() []ChildLink {
	return b.children
}

// AddChild places a child fragment. Positioned descendants of the child
// travel on to b.
func (b *Builder) AddChild(r Ref, offset frame.LogicalOffset) {
	b.children = append(b.children, ChildLink{Ref: r, Offset: offset})
	if f := b.arena.Fragment(r); f != nil {
		b.propagate(f, offset, offset, false)
	}
}

// AddResult places the fragment of a layout result.
func (b *Builder) AddResult(res *Result, offset frame.LogicalOffset) {
	b.AddChild(res.Ref, offset)
}

// AddFragmentainer places a column or page. stitched is the block offset of
// the fragmentainer in the stitched coordinate space of the fragmentation
// context. Positioned boxes found in the fragmentainer and contained by b
// become fragmentainer descendants, unless b is itself fragmented.
func (b *Builder) AddFragmentainer(r Ref, offset frame.LogicalOffset, stitched dimen.Dimen) {
	b.children = append(b.children, ChildLink{Ref: r, Offset: offset, Stitched: stitched, Fragmentainer: true})
	if f := b.arena.Fragment(r); f != nil {
		b.propagate(f, offset, frame.LogicalOffset{Block: stitched}, true)
	}
}

// AddSpanner places a column spanner of a multi-column container. stitched
// is the block offset of the fragmentainers following it.
func (b *Builder) AddSpanner(r Ref, offset frame.LogicalOffset, stitched dimen.Dimen) {
	b.children = append(b.children, ChildLink{Ref: r, Offset: offset, Stitched: stitched, Spanner: true})
	if f := b.arena.Fragment(r); f != nil {
		b.propagate(f, offset, frame.LogicalOffset{Inline: offset.Inline, Block: stitched}, true)
	}
}

// AddFragmentainerLink places a fragmentainer without looking at its
// positioned descendants.
func (b *Builder) AddFragmentainerLink(r Ref, offset frame.LogicalOffset, stitched dimen.Dimen) {
	b.children = append(b.children, ChildLink{Ref: r, Offset: offset, Stitched: stitched, Fragmentainer: true})
}

// InsertFragmentainer places an additional fragmentainer at child position
// at. It must not contain positioned boxes.
func (b *Builder) InsertFragmentainer(at int, r Ref, offset frame.LogicalOffset, stitched dimen.Dimen) {
	if at < 0 || at > len(b.children) {
		at = len(b.children)
	}
	link := ChildLink{Ref: r, Offset: offset, Stitched: stitched, Fragmentainer: true}
	b.children = append(b.children, ChildLink{})
	copy(b.children[at+1:], b.children[at:])
	b.children[at] = link
}

func (b *Builder) propagate(f *Fragment, offset, stitched frame.LogicalOffset, fragmentainer bool) {
	if f.hasOOF || f.oof != nil {
		b.hasOOF = true
	}
	for _, n := range f.OutOfFlowDescendants {
		if f.Writing != b.Writing {
			phys := n.Static.ToPhysical(f.Writing, f.Size)
			n.Static = phys.ToLogical(b.Writing, f.Size)
		}
		if fragmentainer && b.IsFragmentationContextRoot && n.Box.LayoutContainer() == b.Box &&
			!b.HasBlockFragmentation() {
			b.AddFragmentainerDescendant(FragmentainerDescendant{PositionedNode: n.Shifted(stitched)})
			continue
		}
		b.candidates = append(b.candidates, n.Shifted(offset))
	}
	clips := f.Box != nil && isClipping(f.Box.Style)
	nested := f.Box != nil && f.Box != b.Box && f.Box.IsMulticol() && !fragmentainer
	pending := false
	for _, d := range f.FragmentainerDescendants {
		if nested && KeptByMulticol(d) {
			// placed into the columns of f once the outer context is done
			pending = true
			continue
		}
		d = d.Shifted(stitched)
		if d.ContainingBlock.IsSet() {
			if f.IsColumnSpanner() {
				d.ContainingBlock.IsInsideSpanner = true
			}
			if clips && !d.ContainingBlock.HasClippedContainer {
				d.ContainingBlock.HasClippedContainer = true
				d.ContainingBlock.ClippedContainerOffset = stitched.Sub(frame.LogicalOffset{Block: f.ConsumedBlockSize})
			}
		}
		b.fragDescs = append(b.fragDescs, d)
	}
	if pending {
		b.AddMulticolWithPending(MulticolWithPendingOOFs{Box: f.Box})
	}
	for _, m := range f.MulticolsWithPending {
		b.AddMulticolWithPending(m)
	}
}

// KeptByMulticol tells if a fragmentainer descendant of a nested multicol
// stays with it and is placed into its columns. Descendants inside one of
// its spanners take part in the outer fragmentation context.
func KeptByMulticol(d FragmentainerDescendant) bool {
	cb := d.ContainingBlock
	return cb.IsSet() && !cb.IsInsideSpanner
}

func isClipping(st *style.Style) bool {
	clip := func(o style.Overflow) bool {
		return o != style.OverflowVisible
	}
	return clip(st.OverflowX) || clip(st.OverflowY)
}

// AddItem records a piece of an inline box.
func (b *Builder) AddItem(it Item) {
	b.items = append(b.items, it)
}

// Items returns the inline items added so far.
func (b *Builder) Items() []Item {
	return b.items
}

// --- Positioned boxes ------------------------------------------------------

// AddCandidate records a positioned box found during layout of b. The static
// position is relative to the border box of b.
func (b *Builder) AddCandidate(n PositionedNode) {
	b.candidates = append(b.candidates, n)
}

// HasCandidates is true if positioned boxes wait for layout.
func (b *Builder) HasCandidates() bool {
	return len(b.candidates) > 0
}

// SwapCandidates removes and returns the candidates of b.
func (b *Builder) SwapCandidates() []PositionedNode {
	c := b.candidates
	b.candidates = nil
	return c
}

// AddOutOfFlowDescendant hands a positioned box on to the ancestors of b.
func (b *Builder) AddOutOfFlowDescendant(n PositionedNode) {
	b.handedBack = append(b.handedBack, n)
}

// OutOfFlowDescendants returns the boxes handed back so far.
func (b *Builder) OutOfFlowDescendants() []PositionedNode {
	return b.handedBack
}

// MarkOutOfFlowDescendants sets the flag for laid out positioned boxes.
func (b *Builder) MarkOutOfFlowDescendants() {
	b.hasOOF = true
}

// AddFragmentainerDescendant records a positioned box to be placed by the
// fragmentation context root.
func (b *Builder) AddFragmentainerDescendant(d FragmentainerDescendant) {
	b.fragDescs = append(b.fragDescs, d)
}

// AddFragmentainerDescendantContainedBySelf turns a candidate contained by b
// into a fragmentainer descendant. Its containing block is the fragment
// being built.
func (b *Builder) AddFragmentainerDescendantContainedBySelf(n PositionedNode) {
	d := FragmentainerDescendant{PositionedNode: n}
	d.ContainingBlock = ContainingBlock{
		Offset:      frame.LogicalOffset{Block: -b.ConsumedBlockSize},
		pendingSelf: true,
	}
	d.ContainingBlock.RelativeOffset = RelativeOffset(b.Box.Style)
	b.fragDescs = append(b.fragDescs, d)
}

// RelativeOffset returns the offset of a relatively positioned box, in its
// writing direction. Percentages are not supported.
func RelativeOffset(st *style.Style) frame.LogicalOffset {
	if st.Position != style.PositionRelative {
		return frame.LogicalOffset{}
	}
	var p frame.PhysicalOffset
	if d, ok := st.Insets[frame.Left].Resolve(frame.Indefinite); ok {
		p.X = d
	} else if d, ok := st.Insets[frame.Right].Resolve(frame.Indefinite); ok {
		p.X = -d
	}
	if d, ok := st.Insets[frame.Top].Resolve(frame.Indefinite); ok {
		p.Y = d
	} else if d, ok := st.Insets[frame.Bottom].Resolve(frame.Indefinite); ok {
		p.Y = -d
	}
	zero := frame.PhysicalSize{}
	return p.ToLogical(st.Writing, zero, zero)
}

// HasFragmentainerDescendants is true if b holds fragmentainer descendants.
func (b *Builder) HasFragmentainerDescendants() bool {
	return len(b.fragDescs) > 0
}

// SwapFragmentainerDescendants removes and returns the fragmentainer
// descendants of b.
func (b *Builder) SwapFragmentainerDescendants() []FragmentainerDescendant {
	d := b.fragDescs
	b.fragDescs = nil
	return d
}

// AddMulticolWithPending records a nested multi-column container with
// pending fragmentainer descendants. Each container is recorded once.
func (b *Builder) AddMulticolWithPending(m MulticolWithPendingOOFs) {
	if _, found := b.multicols.Get(m.Box); !found {
		b.multicols.Put(m.Box, m)
	}
}

// HasMulticolsWithPending is true if nested multi-column containers wait
// for placement of positioned descendants.
func (b *Builder) HasMulticolsWithPending() bool {
	return !b.multicols.Empty()
}

// SwapMulticolsWithPending removes and returns the nested multi-column
// containers, in the order they were added.
func (b *Builder) SwapMulticolsWithPending() []MulticolWithPendingOOFs {
	var ms []MulticolWithPendingOOFs
	for _, v := range b.multicols.Values() {
		ms = append(ms, v.(MulticolWithPendingOOFs))
	}
	b.multicols.Clear()
	return ms
}

// --- Finishing -------------------------------------------------------------

// Links returns the physical child links for the current size of b.
func (b *Builder) Links() []Link {
	outer := b.PhysicalSize()
	links := make([]Link, 0, len(b.children))
	for _, c := range b.children {
		var inner frame.PhysicalSize
		if f := b.arena.Fragment(c.Ref); f != nil {
			inner = f.Size
		}
		links = append(links, Link{Ref: c.Ref, Offset: c.Offset.ToPhysical(b.Writing, outer, inner)})
	}
	return links
}

// AnchorQuery collects the anchors of the children of b.
func (b *Builder) AnchorQuery() *anchor.Map {
	return anchorsOf(b.arena, b.Links())
}

// CollectAnchors gathers the anchors of a set of child links.
func CollectAnchors(arena *Arena, links []Link) *anchor.Map {
	return anchorsOf(arena, links)
}

func anchorsOf(arena *Arena, links []Link) *anchor.Map {
	m := anchor.NewMap()
	for _, l := range links {
		f := arena.Fragment(l.Ref)
		if f == nil {
			continue
		}
		if f.Box != nil && f.Box.Style.AnchorName != "" {
			m.Add(anchor.Entry{
				Name: f.Box.Style.AnchorName,
				Rect: frame.PhysicalRect{Offset: l.Offset, Size: f.Size},
			})
		}
		if f.Anchors.Len() > 0 {
			m.Merge(f.Anchors, l.Offset, f.Box != nil && f.Box.Style.IsScrollContainer())
		}
	}
	return m
}

// ToFragment creates the fragment and adds it to the arena. Candidates not
// taken care of are handed back to the ancestors.
func (b *Builder) ToFragment() *Fragment {
	f := &Fragment{
		Kind:              b.Kind,
		Box:               b.Box,
		Writing:           b.Writing,
		Size:              b.PhysicalSize(),
		Border:            b.Border,
		Padding:           b.Padding,
		Scrollbar:         b.Scrollbar,
		Children:          b.Links(),
		Items:             b.items,
		BreakToken:        b.BreakToken,
		ConsumedBlockSize: b.ConsumedBlockSize,
		hasOOF:            b.hasOOF,
	}
	f.Anchors = anchorsOf(b.arena, f.Children)
	f.OutOfFlowDescendants = append(b.handedBack, b.candidates...)
	f.FragmentainerDescendants = b.fragDescs
	f.MulticolsWithPending = b.SwapMulticolsWithPending()
	f.hasFragOOF = len(f.FragmentainerDescendants) > 0 || len(f.MulticolsWithPending) > 0
	for _, l := range f.Children {
		if c := b.arena.Fragment(l.Ref); c != nil && c.hasFragOOF {
			f.hasFragOOF = true
		}
	}
	r := b.arena.Add(f)
	for i := range f.FragmentainerDescendants {
		if cb := &f.FragmentainerDescendants[i].ContainingBlock; cb.pendingSelf {
			cb.Ref, cb.pendingSelf = r, false
		}
	}
	tracer().Debugf("fragment %v: %d children, %d oof handed back, %d fragmentainer descendants",
		f, len(f.Children), len(f.OutOfFlowDescendants), len(f.FragmentainerDescendants))
	return f
}
