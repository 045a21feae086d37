package layout

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// placementState is the state of placing fragmentainer descendants.
type placementState uint8

// States of a fragmentation context root placing its descendants.
const (
	CollectingCandidates placementState = iota
	ResolvingContainingBlocks
	PlacingInFragmentainer
	Overflowed
	Done
)

func (s placementState) String() string {
	switch s {
	case CollectingCandidates:
		return "collecting"
	case ResolvingContainingBlocks:
		return "resolving"
	case PlacingInFragmentainer:
		return "placing"
	case Overflowed:
		return "overflowed"
	}
	return "done"
}

func (p *Part) setState(s placementState) {
	if p.state != s {
		tracer().Debugf("%v: %v -> %v", p.b.Box, p.state, s)
		p.state = s
	}
}

// --- Fragmentainers --------------------------------------------------------

// fragmentainerSlot is a column or page of the builder.
type fragmentainerSlot struct {
	child    int // index into the children of the builder
	ref      fragment.Ref
	offset   frame.LogicalOffset
	stitched dimen.Dimen
	size     frame.LogicalSize
}

func (s fragmentainerSlot) end() dimen.Dimen {
	return s.stitched + s.size.Block
}

// fragmentainers lists the fragmentainers of the builder in order. Column
// spanners are skipped.
func (p *Part) fragmentainers() []fragmentainerSlot {
	arena := p.algo.Arena()
	var slots []fragmentainerSlot
	for i, c := range p.b.Children() {
		if !c.Fragmentainer {
			continue
		}
		f := arena.Fragment(c.Ref)
		if f == nil {
			continue
		}
		slots = append(slots, fragmentainerSlot{
			child:    i,
			ref:      c.Ref,
			offset:   c.Offset,
			stitched: c.Stitched,
			size:     f.Size.ToLogical(p.b.Writing.Mode),
		})
	}
	return slots
}

// fragmentainerKind is the kind of fragmentainers the builder holds.
func (p *Part) fragmentainerKind() fragment.Kind {
	if p.isPaginatedRoot {
		return fragment.PageFragment
	}
	return fragment.ColumnFragment
}

// stitchedSize is the physical size of the stitched coordinate space.
func (p *Part) stitchedSize() frame.PhysicalSize {
	slots := p.fragmentainers()
	if len(slots) == 0 {
		return p.b.PhysicalSize()
	}
	var inline dimen.Dimen
	for _, s := range slots {
		inline = dimen.Max(inline, s.size.Inline)
	}
	last := slots[len(slots)-1]
	return frame.LogicalSize{Inline: inline, Block: last.end()}.ToPhysical(p.b.Writing.Mode)
}

// stitchedAnchors collects the anchors of all fragmentainers and spanners,
// relative to the stitched coordinate space.
func (p *Part) stitchedAnchors() *anchor.Map {
	arena := p.algo.Arena()
	outer := p.stitchedSize()
	var links []fragment.Link
	for _, c := range p.b.Children() {
		if !c.Fragmentainer && !c.Spanner {
			continue
		}
		f := arena.Fragment(c.Ref)
		if f == nil {
			continue
		}
		off := frame.LogicalOffset{Block: c.Stitched}
		if c.Spanner {
			off.Inline = c.Offset.Inline
		}
		links = append(links, fragment.Link{Ref: c.Ref, Offset: off.ToPhysical(p.b.Writing, outer, f.Size)})
	}
	return fragment.CollectAnchors(arena, links)
}

// startFragmentainerIndex finds the fragmentainer a box starting at block
// offset block of the stitched space starts in, and the offset relative to
// that fragmentainer. A box of zero estimated block size exactly at the end
// of a fragmentainer stays in it. Offsets beyond the last fragmentainer
// refer to fragmentainers yet to be created.
func (p *Part) startFragmentainerIndex(slots []fragmentainerSlot, block, estimate dimen.Dimen,
	clipped *dimen.Dimen) (int, dimen.Dimen) {
	//
	target := block
	if clipped != nil && p.isPaginatedRoot {
		target = dimen.Max(target, *clipped)
	}
	for i, s := range slots {
		if target < s.end() || (target == s.end() && estimate == 0) {
			return i, block - s.stitched
		}
	}
	last := slots[len(slots)-1]
	size := dimen.Max(p.newFragmentainerSize(slots).Block, dimen.PX)
	remaining := block - last.end()
	k := int(remaining / size)
	return len(slots) + k, remaining - dimen.Dimen(k)*size
}

// lastSpanner returns the spanner following the last fragmentainer, if any.
func (p *Part) lastSpanner(slots []fragmentainerSlot) (fragment.ChildLink, bool) {
	children := p.b.Children()
	if len(slots) == 0 {
		return fragment.ChildLink{}, false
	}
	for i := len(children) - 1; i > slots[len(slots)-1].child; i-- {
		if children[i].Spanner {
			return children[i], true
		}
	}
	return fragment.ChildLink{}, false
}

// newFragmentainerSize is the size of a fragmentainer to be added. Columns
// below a spanner get the block space left in the multi-column container.
func (p *Part) newFragmentainerSize(slots []fragmentainerSlot) frame.LogicalSize {
	size := slots[len(slots)-1].size
	if p.isPaginatedRoot {
		return size
	}
	sp, ok := p.lastSpanner(slots)
	if !ok || p.b.BlockSize == frame.Indefinite {
		return size
	}
	var spannerBlock dimen.Dimen
	if f := p.algo.Arena().Fragment(sp.Ref); f != nil {
		spannerBlock = f.BlockSize(p.b.Writing.Mode)
	}
	contentEnd := p.b.BlockSize - p.b.ContentStrut().BlockEnd
	size.Block = dimen.Max(0, contentEnd-(sp.Offset.Block+spannerBlock))
	return size
}

// appendFragmentainer adds an empty fragmentainer after the last one.
func (p *Part) appendFragmentainer(slots []fragmentainerSlot) error {
	p.setState(Overflowed)
	arena := p.algo.Arena()
	last := slots[len(slots)-1]
	size := p.newFragmentainerSize(slots)
	offset := last.offset
	if sp, ok := p.lastSpanner(slots); ok {
		offset = sp.Offset
		if f := arena.Fragment(sp.Ref); f != nil {
			offset.Block += f.BlockSize(p.b.Writing.Mode)
		}
		offset.Inline = slots[0].offset.Inline
	} else {
		offset = offset.Add(p.fragmentainerProgression(slots))
	}
	f := &fragment.Fragment{
		Kind:    p.fragmentainerKind(),
		Writing: p.b.Writing,
		Size:    size.ToPhysical(p.b.Writing.Mode),
	}
	r := arena.Add(f)
	p.b.AddFragmentainerLink(r, offset, last.end())
	tracer().Debugf("%v: added %v at %v, stitched at %v", p.b.Box, f, offset, last.end())
	if p.isPaginatedRoot {
		if end := offset.Block + size.Block; p.b.BlockSize == frame.Indefinite || end > p.b.BlockSize {
			p.b.BlockSize = end
		}
	}
	if p.outer != nil {
		return p.outer.appendColumn(p, f, offset)
	}
	return nil
}

// fragmentainerProgression is the distance from one fragmentainer to the next.
func (p *Part) fragmentainerProgression(slots []fragmentainerSlot) frame.LogicalOffset {
	last := slots[len(slots)-1]
	if p.isPaginatedRoot {
		return frame.LogicalOffset{Block: last.size.Block}
	}
	if n := len(slots); n >= 2 && slots[n-2].offset.Block == last.offset.Block {
		return frame.LogicalOffset{Inline: last.offset.Inline - slots[n-2].offset.Inline}
	}
	var gap dimen.Dimen
	if p.b.Box != nil {
		gap = p.b.Box.Style.ColumnGap
	}
	return frame.LogicalOffset{Inline: last.size.Inline + gap}
}

func (p *Part) fragmentainerSpace(s fragmentainerSlot) frame.ConstraintSpace {
	pct := frame.LogicalSize{Inline: s.size.Inline, Block: p.b.Size().Block}
	space := frame.NewSpace(p.b.Writing, s.size, pct)
	space.Fragmentation = frame.FragmentColumn
	if p.isPaginatedRoot {
		space.Fragmentation = frame.FragmentPage
	}
	space.FragmentainerBlockSize = s.size.Block
	return space
}

// --- Placement -------------------------------------------------------------

// handleFragmentation places the fragmentainer descendants of a
// fragmentation context root. Placing a box may reveal new descendants,
// e.g. fixed positioned boxes inside it, so placement repeats until nothing
// is pending.
func (p *Part) handleFragmentation() error {
	for {
		p.setState(CollectingCandidates)
		for _, m := range p.b.SwapMulticolsWithPending() {
			if err := p.layoutOOFsInMulticol(m); err != nil {
				return err
			}
		}
		descs := p.b.SwapFragmentainerDescendants()
		if len(descs) == 0 {
			if p.b.HasMulticolsWithPending() {
				continue
			}
			break
		}
		for _, chunk := range chunkByContainingBlock(descs) {
			p.setState(ResolvingContainingBlocks)
			p.refreshInlineContainingBlocks(chunk)
			p.anchors = p.stitchedAnchors()
			if err := p.layoutFragmentainerDescendants(chunk); err != nil {
				return err
			}
		}
		if err := p.stampRepeatables(); err != nil {
			return err
		}
	}
	if err := p.finishRepeatables(); err != nil {
		return err
	}
	for _, d := range p.delayed {
		p.b.AddFragmentainerDescendant(d)
	}
	p.delayed = nil
	p.setState(Done)
	return nil
}

// chunkByContainingBlock splits descendants into runs sharing a containing
// block box, in tree order, if any of them queries anchors. Anchors laid
// out in one run are visible to the following ones.
func chunkByContainingBlock(descs []fragment.FragmentainerDescendant) [][]fragment.FragmentainerDescendant {
	anchored := false
	for _, d := range descs {
		if d.Box.Style.UsesAnchorFunctions() {
			anchored = true
			break
		}
	}
	if !anchored {
		return [][]fragment.FragmentainerDescendant{descs}
	}
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].Box.Index() < descs[j].Box.Index()
	})
	var chunks [][]fragment.FragmentainerDescendant
	start := 0
	for i := 1; i <= len(descs); i++ {
		if i == len(descs) || descs[i].Box.ContainingBlock() != descs[start].Box.ContainingBlock() {
			chunks = append(chunks, descs[start:i])
			start = i
		}
	}
	return chunks
}

// fragmentainerQueue holds the boxes to lay out in one fragmentainer.
// Continuations from the preceding fragmentainer are laid out first.
type fragmentainerQueue struct {
	continued []*nodeToLayout
	pending   []*nodeToLayout
}

func enqueue(buckets *treemap.Map, index int, nl *nodeToLayout, continued bool) {
	q := &fragmentainerQueue{}
	if v, found := buckets.Get(index); found {
		q = v.(*fragmentainerQueue)
	} else {
		buckets.Put(index, q)
	}
	if continued {
		q.continued = append(q.continued, nl)
	} else {
		q.pending = append(q.pending, nl)
	}
}

// layoutFragmentainerDescendants computes the placement of each descendant,
// sorts it into the fragmentainer it starts in, and lays out fragmentainer
// by fragmentainer. Boxes breaking in one fragmentainer are continued in the
// next one, which is created if necessary.
func (p *Part) layoutFragmentainerDescendants(descs []fragment.FragmentainerDescendant) error {
	slots := p.fragmentainers()
	if len(slots) == 0 {
		return p.invariant("fragmentation context %v has no fragmentainers", p.b.Box)
	}
	buckets := treemap.NewWithIntComparator()
	for i := range descs {
		d := descs[i]
		if p.isDelayed(d) {
			tracer().Debugf("%v: containing block not finished, delaying", d.Box)
			p.delayed = append(p.delayed, d)
			continue
		}
		info, err := p.nodeInfo(d.PositionedNode, &d)
		if err != nil {
			return err
		}
		off, err := p.CalculateOffset(info, true, p.anchors)
		if err != nil {
			return err
		}
		nl := &nodeToLayout{info: info, offset: off, descendant: d}
		if p.isRepeatable(d) {
			p.repeats = append(p.repeats, &repeatable{nl: nl})
			continue
		}
		var clipped *dimen.Dimen
		if d.ContainingBlock.HasClippedContainer {
			c := d.ContainingBlock.ClippedContainerOffset.Block
			clipped = &c
		}
		idx, rel := p.startFragmentainerIndex(slots, off.Offset.Block, off.Dimensions.Size.Block, clipped)
		nl.fragmentainerOffset = rel
		tracer().Debugf("%v starts in fragmentainer %d at %v", d.Box, idx, rel)
		enqueue(buckets, idx, nl, false)
	}
	p.setState(PlacingInFragmentainer)
	for !buckets.Empty() {
		it := buckets.Iterator()
		it.First()
		idx, q := it.Key().(int), it.Value().(*fragmentainerQueue)
		buckets.Remove(idx)
		next, err := p.layoutInFragmentainer(idx, q)
		if err != nil {
			return err
		}
		for _, nl := range next {
			enqueue(buckets, idx+1, nl, true)
		}
		p.setState(PlacingInFragmentainer)
	}
	return nil
}

// isDelayed is true for boxes whose containing block is a column-level box
// still continuing in a later fragment.
func (p *Part) isDelayed(d fragment.FragmentainerDescendant) bool {
	if p.isPaginatedRoot || !d.ContainingBlock.IsSet() || d.ContainingBlock.Ref.IsNil() {
		return false
	}
	arena := p.algo.Arena()
	cb := arena.Fragment(d.ContainingBlock.Ref)
	if cb == nil || cb.Box == nil {
		return false
	}
	frags := arena.FragmentsOf(cb.Box)
	return len(frags) > 0 && frags[len(frags)-1].BreakToken != nil
}

// layoutInFragmentainer lays out the boxes queued for fragmentainer idx and
// adds them to a copy of it, which replaces the fragmentainer. It returns
// the boxes to continue in the next fragmentainer.
func (p *Part) layoutInFragmentainer(idx int, q *fragmentainerQueue) ([]*nodeToLayout, error) {
	slots := p.fragmentainers()
	for idx >= len(slots) {
		if err := p.appendFragmentainer(slots); err != nil {
			return nil, err
		}
		slots = p.fragmentainers()
	}
	slot := slots[idx]
	isLast := idx == len(slots)-1
	fspace := p.fragmentainerSpace(slot)
	arena := p.algo.Arena()
	old, err := arena.Get(slot.ref)
	if err != nil {
		return nil, core.WrapError(err, core.EINVARIANT, "fragmentainer %d of %v", idx, p.b.Box)
	}
	clone := old.Clone()
	var next []*nodeToLayout
	for _, nl := range append(q.continued, q.pending...) {
		res, err := p.layoutOOFNode(nl, &fspace, isLast)
		if err != nil {
			return nil, err
		}
		local := frame.LogicalOffset{Inline: nl.offset.Offset.Inline, Block: nl.fragmentainerOffset}
		local = local.Add(nl.info.CB.RelativeOffset)
		clone.AppendChild(res.Ref, local.ToPhysical(p.b.Writing, clone.Size, res.Fragment.Size))
		if err := p.propagateFromResult(res.Fragment, nl, idx, slot, local); err != nil {
			return nil, err
		}
		if bt := res.BreakToken(); bt != nil {
			cont := *nl
			cont.breakToken = bt
			cont.fragmentainerOffset = 0
			if p.isPaginatedRoot && !bt.IsRepeated {
				cont.fragmentainerOffset = bt.MonolithicOverflow
			}
			tracer().Debugf("%v continues in fragmentainer %d", nl.info.Node, idx+1)
			next = append(next, &cont)
		}
	}
	clone.MarkOutOfFlowDescendants()
	clone.Anchors = fragment.CollectAnchors(arena, clone.Children)
	if _, err := arena.Replace(old, clone); err != nil {
		return nil, core.WrapError(err, core.EINVARIANT, "replacing fragmentainer %d of %v", idx, p.b.Box)
	}
	p.b.MarkOutOfFlowDescendants()
	return next, nil
}

// propagateFromResult collects positioned boxes found while laying out a
// fragmentainer descendant. Boxes it is not the containing block of, and
// boxes placed into fragmentainers from within it, are placed by this part
// in a later round. local is the offset of the result in fragmentainer idx.
func (p *Part) propagateFromResult(f *fragment.Fragment, nl *nodeToLayout, idx int,
	slot fragmentainerSlot, local frame.LogicalOffset) error {
	//
	stitched := frame.LogicalOffset{Inline: local.Inline, Block: slot.stitched + local.Block}
	for _, n := range f.OutOfFlowDescendants {
		d := fragment.FragmentainerDescendant{
			PositionedNode:          n.Shifted(stitched),
			FixedposContainingBlock: nl.info.FixedposContainingBlock,
			FixedposInlineContainer: nl.info.FixedposInline,
		}
		switch {
		case n.Box.LayoutContainer() == p.b.Box:
		case n.Box.Style.Position == style.PositionFixed && nl.info.FixedposContainingBlock.IsSet():
			d.ContainingBlock = nl.info.FixedposContainingBlock
			d.Inline = nl.info.FixedposInline
		case p.outer != nil:
			if err := p.outer.handBack(p, n.Shifted(local), idx); err != nil {
				return err
			}
			continue
		default:
			p.b.AddOutOfFlowDescendant(n.Shifted(slot.offset.Add(local)))
			continue
		}
		p.b.AddFragmentainerDescendant(d)
	}
	for _, d := range f.FragmentainerDescendants {
		p.b.AddFragmentainerDescendant(d.Shifted(stitched))
	}
	for _, m := range f.MulticolsWithPending {
		p.b.AddMulticolWithPending(m)
	}
	return nil
}
