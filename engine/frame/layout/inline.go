package layout

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// Inline containing blocks are formed by the padding boxes of the first and
// the last piece of the inline box, on the first and the last line. If both
// pieces do not overlap, the rectangle collapses to zero size in that axis.

// lineRects holds the union of the pieces of an inline box on its first and
// on its last line.
type lineRects struct {
	start, end frame.LogicalRect
	first      dimen.Dimen // block offset of the first line
	last       dimen.Dimen
	found      bool
}

func (lr *lineRects) add(r frame.LogicalRect) {
	if !lr.found {
		lr.start, lr.end = r, r
		lr.first, lr.last = r.Offset.Block, r.Offset.Block
		lr.found = true
		return
	}
	if r.Offset.Block < lr.first {
		lr.start, lr.first = r, r.Offset.Block
	} else if r.Offset.Block == lr.first {
		lr.start = unionLogical(lr.start, r)
	}
	if r.Offset.Block > lr.last {
		lr.end, lr.last = r, r.Offset.Block
	} else if r.Offset.Block == lr.last {
		lr.end = unionLogical(lr.end, r)
	}
}

func unionLogical(a, b frame.LogicalRect) frame.LogicalRect {
	i0 := dimen.Min(a.Offset.Inline, b.Offset.Inline)
	b0 := dimen.Min(a.Offset.Block, b.Offset.Block)
	i1 := dimen.Max(a.InlineEnd(), b.InlineEnd())
	b1 := dimen.Max(a.BlockEnd(), b.BlockEnd())
	return frame.LogicalRect{
		Offset: frame.LogicalOffset{Inline: i0, Block: b0},
		Size:   frame.LogicalSize{Inline: i1 - i0, Block: b1 - b0},
	}
}

// collectItems adds the pieces of inline box ibox (and of inline boxes inside
// it) found in items, which are relative to a fragment of size outer. shift
// is added to every piece.
func (lr *lineRects) collectItems(items []fragment.Item, ibox *boxtree.Node, wd frame.WritingDirection,
	outer frame.PhysicalSize, shift frame.LogicalOffset) {
	//
	for _, it := range items {
		if it.Box != ibox && !it.Box.IsDescendantOf(ibox) {
			continue
		}
		r := it.Rect.ToLogical(wd, outer)
		r.Offset = r.Offset.Add(shift)
		lr.add(r)
	}
}

// containingBlock turns the line rectangles into the containing block
// rectangle, in writing direction wd.
func (lr *lineRects) containingBlock(ibox *boxtree.Node, wd frame.WritingDirection) frame.LogicalRect {
	border := ibox.Style.PhysicalBorder().ToLogical(wd)
	sameDirection := ibox.Style.Writing == wd
	start := lr.start.Offset
	start.Block += border.BlockStart
	if sameDirection {
		start.Inline += border.InlineStart
	}
	end := frame.LogicalOffset{Inline: lr.end.InlineEnd(), Block: lr.end.BlockEnd()}
	end.Block -= border.BlockEnd
	if sameDirection {
		end.Inline -= border.InlineEnd
	}
	end.Inline = dimen.Max(end.Inline, start.Inline)
	end.Block = dimen.Max(end.Block, start.Block)
	return frame.LogicalRect{
		Offset: start,
		Size:   frame.LogicalSize{Inline: end.Inline - start.Inline, Block: end.Block - start.Block},
	}
}

// computeInlineContainingBlocks precomputes the rectangles of all inline
// containing blocks of a batch of candidates laid out by the builder.
func (p *Part) computeInlineContainingBlocks(candidates []fragment.PositionedNode) {
	for _, c := range candidates {
		if c.Inline == nil || !p.isContainingBlockFor(c) {
			continue
		}
		if _, done := p.inlineCBs[c.Inline.Box]; done {
			continue
		}
		var lr lineRects
		lr.collectItems(p.b.Items(), c.Inline.Box, p.b.Writing, p.b.PhysicalSize(), frame.LogicalOffset{})
		if !lr.found {
			tracer().Debugf("inline containing block %v has no pieces", c.Inline.Box)
			continue
		}
		rect := lr.containingBlock(c.Inline.Box, p.b.Writing)
		p.inlineCBs[c.Inline.Box] = ContainingBlockInfo{
			Writing:           c.Inline.Box.Style.Writing,
			Rect:              rect,
			RelativeOffset:    c.Inline.RelativeOffset,
			OffsetToBorderBox: rect.Offset.Sub(c.Inline.RelativeOffset),
		}
		tracer().Debugf("inline containing block %v: %v", c.Inline.Box, rect)
	}
}

// refreshInlineContainingBlocks recomputes the inline containing blocks of a
// run of fragmentainer descendants. Placing an earlier run replaces the
// fragments the rectangles are derived from.
func (p *Part) refreshInlineContainingBlocks(descendants []fragment.FragmentainerDescendant) {
	for _, d := range descendants {
		if d.Inline != nil && d.ContainingBlock.IsSet() {
			delete(p.inlineCBs, d.Inline.Box)
		}
	}
	p.computeFragmentedInlineContainingBlocks(descendants)
}

// computeFragmentedInlineContainingBlocks does the same for fragmentainer
// descendants. The pieces are collected from all fragments of the block
// containing the inline box, stitched together.
func (p *Part) computeFragmentedInlineContainingBlocks(descendants []fragment.FragmentainerDescendant) {
	arena := p.algo.Arena()
	for _, d := range descendants {
		if d.Inline == nil || !d.ContainingBlock.IsSet() {
			continue
		}
		if _, done := p.inlineCBs[d.Inline.Box]; done {
			continue
		}
		cbFrag := arena.Fragment(d.ContainingBlock.Ref)
		if cbFrag == nil || cbFrag.Box == nil {
			continue
		}
		var lr lineRects
		wd := p.b.Writing
		for _, f := range arena.FragmentsOf(cbFrag.Box) {
			shift := frame.LogicalOffset{Block: f.ConsumedBlockSize}
			lr.collectItems(f.Items, d.Inline.Box, wd, f.Size, shift)
		}
		if !lr.found {
			continue
		}
		rect := lr.containingBlock(d.Inline.Box, wd)
		rect.Offset = rect.Offset.Add(d.ContainingBlock.Offset).Sub(d.Inline.RelativeOffset)
		p.inlineCBs[d.Inline.Box] = ContainingBlockInfo{
			Writing:           d.Inline.Box.Style.Writing,
			Rect:              rect,
			RelativeOffset:    d.Inline.RelativeOffset,
			OffsetToBorderBox: d.ContainingBlock.Offset,
		}
		tracer().Debugf("fragmented inline containing block %v: %v", d.Inline.Box, rect)
	}
}
