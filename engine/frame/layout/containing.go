package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// ContainingBlockInfo is the containing block of a positioned box as seen
// from the builder laying it out.
type ContainingBlockInfo struct {
	// Writing is the writing direction of the containing block box.
	Writing frame.WritingDirection
	// Rect is the content rectangle of the containing block, relative to the
	// border box of the builder (or the stitched coordinate space of a
	// fragmentation context root), in the builder's writing direction.
	Rect frame.LogicalRect
	// RelativeOffset of a relatively positioned containing block, applied
	// after fragmentation.
	RelativeOffset frame.LogicalOffset
	// OffsetToBorderBox is the offset of the border box of the containing
	// block, in the same coordinates as Rect.
	OffsetToBorderBox frame.LogicalOffset
}

// PhysicalSize returns the size of the content rectangle.
func (cb ContainingBlockInfo) PhysicalSize(builderWM frame.WritingMode) frame.PhysicalSize {
	return cb.Rect.Size.ToPhysical(builderWM)
}

type cbKey struct {
	context *boxtree.Node
	cb      *boxtree.Node
}

// containingBlockInfo resolves the containing block of a positioned box.
// cb is nil for boxes which are not fragmentainer descendants.
func (p *Part) containingBlockInfo(n *boxtree.Node, inline *fragment.InlineContainer,
	cb *fragment.ContainingBlock) (ContainingBlockInfo, error) {
	//
	if inline != nil {
		if info, ok := p.inlineCBs[inline.Box]; ok {
			return info, nil
		}
		tracer().Debugf("no geometry for inline containing block %v, using default", inline.Box)
	}
	if cb != nil && cb.IsSet() {
		if cb.Rect != nil {
			return ContainingBlockInfo{
				Writing:           p.b.Writing,
				Rect:              *cb.Rect,
				RelativeOffset:    cb.RelativeOffset,
				OffsetToBorderBox: cb.Offset,
			}, nil
		}
		return p.fragmentedContainingBlock(n, cb)
	}
	info := p.defaultContainingBlock(n.Style.Position)
	if p.b.Box.Kind == boxtree.TableGridBox && hasGridPlacement(n.Style) {
		info.Rect = gridArea(p.b.Box.Style, info.Rect, n.Style)
	}
	return info, nil
}

// defaultContainingBlock returns the containing block rectangle given by the
// builder itself, for absolute or fixed positioning.
func (p *Part) defaultContainingBlock(pos style.Position) ContainingBlockInfo {
	i := 0
	if pos == style.PositionFixed {
		i = 1
	}
	if p.defaults[i] != nil {
		return *p.defaults[i]
	}
	b := p.b
	size := b.Size()
	if size.Block == frame.Indefinite {
		tracer().Debugf("containing block %v has indefinite block size, using 0", b.Box)
		size.Block = 0
	}
	strut := b.ContentStrut()
	if i == 1 && b.Box.IsRoot() && !p.isPaginatedRoot && p.cfg.Viewport != (frame.PhysicalSize{}) {
		size = p.cfg.Viewport.ToLogical(b.Writing.Mode)
		strut = frame.LogicalStrut{}
	}
	info := &ContainingBlockInfo{
		Writing: b.Writing,
		Rect: frame.LogicalRect{
			Offset: strut.StartOffset(),
			Size:   size.Shrink(strut),
		},
	}
	if p.isFragmentationRoot {
		// at the origin of the stitched space; for pages the initial
		// containing block is the page area of the first page
		info.Rect.Offset = frame.LogicalOffset{}
		if p.isPaginatedRoot {
			info.Rect.Size = p.cfg.PageSize.ToLogical(b.Writing.Mode)
		}
	}
	p.defaults[i] = info
	return *info
}

// fragmentedContainingBlock derives the containing block from the fragments
// of a containing block box inside a fragmentation context. The rectangle
// spans all fragments of the box.
func (p *Part) fragmentedContainingBlock(n *boxtree.Node, cb *fragment.ContainingBlock) (ContainingBlockInfo, error) {
	arena := p.algo.Arena()
	f, err := arena.Get(cb.Ref)
	if err != nil {
		return ContainingBlockInfo{}, core.WrapError(err, core.EINVARIANT,
			"containing block fragment of %v", n)
	}
	grid := f.Box != nil && f.Box.Kind == boxtree.TableGridBox && hasGridPlacement(n.Style)
	key := cbKey{context: p.b.Box, cb: f.Box}
	if !grid {
		if info, ok := p.cache.containingBlock(key); ok {
			return info, nil
		}
	}
	wd := p.b.Writing
	frags := arena.FragmentsOf(f.Box)
	if len(frags) == 0 {
		frags = []*fragment.Fragment{f}
	}
	first, last := frags[0], frags[len(frags)-1]
	var total dimen.Dimen
	for _, fr := range frags {
		total += fr.BlockSize(wd.Mode)
	}
	strut := first.ContentStrut().ToLogical(wd)
	strut.BlockEnd = last.ContentStrut().ToLogical(wd).BlockEnd
	size := frame.LogicalSize{Inline: first.Size.ToLogical(wd.Mode).Inline, Block: total}
	info := ContainingBlockInfo{
		Writing: f.Box.Style.Writing,
		Rect: frame.LogicalRect{
			Offset: cb.Offset.Add(strut.StartOffset()),
			Size:   size.Shrink(strut),
		},
		RelativeOffset:    cb.RelativeOffset,
		OffsetToBorderBox: cb.Offset,
	}
	if grid {
		info.Rect = gridArea(f.Box.Style, info.Rect, n.Style)
		return info, nil
	}
	p.cache.storeContainingBlock(key, info)
	return info, nil
}

// --- Grid areas ------------------------------------------------------------

func hasGridPlacement(st *style.Style) bool {
	return !st.GridColumn.IsAuto() || !st.GridRow.IsAuto()
}

// gridArea narrows the content rectangle of a grid container to the area
// between the grid lines a positioned box is placed at. Grids are
// horizontal-tb with columns along the inline axis.
func gridArea(grid *style.Style, content frame.LogicalRect, st *style.Style) frame.LogicalRect {
	area := content
	area.Offset.Inline, area.Size.Inline = gridSpan(grid.GridColumns, grid.ColumnGap,
		content.Offset.Inline, content.Size.Inline, st.GridColumn)
	area.Offset.Block, area.Size.Block = gridSpan(grid.GridRows, 0,
		content.Offset.Block, content.Size.Block, st.GridRow)
	tracer().Debugf("grid area for %v/%v is %v", st.GridColumn, st.GridRow, area)
	return area
}

// gridSpan returns start and size of the span between two grid lines. Auto
// lines refer to the content edges.
func gridSpan(tracks []dimen.Dimen, gap, start, size dimen.Dimen, lines style.GridLines) (dimen.Dimen, dimen.Dimen) {
	if lines.IsAuto() {
		return start, size
	}
	// trackStart is the start of track k (1-based), trackEnd its end
	trackStart := func(k int) dimen.Dimen {
		pos := start
		for i := 0; i < k-1 && i < len(tracks); i++ {
			pos += tracks[i] + gap
		}
		return pos
	}
	trackEnd := func(k int) dimen.Dimen {
		if k < 1 {
			return start
		}
		if k > len(tracks) {
			return start + size
		}
		return trackStart(k) + tracks[k-1]
	}
	from, to := start, start+size
	if lines.Start > 0 {
		from = trackStart(lines.Start)
	}
	if lines.End > 0 {
		to = trackEnd(lines.End - 1)
	} else if lines.Start > 0 {
		to = trackEnd(lines.Start)
	}
	if to < from {
		to = from
	}
	return from, to - from
}
