package flow

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// maxFragmentainers bounds the columns of a row and the pages of a document.
const maxFragmentainers = 1000

// layoutMulticol lays out a multi-column container. The content between
// column spanners forms rows of columns. Rows are balanced unless the block
// size of the container is fixed, in which case the last row fills the space
// left. Content not fitting into the columns of a row continues in overflow
// columns in the inline direction. A multi-column container is not broken
// by an outer fragmentation context.
func (e *Engine) layoutMulticol(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error) {
	sb := n.Layout.Scrollbars
	if space.ScrollbarsFrozen {
		sb = space.FrozenScrollbars
	}
	b := e.newBuilder(n, space, sb)
	b.IsFragmentationContextRoot = true
	bp := b.ContentStrut()
	b.InlineSize = e.inlineSize(n, space, bp)
	total, fixed := e.blockSize(n, space, bp)
	count := n.Style.ColumnCount
	if count < 1 {
		count = 1
	}
	gap := n.Style.ColumnGap
	avail := dimen.Max(0, b.InlineSize-bp.InlineSum())
	cw := dimen.Max(0, (avail-dimen.Dimen(count-1)*gap)/dimen.Dimen(count))
	items := flowItems(n)
	mc := &multicol{e: e, b: b, n: n, items: items, count: count, gap: gap, width: cw, bp: bp}
	mc.cursor = bp.BlockStart
	for from := 0; from < len(items); {
		to := from
		for to < len(items) && !isSpanner(items[to]) {
			to++
		}
		if to > from {
			var colH dimen.Dimen
			if fixed && to == len(items) {
				colH = dimen.Max(0, total-bp.BlockEnd-mc.cursor)
			} else {
				h, err := mc.balance(from, to)
				if err != nil {
					return nil, err
				}
				colH = h
			}
			if err := mc.row(from, to, colH); err != nil {
				return nil, err
			}
		}
		if to < len(items) {
			if err := mc.spanner(items[to].block); err != nil {
				return nil, err
			}
			to++
		}
		from = to
	}
	if len(b.Children()) == 0 {
		// an empty row, for positioned boxes to be placed into
		colH := lineHeight(n.Style)
		if fixed {
			colH = dimen.Max(0, total-bp.BlockEnd-mc.cursor)
		}
		if err := mc.row(len(items), len(items), colH); err != nil {
			return nil, err
		}
	}
	if fixed {
		b.BlockSize = total
	} else {
		b.BlockSize = mc.cursor + bp.BlockEnd
	}
	if bt != nil {
		tracer().Infof("multicol %v is not fragmented, ignoring %v", n, bt)
	}
	tracer().Debugf("multicol %v: %d columns of %v, %v", n, mc.columns, cw, b.Size())
	return e.finish(b)
}

func isSpanner(it flowItem) bool {
	return it.block != nil && it.block.IsSpanner()
}

// multicol holds the state of laying out the rows of a multi-column
// container.
type multicol struct {
	e        *Engine
	b        *fragment.Builder
	n        *boxtree.Node
	items    []flowItem
	count    int
	gap      dimen.Dimen
	width    dimen.Dimen // column inline size
	bp       frame.LogicalStrut
	cursor   dimen.Dimen // block offset of the next row
	stitched dimen.Dimen // stitched offset of the next column
	columns  int
}

func (mc *multicol) columnSpace(colH dimen.Dimen) frame.ConstraintSpace {
	size := frame.LogicalSize{Inline: mc.width, Block: colH}
	cs := frame.NewSpace(mc.b.Writing, size, size)
	cs.FixedInline, cs.FixedBlock = true, true
	cs.Fragmentation = frame.FragmentColumn
	cs.FragmentainerBlockSize = colH
	cs.InsideRepeatableContent = mc.b.Space.InsideRepeatableContent
	cs.IsMeasure = mc.b.Space.IsMeasure
	return cs
}

// balance measures the content of items [from, to) in a single column and
// returns the column height distributing it evenly.
func (mc *multicol) balance(from, to int) (dimen.Dimen, error) {
	size := frame.LogicalSize{Inline: mc.width, Block: frame.Indefinite}
	ms := frame.NewSpace(mc.b.Writing, size, size)
	ms.FixedInline = true
	ms.IsMeasure = true
	mb := fragment.NewBuilder(mc.e.arena, nil, fragment.ColumnFragment, ms)
	mb.InlineSize = mc.width
	fs := mc.e.newFlow(mb, mc.n, ms, size, frame.LogicalOffset{}, mc.items)
	fs.end = to
	if _, err := fs.flow(&frame.BreakToken{ChildIndex: from}); err != nil {
		return 0, err
	}
	mb.SwapCandidates()
	h := (fs.cursor + dimen.Dimen(mc.count) - 1) / dimen.Dimen(mc.count)
	if h <= 0 {
		h = lineHeight(mc.n.Style)
	}
	tracer().Debugf("multicol %v: content height %v, balanced to %v", mc.n, fs.cursor, h)
	return h, nil
}

// row lays out items [from, to) into columns of block size colH.
func (mc *multicol) row(from, to int, colH dimen.Dimen) error {
	pos := &frame.BreakToken{ChildIndex: from}
	for col := 0; ; col++ {
		if col >= maxFragmentainers {
			return core.Error(core.ELAYOUT, "multicol %v: content does not fit into %d columns", mc.n, col)
		}
		cs := mc.columnSpace(colH)
		cb := fragment.NewBuilder(mc.e.arena, nil, fragment.ColumnFragment, cs)
		cb.InlineSize, cb.BlockSize = mc.width, colH
		fs := mc.e.newFlow(cb, mc.n, cs, cs.Available, frame.LogicalOffset{}, mc.items)
		fs.end = to
		next, err := fs.flow(pos)
		if err != nil {
			return err
		}
		cf := cb.ToFragment()
		offset := frame.LogicalOffset{
			Inline: mc.bp.InlineStart + dimen.Dimen(col)*(mc.width+mc.gap),
			Block:  mc.cursor,
		}
		mc.b.AddFragmentainer(cf.Ref(), offset, mc.stitched)
		mc.stitched += colH
		mc.columns++
		if col >= mc.count {
			tracer().Debugf("multicol %v: overflow column %d", mc.n, col)
		}
		if next == nil {
			break
		}
		pos = next
	}
	mc.cursor += colH
	return nil
}

// spanner lays out a column spanner across the full content box.
func (mc *multicol) spanner(c *boxtree.Node) error {
	e, wd := mc.e, mc.b.Writing
	inline := dimen.Max(0, mc.b.InlineSize-mc.bp.InlineSum())
	m := e.margins(c, wd, inline)
	mc.cursor += m.BlockStart
	avail := frame.LogicalSize{Inline: inline, Block: frame.Indefinite}
	cs := frame.NewSpace(wd, avail, avail)
	cs.InsideRepeatableContent = mc.b.Space.InsideRepeatableContent
	cs.IsMeasure = mc.b.Space.IsMeasure
	res, err := e.Layout(c, cs, nil)
	if err != nil {
		return err
	}
	offset := frame.LogicalOffset{Inline: mc.bp.InlineStart + m.InlineStart, Block: mc.cursor}
	mc.b.AddSpanner(res.Ref, offset, mc.stitched)
	mc.cursor += res.Fragment.BlockSize(wd.Mode) + m.BlockEnd
	return nil
}

// layoutPages lays out a paginated root. Pages are stacked in the block
// direction; the root fragment holds them as fragmentainers.
func (e *Engine) layoutPages(root *boxtree.Node) (*fragment.Result, error) {
	wd := root.Style.Writing
	page := e.cfg.PageSize.ToLogical(wd.Mode)
	rs := frame.NewSpace(wd, page, page)
	rs.FixedInline = true
	b := fragment.NewBuilder(e.arena, root, fragment.BoxFragment, rs)
	b.IsFragmentationContextRoot = true
	b.InlineSize = page.Inline
	items := flowItems(root)
	var bt *frame.BreakToken
	var stitched dimen.Dimen
	for i := 0; ; i++ {
		if i >= maxFragmentainers {
			return nil, core.Error(core.ELAYOUT, "document does not fit into %d pages", i)
		}
		ps := frame.NewSpace(wd, page, page)
		ps.FixedInline, ps.FixedBlock = true, true
		ps.Fragmentation = frame.FragmentPage
		ps.FragmentainerBlockSize = page.Block
		pb := fragment.NewBuilder(e.arena, nil, fragment.PageFragment, ps)
		pb.InlineSize, pb.BlockSize = page.Inline, page.Block
		fs := e.newFlow(pb, root, ps, page, frame.LogicalOffset{}, items)
		next, err := fs.flow(bt)
		if err != nil {
			return nil, err
		}
		pf := pb.ToFragment()
		b.AddFragmentainer(pf.Ref(), frame.LogicalOffset{Block: stitched}, stitched)
		stitched += page.Block
		tracer().Debugf("page %d: %v", i, pf)
		if next == nil {
			break
		}
		bt = nextToken(bt, page.Block, next, len(items))
	}
	b.BlockSize = stitched
	return e.finish(b)
}
