package flow

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// flowState tracks the progress through the content of a box in the block
// direction. Offsets are relative to the border box of the builder.
type flowState struct {
	e         *Engine
	b         *fragment.Builder
	n         *boxtree.Node // box the content belongs to
	space     frame.ConstraintSpace
	items     []flowItem
	end       int               // item to stop at
	content   frame.LogicalSize // block size may be indefinite
	start     frame.LogicalOffset
	cursor    dimen.Dimen
	limit     dimen.Dimen // end of the fragmentainer
	inlineEnd dimen.Dimen // widest content, relative to start
	overflow  dimen.Dimen // monolithic content beyond limit
	placed    bool        // content placed in this fragment
}

func (e *Engine) newFlow(b *fragment.Builder, n *boxtree.Node, space frame.ConstraintSpace,
	content frame.LogicalSize, start frame.LogicalOffset, items []flowItem) *flowState {
	//
	return &flowState{
		e:       e,
		b:       b,
		n:       n,
		space:   space,
		items:   items,
		end:     len(items),
		content: content,
		start:   start,
		cursor:  start.Block,
		limit:   space.FragmentainerSpaceLeft(),
	}
}

func (fs *flowState) fragmenting() bool {
	return fs.space.HasBlockFragmentation()
}

// flow lays out the items between the one bt points to and fs.end. It
// returns a token for the content left, or nil. ChildIndex of the token is
// the item to resume at, Child the break inside that item.
func (fs *flowState) flow(bt *frame.BreakToken) (*frame.BreakToken, error) {
	from := 0
	var inner *frame.BreakToken
	if bt != nil {
		from, inner = bt.ChildIndex, bt.Child
	}
	for i := from; i < fs.end; i++ {
		it := fs.items[i]
		var ibt *frame.BreakToken
		if i == from {
			ibt = inner
		}
		if fs.fragmenting() && fs.overflow > 0 && fs.placed {
			return &frame.BreakToken{ChildIndex: i, IsBreakBefore: true, MonolithicOverflow: fs.overflow}, nil
		}
		switch {
		case it.oof != nil:
			pn := fragment.PositionedNode{Box: it.oof}
			pn.Static.Offset = frame.LogicalOffset{Inline: fs.start.Inline, Block: fs.cursor}
			pn.RequiresContentBeforeBreaking = fs.space.RequiresContentBeforeBreaking && !fs.placed
			fs.b.AddCandidate(pn)
		case it.block != nil:
			cbt, broke, err := fs.block(it.block, ibt)
			if err != nil {
				return nil, err
			}
			if broke {
				return &frame.BreakToken{ChildIndex: i, Child: cbt, IsBreakBefore: cbt == nil}, nil
			}
		case it.run != nil:
			if cbt := fs.lines(it.run, ibt); cbt != nil {
				return &frame.BreakToken{ChildIndex: i, Child: cbt}, nil
			}
		}
	}
	return nil, nil
}

// block lays out an in-flow block child. broke is set if the content breaks
// before or inside the child; the token is nil for a break before it.
func (fs *flowState) block(c *boxtree.Node, bt *frame.BreakToken) (*frame.BreakToken, bool, error) {
	e, wd := fs.e, fs.space.Writing
	if fs.fragmenting() && fs.placed && fs.cursor >= fs.limit {
		return nil, true, nil
	}
	m := e.margins(c, wd, fs.content.Inline)
	top := fs.cursor
	if bt == nil {
		fs.cursor += m.BlockStart
	}
	avail := frame.LogicalSize{Inline: fs.content.Inline, Block: frame.Indefinite}
	cs := frame.NewSpace(wd, avail, fs.content)
	cs.InsideRepeatableContent = fs.space.InsideRepeatableContent
	cs.IsMeasure = fs.space.IsMeasure
	fragmented := fs.fragmenting() && e.ParticipatesInFragmentation(c)
	if fragmented {
		cs.Fragmentation = fs.space.Fragmentation
		cs.FragmentainerBlockSize = fs.space.FragmentainerBlockSize
		cs.FragmentainerOffset = fs.space.FragmentainerOffset + fs.cursor
		cs.RequiresContentBeforeBreaking = fs.space.RequiresContentBeforeBreaking && !fs.placed
	}
	res, err := e.Layout(c, cs, bt)
	if err != nil {
		return nil, false, err
	}
	size := res.Fragment.BlockSize(wd.Mode)
	if fs.fragmenting() && !fragmented && fs.placed && fs.cursor+size > fs.limit {
		tracer().Debugf("%v does not fit, break before", c)
		fs.cursor = top
		return nil, true, nil
	}
	offset := frame.LogicalOffset{Inline: fs.start.Inline + m.InlineStart, Block: fs.cursor}
	fs.b.AddResult(res, offset.Add(fragment.RelativeOffset(c.Style)))
	fs.placed = true
	fs.cursor += size
	fs.inlineEnd = dimen.Max(fs.inlineEnd, m.InlineStart+res.Fragment.LogicalSize().Inline+m.InlineEnd)
	if cbt := res.BreakToken(); cbt != nil {
		return cbt, true, nil
	}
	if fs.fragmenting() && !fragmented && fs.cursor > fs.limit && fs.space.Fragmentation == frame.FragmentPage {
		fs.overflow = fs.cursor - fs.limit
		tracer().Debugf("%v overflows the page by %v", c, fs.overflow)
	}
	fs.cursor += m.BlockEnd
	return nil, false, nil
}

// lines lays out the lines of a run, starting at the line bt points to.
func (fs *flowState) lines(run *inlineRun, bt *frame.BreakToken) *frame.BreakToken {
	lh := lineHeight(fs.n.Style)
	lines := run.breakLines(fs.content.Inline)
	from := 0
	if bt != nil {
		from = bt.ChildIndex
	}
	lc := &lineContext{
		b:      fs.b,
		self:   fs.n,
		run:    run,
		origin: frame.LogicalOffset{Inline: fs.start.Inline},
		height: lh,
	}
	for j := from; j < len(lines); j++ {
		if fs.fragmenting() && fs.placed && fs.cursor+lh > fs.limit {
			return &frame.BreakToken{ChildIndex: j}
		}
		lc.placeLine(lines[j], j == len(lines)-1, fs.cursor)
		fs.cursor += lh
		fs.placed = true
	}
	fs.inlineEnd = dimen.Max(fs.inlineEnd, lc.inlineEnd)
	return nil
}

// nextToken creates the break token of a fragment of block size size.
// content is the break inside the content, or nil if all content has been
// laid out.
func nextToken(bt *frame.BreakToken, size dimen.Dimen, content *frame.BreakToken, items int) *frame.BreakToken {
	t := bt.Next(size)
	if content == nil {
		t.ChildIndex = items
		return t
	}
	t.ChildIndex = content.ChildIndex
	t.Child = content.Child
	t.IsBreakBefore = content.IsBreakBefore
	t.MonolithicOverflow = content.MonolithicOverflow
	return t
}

// layoutBlock lays out a block container. Fragments of a box broken across
// fragmentainers each carry the block-start border and padding.
func (e *Engine) layoutBlock(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error) {
	sb := n.Layout.Scrollbars
	if space.ScrollbarsFrozen {
		sb = space.FrozenScrollbars
	}
	b := e.newBuilder(n, space, sb)
	b.ConsumedBlockSize = bt.Consumed()
	bp := b.ContentStrut()
	b.InlineSize = e.inlineSize(n, space, bp)
	total, fixed := e.blockSize(n, space, bp)
	content := frame.LogicalSize{Inline: dimen.Max(0, b.InlineSize-bp.InlineSum()), Block: frame.Indefinite}
	if fixed {
		content.Block = dimen.Max(0, total-bp.BlockSum())
	}
	items := flowItems(n)
	fs := e.newFlow(b, n, space, content, bp.StartOffset(), items)
	cbt, err := fs.flow(bt)
	if err != nil {
		return nil, err
	}
	contentEnd := fs.cursor
	switch {
	case fixed:
		remaining := dimen.Max(0, total-bt.Consumed())
		if b.HasBlockFragmentation() && remaining > fs.limit {
			b.BlockSize = fs.limit
			b.BreakToken = nextToken(bt, fs.limit, cbt, len(items))
		} else {
			b.BlockSize = remaining
			if cbt != nil {
				b.BreakToken = nextToken(bt, remaining, cbt, len(items))
			}
		}
	case cbt != nil:
		b.BlockSize = dimen.Max(fs.limit, contentEnd)
		b.BreakToken = nextToken(bt, b.BlockSize, cbt, len(items))
	default:
		b.BlockSize = contentEnd + bp.BlockEnd
	}
	e.updateScrollbars(n, space, fs, fixed && contentEnd+bp.BlockEnd > total)
	tracer().Debugf("block %v: %v, %v", n, b.Size(), b.BreakToken)
	return e.finish(b)
}

// updateScrollbars records the scrollbars a scroll container needs after
// layout. A change marks the intrinsic inline sizes of n as dirty. Frozen
// scrollbars are kept.
func (e *Engine) updateScrollbars(n *boxtree.Node, space frame.ConstraintSpace, fs *flowState, blockOverflow bool) {
	if !n.Style.IsScrollContainer() {
		return
	}
	needs := func(o style.Overflow, overflows bool) bool {
		return o == style.OverflowScroll || (o == style.OverflowAuto && overflows)
	}
	inlineOverflow := fs.inlineEnd > fs.content.Inline
	ox, oy := n.Style.OverflowX, n.Style.OverflowY
	var sb frame.Scrollbars
	if space.Writing.IsHorizontal() {
		sb = frame.Scrollbars{Horizontal: needs(ox, inlineOverflow), Vertical: needs(oy, blockOverflow)}
	} else {
		sb = frame.Scrollbars{Horizontal: needs(ox, blockOverflow), Vertical: needs(oy, inlineOverflow)}
	}
	if space.ScrollbarsFrozen {
		sb.Horizontal = sb.Horizontal || space.FrozenScrollbars.Horizontal
		sb.Vertical = sb.Vertical || space.FrozenScrollbars.Vertical
	}
	if sb != n.Layout.Scrollbars {
		tracer().Debugf("%v: scrollbars %+v -> %+v", n, n.Layout.Scrollbars, sb)
		n.Layout.Scrollbars = sb
		n.Layout.IntrinsicWidthsDirty = true
	}
}
