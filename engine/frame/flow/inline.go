package flow

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// flowItem is a part of the content of a block container: an in-flow block
// child, a run of inline content, or a positioned child between them.
type flowItem struct {
	block *boxtree.Node
	run   *inlineRun
	oof   *boxtree.Node
}

// atom is an unbreakable piece of inline content.
type atom struct {
	width dimen.Dimen
	owner *boxtree.Node // box the words belong to
}

// marker is a positioned box inside a run, in front of atom at.
type marker struct {
	at  int
	box *boxtree.Node
}

// inlineRun is the content of an inline formatting context.
type inlineRun struct {
	atoms   []atom
	markers []marker
	opened  map[*boxtree.Node]int // first atom of each inline box
	closed  map[*boxtree.Node]int // atom following the last one of each inline box
}

func newRun() *inlineRun {
	return &inlineRun{
		opened: make(map[*boxtree.Node]int),
		closed: make(map[*boxtree.Node]int),
	}
}

// collect adds inline-level box n and its content to the run.
func (r *inlineRun) collect(n *boxtree.Node) {
	r.opened[n] = len(r.atoms)
	for _, w := range n.Words {
		r.atoms = append(r.atoms, atom{width: w, owner: n})
	}
	if n.Kind == boxtree.ReplacedBox {
		w := n.Intrinsic.ToLogical(n.Style.Writing.Mode).Inline
		r.atoms = append(r.atoms, atom{width: w, owner: n})
	}
	for _, c := range n.Children() {
		switch {
		case c.Style.Display == style.DisplayNone:
		case c.IsOutOfFlowPositioned():
			r.markers = append(r.markers, marker{at: len(r.atoms), box: c})
		default:
			r.collect(c)
		}
	}
	r.closed[n] = len(r.atoms)
}

// flowItems splits the children of n into flow items. Consecutive
// inline-level children form one run, as does the text of n itself.
func flowItems(n *boxtree.Node) []flowItem {
	var items []flowItem
	var run *inlineRun
	closeRun := func() {
		if run != nil {
			items = append(items, flowItem{run: run})
			run = nil
		}
	}
	if len(n.Words) > 0 {
		run = newRun()
		for _, w := range n.Words {
			run.atoms = append(run.atoms, atom{width: w, owner: n})
		}
	}
	for _, c := range n.Children() {
		switch {
		case c.Style.Display == style.DisplayNone:
		case c.IsOutOfFlowPositioned():
			if run != nil {
				run.markers = append(run.markers, marker{at: len(run.atoms), box: c})
				continue
			}
			items = append(items, flowItem{oof: c})
		case c.IsInlineLevel():
			if run == nil {
				run = newRun()
			}
			run.collect(c)
		default:
			closeRun()
			items = append(items, flowItem{block: c})
		}
	}
	closeRun()
	return items
}

// line is a line box of a run.
type line struct {
	from, to int // atoms
}

// breakLines distributes the atoms of r greedily onto lines of the given
// width. An atom wider than the line gets a line of its own.
func (r *inlineRun) breakLines(width dimen.Dimen) []line {
	var lines []line
	cur := line{}
	var x dimen.Dimen
	for i, a := range r.atoms {
		if x > 0 && x+a.width > width {
			cur.to = i
			lines = append(lines, cur)
			cur, x = line{from: i}, 0
		}
		x += a.width
	}
	cur.to = len(r.atoms)
	if cur.to > cur.from || len(r.markers) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// lineContext places the lines of a run into a builder.
type lineContext struct {
	b         *fragment.Builder
	self      *boxtree.Node // block container of the run
	run       *inlineRun
	origin    frame.LogicalOffset // inline start of the content box
	height    dimen.Dimen
	inlineEnd dimen.Dimen // widest line so far, relative to origin
}

// placeLine adds line l of the run at block offset block, with item
// rectangles for every inline box on it, and candidates for the positioned
// boxes in front of its atoms.
func (lc *lineContext) placeLine(l line, isLast bool, block dimen.Dimen) {
	b := lc.b
	outer := b.PhysicalSize()
	var x dimen.Dimen
	pieces := make(map[*boxtree.Node]*frame.LogicalRect)
	var order []*boxtree.Node
	addPiece := func(owner *boxtree.Node, start, w dimen.Dimen) {
		if pr, ok := pieces[owner]; ok {
			pr.Size.Inline = start + w - pr.Offset.Inline
			return
		}
		pieces[owner] = &frame.LogicalRect{
			Offset: frame.LogicalOffset{Inline: start, Block: block},
			Size:   frame.LogicalSize{Inline: w, Block: lc.height},
		}
		order = append(order, owner)
	}
	mk := 0
	for mk < len(lc.run.markers) && lc.run.markers[mk].at < l.from {
		mk++
	}
	for i := l.from; i <= l.to; i++ {
		for ; mk < len(lc.run.markers) && lc.run.markers[mk].at == i; mk++ {
			if i == l.to && !isLast {
				break
			}
			lc.addMarker(lc.run.markers[mk].box, x, block)
		}
		if i == l.to {
			break
		}
		a := lc.run.atoms[i]
		for owner := a.owner; owner != nil && owner != lc.self; owner = owner.Parent() {
			addPiece(owner, x, a.width)
			if owner.Kind != boxtree.InlineBox {
				break
			}
		}
		x += a.width
	}
	for _, owner := range order {
		r := *pieces[owner]
		lc.decorate(owner, &r, l)
		r.Offset = r.Offset.Add(lc.origin)
		b.AddItem(fragment.Item{Box: owner, Rect: r.ToPhysical(b.Writing, outer)})
	}
	lc.inlineEnd = dimen.Max(lc.inlineEnd, x)
}

// decorate grows the piece of an inline box by its borders and padding: in
// the block direction always, in the inline direction at the start and the
// end of the box.
func (lc *lineContext) decorate(owner *boxtree.Node, r *frame.LogicalRect, l line) {
	if owner.Kind != boxtree.InlineBox {
		return
	}
	wd := lc.b.Writing
	bp := owner.Style.PhysicalBorder().Add(owner.Style.PhysicalPadding(0)).ToLogical(wd)
	r.Offset.Block -= bp.BlockStart
	r.Size.Block += bp.BlockSum()
	if first, ok := lc.run.opened[owner]; ok && first >= l.from && first < l.to {
		r.Offset.Inline -= bp.InlineStart
		r.Size.Inline += bp.InlineStart
	}
	if end, ok := lc.run.closed[owner]; ok && end > l.from && end <= l.to {
		r.Size.Inline += bp.InlineEnd
	}
}

// addMarker registers a positioned box found in a line as a candidate of
// the builder. Its static position is the current pen position.
func (lc *lineContext) addMarker(c *boxtree.Node, x, block dimen.Dimen) {
	pn := fragment.PositionedNode{
		Box: c,
		Static: fragment.StaticPosition{
			Offset: lc.origin.Add(frame.LogicalOffset{Inline: x, Block: block}),
		},
	}
	if ic := c.InlineContainer(); ic != nil {
		pn.Inline = &fragment.InlineContainer{Box: ic, RelativeOffset: fragment.RelativeOffset(ic.Style)}
	}
	tracer().Debugf("positioned %v in line at %v", c, pn.Static.Offset)
	lc.b.AddCandidate(pn)
}

func lineHeight(st *style.Style) dimen.Dimen {
	if st.LineHeight > 0 {
		return st.LineHeight
	}
	return style.DefaultLineHeight
}
