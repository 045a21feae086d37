package layout

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
)

// --- Anchor functions ------------------------------------------------------

// anchorEvaluator resolves `anchor()` insets of one candidate style. All
// geometry is physical and relative to the containing block rectangle.
type anchorEvaluator struct {
	query         anchor.Query
	origin        frame.PhysicalOffset // of the containing block rect, in query coordinates
	cbSize        frame.PhysicalSize
	writing       frame.WritingDirection // of the candidate, for start and end sides
	defaultAnchor string
	bounds        string // position-fallback-bounds
	used          bool
	scrollX       bool
	scrollY       bool
}

// lookup finds an anchor box. An empty name denotes the default anchor.
func (ev *anchorEvaluator) lookup(name string) (frame.PhysicalRect, bool, bool) {
	if name == "" {
		name = ev.defaultAnchor
	}
	if ev.query == nil || name == "" {
		return frame.PhysicalRect{}, false, false
	}
	e, ok := ev.query.Lookup(name)
	if !ok {
		return frame.PhysicalRect{}, false, false
	}
	r := e.Rect
	r.Offset = r.Offset.Sub(ev.origin)
	return r, e.InScroller, true
}

// resolve returns the used value of an inset at a physical side. Auto
// insets, and anchor functions referring to absent anchors without a
// fallback, are not resolved.
func (ev *anchorEvaluator) resolve(l style.Length, side int) (dimen.Dimen, bool) {
	horizontal := side == frame.Left || side == frame.Right
	base, extent := ev.cbSize.H, ev.cbSize.H
	if horizontal {
		base, extent = ev.cbSize.W, ev.cbSize.W
	}
	if !l.IsAnchor() {
		return l.Resolve(base)
	}
	ev.used = true
	fn := l.AnchorFn()
	if rect, inScroller, ok := ev.lookup(fn.Name); ok {
		if c, valid := ev.edge(rect, fn.Side, side, horizontal); valid {
			if inScroller {
				if horizontal {
					ev.scrollX = true
				} else {
					ev.scrollY = true
				}
			}
			if side == frame.Left || side == frame.Top {
				return c, true
			}
			return extent - c, true
		}
		tracer().Debugf("%v does not apply to inset side %d", fn, side)
	} else {
		tracer().Debugf("anchor %q not found", fn.Name)
	}
	if fn.Fallback != nil {
		return fn.Fallback.Resolve(base)
	}
	return 0, false
}

// edge returns the coordinate of an anchor edge along the axis of an inset
// property. It fails for sides of the wrong axis.
func (ev *anchorEvaluator) edge(rect frame.PhysicalRect, s style.AnchorSide, prop int, horizontal bool) (dimen.Dimen, bool) {
	lo, hi := rect.Offset.Y, rect.Bottom()
	if horizontal {
		lo, hi = rect.Offset.X, rect.Right()
	}
	switch s {
	case style.AnchorAuto:
		if prop == frame.Left || prop == frame.Top {
			return hi, true
		}
		return lo, true
	case style.AnchorLeft:
		return lo, horizontal
	case style.AnchorRight:
		return hi, horizontal
	case style.AnchorTop:
		return lo, !horizontal
	case style.AnchorBottom:
		return hi, !horizontal
	case style.AnchorCenter:
		h, _ := dimen.Halve(hi - lo)
		return lo + h, true
	}
	if (s == style.AnchorStart) == startIsLow(ev.writing, horizontal) {
		return lo, true
	}
	return hi, true
}

// startIsLow tells if the start side of a writing direction is the left or
// top side in a physical axis.
func startIsLow(wd frame.WritingDirection, horizontalAxis bool) bool {
	if wd.IsHorizontal() == horizontalAxis { // inline axis
		return wd.IsLTR()
	}
	return !wd.IsFlippedBlocks()
}

// --- Inset area ------------------------------------------------------------

// insetArea narrows the containing block to the region of the 3×3 grid
// formed by the containing block and the default anchor. It returns the
// region relative to the containing block. ok is false if no default anchor
// exists.
func (ev *anchorEvaluator) insetArea(area style.InsetArea) (frame.PhysicalRect, bool) {
	rect, _, found := ev.lookup("")
	if !found {
		return frame.PhysicalRect{}, false
	}
	ev.used = true
	x0, x1 := areaSpan(area.X, rect.Offset.X, rect.Right(), ev.cbSize.W)
	y0, y1 := areaSpan(area.Y, rect.Offset.Y, rect.Bottom(), ev.cbSize.H)
	return frame.PhysicalRect{
		Offset: frame.PhysicalOffset{X: x0, Y: y0},
		Size:   frame.PhysicalSize{W: x1 - x0, H: y1 - y0},
	}, true
}

// areaSpan returns the edges of a span of grid cells in one axis. The grid
// lines are 0, the anchor edges lo and hi, and the containing block extent.
// A span reaching beyond the anchor edge it is aligned to collapses to zero
// size at that edge.
func areaSpan(span style.AreaSpan, lo, hi, extent dimen.Dimen) (dimen.Dimen, dimen.Dimen) {
	if span == style.AreaNone {
		span = style.AreaAll
	}
	var start, end dimen.Dimen
	fromEdge := false
	switch {
	case span&style.AreaStart != 0:
		start, fromEdge = 0, true
	case span&style.AreaCenter != 0:
		start = lo
	default:
		start = hi
	}
	switch {
	case span&style.AreaEnd != 0:
		end = extent
	case span&style.AreaCenter != 0:
		end = hi
	default:
		end = lo
	}
	if end < start {
		if fromEdge {
			start = end
		} else {
			end = start
		}
	}
	return start, end
}

// areaBias is the default alignment of a box placed in a region of an
// inset area: towards the anchor for regions at one side of it.
func areaBias(span style.AreaSpan) (insetBias, bool) {
	switch span {
	case style.AreaStart, style.AreaStart | style.AreaCenter:
		return biasEnd, true
	case style.AreaEnd, style.AreaCenter | style.AreaEnd:
		return biasStart, true
	case style.AreaCenter:
		return biasEqual, true
	}
	return biasStart, false
}

// --- Inset-modified containing block --------------------------------------

// insetBias tells which edge of the inset-modified containing block gives
// way when space is distributed.
type insetBias uint8

const (
	biasStart insetBias = iota
	biasEqual
	biasEnd
)

func (b insetBias) String() string {
	switch b {
	case biasEqual:
		return "equal"
	case biasEnd:
		return "end"
	}
	return "start"
}

// optDimen is a resolved value or auto.
type optDimen struct {
	d  dimen.Dimen
	ok bool
}

func (o optDimen) or(d dimen.Dimen) dimen.Dimen {
	if o.ok {
		return o.d
	}
	return d
}

// logicalInsets are the resolved insets in the writing direction of the
// candidate style.
type logicalInsets struct {
	inlineStart, inlineEnd, blockStart, blockEnd optDimen
}

// imcb is the inset-modified containing block, in the writing direction of
// the candidate style. The fields are distances from the edges of the
// containing block rectangle.
type imcb struct {
	available              frame.LogicalSize
	inlineStart, inlineEnd dimen.Dimen
	blockStart, blockEnd   dimen.Dimen
	inlineBias, blockBias  insetBias
	autoInlineInset        bool
	autoBlockInset         bool
}

func (m imcb) inlineSize() dimen.Dimen {
	return m.available.Inline - m.inlineStart - m.inlineEnd
}

func (m imcb) blockSize() dimen.Dimen {
	return m.available.Block - m.blockStart - m.blockEnd
}

// imcbAxis computes the IMCB in one axis without clamping.
func imcbAxis(avail dimen.Dimen, start, end optDimen, static dimen.Dimen, edge frame.Edge,
	align insetBias) (dimen.Dimen, dimen.Dimen, insetBias) {
	//
	if !start.ok && !end.ok {
		switch edge {
		case frame.EdgeCenter:
			half := dimen.Min(static, avail-static)
			return static - half, avail - static - half, biasEqual
		case frame.EdgeEnd:
			return 0, avail - static, biasEnd
		}
		return static, 0, biasStart
	}
	s, e := start.or(0), end.or(0)
	switch {
	case !end.ok:
		return s, e, biasStart
	case !start.ok:
		return s, e, biasEnd
	}
	return s, e, align
}

// resizeAxis moves the weaker edge by amount.
func resizeAxis(bias insetBias, amount dimen.Dimen, start, end *dimen.Dimen) {
	switch bias {
	case biasStart:
		*end += amount
	case biasEnd:
		*start += amount
	default:
		h1, h2 := dimen.Halve(amount)
		*start += h1
		*end += h2
	}
}

// unclampedIMCB computes the inset-modified containing block. static is the
// static position relative to the containing block, in the candidate's
// writing direction.
func unclampedIMCB(avail frame.LogicalSize, in logicalInsets, static frame.LogicalStaticPosition,
	inlineAlign, blockAlign insetBias) imcb {
	//
	m := imcb{
		available:       avail,
		autoInlineInset: !in.inlineStart.ok || !in.inlineEnd.ok,
		autoBlockInset:  !in.blockStart.ok || !in.blockEnd.ok,
	}
	m.inlineStart, m.inlineEnd, m.inlineBias = imcbAxis(avail.Inline, in.inlineStart, in.inlineEnd,
		static.Offset.Inline, static.InlineEdge, inlineAlign)
	m.blockStart, m.blockEnd, m.blockBias = imcbAxis(avail.Block, in.blockStart, in.blockEnd,
		static.Offset.Block, static.BlockEdge, blockAlign)
	return m
}

// clampIMCB resizes a negative IMCB to zero size.
func clampIMCB(m imcb) imcb {
	if sz := m.inlineSize(); sz < 0 {
		resizeAxis(m.inlineBias, sz, &m.inlineStart, &m.inlineEnd)
	}
	if sz := m.blockSize(); sz < 0 {
		resizeAxis(m.blockBias, sz, &m.blockStart, &m.blockEnd)
	}
	return m
}

// --- Self alignment --------------------------------------------------------

// selfAlignment returns the alignment property responsible for a physical
// axis: justify-self for the inline axis of the containing block, align-self
// for its block axis.
func selfAlignment(st *style.Style, cb frame.WritingDirection, horizontalAxis bool) style.SelfAlign {
	if cb.IsHorizontal() == horizontalAxis {
		return st.JustifySelf
	}
	return st.AlignSelf
}

// alignmentBias maps a self alignment value onto the bias of the candidate's
// axis. Alignment values are relative to the containing block, except for
// self-start and self-end.
func alignmentBias(a style.SelfAlign, cb, self frame.WritingDirection, horizontalAxis bool) insetBias {
	sameStart := startIsLow(cb, horizontalAxis) == startIsLow(self, horizontalAxis)
	switch a {
	case style.AlignCenter:
		return biasEqual
	case style.AlignSelfStart:
		return biasStart
	case style.AlignSelfEnd:
		return biasEnd
	case style.AlignEnd:
		if sameStart {
			return biasEnd
		}
		return biasStart
	}
	if sameStart {
		return biasStart
	}
	return biasEnd
}
