package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// NodeInfo is a positioned box together with its resolved containing block.
type NodeInfo struct {
	Node *boxtree.Node
	CB   ContainingBlockInfo
	// Static is in the same coordinates as CB.Rect.
	Static frame.LogicalStaticPosition
	Inline *fragment.InlineContainer
	// Set for fragmentainer descendants only.
	ContainingBlock         fragment.ContainingBlock
	FixedposContainingBlock fragment.ContainingBlock
	FixedposInline          *fragment.InlineContainer
	// RequiresContentBeforeBreaking is carried over from the candidate.
	RequiresContentBeforeBreaking bool
	fragmented                    bool
}

// NodeDimensions are size, margins and insets of the border box of a
// positioned box, in its own writing direction. Insets are measured from the
// edges of the containing block rectangle.
type NodeDimensions struct {
	Size    frame.LogicalSize
	Margins frame.LogicalStrut
	Inset   frame.LogicalStrut
}

func (d NodeDimensions) marginBoxInlineStart() dimen.Dimen {
	return d.Inset.InlineStart - d.Margins.InlineStart
}

func (d NodeDimensions) marginBoxInlineEnd() dimen.Dimen {
	return d.Inset.InlineStart + d.Size.Inline + d.Margins.InlineEnd
}

func (d NodeDimensions) marginBoxBlockStart() dimen.Dimen {
	return d.Inset.BlockStart - d.Margins.BlockStart
}

func (d NodeDimensions) marginBoxBlockEnd() dimen.Dimen {
	return d.Inset.BlockStart + d.Size.Block + d.Margins.BlockEnd
}

// OffsetInfo is the placement of a positioned box, computed ahead of its
// layout.
type OffsetInfo struct {
	// Offset of the border box in the coordinates of the containing block
	// rectangle, in the writing direction of the builder.
	Offset     frame.LogicalOffset
	Dimensions NodeDimensions
	// Insets are the used physical insets, see fragment.OutOfFlowData.
	Insets frame.Strut
	// UsesFallback is set if position-fallback styles have been tried.
	UsesFallback  bool
	FallbackIndex int
	FlipBlock     bool
	FlipInline    bool
	Ranges        []fragment.NonOverflowingRange
	// BlockEstimate is the block size of the border box, in the writing mode
	// of the box, or frame.Indefinite.
	BlockEstimate dimen.Dimen
	// InitialResult is the result of a measuring layout, if one was done.
	InitialResult             *fragment.Result
	InlineSizeDependsOnMinMax bool
	// DisableFirstTierCache is set if anchor geometry went into the placement.
	DisableFirstTierCache  bool
	NeedsScrollAdjustmentX bool
	NeedsScrollAdjustmentY bool
	cached                 bool
	cbSize                 frame.LogicalSize
	static                 frame.LogicalStaticPosition
}

// outOfFlowData is the part of o attached to the fragment of the box.
func (o OffsetInfo) outOfFlowData() fragment.OutOfFlowData {
	d := fragment.OutOfFlowData{
		Offset:                 o.Offset,
		Insets:                 o.Insets,
		FallbackIndex:          -1,
		NeedsScrollAdjustmentX: o.NeedsScrollAdjustmentX,
		NeedsScrollAdjustmentY: o.NeedsScrollAdjustmentY,
	}
	if o.UsesFallback {
		d.FallbackIndex = o.FallbackIndex
		d.FlipBlock, d.FlipInline = o.FlipBlock, o.FlipInline
		d.Ranges = o.Ranges
	}
	return d
}

// CalculateOffset computes size and offset of a positioned box. If the box
// has position-fallback styles, the candidate styles are tried in order and
// the first one is taken which does not overflow the containing block at the
// current anchor scroll offset. The last candidate is taken in any case.
//
// isFirstRun allows results of the first-tier cache to be used.
func (p *Part) CalculateOffset(info NodeInfo, isFirstRun bool, anchors anchor.Query) (OffsetInfo, error) {
	n := info.Node
	candidates := p.candidateStyles(n)
	tryFit := len(candidates) > 1
	var ranges []fragment.NonOverflowingRange
	for i, cand := range candidates {
		last := i == len(candidates)-1
		off, rng, fits, err := p.tryOffset(info, cand, anchors, tryFit, isFirstRun && !tryFit)
		if err != nil {
			return OffsetInfo{}, err
		}
		if off.cached {
			return off, nil
		}
		if tryFit && fits {
			ranges = append(ranges, rng)
			fits = rng.Contains(n.Layout.AnchorScroll, n.Layout.BoundsScroll)
		}
		if !fits && !last {
			tracer().Debugf("%v: candidate style %d overflows", n, i)
			continue
		}
		if tryFit {
			off.UsesFallback = true
			off.FallbackIndex = cand.index
			off.FlipBlock, off.FlipInline = cand.flipBlock, cand.flipInline
			off.Ranges = ranges
			tracer().Debugf("%v: taking candidate style %d (fallback %d), fits=%v", n, i, cand.index, fits)
		}
		return off, nil
	}
	return OffsetInfo{}, core.Error(core.EINVARIANT, "no candidate style for %v", n)
}

// tryOffset computes the placement for one candidate style. If computeRange
// is set, the non-overflowing range is computed as well, and fits tells if
// the range computation succeeded.
func (p *Part) tryOffset(info NodeInfo, cand candidateStyle, anchors anchor.Query, computeRange, useCache bool) (
	OffsetInfo, fragment.NonOverflowingRange, bool, error) {
	//
	n, st := info.Node, cand.style
	wd, cbWD := st.Writing, info.CB.Writing
	rectPhys := info.CB.Rect.Size.ToPhysical(p.b.Writing.Mode)
	cbSize := rectPhys.ToLogical(wd.Mode)
	static := staticInCandidate(info, p.b.Writing, wd)
	if useCache && p.allowFirstTierCache && info.Inline == nil {
		if entry, ok := p.cache.lookup(n, info.CB.Rect.Offset, cbSize, static, p.algo.Arena()); ok {
			off := entry.offset
			off.cached = true
			off.InitialResult = entry.result
			return off, fragment.NonOverflowingRange{}, true, nil
		}
	}
	ev := &anchorEvaluator{
		query:         anchors,
		origin:        p.containingBlockOrigin(info.CB),
		cbSize:        rectPhys,
		writing:       wd,
		defaultAnchor: st.AnchorDefault,
		bounds:        st.FallbackBounds,
	}
	cbEv := ev
	var regionEdges frame.Strut
	hasArea := false
	if !st.InsetArea.IsNone() {
		if region, ok := ev.insetArea(st.InsetArea); ok {
			hasArea = true
			regionEdges = frame.Strut{
				Top:    region.Offset.Y,
				Left:   region.Offset.X,
				Right:  rectPhys.W - region.Right(),
				Bottom: rectPhys.H - region.Bottom(),
			}
			sub := *ev
			sub.origin = ev.origin.Add(region.Offset)
			sub.cbSize = region.Size
			ev = &sub
		} else {
			tracer().Debugf("%v: inset-area without default anchor", n)
		}
	}
	var phys [4]optDimen
	for side := frame.Top; side <= frame.Left; side++ {
		d, ok := ev.resolve(st.Insets[side], side)
		if !ok && hasArea {
			d, ok = 0, true
		}
		if ok && hasArea {
			d += regionEdges.Side(side)
		}
		phys[side] = optDimen{d: d, ok: ok}
	}
	is, ie := st.InlineAxisSides()
	bs, be := st.BlockAxisSides()
	insets := logicalInsets{inlineStart: phys[is], inlineEnd: phys[ie], blockStart: phys[bs], blockEnd: phys[be]}
	//
	c := &offsetCalc{p: p, info: info, st: st, wd: wd, percent: cbSize}
	inlineHorizontal := wd.IsHorizontal()
	c.inlineAlign = selfAlignment(st, cbWD, inlineHorizontal)
	c.blockAlign = selfAlignment(st, cbWD, !inlineHorizontal)
	inlineBias := alignmentBias(c.inlineAlign, cbWD, wd, inlineHorizontal)
	blockBias := alignmentBias(c.blockAlign, cbWD, wd, !inlineHorizontal)
	if hasArea {
		inlineBias = areaAlignment(st.InsetArea, c.inlineAlign, inlineBias, wd, inlineHorizontal)
		blockBias = areaAlignment(st.InsetArea, c.blockAlign, blockBias, wd, !inlineHorizontal)
	}
	unclamped := unclampedIMCB(cbSize, insets, static, inlineBias, blockBias)
	c.m = clampIMCB(unclamped)
	c.setupBoxModel(is, ie, bs, be)
	if err := c.computeDimensions(); err != nil {
		return OffsetInfo{}, fragment.NonOverflowingRange{}, false, err
	}
	dims := c.dims
	off := OffsetInfo{
		Dimensions:                dims,
		FallbackIndex:             -1,
		BlockEstimate:             dims.Size.Block,
		InitialResult:             c.initial,
		InlineSizeDependsOnMinMax: c.dependsOnMinMax,
		DisableFirstTierCache:     ev.used || cbEv.used || p.cfg.DisableFirstTierCache,
		NeedsScrollAdjustmentX:    ev.scrollX || cbEv.scrollX,
		NeedsScrollAdjustmentY:    ev.scrollY || cbEv.scrollY,
		cbSize:                    cbSize,
		static:                    static,
	}
	if off.InitialResult != nil && off.InitialResult.Fragment.BlockSize(wd.Mode) != dims.Size.Block {
		off.InitialResult = nil
	}
	inset := frame.ConvertStrut(dims.Inset, wd, p.b.Writing)
	off.Offset = info.CB.Rect.Offset.Add(inset.StartOffset())
	used := dims.Inset
	used.InlineStart -= dims.Margins.InlineStart
	used.InlineEnd -= dims.Margins.InlineEnd
	used.BlockStart -= dims.Margins.BlockStart
	used.BlockEnd -= dims.Margins.BlockEnd
	stored := frame.LogicalStrut{
		InlineStart: insets.inlineStart.or(used.InlineStart),
		InlineEnd:   insets.inlineEnd.or(used.InlineEnd),
		BlockStart:  insets.blockStart.or(used.BlockStart),
		BlockEnd:    insets.blockEnd.or(used.BlockEnd),
	}
	off.Insets = stored.ToPhysical(wd)
	if !computeRange {
		return off, fragment.NonOverflowingRange{}, true, nil
	}
	bounds, hasBounds := cbEv.boundsRect()
	off.DisableFirstTierCache = off.DisableFirstTierCache || hasBounds
	rng, fits := nonOverflowingRange(insets, unclamped, dims, bounds, hasBounds, wd)
	rng.StyleIndex = cand.index
	rng.FlipBlock, rng.FlipInline = cand.flipBlock, cand.flipInline
	return off, rng, fits, nil
}

// staticInCandidate converts the static position of a box to coordinates
// relative to its containing block rectangle, in writing direction wd.
func staticInCandidate(info NodeInfo, builder, wd frame.WritingDirection) frame.LogicalStaticPosition {
	sp := info.Static
	sp.Offset = sp.Offset.Sub(info.CB.Rect.Offset)
	if builder == wd {
		return sp
	}
	rect := info.CB.Rect.Size.ToPhysical(builder.Mode)
	return sp.ToPhysical(builder, rect).ToLogical(wd, rect)
}

// containingBlockOrigin is the physical position of the containing block
// rectangle, in the coordinates of the anchor query.
func (p *Part) containingBlockOrigin(cb ContainingBlockInfo) frame.PhysicalOffset {
	r := cb.Rect.ToPhysical(p.b.Writing, p.anchorSpaceSize())
	return r.Offset
}

// areaAlignment lets a box with normal alignment inside an inset area align
// towards the anchor.
func areaAlignment(area style.InsetArea, align style.SelfAlign, bias insetBias, wd frame.WritingDirection, horizontalAxis bool) insetBias {
	if align != style.AlignNormal {
		return bias
	}
	span := area.Y
	if horizontalAxis {
		span = area.X
	}
	b, ok := areaBias(span)
	if !ok {
		return bias
	}
	if !startIsLow(wd, horizontalAxis) {
		switch b {
		case biasStart:
			b = biasEnd
		case biasEnd:
			b = biasStart
		}
	}
	return b
}
