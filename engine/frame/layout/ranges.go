package layout

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// rangeInAxis computes the interval of scroll offsets for which the margin
// box stays within the inset-modified containing block in one logical axis.
// Inset edges which are set move with the scroll offset, auto ones limit
// the interval. imcbEnd is the distance of the IMCB end edge from the end of
// the containing block.
func rangeInAxis(startSet, endSet bool, avail, imcbStart, imcbEnd, mbStart, mbEnd dimen.Dimen) (fragment.Interval, bool) {
	iv := fragment.Interval{Min: dimen.NegInfinity, Max: dimen.Infinity}
	startAvail := mbStart - imcbStart
	if startSet {
		if startAvail < 0 {
			return iv, false
		}
	} else {
		iv.Max = startAvail
	}
	endAvail := (avail - imcbEnd) - mbEnd
	if endSet {
		if endAvail < 0 {
			return iv, false
		}
	} else {
		iv.Min = -endAvail
	}
	return iv, iv.IsValid()
}

// boundsRangeInAxis limits scroll offsets by the additional fallback bounds.
func boundsRangeInAxis(boundsStart, boundsEnd, mbStart, mbEnd dimen.Dimen) (fragment.Interval, bool) {
	iv := fragment.Interval{Min: mbEnd - boundsEnd, Max: mbStart - boundsStart}
	return iv, iv.IsValid()
}

// physicalInterval maps an interval of a logical axis to the physical axis.
// A flipped axis runs from right to left or from bottom to top.
func physicalInterval(iv fragment.Interval, flipped bool) fragment.Interval {
	if !flipped {
		return iv
	}
	return fragment.Interval{Min: -iv.Max, Max: -iv.Min}
}

// nonOverflowingRange computes the physical range of anchor scroll offsets
// for which a placement does not overflow. bounds is the rectangle of the
// position-fallback bounds relative to the containing block, in the
// candidate's writing direction. ok is false if there is no such range.
func nonOverflowingRange(in logicalInsets, m imcb, dims NodeDimensions, bounds frame.LogicalRect,
	hasBounds bool, wd frame.WritingDirection) (fragment.NonOverflowingRange, bool) {
	//
	var rng fragment.NonOverflowingRange
	inline, ok := rangeInAxis(in.inlineStart.ok, in.inlineEnd.ok, m.available.Inline,
		m.inlineStart, m.inlineEnd, dims.marginBoxInlineStart(), dims.marginBoxInlineEnd())
	if !ok {
		return rng, false
	}
	block, ok := rangeInAxis(in.blockStart.ok, in.blockEnd.ok, m.available.Block,
		m.blockStart, m.blockEnd, dims.marginBoxBlockStart(), dims.marginBoxBlockEnd())
	if !ok {
		return rng, false
	}
	inline = physicalInterval(inline, !wd.IsLTR())
	block = physicalInterval(block, wd.IsFlippedBlocks())
	if wd.IsHorizontal() {
		rng.X, rng.Y = inline, block
	} else {
		rng.X, rng.Y = block, inline
	}
	if !hasBounds {
		return rng, true
	}
	inline, ok = boundsRangeInAxis(bounds.Offset.Inline, bounds.InlineEnd(),
		dims.marginBoxInlineStart(), dims.marginBoxInlineEnd())
	if !ok {
		return rng, false
	}
	block, ok = boundsRangeInAxis(bounds.Offset.Block, bounds.BlockEnd(),
		dims.marginBoxBlockStart(), dims.marginBoxBlockEnd())
	if !ok {
		return rng, false
	}
	inline = physicalInterval(inline, !wd.IsLTR())
	block = physicalInterval(block, wd.IsFlippedBlocks())
	rng.HasAdditional = true
	if wd.IsHorizontal() {
		rng.AdditionalX, rng.AdditionalY = inline, block
	} else {
		rng.AdditionalX, rng.AdditionalY = block, inline
	}
	return rng, true
}

// boundsRect returns the rectangle of the position-fallback bounds,
// relative to the containing block, in the candidate's writing direction.
func (ev *anchorEvaluator) boundsRect() (frame.LogicalRect, bool) {
	if ev.bounds == "" {
		return frame.LogicalRect{}, false
	}
	r, _, ok := ev.lookup(ev.bounds)
	if !ok {
		tracer().Debugf("position-fallback-bounds %q not found", ev.bounds)
		return frame.LogicalRect{}, false
	}
	ev.used = true
	return r.ToLogical(ev.writing, ev.cbSize), true
}

// NeedsFallbackRecalculation tells if a placement has to be redone after the
// anchor scroll offsets of a box changed. The first recorded range
// containing the new offsets determines the style to use. If no range
// contains them, the placement stays with the last-resort style unless the
// chosen style has been recorded as fitting.
func NeedsFallbackRecalculation(data *fragment.OutOfFlowData, scroll, boundsScroll frame.PhysicalOffset) bool {
	if data == nil || len(data.Ranges) == 0 {
		return false
	}
	for _, r := range data.Ranges {
		if r.Contains(scroll, boundsScroll) {
			return r.StyleIndex != data.FallbackIndex || r.FlipBlock != data.FlipBlock ||
				r.FlipInline != data.FlipInline
		}
	}
	for _, r := range data.Ranges {
		if r.StyleIndex == data.FallbackIndex && r.FlipBlock == data.FlipBlock && r.FlipInline == data.FlipInline {
			return true
		}
	}
	return false
}
