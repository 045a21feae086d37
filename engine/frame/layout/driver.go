package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// nodeToLayout is a positioned box with its placement, ready for layout,
// possibly continuing in a later fragmentainer.
type nodeToLayout struct {
	info       NodeInfo
	offset     OffsetInfo
	breakToken *frame.BreakToken
	// block offset of the box inside its start fragmentainer
	fragmentainerOffset dimen.Dimen
	// parent descendant, for boxes revealed by laying out another one
	descendant fragment.FragmentainerDescendant
	frozen     *frame.Scrollbars
	repeat     bool
}

// layoutOOFNode lays out a positioned box. fspace is the space of the
// fragmentainer the box is laid out into, or nil. A box whose intrinsic
// inline sizes change because scrollbars appear is laid out again, with the
// scrollbars frozen.
func (p *Part) layoutOOFNode(nl *nodeToLayout, fspace *frame.ConstraintSpace, isLastFragmentainer bool) (*fragment.Result, error) {
	if nl.offset.cached && nl.offset.InitialResult != nil {
		return nl.offset.InitialResult, nil
	}
	n := nl.info.Node
	res, err := p.generateFragment(nl, fspace, isLastFragmentainer)
	if err != nil {
		return nil, err
	}
	if n.Layout.IntrinsicWidthsDirty && nl.offset.InlineSizeDependsOnMinMax && nl.breakToken == nil {
		if res, err = p.freezeScrollbars(nl, fspace, isLastFragmentainer); err != nil {
			return nil, err
		}
	}
	if err := p.finishNode(nl, res); err != nil {
		return nil, err
	}
	return res, nil
}

// freezeScrollbars repeats offset calculation and layout until the
// scrollbars of a box do not change any more. Scrollbars which appeared are
// frozen for the next pass. If both appeared in the first pass, the one for
// the inline direction is allowed to disappear once.
func (p *Part) freezeScrollbars(nl *nodeToLayout, fspace *frame.ConstraintSpace, isLast bool) (*fragment.Result, error) {
	n := nl.info.Node
	after := n.Layout.Scrollbars
	ignoreInline := after.Horizontal && after.Vertical
	var frozen frame.Scrollbars
	var res *fragment.Result
	for pass := 1; ; pass++ {
		before := after
		frozen.Horizontal = frozen.Horizontal || before.Horizontal
		frozen.Vertical = frozen.Vertical || before.Vertical
		if ignoreInline {
			if n.Style.Writing.IsHorizontal() {
				frozen.Horizontal = false
			} else {
				frozen.Vertical = false
			}
			ignoreInline = false
		}
		n.Layout.IntrinsicWidthsDirty = false
		off, err := p.CalculateOffset(nl.info, false, p.currentAnchors())
		if err != nil {
			return nil, err
		}
		nl.offset = off
		f := frozen
		nl.frozen = &f
		if res, err = p.generateFragment(nl, fspace, isLast); err != nil {
			return nil, err
		}
		after = n.Layout.Scrollbars
		tracer().Debugf("%v: scrollbar pass %d, %+v -> %+v", n, pass, before, after)
		if after == before {
			return res, nil
		}
		if pass >= p.cfg.MaxScrollbarPasses {
			tracer().Infof("%v: scrollbars still changing after %d passes", n, pass)
			return res, nil
		}
	}
}

// generateFragment sets up the constraint space of a positioned box and
// lays it out.
func (p *Part) generateFragment(nl *nodeToLayout, fspace *frame.ConstraintSpace, isLast bool) (*fragment.Result, error) {
	info, off := nl.info, nl.offset
	n := info.Node
	wd := n.Style.Writing
	fixedBlock := off.BlockEstimate != frame.Indefinite && (fspace == nil || off.InitialResult == nil)
	avail := frame.LogicalSize{Inline: off.Dimensions.Size.Inline, Block: frame.Indefinite}
	if fixedBlock {
		avail.Block = off.BlockEstimate
	}
	space := frame.NewSpace(wd, avail, off.cbSize)
	space.FixedInline = true
	space.FixedBlock = fixedBlock
	if nl.repeat {
		space.ShouldRepeat = true
		space.InsideRepeatableContent = true
	} else if fspace != nil && p.algo.ParticipatesInFragmentation(n) {
		space.Fragmentation = fspace.Fragmentation
		space.FragmentainerBlockSize = fspace.FragmentainerBlockSize
		space.FragmentainerOffset = nl.fragmentainerOffset
		space.RequiresContentBeforeBreaking = info.RequiresContentBeforeBreaking
		if isLast && info.ContainingBlock.HasClippedContainer {
			space.FurtherFragmentationDisabled = true
		}
	}
	space.InsideRepeatableContent = space.InsideRepeatableContent || (fspace != nil && fspace.InsideRepeatableContent)
	if nl.frozen != nil {
		space.ScrollbarsFrozen = true
		space.FrozenScrollbars = *nl.frozen
	}
	if off.InitialResult != nil && fspace == nil && !space.InsideRepeatableContent && nl.frozen == nil {
		tracer().Debugf("%v: reusing measured layout", n)
		return off.InitialResult, nil
	}
	var res *fragment.Result
	var err error
	if rl, ok := p.algo.(RepeatableLayouter); ok && nl.repeat {
		res, err = rl.LayoutRepeatableRoot(n, space, nl.breakToken)
	} else {
		res, err = p.algo.Layout(n, space, nl.breakToken)
	}
	if err != nil {
		return nil, core.WrapError(err, core.ELAYOUT, "layout of positioned %v", n)
	}
	tracer().Debugf("%v laid out in %v: %v", n, space, res.Fragment)
	return res, nil
}

// finishNode attaches the placement to the fragment of a box and stores
// the result in the first-tier cache.
func (p *Part) finishNode(nl *nodeToLayout, res *fragment.Result) error {
	f := res.Fragment
	if nl.repeat && f.OutOfFlow() != nil {
		return nil
	}
	if err := f.SetOutOfFlow(nl.offset.outOfFlowData()); err != nil {
		return core.WrapError(err, core.EINVARIANT, "placement of %v", nl.info.Node)
	}
	if p.allowFirstTierCache && !nl.info.fragmented && nl.info.Inline == nil &&
		!nl.offset.DisableFirstTierCache && !nl.offset.UsesFallback {
		//
		p.cache.store(nl.info.Node, cachedResult{
			cbOffset: nl.info.CB.Rect.Offset,
			cbSize:   nl.offset.cbSize,
			static:   nl.offset.static,
			result:   res,
			offset:   nl.offset,
		})
	}
	return nil
}

// currentAnchors is the anchor query in effect for the boxes being placed.
func (p *Part) currentAnchors() anchor.Query {
	if p.isFragmentationRoot || p.outer != nil {
		return p.anchors
	}
	return p.anchorQuery()
}
