package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// offsetCalc holds the state of computing the dimensions of a positioned box
// for one candidate style. All values are in the writing direction of the
// candidate.
type offsetCalc struct {
	p                    *Part
	info                 NodeInfo
	st                   *style.Style
	wd                   frame.WritingDirection
	percent              frame.LogicalSize  // containing block size
	inlineAlign          style.SelfAlign
	blockAlign           style.SelfAlign
	m                    imcb
	bp                   frame.LogicalStrut // border, scrollbars, padding
	margins              logicalInsets      // auto margins are not ok
	dims                 NodeDimensions
	initial              *fragment.Result
	dependsOnMinMax      bool
	startDominantInline  bool
	startDominantBlock   bool
	blockDirectionInline bool
	blockDirectionBlock  bool
}

// setupBoxModel resolves margins, borders, padding and scrollbars. The sides
// are the physical sides of the logical edges.
func (c *offsetCalc) setupBoxModel(is, ie, bs, be int) {
	n := c.info.Node
	base := c.info.CB.Rect.Size.Inline
	margin := func(side int) optDimen {
		d, ok := c.st.Margins[side].Resolve(base)
		return optDimen{d: d, ok: ok}
	}
	c.margins = logicalInsets{
		inlineStart: margin(is),
		inlineEnd:   margin(ie),
		blockStart:  margin(bs),
		blockEnd:    margin(be),
	}
	strut := c.st.PhysicalBorder().
		Add(c.st.PhysicalPadding(base)).
		Add(n.Layout.Scrollbars.Strut(c.p.cfg.ScrollbarWidth))
	c.bp = strut.ToLogical(c.wd)
	cbWD := c.info.CB.Writing
	inlineHorizontal := c.wd.IsHorizontal()
	c.startDominantInline = startIsLow(cbWD, inlineHorizontal) == startIsLow(c.wd, inlineHorizontal)
	c.startDominantBlock = startIsLow(cbWD, !inlineHorizontal) == startIsLow(c.wd, !inlineHorizontal)
	c.blockDirectionInline = !cbWD.IsParallel(c.wd)
	c.blockDirectionBlock = cbWD.IsParallel(c.wd)
}

// computeDimensions computes size, margins and insets, the inline axis first.
func (c *offsetCalc) computeDimensions() error {
	if err := c.computeInlineSize(); err != nil {
		return err
	}
	ms, me := computeMargins(c.m.inlineSize(), c.margins.inlineStart, c.margins.inlineEnd,
		c.dims.Size.Inline, c.m.autoInlineInset, c.startDominantInline, c.blockDirectionInline)
	c.dims.Margins.InlineStart, c.dims.Margins.InlineEnd = ms, me
	c.dims.Inset.InlineStart, c.dims.Inset.InlineEnd = computeInsets(c.m.available.Inline,
		c.m.inlineStart, c.m.inlineEnd, ms, me, c.dims.Size.Inline, c.m.inlineBias)
	if err := c.computeBlockSize(); err != nil {
		return err
	}
	ms, me = computeMargins(c.m.blockSize(), c.margins.blockStart, c.margins.blockEnd,
		c.dims.Size.Block, c.m.autoBlockInset, c.startDominantBlock, c.blockDirectionBlock)
	c.dims.Margins.BlockStart, c.dims.Margins.BlockEnd = ms, me
	c.dims.Inset.BlockStart, c.dims.Inset.BlockEnd = computeInsets(c.m.available.Block,
		c.m.blockStart, c.m.blockEnd, ms, me, c.dims.Size.Block, c.m.blockBias)
	tracer().Debugf("%v: size %v, margins %v, insets %v", c.info.Node, c.dims.Size,
		c.dims.Margins, c.dims.Inset)
	return nil
}

// minMax returns the intrinsic inline sizes of the border box.
func (c *offsetCalc) minMax() (frame.MinMaxSizes, error) {
	c.dependsOnMinMax = true
	mm, err := c.p.algo.ComputeIntrinsicSizes(c.info.Node, c.wd)
	if err != nil {
		return mm, core.WrapError(err, core.ELAYOUT, "intrinsic sizes of %v", c.info.Node)
	}
	return mm.Grow(c.bp.InlineSum()), nil
}

func (c *offsetCalc) computeInlineSize() error {
	size, min, max := c.st.InlineSizeProperties()
	bp := c.bp.InlineSum()
	base := c.percent.Inline
	avail := c.m.inlineSize() - c.margins.inlineStart.or(0) - c.margins.inlineEnd.or(0)
	var inline dimen.Dimen
	if c.p.algo.IsReplaced(c.info.Node) {
		inline = c.replacedSize().Inline + bp
	} else if d, ok := c.borderBoxSize(size, base, bp); ok {
		inline = d
	} else if size.IsContentSized() {
		mm, err := c.minMax()
		if err != nil {
			return err
		}
		switch size.ContentSizing() {
		case style.LengthContentMin:
			inline = mm.Min
		case style.LengthContentMax:
			inline = mm.Max
		default:
			inline = mm.ShrinkToFit(avail)
		}
	} else if !c.m.autoInlineInset && c.inlineAlign.IsStretchable() {
		inline = avail
	} else {
		mm, err := c.minMax()
		if err != nil {
			return err
		}
		inline = mm.ShrinkToFit(avail)
	}
	c.dims.Size.Inline = c.clampSize(inline, min, max, base, bp)
	return nil
}

func (c *offsetCalc) computeBlockSize() error {
	size, min, max := c.st.BlockSizeProperties()
	bp := c.bp.BlockSum()
	base := c.percent.Block
	avail := c.m.blockSize() - c.margins.blockStart.or(0) - c.margins.blockEnd.or(0)
	var block dimen.Dimen
	if c.p.algo.IsReplaced(c.info.Node) {
		block = c.replacedSize().Block + bp
	} else if d, ok := c.borderBoxSize(size, base, bp); ok {
		block = d
	} else if !c.m.autoBlockInset && c.blockAlign.IsStretchable() && !size.IsContentSized() {
		block = avail
	} else {
		d, err := c.intrinsicBlockSize(c.m.blockSize())
		if err != nil {
			return err
		}
		block = d
	}
	c.dims.Size.Block = c.clampSize(block, min, max, base, bp)
	return nil
}

// intrinsicBlockSize lays out the box with its final inline size to measure
// its content. The result is kept as the initial layout result.
func (c *offsetCalc) intrinsicBlockSize(avail dimen.Dimen) (dimen.Dimen, error) {
	n := c.info.Node
	space := frame.NewSpace(c.wd,
		frame.LogicalSize{Inline: c.dims.Size.Inline, Block: dimen.Max(0, avail)},
		c.percent)
	space.FixedInline = true
	space.IsMeasure = true
	res, err := c.p.algo.Layout(n, space, nil)
	if err != nil {
		return 0, core.WrapError(err, core.ELAYOUT, "measuring %v", n)
	}
	c.initial = res
	return res.Fragment.BlockSize(c.wd.Mode), nil
}

// borderBoxSize resolves a size property to a border box size.
func (c *offsetCalc) borderBoxSize(l style.Length, base, bp dimen.Dimen) (dimen.Dimen, bool) {
	d, ok := l.Resolve(base)
	if !ok {
		return 0, false
	}
	if c.st.BoxSizing == style.ContentBox {
		d += bp
	}
	return dimen.Max(d, bp), true
}

// clampSize applies min and max sizes. The min size wins.
func (c *offsetCalc) clampSize(d dimen.Dimen, min, max style.Length, base, bp dimen.Dimen) dimen.Dimen {
	lo, ok := c.borderBoxSize(min, base, bp)
	if !ok {
		lo = bp
	}
	hi, ok := c.borderBoxSize(max, base, bp)
	if !ok {
		hi = dimen.Infinity
	}
	return dimen.Clamp(d, lo, hi)
}

// replacedSize is the content size of a replaced box. A missing size is
// derived from the other one by the intrinsic aspect ratio.
func (c *offsetCalc) replacedSize() frame.LogicalSize {
	intr := c.info.Node.Intrinsic.ToLogical(c.wd.Mode)
	isize, _, _ := c.st.InlineSizeProperties()
	bsize, _, _ := c.st.BlockSizeProperties()
	content := func(l style.Length, base, bp dimen.Dimen) (dimen.Dimen, bool) {
		d, ok := l.Resolve(base)
		if ok && c.st.BoxSizing == style.BorderBox {
			d = dimen.Max(0, d-bp)
		}
		return d, ok
	}
	inline, iok := content(isize, c.percent.Inline, c.bp.InlineSum())
	block, bok := content(bsize, c.percent.Block, c.bp.BlockSum())
	switch {
	case iok && bok:
	case iok:
		block = intr.Block
		if intr.Inline > 0 {
			block = dimen.Dimen(int64(inline) * int64(intr.Block) / int64(intr.Inline))
		}
	case bok:
		inline = intr.Inline
		if intr.Block > 0 {
			inline = dimen.Dimen(int64(block) * int64(intr.Inline) / int64(intr.Block))
		}
	default:
		inline, block = intr.Inline, intr.Block
	}
	return frame.LogicalSize{Inline: inline, Block: block}
}

// computeMargins resolves auto margins in one axis. Auto margins only take
// up space if both insets are set. With both margins auto, a negative
// amount of free space goes to the end margin if the start side is
// dominant, except in the block direction of the containing block.
func computeMargins(imcbSize dimen.Dimen, start, end optDimen, size dimen.Dimen, hasAutoInset,
	startDominant, blockDirection bool) (dimen.Dimen, dimen.Dimen) {
	//
	ms, me := start.or(0), end.or(0)
	if hasAutoInset || (start.ok && end.ok) {
		return ms, me
	}
	free := imcbSize - size
	switch {
	case !start.ok && !end.ok:
		if blockDirection || free >= 0 {
			ms, me = dimen.Halve(free)
		} else if startDominant {
			ms, me = 0, free
		} else {
			ms, me = free, 0
		}
	case !start.ok:
		ms = free - me
	default:
		me = free - ms
	}
	return ms, me
}

// computeInsets places the margin box within the inset-modified containing
// block. The insets returned are the distances of the border box edges from
// the containing block edges.
func computeInsets(avail, imcbStart, imcbEnd, ms, me, size dimen.Dimen, bias insetBias) (dimen.Dimen, dimen.Dimen) {
	start, end := imcbStart, imcbEnd
	if free := avail - start - end - ms - me - size; free != 0 {
		resizeAxis(bias, free, &start, &end)
	}
	return start + ms, end + me
}
