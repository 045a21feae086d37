package flow

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/outflow/engine/frame/layout"
)

// Engine lays out box trees. An Engine is not safe for concurrent use; each
// call of LayoutTree starts a new pass.
type Engine struct {
	cfg     layout.Config
	arena   *fragment.Arena
	cache   *layout.Cache
	tries   *style.TryRegistry
	repeats map[*boxtree.Node]*repetition
}

// New creates a layout engine.
func New(cfg layout.Config) *Engine {
	return &Engine{
		cfg:     cfg,
		arena:   fragment.NewArena(),
		cache:   layout.NewCache(),
		tries:   style.NewTryRegistry(),
		repeats: make(map[*boxtree.Node]*repetition),
	}
}

// Arena holds the fragments of the last pass.
func (e *Engine) Arena() *fragment.Arena {
	return e.arena
}

// Cache returns the pass cache of out-of-flow layout.
func (e *Engine) Cache() *layout.Cache {
	return e.cache
}

// TryRules returns the position-try rules of the tree being laid out.
func (e *Engine) TryRules() *style.TryRegistry {
	return e.tries
}

// LayoutTree lays out a box tree, either into pages or into a viewport of
// the configured width.
func (e *Engine) LayoutTree(t *boxtree.Tree) (*fragment.Result, error) {
	if t == nil || t.Root == nil {
		return nil, core.Error(core.EINVALID, "no box tree to lay out")
	}
	e.arena.Reset()
	e.cache.Reset()
	e.repeats = make(map[*boxtree.Node]*repetition)
	if t.Tries != nil {
		e.tries = t.Tries
	}
	root := t.Root
	tracer().Infof("layout of %v, %d boxes, paginated=%v", root, t.Size(), t.Paginated)
	if t.Paginated {
		return e.layoutPages(root)
	}
	vp := e.cfg.Viewport
	if vp == (frame.PhysicalSize{}) {
		vp = e.cfg.PageSize
	}
	wd := root.Style.Writing
	size := vp.ToLogical(wd.Mode)
	space := frame.NewSpace(wd, frame.LogicalSize{Inline: size.Inline, Block: frame.Indefinite}, size)
	space.FixedInline = true
	return e.Layout(root, space, nil)
}

// Layout lays out box n in space, continuing after bt.
func (e *Engine) Layout(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error) {
	switch {
	case n.Kind == boxtree.ReplacedBox:
		return e.layoutReplaced(n, space)
	case n.IsMulticol():
		return e.layoutMulticol(n, space, bt)
	}
	return e.layoutBlock(n, space, bt)
}

// IsReplaced is true for replaced boxes.
func (e *Engine) IsReplaced(n *boxtree.Node) bool {
	return n.Kind == boxtree.ReplacedBox
}

// ParticipatesInFragmentation is false for monolithic boxes and scroll
// containers.
func (e *Engine) ParticipatesInFragmentation(n *boxtree.Node) bool {
	return !n.IsMonolithic() && !n.Style.IsScrollContainer()
}

// finish places the positioned boxes collected by b and creates the fragment.
func (e *Engine) finish(b *fragment.Builder) (*fragment.Result, error) {
	p := layout.NewPart(e, e.cache, b, e.cfg)
	if err := p.Run(); err != nil {
		return nil, err
	}
	return fragment.NewResult(b.ToFragment()), nil
}

// --- Box model -------------------------------------------------------------

// newBuilder creates a builder for n with borders, padding and scrollbars
// set up.
func (e *Engine) newBuilder(n *boxtree.Node, space frame.ConstraintSpace, sb frame.Scrollbars) *fragment.Builder {
	b := fragment.NewBuilder(e.arena, n, fragment.BoxFragment, space)
	b.Border = n.Style.PhysicalBorder()
	b.Padding = n.Style.PhysicalPadding(space.Percentage.Inline)
	b.Scrollbar = sb.Strut(e.cfg.ScrollbarWidth)
	return b
}

// inlineSize is the border box inline size of an in-flow box. The
// available space is that of the content box of the parent.
func (e *Engine) inlineSize(n *boxtree.Node, space frame.ConstraintSpace, bp frame.LogicalStrut) dimen.Dimen {
	if space.FixedInline {
		return space.Available.Inline
	}
	size, min, max := n.Style.InlineSizeProperties()
	inline := space.Available.Inline - e.inlineMargins(n, space)
	if d, ok := borderBox(n.Style, size, space.Percentage.Inline, bp.InlineSum()); ok {
		inline = d
	}
	if d, ok := borderBox(n.Style, max, space.Percentage.Inline, bp.InlineSum()); ok {
		inline = dimen.Min(inline, d)
	}
	if d, ok := borderBox(n.Style, min, space.Percentage.Inline, bp.InlineSum()); ok {
		inline = dimen.Max(inline, d)
	}
	return dimen.Max(inline, bp.InlineSum())
}

// blockSize returns the border box block size of n if it does not depend on
// content.
func (e *Engine) blockSize(n *boxtree.Node, space frame.ConstraintSpace, bp frame.LogicalStrut) (dimen.Dimen, bool) {
	if space.FixedBlock && space.Available.Block != frame.Indefinite {
		return space.Available.Block, true
	}
	size, _, _ := n.Style.BlockSizeProperties()
	if d, ok := borderBox(n.Style, size, space.Percentage.Block, bp.BlockSum()); ok {
		return d, true
	}
	return 0, false
}

func borderBox(st *style.Style, l style.Length, base, bp dimen.Dimen) (dimen.Dimen, bool) {
	d, ok := l.Resolve(base)
	if !ok {
		return 0, false
	}
	if st.BoxSizing == style.ContentBox {
		d += bp
	}
	return dimen.Max(d, bp), true
}

// margins returns the margins of an in-flow box in the writing direction of
// its parent. Auto margins are zero.
func (e *Engine) margins(n *boxtree.Node, wd frame.WritingDirection, base dimen.Dimen) frame.LogicalStrut {
	r := func(i int) dimen.Dimen {
		return n.Style.Margins[i].ResolveOr(base, 0)
	}
	m := frame.Strut{Top: r(frame.Top), Right: r(frame.Right), Bottom: r(frame.Bottom), Left: r(frame.Left)}
	return m.ToLogical(wd)
}

func (e *Engine) inlineMargins(n *boxtree.Node, space frame.ConstraintSpace) dimen.Dimen {
	return e.margins(n, space.Writing, space.Percentage.Inline).InlineSum()
}

// --- Replaced boxes --------------------------------------------------------

func (e *Engine) layoutReplaced(n *boxtree.Node, space frame.ConstraintSpace) (*fragment.Result, error) {
	b := e.newBuilder(n, space, frame.Scrollbars{})
	bp := b.ContentStrut()
	intr := n.Intrinsic.ToLogical(space.Writing.Mode)
	b.InlineSize = intr.Inline + bp.InlineSum()
	size, _, _ := n.Style.InlineSizeProperties()
	if d, ok := borderBox(n.Style, size, space.Percentage.Inline, bp.InlineSum()); ok {
		b.InlineSize = d
	}
	if space.FixedInline {
		b.InlineSize = space.Available.Inline
	}
	b.BlockSize = intr.Block + bp.BlockSum()
	if d, ok := e.blockSize(n, space, bp); ok {
		b.BlockSize = d
	}
	tracer().Debugf("replaced %v: %v", n, b.Size())
	return e.finish(b)
}

// --- Intrinsic sizes -------------------------------------------------------

// ComputeIntrinsicSizes returns the min-content and max-content inline
// sizes of the content box of n.
func (e *Engine) ComputeIntrinsicSizes(n *boxtree.Node, wd frame.WritingDirection) (frame.MinMaxSizes, error) {
	if n.Kind == boxtree.ReplacedBox {
		w := n.Intrinsic.ToLogical(wd.Mode).Inline
		return frame.MinMaxSizes{Min: w, Max: w}, nil
	}
	var mm frame.MinMaxSizes
	for _, it := range flowItems(n) {
		switch {
		case it.block != nil:
			c, err := e.childContribution(it.block, wd)
			if err != nil {
				return mm, err
			}
			mm.Min, mm.Max = dimen.Max(mm.Min, c.Min), dimen.Max(mm.Max, c.Max)
		case it.run != nil:
			var sum dimen.Dimen
			for _, a := range it.run.atoms {
				mm.Min = dimen.Max(mm.Min, a.width)
				sum += a.width
			}
			mm.Max = dimen.Max(mm.Max, sum)
		}
	}
	if n.IsMulticol() {
		count := dimen.Dimen(n.Style.ColumnCount)
		gaps := (count - 1) * n.Style.ColumnGap
		mm = frame.MinMaxSizes{Min: mm.Min*count + gaps, Max: mm.Max*count + gaps}
	}
	return mm, nil
}

// childContribution is the margin box contribution of an in-flow child to
// the intrinsic sizes of its parent.
func (e *Engine) childContribution(c *boxtree.Node, wd frame.WritingDirection) (frame.MinMaxSizes, error) {
	bp := c.Style.PhysicalBorder().Add(c.Style.PhysicalPadding(0)).ToLogical(wd).InlineSum()
	ms := e.margins(c, wd, 0).InlineSum()
	size, _, _ := c.Style.InlineSizeProperties()
	if d, ok := borderBox(c.Style, size, frame.Indefinite, bp); ok {
		return frame.MinMaxSizes{Min: d + ms, Max: d + ms}, nil
	}
	mm, err := e.ComputeIntrinsicSizes(c, wd)
	if err != nil {
		return mm, err
	}
	return mm.Grow(bp + ms), nil
}
