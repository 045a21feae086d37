package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// Algorithm lays out single boxes. It is implemented by the normal flow
// layout of a document.
type Algorithm interface {
	// Layout lays out box n in space, continuing after bt if bt is non-nil.
	Layout(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error)
	// ComputeIntrinsicSizes returns the min-content and max-content inline
	// sizes of the content box of n, in writing direction wd.
	ComputeIntrinsicSizes(n *boxtree.Node, wd frame.WritingDirection) (frame.MinMaxSizes, error)
	// IsReplaced is true for boxes with intrinsic dimensions.
	IsReplaced(n *boxtree.Node) bool
	// ParticipatesInFragmentation is false for monolithic boxes.
	ParticipatesInFragmentation(n *boxtree.Node) bool
	// Arena holds the fragments created.
	Arena() *fragment.Arena
}

// RepeatableLayouter is implemented by algorithms able to repeat a box on
// every page of a paginated document.
type RepeatableLayouter interface {
	// LayoutRepeatableRoot lays out n for the first page if bt is nil, and
	// returns a repetition for later pages otherwise.
	LayoutRepeatableRoot(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error)
	// FinishRepeatableRoot marks the last repetition of n as complete.
	FinishRepeatableRoot(n *boxtree.Node) error
}

// TryRuleSource is implemented by algorithms knowing the position-try rules
// of a document.
type TryRuleSource interface {
	TryRules() *style.TryRegistry
}

// Part lays out the positioned boxes a builder collected. A Part is created
// for a builder once it has placed its in-flow content, and used once.
type Part struct {
	algo                Algorithm
	cache               *Cache
	b                   *fragment.Builder
	cfg                 Config
	tries               *style.TryRegistry
	defaults            [2]*ContainingBlockInfo // absolute, fixed
	inlineCBs           map[*boxtree.Node]ContainingBlockInfo
	isPaginatedRoot     bool
	isFragmentationRoot bool
	allowFirstTierCache bool
	outer               *outerContext
	anchors             anchor.Query
	anchorsValid        bool
	state               placementState
	delayed             []fragment.FragmentainerDescendant
	repeats             []*repeatable
}

// NewPart prepares placement of the positioned boxes collected by b. cache
// lives as long as the outer layout invocation; it may be nil.
func NewPart(algo Algorithm, cache *Cache, b *fragment.Builder, cfg Config) *Part {
	if cache == nil {
		cache = NewCache()
	}
	p := &Part{
		algo:      algo,
		cache:     cache,
		b:         b,
		cfg:       cfg,
		inlineCBs: make(map[*boxtree.Node]ContainingBlockInfo),
	}
	if src, ok := algo.(TryRuleSource); ok {
		p.tries = src.TryRules()
	}
	p.isFragmentationRoot = b.IsFragmentationContextRoot && !b.HasBlockFragmentation()
	p.isPaginatedRoot = p.isFragmentationRoot && b.Box.IsRoot() && hasPages(b)
	p.allowFirstTierCache = b.Border.IsZero() && b.Scrollbar.IsZero() &&
		b.Box.Kind != boxtree.TableGridBox && !b.HasBlockFragmentation() && !cfg.DisableFirstTierCache
	return p
}

func hasPages(b *fragment.Builder) bool {
	if b.Kind == fragment.PageFragment {
		return true
	}
	for _, c := range b.Children() {
		if f := b.Arena().Fragment(c.Ref); c.Fragmentainer && f != nil && f.Kind == fragment.PageFragment {
			return true
		}
	}
	return false
}

// Run places the positioned boxes. Boxes which b is not the containing block
// of are handed back to b's ancestors. Inside a fragmentation context, boxes
// are passed on to the fragmentation context root, which places them into
// its fragmentainers.
func (p *Part) Run() (err error) {
	if p.cfg.Debug {
		defer func() {
			if err != nil && core.IsInvariantViolation(err) {
				panic(err)
			}
		}()
	}
	if !p.b.HasCandidates() && !p.b.HasFragmentainerDescendants() && !p.b.HasMulticolsWithPending() {
		return nil
	}
	tracer().Debugf("out-of-flow layout for %v", p.b.Box)
	if err = p.layoutCandidates(p.b.SwapCandidates()); err != nil {
		return err
	}
	if p.isFragmentationRoot {
		err = p.handleFragmentation()
	}
	return err
}

// isContainingBlockFor tells if positioned box c is placed by this part.
func (p *Part) isContainingBlockFor(c fragment.PositionedNode) bool {
	if p.b.Box == nil {
		return false
	}
	return c.Box.LayoutContainer() == p.b.Box
}

// layoutCandidates lays out the candidates contained by the builder and
// hands back the others. Laying out a candidate may reveal new candidates,
// e.g. fixed positioned boxes inside it, which are swept as well.
func (p *Part) layoutCandidates(candidates []fragment.PositionedNode) error {
	for len(candidates) > 0 {
		p.computeInlineContainingBlocks(candidates)
		for _, c := range candidates {
			if !p.isContainingBlockFor(c) {
				p.b.AddOutOfFlowDescendant(c)
				continue
			}
			if p.isFragmentationRoot {
				// placed together with the other fragmentainer descendants
				p.b.AddFragmentainerDescendant(fragment.FragmentainerDescendant{PositionedNode: c})
				continue
			}
			if p.b.HasBlockFragmentation() {
				p.b.AddFragmentainerDescendantContainedBySelf(c)
				continue
			}
			if err := p.layoutCandidate(c); err != nil {
				return err
			}
		}
		candidates = p.b.SwapCandidates()
	}
	return nil
}

func (p *Part) layoutCandidate(c fragment.PositionedNode) error {
	info, err := p.nodeInfo(c, nil)
	if err != nil {
		return err
	}
	off, err := p.CalculateOffset(info, true, p.anchorQuery())
	if err != nil {
		return err
	}
	nl := &nodeToLayout{info: info, offset: off}
	res, err := p.layoutOOFNode(nl, nil, false)
	if err != nil {
		return err
	}
	p.b.AddResult(res, nl.offset.Offset)
	p.b.MarkOutOfFlowDescendants()
	if res.Fragment.Box.Style.AnchorName != "" || res.Fragment.Anchors.Len() > 0 {
		p.anchorsValid = false
	}
	return nil
}

// anchorQuery returns the anchors laid out by the builder so far.
func (p *Part) anchorQuery() anchor.Query {
	if !p.anchorsValid {
		p.anchors = p.b.AnchorQuery()
		p.anchorsValid = true
	}
	return p.anchors
}

// anchorSpaceSize is the size of the coordinate space anchors are queried
// in: the border box of the builder or the stitched fragmentainers.
func (p *Part) anchorSpaceSize() frame.PhysicalSize {
	if p.isFragmentationRoot || p.outer != nil {
		return p.stitchedSize()
	}
	return p.b.PhysicalSize()
}

// nodeInfo gathers what is known about a positioned box before layout. fd
// is nil for boxes which are not fragmentainer descendants.
func (p *Part) nodeInfo(pn fragment.PositionedNode, fd *fragment.FragmentainerDescendant) (NodeInfo, error) {
	var cb *fragment.ContainingBlock
	if fd != nil {
		cb = &fd.ContainingBlock
	}
	cbInfo, err := p.containingBlockInfo(pn.Box, pn.Inline, cb)
	if err != nil {
		return NodeInfo{}, err
	}
	info := NodeInfo{
		Node:                          pn.Box,
		CB:                            cbInfo,
		Static:                        pn.Static,
		Inline:                        pn.Inline,
		RequiresContentBeforeBreaking: pn.RequiresContentBeforeBreaking,
	}
	if fd != nil {
		info.ContainingBlock = fd.ContainingBlock
		info.FixedposContainingBlock = fd.FixedposContainingBlock
		info.FixedposInline = fd.FixedposInlineContainer
		info.fragmented = true
	}
	return info, nil
}

// invariant creates an error for a violated layout invariant.
func (p *Part) invariant(format string, v ...interface{}) error {
	err := core.Error(core.EINVARIANT, format, v...)
	tracer().Errorf("%v", err)
	return err
}
