package layout

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// repeatable is a fixed positioned box of a paginated document, repeated
// on every page. Its placement is computed once.
type repeatable struct {
	nl        *nodeToLayout
	pagesDone int
}

// isRepeatable is true for fixed positioned boxes contained by the initial
// containing block of a paginated root.
func (p *Part) isRepeatable(d fragment.FragmentainerDescendant) bool {
	if !p.isPaginatedRoot || d.Box.Style.Position != style.PositionFixed || d.ContainingBlock.IsSet() {
		return false
	}
	_, ok := p.algo.(RepeatableLayouter)
	return ok
}

// stampRepeatables lays out the repeatable boxes on the pages they have not
// been put on yet. Pages are never added for repeated content.
func (p *Part) stampRepeatables() error {
	if len(p.repeats) == 0 {
		return nil
	}
	slots := p.fragmentainers()
	arena := p.algo.Arena()
	for _, r := range p.repeats {
		for ; r.pagesDone < len(slots); r.pagesDone++ {
			i := r.pagesDone
			nl := *r.nl
			nl.repeat = true
			if i > 0 {
				nl.breakToken = &frame.BreakToken{IsRepeated: true, Sequence: i}
			}
			fspace := p.fragmentainerSpace(slots[i])
			res, err := p.layoutOOFNode(&nl, &fspace, i == len(slots)-1)
			if err != nil {
				return err
			}
			page, err := arena.Get(slots[i].ref)
			if err != nil {
				return core.WrapError(err, core.EINVARIANT, "page %d of %v", i, p.b.Box)
			}
			local := nl.offset.Offset.Add(nl.info.CB.RelativeOffset)
			clone := page.Clone()
			clone.AppendChild(res.Ref, local.ToPhysical(p.b.Writing, clone.Size, res.Fragment.Size))
			clone.MarkOutOfFlowDescendants()
			clone.Anchors = fragment.CollectAnchors(arena, clone.Children)
			if _, err := arena.Replace(page, clone); err != nil {
				return core.WrapError(err, core.EINVARIANT, "replacing page %d of %v", i, p.b.Box)
			}
			tracer().Debugf("%v repeated on page %d at %v", nl.info.Node, i, local)
		}
	}
	p.b.MarkOutOfFlowDescendants()
	return nil
}

// finishRepeatables completes the repeatable boxes, once each.
func (p *Part) finishRepeatables() error {
	if len(p.repeats) == 0 {
		return nil
	}
	rl := p.algo.(RepeatableLayouter)
	for _, r := range p.repeats {
		if err := rl.FinishRepeatableRoot(r.nl.info.Node); err != nil {
			return core.WrapError(err, core.ELAYOUT, "finishing repeated %v", r.nl.info.Node)
		}
	}
	p.repeats = nil
	return nil
}
