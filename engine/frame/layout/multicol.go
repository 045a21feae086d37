package layout

import (
	"errors"
	"fmt"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// ErrFragmentNotFound is returned if a fragment to be replaced is not a
// child of the fragment it is supposed to be found in.
var ErrFragmentNotFound = errors.New("fragment not found in parent")

// ReplaceFragment puts f in place of old, a fragment already attached to a
// parent. References to old, including the link of the parent, lead to f
// afterwards. A fragment without a parent holding it cannot be replaced.
func ReplaceFragment(arena *fragment.Arena, old, f *fragment.Fragment) error {
	pr, ok := arena.Parent(old.Ref())
	if !ok {
		return core.WrapError(fmt.Errorf("%w: %v has no parent", ErrFragmentNotFound, old),
			core.EINVARIANT, "cannot replace fragment")
	}
	parent := arena.Fragment(pr)
	found := false
	if parent != nil {
		for _, l := range parent.Children {
			if l.Ref == old.Ref() {
				found = true
				break
			}
		}
	}
	if !found {
		return core.WrapError(fmt.Errorf("%w: %v in %v", ErrFragmentNotFound, old, parent),
			core.EINVARIANT, "cannot replace fragment")
	}
	if _, err := arena.Replace(old, f); err != nil {
		return core.WrapError(err, core.EINVARIANT, "cannot replace fragment %v", old)
	}
	return nil
}

// outerContext connects the placement inside a nested multi-column
// container with the fragmentation context around it.
type outerContext struct {
	parent   *Part
	multicol fragment.MulticolWithPendingOOFs
	owners   []fragment.Ref // fragment of the multicol holding column i
}

// owner returns the multicol fragment holding column i. Columns added
// during placement belong to the last fragment of the multicol.
func (oc *outerContext) owner(i int) fragment.Ref {
	if i < len(oc.owners) {
		return oc.owners[i]
	}
	return oc.owners[len(oc.owners)-1]
}

// appendColumn splices a column added by inner into the multicol fragment,
// which has already been laid out.
func (oc *outerContext) appendColumn(inner *Part, col *fragment.Fragment, offset frame.LogicalOffset) error {
	arena := inner.algo.Arena()
	ref := oc.owner(len(oc.owners))
	old, err := arena.Get(ref)
	if err != nil {
		return core.WrapError(err, core.EINVARIANT, "multicol fragment of %v", oc.multicol.Box)
	}
	mf := old.Clone()
	mf.AppendChild(col.Ref(), offset.ToPhysical(inner.b.Writing, mf.Size, col.Size))
	return ReplaceFragment(arena, old, mf)
}

// origin finds the offset of column i in the stitched space of the outer
// fragmentation context.
func (oc *outerContext) origin(inner *Part, i int) (frame.LogicalOffset, bool) {
	arena := inner.algo.Arena()
	outer := oc.parent
	slots := outer.fragmentainers()
	ref := oc.owner(i)
	f := arena.Fragment(ref)
	if f == nil {
		return frame.LogicalOffset{}, false
	}
	var acc frame.PhysicalOffset
	for cur := ref; ; {
		pr, ok := arena.Parent(cur)
		if !ok {
			return frame.LogicalOffset{}, false
		}
		parent := arena.Fragment(pr)
		if parent == nil {
			return frame.LogicalOffset{}, false
		}
		for _, l := range parent.Children {
			if l.Ref == cur {
				acc = acc.Add(l.Offset)
				break
			}
		}
		for _, s := range slots {
			if s.ref == pr {
				lo := acc.ToLogical(outer.b.Writing, parent.Size, f.Size)
				lo.Block += s.stitched
				return lo, true
			}
		}
		cur = pr
	}
}

// handBack passes a box found in column i of a nested multicol on to the
// outer context. The static position of n is relative to the column.
// A multicol which cannot be located in the outer context leaves n without
// a containing block, which is an invariant violation.
func (oc *outerContext) handBack(inner *Part, n fragment.PositionedNode, i int) error {
	slots := inner.fragmentainers()
	origin, ok := oc.origin(inner, i)
	if !ok || i >= len(slots) {
		return inner.invariant("cannot locate column %d of multicol %v in outer context for %v",
			i, oc.multicol.Box, n.Box)
	}
	n = n.Shifted(origin.Add(slots[i].offset))
	d := fragment.FragmentainerDescendant{
		PositionedNode:          n,
		ContainingBlock:         oc.multicol.FixedposContainingBlock,
		FixedposContainingBlock: oc.multicol.FixedposContainingBlock,
		FixedposInlineContainer: oc.multicol.FixedposInlineContainer,
	}
	tracer().Debugf("%v handed back to %v", n, oc.parent.b.Box)
	oc.parent.b.AddFragmentainerDescendant(d)
	return nil
}

// layoutOOFsInMulticol places the positioned boxes kept by a nested
// multicol into its columns, after the outer fragmentation context has laid
// out the multicol. The columns of all fragments of the multicol form the
// fragmentation context of an inner part.
func (p *Part) layoutOOFsInMulticol(m fragment.MulticolWithPendingOOFs) error {
	arena := p.algo.Arena()
	frags := arena.FragmentsOf(m.Box)
	if len(frags) == 0 {
		return p.invariant("nested multicol %v has no fragments", m.Box)
	}
	wd := frags[0].Writing
	mb := fragment.NewBuilder(arena, m.Box, fragment.BoxFragment,
		frame.NewSpace(wd, frags[0].LogicalSize(), frags[0].LogicalSize()))
	mb.IsFragmentationContextRoot = true
	mb.InlineSize = frags[0].LogicalSize().Inline
	mb.Border, mb.Padding, mb.Scrollbar = frags[0].Border, frags[0].Padding, frags[0].Scrollbar
	oc := &outerContext{parent: p, multicol: m}
	var base, total dimen.Dimen
	for _, mf := range frags {
		end := base
		for _, l := range mf.Children {
			c := arena.Fragment(l.Ref)
			if c == nil || !c.IsFragmentainer() {
				continue
			}
			mb.AddFragmentainerLink(l.Ref, l.Offset.ToLogical(wd, mf.Size, c.Size), end)
			oc.owners = append(oc.owners, mf.Ref())
			end += c.BlockSize(wd.Mode)
		}
		for _, d := range mf.FragmentainerDescendants {
			if fragment.KeptByMulticol(d) {
				mb.AddFragmentainerDescendant(d.Shifted(frame.LogicalOffset{Block: base}))
			}
		}
		total += mf.BlockSize(wd.Mode)
		base = end
	}
	if len(oc.owners) == 0 {
		return p.invariant("nested multicol %v has no columns", m.Box)
	}
	mb.BlockSize = total
	tracer().Debugf("placing positioned boxes of nested multicol %v, %d columns", m.Box, len(oc.owners))
	inner := NewPart(p.algo, p.cache, mb, p.cfg)
	inner.outer = oc
	if err := inner.handleFragmentation(); err != nil {
		return err
	}
	if left := mb.SwapFragmentainerDescendants(); len(left) > 0 {
		tracer().Infof("nested multicol %v: %d positioned boxes with unfinished containing blocks", m.Box, len(left))
	}
	return nil
}
