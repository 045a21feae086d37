package fragment

import (
	"errors"
	"fmt"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
)

// Errors of arena operations.
var (
	ErrSuperseded       = errors.New("fragment has been superseded")
	ErrStaleGeneration  = errors.New("fragment reference from stale arena generation")
	ErrAlreadyFinalized = errors.New("out-of-flow data already set")
)

// Ref is a reference to a fragment slot in an arena. The zero Ref is nil.
type Ref struct {
	slot int32
	gen  uint32
}

// NoRef is the nil reference.
var NoRef = Ref{}

// IsNil is true for the nil reference.
func (r Ref) IsNil() bool {
	return r.slot == 0
}

func (r Ref) String() string {
	if r.IsNil() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", r.slot, r.gen)
}

// Arena owns the fragments of a layout pass. Reset starts a new pass and
// invalidates all references handed out before.
type Arena struct {
	gen     uint32
	slots   []*Fragment
	parents map[int32]int32
	boxes   map[*boxtree.Node][]int32
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	a := &Arena{}
	a.Reset()
	return a
}

// Reset drops all fragments and advances the generation.
func (a *Arena) Reset() {
	a.gen++
	a.slots = []*Fragment{nil}
	a.parents = make(map[int32]int32)
	a.boxes = make(map[*boxtree.Node][]int32)
}

// Generation returns the pass generation of a.
func (a *Arena) Generation() uint32 {
	return a.gen
}

// Len returns the number of slots in use.
func (a *Arena) Len() int {
	return len(a.slots) - 1
}

// Add hands a fragment over to a. Its children must have been added before.
func (a *Arena) Add(f *Fragment) Ref {
	if !f.ref.IsNil() && f.ref.gen == a.gen {
		return f.ref
	}
	slot := int32(len(a.slots))
	f.ref = Ref{slot: slot, gen: a.gen}
	a.slots = append(a.slots, f)
	a.link(f)
	if f.Box != nil {
		a.boxes[f.Box] = append(a.boxes[f.Box], slot)
	}
	return f.ref
}

func (a *Arena) link(f *Fragment) {
	for _, l := range f.Children {
		a.parents[l.Ref.slot] = f.ref.slot
	}
}

// Get dereferences r.
func (a *Arena) Get(r Ref) (*Fragment, error) {
	if r.IsNil() {
		return nil, core.Error(core.EINVALID, "nil fragment reference")
	}
	if r.gen != a.gen {
		return nil, fmt.Errorf("%w: %v, arena at %d", ErrStaleGeneration, r, a.gen)
	}
	if int(r.slot) >= len(a.slots) {
		return nil, core.Error(core.EINVARIANT, "fragment reference %v out of range", r)
	}
	return a.slots[r.slot], nil
}

// Fragment dereferences r. It returns nil for invalid references.
func (a *Arena) Fragment(r Ref) *Fragment {
	f, err := a.Get(r)
	if err != nil {
		return nil
	}
	return f
}

// Replace swaps the slot of old over to f. old has to be the current
// occupant of its slot. After Replace, old is superseded and every
// reference to the slot leads to f.
func (a *Arena) Replace(old, f *Fragment) (Ref, error) {
	if old.superseded {
		return NoRef, fmt.Errorf("%w: %v", ErrSuperseded, old.ref)
	}
	cur, err := a.Get(old.ref)
	if err != nil {
		return NoRef, err
	}
	if cur != old {
		return NoRef, core.Error(core.EINVARIANT, "fragment %v does not occupy its slot", old.ref)
	}
	f.ref = old.ref
	f.superseded = false
	a.slots[old.ref.slot] = f
	old.superseded = true
	a.link(f)
	tracer().Debugf("arena: replaced fragment %v of %v", f.ref, f.Box)
	return f.ref, nil
}

// Parent returns the reference of the fragment holding r as a child.
func (a *Arena) Parent(r Ref) (Ref, bool) {
	if r.gen != a.gen {
		return NoRef, false
	}
	p, ok := a.parents[r.slot]
	if !ok {
		return NoRef, false
	}
	return Ref{slot: p, gen: a.gen}, true
}

// FragmentsOf returns the fragments of box, in the order they were created.
// Fragments of a box other than the root are left out until attached to a
// parent fragment, e.g. results of measuring layouts.
func (a *Arena) FragmentsOf(box *boxtree.Node) []*Fragment {
	slots := a.boxes[box]
	frags := make([]*Fragment, 0, len(slots))
	for _, s := range slots {
		if _, attached := a.parents[s]; !attached && !box.IsRoot() {
			continue
		}
		frags = append(frags, a.slots[s])
	}
	return frags
}

// Walk visits the fragment tree below root in pre-order. offset is the
// physical offset of a fragment relative to root. If fn returns false, the
// children of a fragment are skipped.
func (a *Arena) Walk(root Ref, fn func(f *Fragment, offset frame.PhysicalOffset, depth int) bool) {
	var walk func(Ref, frame.PhysicalOffset, int)
	walk = func(r Ref, offset frame.PhysicalOffset, depth int) {
		f := a.Fragment(r)
		if f == nil || !fn(f, offset, depth) {
			return
		}
		for _, l := range f.Children {
			walk(l.Ref, offset.Add(l.Offset), depth+1)
		}
	}
	walk(root, frame.PhysicalOffset{}, 0)
}
