package flow

import (
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/outflow/engine/frame/layout"
)

// repetition is a box repeated on every page.
type repetition struct {
	first, last *fragment.Fragment
}

// LayoutRepeatableRoot lays out n for the first page if bt is nil. For later
// pages, the fragment of the first page is copied. All but the last
// repetition carry a break token.
func (e *Engine) LayoutRepeatableRoot(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error) {
	r := e.repeats[n]
	if bt == nil || r == nil {
		res, err := e.Layout(n, space, nil)
		if err != nil {
			return nil, err
		}
		res.Fragment.BreakToken = &frame.BreakToken{IsRepeated: true}
		e.repeats[n] = &repetition{first: res.Fragment, last: res.Fragment}
		return res, nil
	}
	c := r.first.Clone()
	c.BreakToken = &frame.BreakToken{IsRepeated: true, Sequence: bt.SequenceNumber()}
	e.arena.Add(c)
	r.last = c
	tracer().Debugf("repeating %v, #%d", n, bt.SequenceNumber())
	return fragment.NewResult(c), nil
}

// FinishRepeatableRoot removes the break token from the last repetition
// of n.
func (e *Engine) FinishRepeatableRoot(n *boxtree.Node) error {
	r := e.repeats[n]
	if r == nil {
		return core.Error(core.EINVALID, "%v has not been repeated", n)
	}
	c := r.last.Clone()
	c.BreakToken = nil
	if err := layout.ReplaceFragment(e.arena, r.last, c); err != nil {
		return err
	}
	if r.first == r.last {
		r.first = c
	}
	r.last = c
	delete(e.repeats, n)
	return nil
}
