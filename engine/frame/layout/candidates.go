package layout

import (
	"errors"

	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
)

// candidateStyle is one of the styles tried for placing a positioned box.
type candidateStyle struct {
	style      *style.Style
	index      int // position-try entry, -1 for the base style
	flipBlock  bool
	flipInline bool
}

// candidateStyles lists the styles to try for node n, in the order they are
// tried: the base style, then the entries of its position-fallback rule.
// Each style is followed by its mirrored variants (block, inline, both) in
// the axes where auto anchoring allows flipping.
func (p *Part) candidateStyles(n *boxtree.Node) []candidateStyle {
	base := n.Style
	styles := withFlips(nil, base, -1, base.IsAutoAnchorFlippable)
	if base.PositionFallback == "" {
		return styles
	}
	rule, err := p.tries.Lookup(base.PositionFallback)
	if err != nil {
		if errors.Is(err, style.ErrUnknownTryRule) {
			tracer().Infof("%v: %v, no fallbacks", n, err)
		}
		return styles
	}
	for i, entry := range rule.Entries {
		st := entry.Apply(base)
		e := entry
		flippable := func(a, b int) bool {
			return e.UsesAutoAnchor(a, b) && st.IsAutoAnchorFlippable(a, b)
		}
		styles = withFlips(styles, st, i, flippable)
	}
	tracer().Debugf("%v: %d candidate styles", n, len(styles))
	return styles
}

func withFlips(styles []candidateStyle, st *style.Style, index int, flippable func(a, b int) bool) []candidateStyle {
	styles = append(styles, candidateStyle{style: st, index: index})
	block := flippable(st.BlockAxisSides())
	inline := flippable(st.InlineAxisSides())
	if block {
		styles = append(styles, candidateStyle{style: st.Flipped(true, false), index: index, flipBlock: true})
	}
	if inline {
		styles = append(styles, candidateStyle{style: st.Flipped(false, true), index: index, flipInline: true})
	}
	if block && inline {
		styles = append(styles, candidateStyle{style: st.Flipped(true, true), index: index,
			flipBlock: true, flipInline: true})
	}
	return styles
}
