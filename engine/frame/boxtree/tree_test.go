package boxtree

import (
	"testing"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func positioned(p style.Position) *style.Style {
	st := style.Default()
	st.Position = p
	return st
}

func TestContainingBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.box")
	defer teardown()
	//
	abs := Block("abs", positioned(style.PositionAbsolute))
	fixed := Block("fixed", positioned(style.PositionFixed))
	inAbs := Block("inabs", positioned(style.PositionFixed))
	abs.Add(inAbs)
	span := Inline("span", positioned(style.PositionRelative), 10*dimen.PX)
	inSpan := Block("inspan", positioned(style.PositionAbsolute))
	span.Add(inSpan)
	rel := Block("rel", positioned(style.PositionRelative))
	rel.Add(Block("static", nil).Add(abs, fixed), Block("para", nil).Add(span))
	root := Block("root", nil).Add(rel)
	tree := NewTree(root)
	//
	assert.Equal(t, 9, tree.Size())
	assert.Equal(t, 0, root.Index())
	assert.Equal(t, rel, abs.ContainingBlock())
	assert.Equal(t, root, fixed.ContainingBlock())
	assert.Equal(t, root, inAbs.ContainingBlock())
	assert.Equal(t, span, inSpan.ContainingBlock())
	assert.Equal(t, span, inSpan.InlineContainer())
	assert.Equal(t, tree.Lookup("para"), inSpan.LayoutContainer())
	assert.Nil(t, abs.InlineContainer())
	assert.True(t, inAbs.IsDescendantOf(rel))
	assert.True(t, abs.Index() < inAbs.Index())
}

func TestSpanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.box")
	defer teardown()
	//
	mst := style.Default()
	mst.ColumnCount = 3
	sst := style.Default()
	sst.ColumnSpanAll = true
	spanner := Block("spanner", sst)
	mc := Block("mc", mst).Add(Block("a", nil), spanner)
	NewTree(Block("root", nil).Add(mc))
	assert.True(t, mc.IsMulticol())
	assert.True(t, spanner.IsSpanner())
	assert.False(t, mc.IsSpanner())
}
