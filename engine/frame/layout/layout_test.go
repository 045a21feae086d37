package layout_test

import (
	"fmt"
	"testing"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/flow"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/outflow/engine/frame/layout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func px(n int) dimen.Dimen {
	return dimen.Dimen(n) * dimen.PX
}

func positioned(p style.Position) *style.Style {
	st := style.Default()
	st.Position = p
	return st
}

func sized(st *style.Style, w, h int) *style.Style {
	st.Width, st.Height = style.Px(w), style.Px(h)
	return st
}

// localOffset finds the link offset of f in its parent fragment.
func localOffset(arena *fragment.Arena, f *fragment.Fragment) (frame.PhysicalOffset, *fragment.Fragment, bool) {
	pr, ok := arena.Parent(f.Ref())
	if !ok {
		return frame.PhysicalOffset{}, nil, false
	}
	parent := arena.Fragment(pr)
	if parent == nil {
		return frame.PhysicalOffset{}, nil, false
	}
	for _, l := range parent.Children {
		if l.Ref == f.Ref() {
			return l.Offset, parent, true
		}
	}
	return frame.PhysicalOffset{}, parent, false
}

// ---------------------------------------------------------------------------

type PlacementSuite struct {
	suite.Suite
	teardown func()
	engine   *flow.Engine
}

func TestPlacement(t *testing.T) {
	suite.Run(t, new(PlacementSuite))
}

func (s *PlacementSuite) SetupTest() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "outflow.frame.layout")
	s.engine = flow.New(layout.DefaultConfig())
}

func (s *PlacementSuite) TearDownTest() {
	s.teardown()
}

func (s *PlacementSuite) layout(tree *boxtree.Tree) *fragment.Result {
	res, err := s.engine.LayoutTree(tree)
	s.Require().NoError(err)
	s.Require().NotNil(res)
	return res
}

func (s *PlacementSuite) single(n *boxtree.Node) *fragment.Fragment {
	frags := s.engine.Arena().FragmentsOf(n)
	s.Require().Len(frags, 1, "expected a single fragment of %v", n)
	s.Require().NotNil(frags[0].OutOfFlow(), "fragment of %v has no placement", n)
	return frags[0]
}

// decorated creates a relatively positioned containing block with border 5
// and padding 7.
func decorated(name string) *boxtree.Node {
	st := positioned(style.PositionRelative)
	for i := 0; i < 4; i++ {
		st.Border[i] = px(5)
		st.Padding[i] = style.Px(7)
	}
	return boxtree.Block(name, st)
}

func (s *PlacementSuite) TestOffsetFromBorderBox() {
	cb := decorated("cb")
	cb.Style = sized(cb.Style, 200, 100)
	ast := sized(positioned(style.PositionAbsolute), 50, 20)
	ast.Insets[frame.Left] = style.Px(10)
	ast.Insets[frame.Top] = style.Px(10)
	abs := boxtree.Block("abs", ast)
	cb.Add(abs)
	tree := boxtree.NewTree(boxtree.Block("root", nil).Add(cb))
	s.layout(tree)
	//
	f := s.single(abs)
	oof := f.OutOfFlow()
	s.Equal(frame.LogicalOffset{Inline: px(22), Block: px(22)}, oof.Offset)
	s.Equal(-1, oof.FallbackIndex)
	s.Equal(frame.Strut{Top: px(10), Right: px(140), Bottom: px(70), Left: px(10)}, oof.Insets)
	s.Equal(frame.PhysicalSize{W: px(50), H: px(20)}, f.Size)
	off, parent, ok := localOffset(s.engine.Arena(), f)
	s.Require().True(ok)
	s.Equal(cb, parent.Box)
	s.Equal(frame.PhysicalOffset{X: px(22), Y: px(22)}, off)
}

func (s *PlacementSuite) TestMarginsKeepInsets() {
	cb := decorated("cb")
	cb.Style = sized(cb.Style, 200, 100)
	ast := sized(positioned(style.PositionAbsolute), 50, 20)
	ast.Insets[frame.Left] = style.Px(10)
	ast.Insets[frame.Top] = style.Px(10)
	for i := 0; i < 4; i++ {
		ast.Margins[i] = style.Px(3)
	}
	abs := boxtree.Block("abs", ast)
	cb.Add(abs)
	s.layout(boxtree.NewTree(boxtree.Block("root", nil).Add(cb)))
	//
	oof := s.single(abs).OutOfFlow()
	s.Equal(px(10), oof.Insets.Left)
	s.Equal(px(10), oof.Insets.Top)
	s.Equal(frame.LogicalOffset{Inline: px(25), Block: px(25)}, oof.Offset)
}

func (s *PlacementSuite) TestStaticPosition() {
	cb := decorated("cb")
	cb.Style.Width = style.Px(200)
	before := boxtree.Block("before", sized(style.Default(), 200, 30))
	abs := boxtree.Block("abs", sized(positioned(style.PositionAbsolute), 50, 20))
	cb.Add(before, abs)
	s.layout(boxtree.NewTree(boxtree.Block("root", nil).Add(cb)))
	//
	oof := s.single(abs).OutOfFlow()
	s.Equal(frame.LogicalOffset{Inline: px(12), Block: px(42)}, oof.Offset)
	s.Equal(-1, oof.FallbackIndex)
	s.Empty(oof.Ranges)
}

// fallbackTree creates a positioned box in a 100×100 containing block.
// Its base style and every entry but the one at index fits overflow the
// containing block in the inline direction.
func fallbackTree(entries, fits int) (*boxtree.Tree, *boxtree.Node) {
	ast := sized(positioned(style.PositionAbsolute), 50, 20)
	ast.Insets[frame.Left] = style.Px(80)
	ast.Insets[frame.Right] = style.Px(0)
	ast.Insets[frame.Top] = style.Px(0)
	ast.Insets[frame.Bottom] = style.Px(0)
	ast.PositionFallback = "--alternatives"
	abs := boxtree.Block("abs", ast)
	cb := boxtree.Block("cb", sized(positioned(style.PositionRelative), 100, 100)).Add(abs)
	tree := boxtree.NewTree(boxtree.Block("root", nil).Add(cb))
	rule := &style.TryRule{Name: "--alternatives"}
	for i := 0; i < entries; i++ {
		left := 60
		if i == fits {
			left = 10
		}
		rule.Entries = append(rule.Entries, style.NewTryEntry().SetInset(frame.Left, style.Px(left)))
	}
	tree.Tries.Add(rule)
	return tree, abs
}

func (s *PlacementSuite) TestSecondFallbackFits() {
	tree, abs := fallbackTree(2, 1)
	s.layout(tree)
	//
	oof := s.single(abs).OutOfFlow()
	s.Equal(1, oof.FallbackIndex)
	s.Require().Len(oof.Ranges, 1)
	s.Equal(1, oof.Ranges[0].StyleIndex)
	s.Equal(px(10), oof.Insets.Left)
	s.Equal(frame.LogicalOffset{Inline: px(10), Block: px(0)}, oof.Offset)
}

func (s *PlacementSuite) TestFallbackOrdering() {
	for k := 0; k < 4; k++ {
		s.Run(fmt.Sprintf("entry-%d", k), func() {
			tree, abs := fallbackTree(4, k)
			s.layout(tree)
			oof := s.single(abs).OutOfFlow()
			s.Equal(k, oof.FallbackIndex)
			s.Require().Len(oof.Ranges, 1)
			s.Equal(k, oof.Ranges[0].StyleIndex)
		})
	}
}

func (s *PlacementSuite) TestNoFittingFallbackTakesLast() {
	tree, abs := fallbackTree(3, -1)
	s.layout(tree)
	oof := s.single(abs).OutOfFlow()
	s.Equal(2, oof.FallbackIndex)
	s.Empty(oof.Ranges)
}

func (s *PlacementSuite) TestScrollbarsFreeze() {
	ast := positioned(style.PositionAbsolute)
	ast.Height = style.Px(50)
	ast.OverflowY = style.OverflowAuto
	ast.Insets[frame.Left] = style.Px(0)
	ast.Insets[frame.Top] = style.Px(0)
	abs := boxtree.Block("abs", ast)
	abs.Add(boxtree.Block("content", sized(style.Default(), 80, 100)))
	cb := boxtree.Block("cb", sized(positioned(style.PositionRelative), 300, 300)).Add(abs)
	s.layout(boxtree.NewTree(boxtree.Block("root", nil).Add(cb)))
	//
	f := s.single(abs)
	s.True(abs.Layout.Scrollbars.Vertical)
	s.False(abs.Layout.Scrollbars.Horizontal)
	s.False(abs.Layout.IntrinsicWidthsDirty)
	s.Equal(px(95), f.Size.W)
	s.Equal(px(50), f.Size.H)
}

func (s *PlacementSuite) TestRelayoutIsStable() {
	ast := sized(positioned(style.PositionAbsolute), 50, 20)
	ast.Insets[frame.Left] = style.Px(10)
	abs := boxtree.Block("abs", ast)
	cb := boxtree.Block("cb", sized(positioned(style.PositionRelative), 200, 100)).Add(abs)
	tree := boxtree.NewTree(boxtree.Block("root", nil).Add(cb))
	s.layout(tree)
	first := s.single(abs).OutOfFlow().Offset
	s.layout(tree)
	s.Equal(first, s.single(abs).OutOfFlow().Offset)
}

// TestColumnContinuation places a box taller than a column into a multi-column
// container with three columns of 100×100.
func (s *PlacementSuite) TestColumnContinuation() {
	mst := sized(positioned(style.PositionRelative), 300, 100)
	mst.ColumnCount = 3
	ast := sized(positioned(style.PositionAbsolute), 50, 250)
	ast.Insets[frame.Left] = style.Px(0)
	ast.Insets[frame.Top] = style.Px(0)
	abs := boxtree.Block("abs", ast)
	mc := boxtree.Block("mc", mst).Add(abs)
	s.layout(boxtree.NewTree(boxtree.Block("root", nil).Add(mc)))
	//
	arena := s.engine.Arena()
	frags := arena.FragmentsOf(abs)
	s.Require().Len(frags, 3)
	s.Require().NotNil(frags[0].BreakToken)
	s.Nil(frags[2].BreakToken)
	var total dimen.Dimen
	for i, f := range frags {
		s.Equal(px(50), f.Size.W, "inline size of fragment %d", i)
		total += f.Size.H
		_, ok := arena.Parent(f.Ref())
		s.True(ok, "fragment %d not attached", i)
	}
	s.Equal(px(250), total)
	s.Equal(px(100), frags[0].Size.H)
	off, col, ok := localOffset(arena, frags[1])
	s.Require().True(ok)
	s.Equal(fragment.ColumnFragment, col.Kind)
	s.Equal(px(0), off.Y)
	colOffset, _, ok := localOffset(arena, col)
	s.Require().True(ok)
	s.Equal(px(100), colOffset.X)
}

// TestRepeatedFixed places a fixed positioned box into a document of three
// pages.
func (s *PlacementSuite) TestRepeatedFixed() {
	fst := sized(positioned(style.PositionFixed), 100, 50)
	fst.Insets[frame.Left] = style.Px(10)
	fst.Insets[frame.Top] = style.Px(10)
	fixed := boxtree.Block("fixed", fst)
	root := boxtree.Block("root", nil).Add(fixed)
	for i := 0; i < 3; i++ {
		root.Add(boxtree.Block(fmt.Sprintf("block%d", i), sized(style.Default(), 600, 700)))
	}
	tree := boxtree.NewTree(root)
	tree.Paginated = true
	s.layout(tree)
	//
	arena := s.engine.Arena()
	frags := arena.FragmentsOf(fixed)
	s.Require().Len(frags, 3)
	pages := make(map[fragment.Ref]bool)
	for i, f := range frags {
		off, page, ok := localOffset(arena, f)
		s.Require().True(ok, "fragment %d not attached", i)
		s.Equal(fragment.PageFragment, page.Kind)
		pages[page.Ref()] = true
		s.Equal(frags[0].Size, f.Size, "size of fragment %d", i)
		s.Equal(frame.PhysicalOffset{X: px(10), Y: px(10)}, off, "offset of fragment %d", i)
	}
	s.Len(pages, 3)
	s.Require().NotNil(frags[0].BreakToken)
	s.True(frags[0].BreakToken.IsRepeated)
	s.Nil(frags[2].BreakToken)
}

// ---------------------------------------------------------------------------

func TestNestedMulticolConservation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	outer := style.Default()
	outer.Width, outer.Height = style.Px(400), style.Px(200)
	outer.ColumnCount = 2
	inner := sized(positioned(style.PositionRelative), 200, 100)
	inner.ColumnCount = 2
	ast := sized(positioned(style.PositionAbsolute), 40, 150)
	ast.Insets[frame.Left] = style.Px(0)
	ast.Insets[frame.Top] = style.Px(0)
	abs := boxtree.Block("abs", ast)
	mc := boxtree.Block("inner", inner).Add(abs)
	root := boxtree.Block("root", nil).Add(boxtree.Block("outer", outer).Add(mc))
	e := flow.New(layout.DefaultConfig())
	_, err := e.LayoutTree(boxtree.NewTree(root))
	require.NoError(t, err)
	//
	arena := e.Arena()
	frags := arena.FragmentsOf(abs)
	require.Len(t, frags, 2, "abs is broken across the columns of the inner multicol")
	assert.Equal(t, px(100), frags[0].Size.H)
	assert.Equal(t, px(50), frags[1].Size.H)
	var total dimen.Dimen
	for i, f := range frags {
		total += f.Size.H
		assert.Equal(t, px(40), f.Size.W)
		off, col, ok := localOffset(arena, f)
		require.True(t, ok, "fragment %d not attached", i)
		assert.Equal(t, fragment.ColumnFragment, col.Kind, "fragment %d", i)
		assert.Equal(t, frame.PhysicalOffset{}, off, "fragment %d starts at the top of its column", i)
		_, owner, ok := localOffset(arena, col)
		require.True(t, ok, "column of fragment %d not attached", i)
		assert.Equal(t, mc, owner.Box, "column of fragment %d belongs to the inner multicol", i)
	}
	assert.Equal(t, px(150), total)
	require.NotNil(t, frags[0].BreakToken)
	assert.Nil(t, frags[1].BreakToken)
}

func TestFixedInsideAbsolute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	fst := sized(positioned(style.PositionFixed), 30, 30)
	fst.Insets[frame.Left] = style.Px(5)
	fst.Insets[frame.Top] = style.Px(5)
	fixed := boxtree.Block("fixed", fst)
	ast := sized(positioned(style.PositionAbsolute), 100, 100)
	ast.Insets[frame.Left] = style.Px(50)
	ast.Insets[frame.Top] = style.Px(50)
	abs := boxtree.Block("abs", ast).Add(fixed)
	cb := boxtree.Block("cb", sized(positioned(style.PositionRelative), 300, 300)).Add(abs)
	root := boxtree.Block("root", nil).Add(cb)
	cfg := layout.DefaultConfig()
	cfg.Viewport = frame.PhysicalSize{W: px(500), H: px(400)}
	e := flow.New(cfg)
	_, err := e.LayoutTree(boxtree.NewTree(root))
	require.NoError(t, err)
	//
	frags := e.Arena().FragmentsOf(fixed)
	require.Len(t, frags, 1)
	oof := frags[0].OutOfFlow()
	require.NotNil(t, oof)
	assert.Equal(t, frame.LogicalOffset{Inline: px(5), Block: px(5)}, oof.Offset)
	var parent *fragment.Fragment
	if pr, ok := e.Arena().Parent(frags[0].Ref()); ok {
		parent = e.Arena().Fragment(pr)
	}
	require.NotNil(t, parent)
	assert.Equal(t, root, parent.Box)
}

// reusedTree nests a positioned box below a relatively positioned block
// inside a scroller. The vertical scrollbar of the scroller causes a second
// layout of its content.
func reusedTree(anchored bool) (*boxtree.Tree, *boxtree.Node) {
	ast := positioned(style.PositionAbsolute)
	ast.Height = style.Px(50)
	ast.OverflowY = style.OverflowAuto
	ast.Insets[frame.Left] = style.Px(0)
	ast.Insets[frame.Top] = style.Px(0)
	bst := sized(positioned(style.PositionAbsolute), 20, 20)
	bst.Insets[frame.Left] = style.Px(5)
	bst.Insets[frame.Top] = style.Px(5)
	rel := boxtree.Block("rel", sized(positioned(style.PositionRelative), 80, 100))
	if anchored {
		mst := sized(style.Default(), 10, 10)
		mst.AnchorName = "--mark"
		rel.Add(boxtree.Block("mark", mst))
		bst.Insets[frame.Left] = style.Anchor("--mark", style.AnchorRight, style.Length{})
	}
	inner := boxtree.Block("inner", bst)
	rel.Add(inner)
	scroller := boxtree.Block("scroller", ast).Add(rel)
	cb := boxtree.Block("cb", sized(positioned(style.PositionRelative), 300, 300)).Add(scroller)
	return boxtree.NewTree(boxtree.Block("root", nil).Add(cb)), inner
}

func TestFirstTierCacheAcrossRelayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	for _, anchored := range []bool{false, true} {
		tree, inner := reusedTree(anchored)
		e := flow.New(layout.DefaultConfig())
		_, err := e.LayoutTree(tree)
		require.NoError(t, err)
		//
		frags := e.Arena().FragmentsOf(inner)
		require.Len(t, frags, 1, "anchored=%v", anchored)
		oof := frags[0].OutOfFlow()
		require.NotNil(t, oof)
		hits, _ := e.Cache().Stats()
		if anchored {
			assert.Equal(t, frame.LogicalOffset{Inline: px(10), Block: px(5)}, oof.Offset)
			assert.Zero(t, hits, "placement uses anchor geometry and must not be reused")
		} else {
			assert.Equal(t, frame.LogicalOffset{Inline: px(5), Block: px(5)}, oof.Offset)
			assert.Equal(t, 1, hits, "second layout of the scroller reuses the inner box")
		}
	}
}

func TestNoTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	_, err := flow.New(layout.DefaultConfig()).LayoutTree(nil)
	assert.Error(t, err)
}
