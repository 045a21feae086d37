package layout

import (
	"testing"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/anchor"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anchors creates an anchor map with anchor --a at (20,60) of size 40×20,
// inside the 200×100 containing block of testPart.
func anchors(extra ...anchor.Entry) *anchor.Map {
	m := anchor.NewMap()
	m.Add(anchor.Entry{
		Name: "--a",
		Rect: frame.PhysicalRect{
			Offset: frame.PhysicalOffset{X: px(20), Y: px(60)},
			Size:   frame.PhysicalSize{W: px(40), H: px(20)},
		},
	})
	for _, e := range extra {
		m.Add(e)
	}
	return m
}

func TestAnchorInsets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	none := style.Length{}
	tests := []struct {
		name   string
		insets map[int]style.Length
		offset frame.LogicalOffset
		left   dimen.Dimen
		right  dimen.Dimen
	}{
		{"right-edge", map[int]style.Length{
			frame.Left: style.Anchor("--a", style.AnchorRight, none),
			frame.Top:  style.Anchor("--a", style.AnchorTop, none),
		}, frame.LogicalOffset{Inline: px(60), Block: px(60)}, px(60), px(90)},
		{"end-inset", map[int]style.Length{
			frame.Right: style.Anchor("--a", style.AnchorLeft, none),
			frame.Top:   style.Anchor("--a", style.AnchorCenter, none),
		}, frame.LogicalOffset{Inline: px(-30), Block: px(70)}, px(-30), px(180)},
		{"missing-with-fallback", map[int]style.Length{
			frame.Left: style.Anchor("--nowhere", style.AnchorLeft, style.Px(15)),
			frame.Top:  style.Px(5),
		}, frame.LogicalOffset{Inline: px(15), Block: px(5)}, px(15), px(135)},
		{"wrong-axis", map[int]style.Length{
			frame.Left: style.Anchor("--a", style.AnchorTop, none),
			frame.Top:  style.Px(5),
		}, frame.LogicalOffset{Inline: 0, Block: px(5)}, 0, px(150)},
	}
	for _, tt := range tests {
		st := absolute(style.Px(50), style.Px(30))
		for side, l := range tt.insets {
			st.Insets[side] = l
		}
		p, info := testPart(t, boxtree.Block("abs", st))
		off, err := p.CalculateOffset(info, false, anchors())
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.offset, off.Offset, tt.name)
		assert.Equal(t, tt.left, off.Insets.Left, tt.name)
		assert.Equal(t, tt.right, off.Insets.Right, tt.name)
		assert.True(t, off.DisableFirstTierCache, "%s: anchor functions disable caching", tt.name)
		assert.False(t, off.UsesFallback, tt.name)
	}
}

func TestInsetArea(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	edge := anchor.Entry{
		Name: "--edge",
		Rect: frame.PhysicalRect{
			Offset: frame.PhysicalOffset{X: px(180), Y: px(40)},
			Size:   frame.PhysicalSize{W: px(40), H: px(20)},
		},
	}
	tests := []struct {
		name   string
		anchor string
		area   style.InsetArea
		width  style.Length
		offset frame.LogicalOffset
		size   frame.LogicalSize
	}{
		{"bottom-right", "--a", style.InsetArea{X: style.AreaEnd, Y: style.AreaEnd}, style.Px(50),
			frame.LogicalOffset{Inline: px(60), Block: px(80)},
			frame.LogicalSize{Inline: px(50), Block: px(20)}},
		{"centered-above", "--a", style.InsetArea{X: style.AreaCenter, Y: style.AreaStart}, style.Px(20),
			frame.LogicalOffset{Inline: px(30), Block: px(40)},
			frame.LogicalSize{Inline: px(20), Block: px(20)}},
		// the anchor reaches beyond the containing block, leaving a region
		// of zero width at its right edge
		{"degenerate", "--edge", style.InsetArea{X: style.AreaEnd}, style.Auto(),
			frame.LogicalOffset{Inline: px(220), Block: 0},
			frame.LogicalSize{Inline: 0, Block: px(20)}},
	}
	for _, tt := range tests {
		st := absolute(tt.width, style.Px(20))
		st.AnchorDefault = tt.anchor
		st.InsetArea = tt.area
		p, info := testPart(t, boxtree.Block("abs", st))
		off, err := p.CalculateOffset(info, false, anchors(edge))
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.offset, off.Offset, tt.name)
		assert.Equal(t, tt.size, off.Dimensions.Size, tt.name)
		assert.True(t, off.DisableFirstTierCache, tt.name)
	}
}

func TestAutoAnchorFlip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	// below the anchor the box overflows the containing block, above it
	// it fits
	st := absolute(style.Px(50), style.Px(30))
	st.Insets[frame.Top] = style.Anchor("--a", style.AnchorAuto, style.Length{})
	p, info := testPart(t, boxtree.Block("abs", st))
	require.Len(t, p.candidateStyles(info.Node), 2)
	off, err := p.CalculateOffset(info, true, anchors())
	require.NoError(t, err)
	//
	assert.True(t, off.UsesFallback)
	assert.True(t, off.FlipBlock)
	assert.False(t, off.FlipInline)
	assert.Equal(t, -1, off.FallbackIndex)
	assert.Equal(t, frame.LogicalOffset{Inline: 0, Block: px(30)}, off.Offset)
	assert.Equal(t, px(40), off.Insets.Bottom)
	assert.Equal(t, px(30), off.Insets.Top)
	require.Len(t, off.Ranges, 2)
	assert.False(t, off.Ranges[0].FlipBlock)
	assert.Equal(t, fragment.Interval{Min: px(10), Max: dimen.Infinity}, off.Ranges[0].Y)
	assert.True(t, off.Ranges[1].FlipBlock)
	assert.Equal(t, fragment.Interval{Min: dimen.NegInfinity, Max: px(30)}, off.Ranges[1].Y)
	data := off.outOfFlowData()
	assert.False(t, NeedsFallbackRecalculation(&data, frame.PhysicalOffset{}, frame.PhysicalOffset{}))
	assert.True(t, NeedsFallbackRecalculation(&data, frame.PhysicalOffset{Y: px(20)}, frame.PhysicalOffset{}),
		"scrolled by 20px the box fits below the anchor")
}

func TestFallbackBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	bounds := anchor.Entry{
		Name: "--bounds",
		Rect: frame.PhysicalRect{Size: frame.PhysicalSize{W: px(100), H: px(50)}},
	}
	st := absolute(style.Px(50), style.Px(20))
	st.Insets[frame.Left] = style.Px(10)
	st.Insets[frame.Top] = style.Px(10)
	st.FallbackBounds = "--bounds"
	st.PositionFallback = "--alt"
	abs := boxtree.Block("abs", st)
	p, info := testPart(t, abs)
	p.tries = style.NewTryRegistry()
	p.tries.Add(&style.TryRule{
		Name:    "--alt",
		Entries: []*style.TryEntry{style.NewTryEntry().SetInset(frame.Left, style.Px(40))},
	})
	off, err := p.CalculateOffset(info, true, anchors(bounds))
	require.NoError(t, err)
	assert.Equal(t, -1, off.FallbackIndex)
	require.Len(t, off.Ranges, 1)
	rng := off.Ranges[0]
	assert.True(t, rng.HasAdditional)
	assert.Equal(t, fragment.Interval{Min: px(-40), Max: px(10)}, rng.AdditionalX)
	assert.Equal(t, fragment.Interval{Min: px(-20), Max: px(10)}, rng.AdditionalY)
	assert.Equal(t, fragment.Interval{Min: px(-140), Max: dimen.Infinity}, rng.X)
	assert.True(t, off.DisableFirstTierCache, "fallback bounds are anchor geometry")
	//
	// scrolling the bounds by 30px moves the base style out of them
	abs.Layout.BoundsScroll = frame.PhysicalOffset{X: px(30)}
	off, err = p.CalculateOffset(info, true, anchors(bounds))
	require.NoError(t, err)
	assert.Equal(t, 0, off.FallbackIndex)
	assert.Equal(t, frame.LogicalOffset{Inline: px(40), Block: px(10)}, off.Offset)
	require.Len(t, off.Ranges, 2)
	assert.Equal(t, fragment.Interval{Min: px(-10), Max: px(40)}, off.Ranges[1].AdditionalX)
}

func TestGridAreaContainingBlock(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	gst := style.Default()
	gst.Position = style.PositionRelative
	gst.GridColumns = []dimen.Dimen{px(50), px(100), px(50)}
	gst.GridRows = []dimen.Dimen{px(30), px(70)}
	gst.ColumnGap = px(10)
	ast := absolute(style.Auto(), style.Auto())
	for side := frame.Top; side <= frame.Left; side++ {
		ast.Insets[side] = style.Px(0)
	}
	ast.GridColumn = style.GridLines{Start: 2, End: 3}
	ast.GridRow = style.GridLines{Start: 2}
	abs := boxtree.Block("abs", ast)
	grid := boxtree.Grid("grid", gst).Add(abs)
	boxtree.NewTree(boxtree.Block("root", nil).Add(grid))
	algo := &boxAlgo{arena: fragment.NewArena()}
	size := frame.LogicalSize{Inline: px(220), Block: px(100)}
	b := fragment.NewBuilder(algo.arena, grid, fragment.BoxFragment, frame.NewSpace(frame.HorizontalLTR, size, size))
	b.InlineSize, b.BlockSize = size.Inline, size.Block
	p := NewPart(algo, nil, b, DefaultConfig())
	assert.False(t, p.allowFirstTierCache, "no caching in grid containers")
	info, err := p.nodeInfo(fragment.PositionedNode{Box: abs}, nil)
	require.NoError(t, err)
	//
	area := frame.LogicalRect{
		Offset: frame.LogicalOffset{Inline: px(60), Block: px(30)},
		Size:   frame.LogicalSize{Inline: px(100), Block: px(70)},
	}
	assert.Equal(t, area, info.CB.Rect)
	off, err := p.CalculateOffset(info, true, nil)
	require.NoError(t, err)
	assert.Equal(t, area.Offset, off.Offset)
	assert.Equal(t, area.Size, off.Dimensions.Size)
}

func TestFirstTierCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	place := func(st *style.Style) (*Part, *boxAlgo) {
		p, info := testPart(t, boxtree.Block("abs", st))
		for i := 0; i < 2; i++ {
			off, err := p.CalculateOffset(info, true, p.anchorQuery())
			require.NoError(t, err)
			_, err = p.layoutOOFNode(&nodeToLayout{info: info, offset: off}, nil, false)
			require.NoError(t, err)
		}
		return p, p.algo.(*boxAlgo)
	}
	st := absolute(style.Px(50), style.Px(20))
	st.Insets[frame.Left] = style.Px(10)
	p, algo := place(st)
	hits, misses := p.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, algo.layouts, "second placement reuses the cached result")
	//
	st = absolute(style.Px(50), style.Px(20))
	st.Insets[frame.Left] = style.Anchor("--a", style.AnchorRight, style.Px(10))
	p, algo = place(st)
	hits, misses = p.cache.Stats()
	assert.Equal(t, 0, hits, "placements depending on anchors are not cached")
	assert.Equal(t, 2, misses)
	assert.Equal(t, 2, algo.layouts)
}

func TestHandBackToLostMulticol(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	p, _ := testPart(t, boxtree.Block("abs", absolute(style.Px(10), style.Px(10))))
	arena := p.algo.Arena()
	mc := boxtree.Block("multicol", nil)
	stray := boxtree.Block("stray", absolute(style.Px(10), style.Px(10)))
	boxtree.NewTree(boxtree.Block("elsewhere", nil).Add(mc.Add(stray)))
	size := frame.LogicalSize{Inline: px(100), Block: px(100)}
	loose := fragment.NewBuilder(arena, mc, fragment.BoxFragment, frame.NewSpace(frame.HorizontalLTR, size, size)).ToFragment()
	p.outer = &outerContext{
		parent:   p,
		multicol: fragment.MulticolWithPendingOOFs{Box: mc},
		owners:   []fragment.Ref{loose.Ref()},
	}
	err := p.outer.handBack(p, fragment.PositionedNode{Box: stray}, 0)
	require.Error(t, err)
	assert.True(t, core.IsInvariantViolation(err))
	assert.False(t, p.b.HasFragmentainerDescendants(), "box must not be passed on")
	//
	f := &fragment.Fragment{OutOfFlowDescendants: []fragment.PositionedNode{{Box: stray}}}
	err = p.propagateFromResult(f, &nodeToLayout{}, 0, fragmentainerSlot{}, frame.LogicalOffset{})
	assert.True(t, core.IsInvariantViolation(err), "error reaches the fragmentainer loop")
}

func TestInlineContainingBlocksRefreshed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	abs := boxtree.Block("abs", absolute(style.Px(10), style.Px(10)))
	p, _ := testPart(t, abs)
	arena := p.algo.Arena()
	span := boxtree.NewBox(boxtree.InlineBox, "span", style.Default())
	other := boxtree.NewBox(boxtree.InlineBox, "other", style.Default())
	para := boxtree.Block("para", nil).Add(span, other)
	doc := boxtree.Block("doc", nil).Add(para)
	boxtree.NewTree(doc)
	size := frame.LogicalSize{Inline: px(100), Block: px(40)}
	space := frame.NewSpace(frame.HorizontalLTR, size, size)
	pb := fragment.NewBuilder(arena, para, fragment.BoxFragment, space)
	pb.InlineSize, pb.BlockSize = size.Inline, size.Block
	pb.AddItem(fragment.Item{Box: span, Rect: frame.PhysicalRect{
		Offset: frame.PhysicalOffset{X: px(10)},
		Size:   frame.PhysicalSize{W: px(30), H: px(20)},
	}})
	pf := pb.ToFragment()
	db := fragment.NewBuilder(arena, doc, fragment.BoxFragment, space)
	db.AddChild(pf.Ref(), frame.LogicalOffset{})
	db.ToFragment()
	//
	stale := ContainingBlockInfo{Rect: frame.LogicalRect{Size: frame.LogicalSize{Inline: px(1)}}}
	p.inlineCBs[span] = stale
	p.inlineCBs[other] = stale
	run := []fragment.FragmentainerDescendant{
		{
			PositionedNode:  fragment.PositionedNode{Box: abs, Inline: &fragment.InlineContainer{Box: span}},
			ContainingBlock: fragment.ContainingBlock{Ref: pf.Ref()},
		},
		{
			PositionedNode: fragment.PositionedNode{Box: abs, Inline: &fragment.InlineContainer{Box: other}},
		},
	}
	p.computeFragmentedInlineContainingBlocks(run)
	assert.Equal(t, stale, p.inlineCBs[span], "computed rectangles are kept")
	p.refreshInlineContainingBlocks(run)
	assert.Equal(t, frame.LogicalRect{
		Offset: frame.LogicalOffset{Inline: px(10)},
		Size:   frame.LogicalSize{Inline: px(30), Block: px(20)},
	}, p.inlineCBs[span].Rect)
	assert.Equal(t, stale, p.inlineCBs[other], "rectangles from the builder's own lines stay")
}
