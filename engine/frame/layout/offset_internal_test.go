package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/bidi"
)

// boxAlgo lays out every box as an empty block of 40px.
type boxAlgo struct {
	arena   *fragment.Arena
	layouts int
}

func (a *boxAlgo) Layout(n *boxtree.Node, space frame.ConstraintSpace, bt *frame.BreakToken) (*fragment.Result, error) {
	a.layouts++
	b := fragment.NewBuilder(a.arena, n, fragment.BoxFragment, space)
	b.InlineSize = space.Available.Inline
	b.BlockSize = 40 * dimen.PX
	return fragment.NewResult(b.ToFragment()), nil
}

func (a *boxAlgo) ComputeIntrinsicSizes(n *boxtree.Node, wd frame.WritingDirection) (frame.MinMaxSizes, error) {
	return frame.MinMaxSizes{Min: 30 * dimen.PX, Max: 80 * dimen.PX}, nil
}

func (a *boxAlgo) IsReplaced(n *boxtree.Node) bool {
	return n.Kind == boxtree.ReplacedBox
}

func (a *boxAlgo) ParticipatesInFragmentation(n *boxtree.Node) bool {
	return true
}

func (a *boxAlgo) Arena() *fragment.Arena {
	return a.arena
}

func px(n int) dimen.Dimen {
	return dimen.Dimen(n) * dimen.PX
}

// testPart creates a part for a 200×100 containing block holding abs.
func testPart(t *testing.T, abs *boxtree.Node) (*Part, NodeInfo) {
	cst := style.Default()
	cst.Position = style.PositionRelative
	cb := boxtree.Block("cb", cst).Add(abs)
	boxtree.NewTree(boxtree.Block("root", nil).Add(cb))
	algo := &boxAlgo{arena: fragment.NewArena()}
	size := frame.LogicalSize{Inline: px(200), Block: px(100)}
	b := fragment.NewBuilder(algo.arena, cb, fragment.BoxFragment, frame.NewSpace(frame.HorizontalLTR, size, size))
	b.InlineSize, b.BlockSize = size.Inline, size.Block
	p := NewPart(algo, nil, b, DefaultConfig())
	info, err := p.nodeInfo(fragment.PositionedNode{Box: abs}, nil)
	require.NoError(t, err)
	return p, info
}

func absolute(w, h style.Length) *style.Style {
	st := style.Default()
	st.Position = style.PositionAbsolute
	st.Width, st.Height = w, h
	return st
}

func TestCalculateOffsetIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	st := absolute(style.Auto(), style.Auto())
	st.Insets[frame.Left] = style.Px(20)
	st.Insets[frame.Top] = style.Px(10)
	st.Margins[frame.Left] = style.Px(4)
	abs := boxtree.Block("abs", st)
	p, info := testPart(t, abs)
	first, err := p.CalculateOffset(info, false, nil)
	require.NoError(t, err)
	second, err := p.CalculateOffset(info, false, nil)
	require.NoError(t, err)
	//
	require.NotNil(t, first.InitialResult)
	opts := cmp.Options{
		cmpopts.IgnoreUnexported(OffsetInfo{}),
		cmpopts.IgnoreFields(OffsetInfo{}, "InitialResult"),
	}
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("offset calculation is not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, px(80), first.Dimensions.Size.Inline)
	assert.Equal(t, px(40), first.Dimensions.Size.Block)
	assert.True(t, first.InlineSizeDependsOnMinMax)
}

func TestInsetsRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	modes := []frame.WritingDirection{
		frame.HorizontalLTR,
		{Mode: frame.HorizontalTB, Direction: bidi.RightToLeft},
		{Mode: frame.VerticalRL, Direction: bidi.LeftToRight},
		{Mode: frame.VerticalLR, Direction: bidi.LeftToRight},
		{Mode: frame.VerticalLR, Direction: bidi.RightToLeft},
	}
	for _, wd := range modes {
		st := absolute(style.Px(50), style.Px(30))
		st.Writing = wd
		st.Insets[frame.Left] = style.Px(20)
		st.Insets[frame.Top] = style.Px(10)
		p, info := testPart(t, boxtree.Block("abs", st))
		off, err := p.CalculateOffset(info, true, nil)
		require.NoError(t, err, "writing direction %v", wd)
		assert.Equal(t, frame.Strut{Top: px(10), Right: px(130), Bottom: px(60), Left: px(20)},
			off.Insets, "writing direction %v", wd)
		assert.Equal(t, frame.LogicalOffset{Inline: px(20), Block: px(10)}, off.Offset,
			"writing direction %v", wd)
	}
}

func TestStaticPositionWithoutInsets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	abs := boxtree.Block("abs", absolute(style.Px(50), style.Px(30)))
	p, info := testPart(t, abs)
	info.Static.Offset = frame.LogicalOffset{Inline: px(33), Block: px(17)}
	off, err := p.CalculateOffset(info, true, nil)
	require.NoError(t, err)
	assert.Equal(t, info.Static.Offset, off.Offset)
	assert.False(t, off.UsesFallback)
}

func TestStartFragmentainerIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	p, _ := testPart(t, boxtree.Block("abs", absolute(style.Auto(), style.Auto())))
	col := frame.LogicalSize{Inline: px(100), Block: px(100)}
	slots := []fragmentainerSlot{
		{child: 0, stitched: 0, size: col},
		{child: 1, stitched: px(100), size: col},
	}
	i, off := p.startFragmentainerIndex(slots, px(50), px(10), nil)
	assert.Equal(t, 0, i)
	assert.Equal(t, px(50), off)
	i, off = p.startFragmentainerIndex(slots, px(100), px(10), nil)
	assert.Equal(t, 1, i)
	assert.Equal(t, px(0), off)
	i, off = p.startFragmentainerIndex(slots, px(100), 0, nil)
	assert.Equal(t, 0, i, "empty box at the end of a column stays there")
	assert.Equal(t, px(100), off)
	i, off = p.startFragmentainerIndex(slots, px(350), px(10), nil)
	assert.Equal(t, 3, i)
	assert.Equal(t, px(50), off)
}

func TestReplaceFragment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	arena := fragment.NewArena()
	box := boxtree.Block("child", nil)
	parentBox := boxtree.Block("parent", nil).Add(box)
	space := frame.NewSpace(frame.HorizontalLTR, frame.LogicalSize{Inline: px(100), Block: px(100)},
		frame.LogicalSize{Inline: px(100), Block: px(100)})
	cb := fragment.NewBuilder(arena, box, fragment.BoxFragment, space)
	cb.InlineSize, cb.BlockSize = px(100), px(20)
	child := cb.ToFragment()
	pb := fragment.NewBuilder(arena, parentBox, fragment.BoxFragment, space)
	pb.InlineSize, pb.BlockSize = px(100), px(100)
	pb.AddChild(child.Ref(), frame.LogicalOffset{})
	pb.ToFragment()
	//
	c := child.Clone()
	c.Size.H = px(30)
	require.NoError(t, ReplaceFragment(arena, child, c))
	assert.True(t, child.Superseded())
	assert.Equal(t, c, arena.Fragment(child.Ref()))
	//
	err := ReplaceFragment(arena, child, c.Clone())
	assert.Error(t, err, "superseded fragment must not be replaced again")
	//
	loose := fragment.NewBuilder(arena, boxtree.Block("loose", nil), fragment.BoxFragment, space).ToFragment()
	err = ReplaceFragment(arena, loose, loose.Clone())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFragmentNotFound))
	assert.True(t, core.IsInvariantViolation(err))
}

func TestNeedsFallbackRecalculation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	all := fragment.Interval{Min: dimen.NegInfinity, Max: dimen.Infinity}
	data := &fragment.OutOfFlowData{
		FallbackIndex: 1,
		Ranges: []fragment.NonOverflowingRange{
			{StyleIndex: 0, X: fragment.Interval{Min: px(20), Max: px(50)}, Y: all},
			{StyleIndex: 1, X: fragment.Interval{Min: 0, Max: px(10)}, Y: all},
		},
	}
	at := func(x int) frame.PhysicalOffset {
		return frame.PhysicalOffset{X: px(x)}
	}
	assert.False(t, NeedsFallbackRecalculation(data, at(5), frame.PhysicalOffset{}))
	assert.True(t, NeedsFallbackRecalculation(data, at(30), frame.PhysicalOffset{}))
	assert.True(t, NeedsFallbackRecalculation(data, at(100), frame.PhysicalOffset{}),
		"chosen style no longer fits")
	data.FallbackIndex = 2
	assert.False(t, NeedsFallbackRecalculation(data, at(100), frame.PhysicalOffset{}))
	assert.False(t, NeedsFallbackRecalculation(nil, at(0), frame.PhysicalOffset{}))
}

func TestParseSize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.layout")
	defer teardown()
	//
	sz, err := ParseSize("300px x 200px")
	require.NoError(t, err)
	assert.Equal(t, frame.PhysicalSize{W: px(300), H: px(200)}, sz)
	for _, s := range []string{"", "300px", "300px by 200px", "50% x 10px"} {
		_, err = ParseSize(s)
		assert.Error(t, err, "input %q", s)
		assert.Equal(t, core.EINVALID, core.Code(err), "input %q", s)
	}
}
