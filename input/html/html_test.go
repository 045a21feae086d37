package html

import (
	"errors"
	"testing"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/flow"
	"github.com/npillmayer/outflow/engine/frame/layout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<!DOCTYPE html>
<html>
<head>
<style>
  #cb { position: relative; width: 100px; height: 100px; }
  .abs, span.extra { position: absolute; inset: 0 0 0 80px; width: 50px; height: 30px;
         position-try-options: --alternatives; }
  @position-try --alternatives { left: 60px; }
  @position-try --alternatives { left: 10px; }
</style>
</head>
<body>
  <div id="cb">
    <p>Hello world</p>
    <div id="abs" class="abs" style="height: 20px"></div>
    <img id="pic" width="40" height="25px">
  </div>
</body>
</html>`

func TestLoadBoxTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.input")
	defer teardown()
	//
	tree, err := LoadString(fixture)
	require.NoError(t, err)
	require.Equal(t, "body1", tree.Root.Name)
	cb := tree.Lookup("cb")
	require.NotNil(t, cb)
	assert.Equal(t, style.PositionRelative, cb.Style.Position)
	assert.Equal(t, style.Px(100), cb.Style.Width)
	//
	abs := tree.Lookup("abs")
	require.NotNil(t, abs)
	assert.Equal(t, cb, abs.ContainingBlock())
	assert.Equal(t, style.Px(80), abs.Style.Insets[frame.Left])
	assert.Equal(t, style.Px(20), abs.Style.Height, "style attribute wins")
	rule, err := tree.Tries.Lookup(abs.Style.PositionFallback)
	require.NoError(t, err)
	assert.Len(t, rule.Entries, 2)
	//
	pic := tree.Lookup("pic")
	require.NotNil(t, pic)
	assert.Equal(t, boxtree.ReplacedBox, pic.Kind)
	assert.Equal(t, frame.PhysicalSize{W: 40 * dimen.PX, H: 25 * dimen.PX}, pic.Intrinsic)
	//
	p := tree.Lookup("p1")
	require.NotNil(t, p)
	require.Len(t, p.Children(), 1)
	text := p.Children()[0]
	assert.Equal(t, boxtree.InlineBox, text.Kind)
	assert.Equal(t, []dimen.Dimen{5 * DefaultCharWidth, 5 * DefaultCharWidth}, text.Words)
}

func TestWideCharacters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.input")
	defer teardown()
	//
	l := &Loader{CharWidth: dimen.PX}
	// ideographs may be broken between
	assert.Equal(t, []dimen.Dimen{2 * dimen.PX, 2 * dimen.PX, 2 * dimen.PX}, l.measure("  日本 ab\n"))
	assert.Nil(t, l.measure(" \t\n"))
}

func TestBreakOpportunities(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.input")
	defer teardown()
	//
	l := &Loader{CharWidth: dimen.PX}
	assert.Equal(t, []dimen.Dimen{5 * dimen.PX, 5 * dimen.PX}, l.measure("well-known"),
		"break after hyphen")
	assert.Equal(t, []dimen.Dimen{3 * dimen.PX}, l.measure("a\u00a0b"),
		"no break at no-break space")
	assert.Equal(t, []dimen.Dimen{2 * dimen.PX, 2 * dimen.PX}, l.measure("ab\ncd"))
}

func TestLoadAndLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.input")
	defer teardown()
	//
	tree, err := LoadString(fixture)
	require.NoError(t, err)
	e := flow.New(layout.DefaultConfig())
	_, err = e.LayoutTree(tree)
	require.NoError(t, err)
	frags := e.Arena().FragmentsOf(tree.Lookup("abs"))
	require.Len(t, frags, 1)
	oof := frags[0].OutOfFlow()
	require.NotNil(t, oof)
	assert.Equal(t, 1, oof.FallbackIndex)
	assert.Equal(t, frame.LogicalOffset{Inline: 10 * dimen.PX, Block: 0}, oof.Offset)
}

func TestNoBody(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.input")
	defer teardown()
	//
	_, err := LoadString(`<html><frameset><frame src="a.html"></frameset></html>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBody))
	assert.Equal(t, core.EINVALID, core.Code(err))
}
