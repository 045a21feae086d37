package framedebug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTree() (*fragment.Arena, fragment.Ref) {
	arena := fragment.NewArena()
	size := frame.LogicalSize{Inline: 100 * dimen.PX, Block: 50 * dimen.PX}
	space := frame.NewSpace(frame.HorizontalLTR, size, size)
	child := boxtree.Block("child", nil)
	root := boxtree.Block("root", nil).Add(child)
	cb := fragment.NewBuilder(arena, child, fragment.BoxFragment, space)
	cb.InlineSize, cb.BlockSize = 20*dimen.PX, 10*dimen.PX
	c := cb.ToFragment()
	_ = c.SetOutOfFlow(fragment.OutOfFlowData{FallbackIndex: -1})
	rb := fragment.NewBuilder(arena, root, fragment.BoxFragment, space)
	rb.InlineSize, rb.BlockSize = size.Inline, size.Block
	rb.AddChild(c.Ref(), frame.LogicalOffset{Inline: 5 * dimen.PX, Block: 5 * dimen.PX})
	return arena, rb.ToFragment().Ref()
}

func TestDump(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.debug")
	defer teardown()
	//
	arena, root := smallTree()
	var buf bytes.Buffer
	require.NoError(t, Dump(arena, root, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "root")
	assert.True(t, strings.HasPrefix(lines[1], "  "), "child is indented")
	assert.Contains(t, lines[1], "child")
	assert.Contains(t, lines[1], "oof(")
}

func TestGraphViz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.debug")
	defer teardown()
	//
	arena, root := smallTree()
	var buf bytes.Buffer
	require.NoError(t, ToGraphViz(arena, root, &buf))
	dot := buf.String()
	assert.True(t, strings.HasPrefix(dot, "digraph g {"))
	assert.Contains(t, dot, "frag00001 -> frag00002")
	assert.Contains(t, dot, "lightsalmon")
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}
