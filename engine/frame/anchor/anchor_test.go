package anchor

import (
	"testing"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h int) frame.PhysicalRect {
	return frame.PhysicalRect{
		Offset: frame.PhysicalOffset{X: dimen.Dimen(x) * dimen.PX, Y: dimen.Dimen(y) * dimen.PX},
		Size:   frame.PhysicalSize{W: dimen.Dimen(w) * dimen.PX, H: dimen.Dimen(h) * dimen.PX},
	}
}

func TestLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.anchor")
	defer teardown()
	//
	m := NewMap()
	m.Add(Entry{Name: "--tip", Rect: rect(10, 10, 20, 20)})
	m.Add(Entry{Name: "--tool", Rect: rect(0, 0, 5, 5)})
	m.Add(Entry{Name: "--tip", Rect: rect(1, 2, 3, 4)})
	assert.Equal(t, 2, m.Len())
	e, ok := m.Lookup("--tip")
	require.True(t, ok)
	assert.Equal(t, rect(1, 2, 3, 4), e.Rect)
	_, ok = m.Lookup("--nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"--tip", "--tool"}, m.Names("--t"))
	var empty *Map
	_, ok = empty.Lookup("--tip")
	assert.False(t, ok)
}

func TestMergeShifts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame.anchor")
	defer teardown()
	//
	inner := NewMap()
	inner.Add(Entry{Name: "a", Rect: rect(10, 10, 20, 20)})
	outer := NewMap()
	outer.Merge(inner, frame.PhysicalOffset{X: 5 * dimen.PX, Y: 7 * dimen.PX}, true)
	e, ok := outer.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, rect(15, 17, 20, 20), e.Rect)
	assert.True(t, e.InScroller)
	e, _ = inner.Lookup("a")
	assert.False(t, e.InScroller)
}
