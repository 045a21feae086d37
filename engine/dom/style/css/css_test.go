package css

import (
	"testing"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.style")
	defer teardown()
	//
	l, err := ParseLength("15px")
	require.NoError(t, err)
	assert.True(t, l.Equals(style.Px(15)))
	l, err = ParseLength("80%")
	require.NoError(t, err)
	assert.True(t, l.IsPercent())
	l, err = ParseLength("2.5px")
	require.NoError(t, err)
	assert.Equal(t, dimen.Dimen(2.5*float64(dimen.PX)), l.Unwrap())
	l, err = ParseLength("anchor(--a right, 10px)")
	require.NoError(t, err)
	assert.Equal(t, "--a", l.AnchorFn().Name)
	assert.Equal(t, style.AnchorRight, l.AnchorFn().Side)
	assert.True(t, l.AnchorFn().Fallback.Equals(style.Px(10)))
	l, err = ParseLength("anchor(auto)")
	require.NoError(t, err)
	assert.True(t, l.IsAutoAnchor())
	_, err = ParseLength("anchor(--a sideways)")
	assert.Error(t, err)
}

func TestParseStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.style")
	defer teardown()
	//
	st, err := ParseStyle(`position: absolute; left: 10px; top: 10px;
		padding: 7px; border: 5px solid black; margin: 1px 2px;
		inset-area: top; color: red`, nil)
	require.NoError(t, err)
	assert.Equal(t, style.PositionAbsolute, st.Position)
	assert.True(t, st.Insets[frame.Left].Equals(style.Px(10)))
	assert.True(t, st.Insets[frame.Right].IsAuto())
	assert.True(t, st.Padding[frame.Bottom].Equals(style.Px(7)))
	assert.Equal(t, 5*dimen.PX, st.Border[frame.Left])
	assert.True(t, st.Margins[frame.Right].Equals(style.Px(2)))
	assert.Equal(t, style.InsetArea{X: style.AreaAll, Y: style.AreaStart}, st.InsetArea)
	//
	_, err = ParseStyle("width: wide", nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestParsePositionTry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.style")
	defer teardown()
	//
	sheet, err := ParseStylesheet(`
	.anchor { anchor-name: --a; }
	.tip { position: absolute; position-fallback: flip; }
	@position-try flip {
		top: anchor(--a bottom);
		left: anchor(--a left);
	}
	@position-try flip {
		bottom: anchor(--a top);
		width: 50px;
		color: red;
	}`)
	require.NoError(t, err)
	assert.Len(t, sheet.Rules, 2)
	rule, err := sheet.Tries.Lookup("flip")
	require.NoError(t, err)
	require.Len(t, rule.Entries, 2)
	assert.True(t, rule.Entries[0].Has(style.PropTop))
	assert.False(t, rule.Entries[0].Has(style.PropBottom))
	assert.True(t, rule.Entries[1].Has(style.PropWidth))
	//
	st, err := ParseStyle("position: absolute; position-fallback: flip", nil)
	require.NoError(t, err)
	assert.Equal(t, "flip", st.PositionFallback)
}
