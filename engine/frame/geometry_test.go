package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/bidi"
)

var allDirections = []WritingDirection{
	{HorizontalTB, bidi.LeftToRight},
	{HorizontalTB, bidi.RightToLeft},
	{VerticalRL, bidi.LeftToRight},
	{VerticalRL, bidi.RightToLeft},
	{VerticalLR, bidi.LeftToRight},
	{VerticalLR, bidi.RightToLeft},
}

func TestOffsetConversion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame")
	defer teardown()
	//
	outer := PhysicalSize{W: 200 * dimen.PX, H: 100 * dimen.PX}
	inner := PhysicalSize{W: 30 * dimen.PX, H: 20 * dimen.PX}
	o := LogicalOffset{Inline: 10 * dimen.PX, Block: 5 * dimen.PX}
	for _, wd := range allDirections {
		p := o.ToPhysical(wd, outer, inner)
		assert.Equal(t, o, p.ToLogical(wd, outer, inner), wd.String())
	}
	p := o.ToPhysical(WritingDirection{HorizontalTB, bidi.RightToLeft}, outer, inner)
	assert.Equal(t, PhysicalOffset{X: 160 * dimen.PX, Y: 5 * dimen.PX}, p)
	p = o.ToPhysical(WritingDirection{VerticalRL, bidi.LeftToRight}, outer, inner)
	assert.Equal(t, PhysicalOffset{X: 165 * dimen.PX, Y: 10 * dimen.PX}, p)
}

func TestStrutConversion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame")
	defer teardown()
	//
	s := Strut{Top: 1, Right: 2, Bottom: 3, Left: 4}
	for _, wd := range allDirections {
		if diff := cmp.Diff(s, s.ToLogical(wd).ToPhysical(wd)); diff != "" {
			t.Errorf("strut round trip in %s: %s", wd, diff)
		}
	}
	ls := s.ToLogical(WritingDirection{VerticalRL, bidi.LeftToRight})
	assert.Equal(t, LogicalStrut{InlineStart: 1, InlineEnd: 3, BlockStart: 2, BlockEnd: 4}, ls)
	ls = s.ToLogical(WritingDirection{HorizontalTB, bidi.RightToLeft})
	assert.Equal(t, dimen.Dimen(2), ls.InlineStart)
}

func TestStaticPositionConversion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame")
	defer teardown()
	//
	outer := PhysicalSize{W: 100, H: 50}
	sp := LogicalStaticPosition{
		Offset:     LogicalOffset{Inline: 7, Block: 3},
		InlineEdge: EdgeStart,
		BlockEdge:  EdgeEnd,
	}
	for _, wd := range allDirections {
		assert.Equal(t, sp, sp.ToPhysical(wd, outer).ToLogical(wd, outer), wd.String())
	}
	p := sp.ToPhysical(WritingDirection{HorizontalTB, bidi.RightToLeft}, outer)
	assert.Equal(t, EdgeEnd, p.HEdge)
	assert.Equal(t, dimen.Dimen(93), p.Offset.X)
}

func TestShrinkKeepsIndefinite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.frame")
	defer teardown()
	//
	s := LogicalSize{Inline: 10, Block: Indefinite}
	r := s.Shrink(LogicalStrut{InlineStart: 4, InlineEnd: 8, BlockStart: 1})
	assert.Equal(t, LogicalSize{Inline: 0, Block: Indefinite}, r)
	mm := MinMaxSizes{Min: 20, Max: 80}
	assert.Equal(t, dimen.Dimen(50), mm.ShrinkToFit(50))
	assert.Equal(t, dimen.Dimen(20), mm.ShrinkToFit(5))
}
