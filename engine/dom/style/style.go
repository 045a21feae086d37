package style

import (
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
)

// Display is the outer display type of a box.
type Display uint8

// Display types
const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayInlineBlock
	DisplayGrid
	DisplayNone
)

// Position is an enum type for the CSS position property.
type Position uint8

// Enum values for type Position
const (
	PositionStatic   Position = iota // CSS static (default)
	PositionRelative                 // CSS relative
	PositionAbsolute                 // CSS absolute
	PositionFixed                    // CSS fixed
)

var positionNames = map[Position]string{
	PositionStatic:   "static",
	PositionRelative: "relative",
	PositionAbsolute: "absolute",
	PositionFixed:    "fixed",
}

func (p Position) String() string {
	return positionNames[p]
}

// ParsePosition parses a position keyword.
func ParsePosition(s string) (Position, bool) {
	for p, name := range positionNames {
		if name == s {
			return p, true
		}
	}
	return PositionStatic, false
}

// BoxSizing is the CSS box-sizing property.
type BoxSizing uint8

// Box sizing values
const (
	ContentBox BoxSizing = iota
	BorderBox
)

// Overflow is the CSS overflow property for one axis.
type Overflow uint8

// Overflow values
const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowClip
	OverflowScroll
	OverflowAuto
)

// SelfAlign is justify-self or align-self.
type SelfAlign uint8

// Self alignment values
const (
	AlignNormal SelfAlign = iota
	AlignStart
	AlignCenter
	AlignEnd
	AlignStretch
	AlignSelfStart
	AlignSelfEnd
)

// IsStretchable is true for alignments which let an auto size stretch.
func (a SelfAlign) IsStretchable() bool {
	return a == AlignNormal || a == AlignStretch
}

// AreaSpan selects rows or columns of the 3×3 grid formed by the edges of an
// anchor box and its containing block. Spans are physical: start is left or top.
type AreaSpan uint8

// Area span bits
const (
	AreaNone   AreaSpan = 0
	AreaStart  AreaSpan = 1
	AreaCenter AreaSpan = 2
	AreaEnd    AreaSpan = 4
	AreaAll    AreaSpan = AreaStart | AreaCenter | AreaEnd
)

// InsetArea is the CSS inset-area property.
type InsetArea struct {
	X, Y AreaSpan
}

// IsNone is true if no inset-area is set.
func (ia InsetArea) IsNone() bool {
	return ia.X == AreaNone && ia.Y == AreaNone
}

// GridLines places a box between two grid lines, 1-based. Zero is auto.
type GridLines struct {
	Start, End int
}

// IsAuto is true if no explicit placement is given.
func (gl GridLines) IsAuto() bool {
	return gl.Start == 0 && gl.End == 0
}

// Style is the computed style of a box.
type Style struct {
	Display   Display
	Position  Position
	Writing   frame.WritingDirection
	Insets    [4]Length // top, right, bottom, left
	Margins   [4]Length
	Padding   [4]Length
	Border    [4]dimen.Dimen
	Width     Length
	Height    Length
	MinWidth  Length
	MinHeight Length
	MaxWidth  Length
	MaxHeight Length
	BoxSizing BoxSizing
	OverflowX Overflow
	OverflowY Overflow
	// self alignment within the inset-modified containing block
	JustifySelf SelfAlign
	AlignSelf   SelfAlign
	// anchor positioning
	InsetArea        InsetArea
	AnchorName       string // makes this box an anchor
	AnchorDefault    string // default anchor for anchor() without a name
	PositionFallback string // name of a @position-try rule
	FallbackBounds   string // anchor name of additional fallback bounds
	// Transformed boxes are containing blocks for fixed positioned descendants.
	Transformed bool
	// multi-column
	ColumnCount    int
	ColumnGap      dimen.Dimen
	ColumnSpanAll  bool
	ColumnFillAuto bool
	// grid
	GridColumns []dimen.Dimen
	GridRows    []dimen.Dimen
	GridColumn  GridLines
	GridRow     GridLines
	LineHeight  dimen.Dimen
}

// DefaultLineHeight is the line height of the initial style.
const DefaultLineHeight = 20 * dimen.PX

// Default returns a style with initial values for all properties.
func Default() *Style {
	st := &Style{
		Writing:    frame.HorizontalLTR,
		Width:      Auto(),
		Height:     Auto(),
		MinWidth:   Auto(),
		MinHeight:  Auto(),
		LineHeight: DefaultLineHeight,
	}
	for i := 0; i < 4; i++ {
		st.Insets[i] = Auto()
		st.Margins[i] = Px(0)
		st.Padding[i] = Px(0)
	}
	return st
}

// Clone returns a deep copy of st.
func (st *Style) Clone() *Style {
	c := *st
	c.GridColumns = append([]dimen.Dimen(nil), st.GridColumns...)
	c.GridRows = append([]dimen.Dimen(nil), st.GridRows...)
	return &c
}

// IsOutOfFlowPositioned is true for absolute and fixed positioning.
func (st *Style) IsOutOfFlowPositioned() bool {
	return st.Position == PositionAbsolute || st.Position == PositionFixed
}

// IsAbsoluteContainer is true if st makes a box the containing block of
// absolutely positioned descendants.
func (st *Style) IsAbsoluteContainer() bool {
	return st.Position != PositionStatic || st.Transformed
}

// IsFixedContainer is true if st makes a box the containing block of fixed
// positioned descendants.
func (st *Style) IsFixedContainer() bool {
	return st.Transformed
}

// IsScrollContainer is true if overflow is not visible or clip.
func (st *Style) IsScrollContainer() bool {
	scrolls := func(o Overflow) bool {
		return o == OverflowHidden || o == OverflowScroll || o == OverflowAuto
	}
	return scrolls(st.OverflowX) || scrolls(st.OverflowY)
}

// IsMulticol is true for multi-column containers.
func (st *Style) IsMulticol() bool {
	return st.ColumnCount > 0
}

// UsesAnchorFunctions is true if resolving insets may query anchors.
func (st *Style) UsesAnchorFunctions() bool {
	for _, in := range st.Insets {
		if in.IsAnchor() {
			return true
		}
	}
	return !st.InsetArea.IsNone()
}

// HasAbsoluteSizing reports whether the border box size of st is known without
// layout in both axes.
func (st *Style) HasAbsoluteSizing() bool {
	return st.Width.IsFixed() && st.Height.IsFixed()
}

// BlockAxisSides returns the physical sides of the block axis of st's
// writing mode, start side first.
func (st *Style) BlockAxisSides() (int, int) {
	switch st.Writing.Mode {
	case frame.VerticalLR:
		return frame.Left, frame.Right
	case frame.VerticalRL:
		return frame.Right, frame.Left
	}
	return frame.Top, frame.Bottom
}

// InlineAxisSides returns the physical sides of the inline axis of st's
// writing direction, start side first.
func (st *Style) InlineAxisSides() (int, int) {
	s, e := frame.Left, frame.Right
	if !st.Writing.IsHorizontal() {
		s, e = frame.Top, frame.Bottom
	}
	if !st.Writing.IsLTR() {
		s, e = e, s
	}
	return s, e
}

// IsAutoAnchorFlippable tells if an axis given by two opposite sides has one
// auto inset while the other uses `anchor(auto)`.
func (st *Style) IsAutoAnchorFlippable(a, b int) bool {
	return (st.Insets[a].IsAuto() && st.Insets[b].IsAutoAnchor()) ||
		(st.Insets[b].IsAuto() && st.Insets[a].IsAutoAnchor())
}

// Flipped returns a copy of st with insets and margins mirrored in the block
// axis, the inline axis, or both.
//
// Anchor sides are mirrored as well, keeping `anchor(auto)` unchanged: it
// already refers to the edge opposite of its property.
func (st *Style) Flipped(block, inline bool) *Style {
	c := st.Clone()
	swap := func(a, b int) {
		c.Insets[a], c.Insets[b] = c.Insets[b].mirrored(), c.Insets[a].mirrored()
		c.Margins[a], c.Margins[b] = c.Margins[b], c.Margins[a]
	}
	if block {
		swap(st.BlockAxisSides())
	}
	if inline {
		swap(st.InlineAxisSides())
	}
	return c
}

// PhysicalBorder returns the border widths as a strut.
func (st *Style) PhysicalBorder() frame.Strut {
	return frame.Strut{
		Top:    st.Border[frame.Top],
		Right:  st.Border[frame.Right],
		Bottom: st.Border[frame.Bottom],
		Left:   st.Border[frame.Left],
	}
}

// PhysicalPadding resolves padding against base, which by CSS rules is the
// inline size of the containing block.
func (st *Style) PhysicalPadding(base dimen.Dimen) frame.Strut {
	r := func(i int) dimen.Dimen {
		return dimen.Max(0, st.Padding[i].ResolveOr(base, 0))
	}
	return frame.Strut{Top: r(frame.Top), Right: r(frame.Right), Bottom: r(frame.Bottom), Left: r(frame.Left)}
}

// InlineSizeProperties returns width, min-width and max-width mapped to the
// inline axis of st's writing mode.
func (st *Style) InlineSizeProperties() (size, min, max Length) {
	if st.Writing.IsHorizontal() {
		return st.Width, st.MinWidth, st.MaxWidth
	}
	return st.Height, st.MinHeight, st.MaxHeight
}

// BlockSizeProperties returns height, min-height and max-height mapped to the
// block axis of st's writing mode.
func (st *Style) BlockSizeProperties() (size, min, max Length) {
	if st.Writing.IsHorizontal() {
		return st.Height, st.MinHeight, st.MaxHeight
	}
	return st.Width, st.MinWidth, st.MaxWidth
}
