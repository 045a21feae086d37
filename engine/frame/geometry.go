package frame

/*
BSD License

Copyright (c) 2017–2021, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
)

// --- Offsets ---------------------------------------------------------------

// LogicalOffset is an offset along the inline and block axis.
type LogicalOffset struct {
	Inline, Block dimen.Dimen
}

// Add returns o+p.
func (o LogicalOffset) Add(p LogicalOffset) LogicalOffset {
	return LogicalOffset{Inline: o.Inline + p.Inline, Block: o.Block + p.Block}
}

// Sub returns o-p.
func (o LogicalOffset) Sub(p LogicalOffset) LogicalOffset {
	return LogicalOffset{Inline: o.Inline - p.Inline, Block: o.Block - p.Block}
}

func (o LogicalOffset) String() string {
	return fmt.Sprintf("(i=%s,b=%s)", o.Inline, o.Block)
}

// ToPhysical converts o to a physical offset. outer is the size of the box
// the offset is relative to, inner the size of the box being placed.
func (o LogicalOffset) ToPhysical(wd WritingDirection, outer, inner PhysicalSize) PhysicalOffset {
	switch wd.Mode {
	case HorizontalTB:
		if wd.IsLTR() {
			return PhysicalOffset{X: o.Inline, Y: o.Block}
		}
		return PhysicalOffset{X: outer.W - inner.W - o.Inline, Y: o.Block}
	case VerticalLR:
		if wd.IsLTR() {
			return PhysicalOffset{X: o.Block, Y: o.Inline}
		}
		return PhysicalOffset{X: o.Block, Y: outer.H - inner.H - o.Inline}
	}
	// vertical-rl
	x := outer.W - inner.W - o.Block
	if wd.IsLTR() {
		return PhysicalOffset{X: x, Y: o.Inline}
	}
	return PhysicalOffset{X: x, Y: outer.H - inner.H - o.Inline}
}

// PhysicalOffset is an offset from the top left corner of a box.
type PhysicalOffset struct {
	X, Y dimen.Dimen
}

// Add returns o+p.
func (o PhysicalOffset) Add(p PhysicalOffset) PhysicalOffset {
	return PhysicalOffset{X: o.X + p.X, Y: o.Y + p.Y}
}

// Sub returns o-p.
func (o PhysicalOffset) Sub(p PhysicalOffset) PhysicalOffset {
	return PhysicalOffset{X: o.X - p.X, Y: o.Y - p.Y}
}

func (o PhysicalOffset) String() string {
	return fmt.Sprintf("(x=%s,y=%s)", o.X, o.Y)
}

// ToLogical is the inverse of LogicalOffset.ToPhysical.
func (o PhysicalOffset) ToLogical(wd WritingDirection, outer, inner PhysicalSize) LogicalOffset {
	switch wd.Mode {
	case HorizontalTB:
		if wd.IsLTR() {
			return LogicalOffset{Inline: o.X, Block: o.Y}
		}
		return LogicalOffset{Inline: outer.W - inner.W - o.X, Block: o.Y}
	case VerticalLR:
		if wd.IsLTR() {
			return LogicalOffset{Inline: o.Y, Block: o.X}
		}
		return LogicalOffset{Inline: outer.H - inner.H - o.Y, Block: o.X}
	}
	b := outer.W - inner.W - o.X
	if wd.IsLTR() {
		return LogicalOffset{Inline: o.Y, Block: b}
	}
	return LogicalOffset{Inline: outer.H - inner.H - o.Y, Block: b}
}

// ConvertOffset converts a logical offset between two writing directions.
func ConvertOffset(o LogicalOffset, from, to WritingDirection, outer, inner PhysicalSize) LogicalOffset {
	if from == to {
		return o
	}
	return o.ToPhysical(from, outer, inner).ToLogical(to, outer, inner)
}

// --- Sizes -----------------------------------------------------------------

// LogicalSize is a size along the inline and block axis.
type LogicalSize struct {
	Inline, Block dimen.Dimen
}

// ToPhysical converts s to a physical size.
func (s LogicalSize) ToPhysical(wm WritingMode) PhysicalSize {
	if wm.IsHorizontal() {
		return PhysicalSize{W: s.Inline, H: s.Block}
	}
	return PhysicalSize{W: s.Block, H: s.Inline}
}

// Shrink subtracts a strut from s. Indefinite block sizes stay indefinite,
// other values are clamped at zero.
func (s LogicalSize) Shrink(st LogicalStrut) LogicalSize {
	r := LogicalSize{Inline: dimen.Max(0, s.Inline-st.InlineSum()), Block: s.Block}
	if s.Block != Indefinite {
		r.Block = dimen.Max(0, s.Block-st.BlockSum())
	}
	return r
}

// Grow adds a strut to s, leaving indefinite block sizes untouched.
func (s LogicalSize) Grow(st LogicalStrut) LogicalSize {
	r := LogicalSize{Inline: s.Inline + st.InlineSum(), Block: s.Block}
	if s.Block != Indefinite {
		r.Block = s.Block + st.BlockSum()
	}
	return r
}

func (s LogicalSize) String() string {
	return fmt.Sprintf("[i=%s,b=%s]", s.Inline, s.Block)
}

// PhysicalSize is a width and height.
type PhysicalSize struct {
	W, H dimen.Dimen
}

// ToLogical converts s to a logical size.
func (s PhysicalSize) ToLogical(wm WritingMode) LogicalSize {
	if wm.IsHorizontal() {
		return LogicalSize{Inline: s.W, Block: s.H}
	}
	return LogicalSize{Inline: s.H, Block: s.W}
}

func (s PhysicalSize) String() string {
	return fmt.Sprintf("[w=%s,h=%s]", s.W, s.H)
}

// --- Rectangles ------------------------------------------------------------

// LogicalRect is a rectangle in logical coordinates.
type LogicalRect struct {
	Offset LogicalOffset
	Size   LogicalSize
}

// InlineEnd is the inline end coordinate of r.
func (r LogicalRect) InlineEnd() dimen.Dimen {
	return r.Offset.Inline + r.Size.Inline
}

// BlockEnd is the block end coordinate of r.
func (r LogicalRect) BlockEnd() dimen.Dimen {
	return r.Offset.Block + r.Size.Block
}

// ToPhysical converts r, placed in a box of size outer.
func (r LogicalRect) ToPhysical(wd WritingDirection, outer PhysicalSize) PhysicalRect {
	sz := r.Size.ToPhysical(wd.Mode)
	return PhysicalRect{Offset: r.Offset.ToPhysical(wd, outer, sz), Size: sz}
}

func (r LogicalRect) String() string {
	return fmt.Sprintf("%v%v", r.Offset, r.Size)
}

// PhysicalRect is a rectangle in physical coordinates.
type PhysicalRect struct {
	Offset PhysicalOffset
	Size   PhysicalSize
}

// Right is the x-coordinate of the right edge.
func (r PhysicalRect) Right() dimen.Dimen {
	return r.Offset.X + r.Size.W
}

// Bottom is the y-coordinate of the bottom edge.
func (r PhysicalRect) Bottom() dimen.Dimen {
	return r.Offset.Y + r.Size.H
}

// Union returns the smallest rectangle containing r and s.
func (r PhysicalRect) Union(s PhysicalRect) PhysicalRect {
	x0, y0 := dimen.Min(r.Offset.X, s.Offset.X), dimen.Min(r.Offset.Y, s.Offset.Y)
	x1, y1 := dimen.Max(r.Right(), s.Right()), dimen.Max(r.Bottom(), s.Bottom())
	return PhysicalRect{
		Offset: PhysicalOffset{X: x0, Y: y0},
		Size:   PhysicalSize{W: x1 - x0, H: y1 - y0},
	}
}

// ToLogical converts r, placed in a box of size outer.
func (r PhysicalRect) ToLogical(wd WritingDirection, outer PhysicalSize) LogicalRect {
	return LogicalRect{
		Offset: r.Offset.ToLogical(wd, outer, r.Size),
		Size:   r.Size.ToLogical(wd.Mode),
	}
}

func (r PhysicalRect) String() string {
	return fmt.Sprintf("%v%v", r.Offset, r.Size)
}

// --- Struts ----------------------------------------------------------------

// Strut holds 4-way physical values, e.g. border widths or insets.
type Strut struct {
	Top, Right, Bottom, Left dimen.Dimen
}

// Add returns the sum of two struts.
func (s Strut) Add(o Strut) Strut {
	return Strut{Top: s.Top + o.Top, Right: s.Right + o.Right,
		Bottom: s.Bottom + o.Bottom, Left: s.Left + o.Left}
}

// Sub returns s-o.
func (s Strut) Sub(o Strut) Strut {
	return Strut{Top: s.Top - o.Top, Right: s.Right - o.Right,
		Bottom: s.Bottom - o.Bottom, Left: s.Left - o.Left}
}

// IsZero is true if all sides are zero.
func (s Strut) IsZero() bool {
	return s == Strut{}
}

// Side returns the value for one of the sides Top, Right, Bottom, Left.
func (s Strut) Side(side int) dimen.Dimen {
	switch side {
	case Top:
		return s.Top
	case Right:
		return s.Right
	case Bottom:
		return s.Bottom
	}
	return s.Left
}

// ToLogical maps s onto the logical sides of a writing direction.
func (s Strut) ToLogical(wd WritingDirection) LogicalStrut {
	var ls LogicalStrut
	switch wd.Mode {
	case HorizontalTB:
		ls.BlockStart, ls.BlockEnd = s.Top, s.Bottom
		ls.InlineStart, ls.InlineEnd = s.Left, s.Right
	case VerticalLR:
		ls.BlockStart, ls.BlockEnd = s.Left, s.Right
		ls.InlineStart, ls.InlineEnd = s.Top, s.Bottom
	default:
		ls.BlockStart, ls.BlockEnd = s.Right, s.Left
		ls.InlineStart, ls.InlineEnd = s.Top, s.Bottom
	}
	if !wd.IsLTR() {
		ls.InlineStart, ls.InlineEnd = ls.InlineEnd, ls.InlineStart
	}
	return ls
}

func (s Strut) String() string {
	return fmt.Sprintf("{t=%s,r=%s,b=%s,l=%s}", s.Top, s.Right, s.Bottom, s.Left)
}

// For struts and 4-way style values, sides always start at the top and travel
// clockwise.
const (
	Top int = iota
	Right
	Bottom
	Left
)

// LogicalStrut holds 4-way values in logical terms.
type LogicalStrut struct {
	InlineStart, InlineEnd, BlockStart, BlockEnd dimen.Dimen
}

// InlineSum is the sum of both inline sides.
func (s LogicalStrut) InlineSum() dimen.Dimen {
	return s.InlineStart + s.InlineEnd
}

// BlockSum is the sum of both block sides.
func (s LogicalStrut) BlockSum() dimen.Dimen {
	return s.BlockStart + s.BlockEnd
}

// StartOffset is the offset of the inner edge's start corner.
func (s LogicalStrut) StartOffset() LogicalOffset {
	return LogicalOffset{Inline: s.InlineStart, Block: s.BlockStart}
}

// Add returns the sum of two struts.
func (s LogicalStrut) Add(o LogicalStrut) LogicalStrut {
	return LogicalStrut{
		InlineStart: s.InlineStart + o.InlineStart, InlineEnd: s.InlineEnd + o.InlineEnd,
		BlockStart: s.BlockStart + o.BlockStart, BlockEnd: s.BlockEnd + o.BlockEnd,
	}
}

// ToPhysical is the inverse of Strut.ToLogical.
func (s LogicalStrut) ToPhysical(wd WritingDirection) Strut {
	is, ie := s.InlineStart, s.InlineEnd
	if !wd.IsLTR() {
		is, ie = ie, is
	}
	switch wd.Mode {
	case HorizontalTB:
		return Strut{Top: s.BlockStart, Bottom: s.BlockEnd, Left: is, Right: ie}
	case VerticalLR:
		return Strut{Left: s.BlockStart, Right: s.BlockEnd, Top: is, Bottom: ie}
	}
	return Strut{Right: s.BlockStart, Left: s.BlockEnd, Top: is, Bottom: ie}
}

// ConvertStrut re-expresses a logical strut in another writing direction.
func ConvertStrut(s LogicalStrut, from, to WritingDirection) LogicalStrut {
	if from == to {
		return s
	}
	return s.ToPhysical(from).ToLogical(to)
}
