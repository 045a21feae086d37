package frame

import (
	"fmt"

	"golang.org/x/text/unicode/bidi"
)

// WritingMode is the CSS writing-mode of a box.
type WritingMode uint8

// Supported writing modes.
const (
	HorizontalTB WritingMode = iota // lines are horizontal, stacked top to bottom
	VerticalRL                      // lines are vertical, stacked right to left
	VerticalLR                      // lines are vertical, stacked left to right
)

func (wm WritingMode) String() string {
	switch wm {
	case VerticalRL:
		return "vertical-rl"
	case VerticalLR:
		return "vertical-lr"
	}
	return "horizontal-tb"
}

// IsHorizontal is true for horizontal-tb.
func (wm WritingMode) IsHorizontal() bool {
	return wm == HorizontalTB
}

// WritingDirection is a writing mode together with the inline base direction.
type WritingDirection struct {
	Mode      WritingMode
	Direction bidi.Direction
}

// HorizontalLTR is the default writing direction.
var HorizontalLTR = WritingDirection{Mode: HorizontalTB, Direction: bidi.LeftToRight}

// IsLTR is false for right-to-left base direction only.
func (wd WritingDirection) IsLTR() bool {
	return wd.Direction != bidi.RightToLeft
}

// IsHorizontal is true if lines run horizontally.
func (wd WritingDirection) IsHorizontal() bool {
	return wd.Mode.IsHorizontal()
}

// IsFlippedBlocks is true if the block axis runs against the physical axis.
func (wd WritingDirection) IsFlippedBlocks() bool {
	return wd.Mode == VerticalRL
}

// IsFlippedInline is true if the inline axis runs against the physical axis.
func (wd WritingDirection) IsFlippedInline() bool {
	return !wd.IsLTR()
}

// IsParallel is true if the inline axes of two writing directions coincide.
func (wd WritingDirection) IsParallel(other WritingDirection) bool {
	return wd.IsHorizontal() == other.IsHorizontal()
}

func (wd WritingDirection) String() string {
	if wd.IsLTR() {
		return fmt.Sprintf("%s/ltr", wd.Mode)
	}
	return fmt.Sprintf("%s/rtl", wd.Mode)
}
