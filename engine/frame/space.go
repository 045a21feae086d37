package frame

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
)

// Indefinite marks a size which is not known in advance, e.g. an auto block size.
const Indefinite dimen.Dimen = -1

// FragmentationType tells if and how a box is fragmented.
type FragmentationType uint8

// Fragmentation types
const (
	NoFragmentation FragmentationType = iota
	FragmentColumn
	FragmentPage
)

func (ft FragmentationType) String() string {
	switch ft {
	case FragmentColumn:
		return "column"
	case FragmentPage:
		return "page"
	}
	return "none"
}

// Scrollbars tells which scrollbars a scroll container shows.
type Scrollbars struct {
	Horizontal, Vertical bool
}

// Strut returns the space taken by scrollbars of width w. The vertical
// scrollbar sits at the right edge, the horizontal one at the bottom.
func (sb Scrollbars) Strut(w dimen.Dimen) Strut {
	var s Strut
	if sb.Vertical {
		s.Right = w
	}
	if sb.Horizontal {
		s.Bottom = w
	}
	return s
}

// ConstraintSpace is the space a parent algorithm offers a child box.
type ConstraintSpace struct {
	Writing    WritingDirection
	Available  LogicalSize // available size for the border box
	Percentage LogicalSize // base for percentage resolution
	// FixedInline and FixedBlock force the border box size to the available size.
	FixedInline, FixedBlock bool
	// Fragmentation, if set, describes the fragmentainer the box is laid out into.
	Fragmentation          FragmentationType
	FragmentainerBlockSize dimen.Dimen
	FragmentainerOffset    dimen.Dimen // block offset of the box within the fragmentainer
	// RequiresContentBeforeBreaking prevents a break before any content has been placed.
	RequiresContentBeforeBreaking bool
	FurtherFragmentationDisabled  bool
	// Repeatable content is laid out on every page of a paginated root.
	ShouldRepeat            bool
	InsideRepeatableContent bool
	// Frozen scrollbars are kept present; others are determined from content.
	ScrollbarsFrozen bool
	FrozenScrollbars Scrollbars
	// IsMeasure is set for intrinsic measurement passes.
	IsMeasure bool
}

// NewSpace creates a space for a box in writing direction wd.
func NewSpace(wd WritingDirection, available, percentage LogicalSize) ConstraintSpace {
	return ConstraintSpace{Writing: wd, Available: available, Percentage: percentage}
}

// HasBlockFragmentation is true if fragmentation is set and not disabled.
func (cs ConstraintSpace) HasBlockFragmentation() bool {
	return cs.Fragmentation != NoFragmentation && !cs.FurtherFragmentationDisabled
}

// FragmentainerSpaceLeft is the block space left in the current fragmentainer.
func (cs ConstraintSpace) FragmentainerSpaceLeft() dimen.Dimen {
	if !cs.HasBlockFragmentation() {
		return dimen.Infinity
	}
	return dimen.Max(0, cs.FragmentainerBlockSize-cs.FragmentainerOffset)
}

func (cs ConstraintSpace) String() string {
	s := fmt.Sprintf("space{%s avail=%v", cs.Writing, cs.Available)
	if cs.FixedInline || cs.FixedBlock {
		s += fmt.Sprintf(" fixed=%v/%v", cs.FixedInline, cs.FixedBlock)
	}
	if cs.Fragmentation != NoFragmentation {
		s += fmt.Sprintf(" %s@%s/%s", cs.Fragmentation, cs.FragmentainerOffset, cs.FragmentainerBlockSize)
	}
	return s + "}"
}

// MinMaxSizes are the intrinsic min-content and max-content sizes of a box.
type MinMaxSizes struct {
	Min, Max dimen.Dimen
}

// ShrinkToFit returns the fit-content size for available space avail.
func (mm MinMaxSizes) ShrinkToFit(avail dimen.Dimen) dimen.Dimen {
	return dimen.Max(mm.Min, dimen.Min(mm.Max, avail))
}

// Grow adds d to both sizes.
func (mm MinMaxSizes) Grow(d dimen.Dimen) MinMaxSizes {
	return MinMaxSizes{Min: mm.Min + d, Max: mm.Max + d}
}
