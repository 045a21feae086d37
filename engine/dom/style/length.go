package style

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
)

const (
	lengthNone uint32 = 0

	lengthFixed   uint32 = 0x0001
	lengthAuto    uint32 = 0x0002
	lengthPercent uint32 = 0x0004
	lengthAnchor  uint32 = 0x0008

	// Flags for content dependent lengths
	LengthContentMin uint32 = 0x0010
	LengthContentMax uint32 = 0x0020
	LengthContentFit uint32 = 0x0030
	contentMask      uint32 = 0x00f0
)

// --- Length ----------------------------------------------------------------

// Length is an option type for CSS lengths.
//
// The zero value is an unset length, which for max-sizes means `none`.
type Length struct {
	d      dimen.Dimen
	flags  uint32
	anchor *AnchorFn
}

// Fixed creates a fixed length of d.
func Fixed(d dimen.Dimen) Length {
	return Length{d: d, flags: lengthFixed}
}

// Px creates a fixed length of n pixels.
func Px(n int) Length {
	return Fixed(dimen.Dimen(n) * dimen.PX)
}

// Percent creates a percentage length.
func Percent(p int) Length {
	return Length{d: dimen.Dimen(p), flags: lengthPercent}
}

// Auto creates a length with value `auto`.
func Auto() Length {
	return Length{flags: lengthAuto}
}

// NoLength creates an unset length.
func NoLength() Length {
	return Length{}
}

// Content creates a content-sized length, one of LengthContentMin,
// LengthContentMax or LengthContentFit.
func Content(which uint32) Length {
	return Length{flags: which & contentMask}
}

// Anchor creates a length referring to an edge of an anchor box.
func Anchor(name string, side AnchorSide, fallback Length) Length {
	fn := &AnchorFn{Name: name, Side: side}
	if !fallback.IsNone() {
		fb := fallback
		fn.Fallback = &fb
	}
	return Length{flags: lengthAnchor, anchor: fn}
}

// IsNone returns true if l is unset.
func (l Length) IsNone() bool {
	return l.flags == lengthNone
}

// IsAuto returns true if l is `auto`.
func (l Length) IsAuto() bool {
	return l.flags == lengthAuto
}

// IsFixed returns true if l is a fixed length.
func (l Length) IsFixed() bool {
	return l.flags == lengthFixed
}

// IsPercent returns true if l is a percentage.
func (l Length) IsPercent() bool {
	return l.flags == lengthPercent
}

// IsAnchor returns true if l is an `anchor()` function.
func (l Length) IsAnchor() bool {
	return l.flags == lengthAnchor
}

// IsContentSized returns true for min-content, max-content and fit-content.
func (l Length) IsContentSized() bool {
	return l.flags&contentMask > 0
}

// ContentSizing returns the content sizing flag of l, or 0.
func (l Length) ContentSizing() uint32 {
	return l.flags & contentMask
}

// IsAutoAnchor is true for an `anchor()` function with side `auto`.
func (l Length) IsAutoAnchor() bool {
	return l.IsAnchor() && l.anchor.Side == AnchorAuto
}

// AnchorFn returns the anchor function of l or nil.
func (l Length) AnchorFn() *AnchorFn {
	return l.anchor
}

// Unwrap returns the underlying dimension of l. For percentages this is the
// percentage number.
func (l Length) Unwrap() dimen.Dimen {
	return l.d
}

// Resolve returns the used value of a fixed or percentage length. base is the
// reference for percentages and may be frame.Indefinite.
func (l Length) Resolve(base dimen.Dimen) (dimen.Dimen, bool) {
	switch l.flags {
	case lengthFixed:
		return l.d, true
	case lengthPercent:
		if base == frame.Indefinite {
			return 0, false
		}
		return dimen.Percent(base, int(l.d)), true
	}
	return 0, false
}

// ResolveOr returns the used value of l or def if l cannot be resolved.
func (l Length) ResolveOr(base, def dimen.Dimen) dimen.Dimen {
	if d, ok := l.Resolve(base); ok {
		return d
	}
	return def
}

// Equals compares two lengths, including anchor functions.
func (l Length) Equals(other Length) bool {
	if l.d != other.d || l.flags != other.flags {
		return false
	}
	if l.anchor == nil || other.anchor == nil {
		return l.anchor == other.anchor
	}
	return l.anchor.Equals(other.anchor)
}

// mirrored returns l with the side of an anchor function mirrored.
func (l Length) mirrored() Length {
	if !l.IsAnchor() {
		return l
	}
	fn := *l.anchor
	fn.Side = fn.Side.Mirror()
	l.anchor = &fn
	return l
}

func (l Length) String() string {
	switch l.flags {
	case lengthNone:
		return "none"
	case lengthAuto:
		return "auto"
	case lengthPercent:
		return fmt.Sprintf("%d%%", l.d)
	case lengthAnchor:
		return l.anchor.String()
	case LengthContentMin:
		return "min-content"
	case LengthContentMax:
		return "max-content"
	case LengthContentFit:
		return "fit-content"
	}
	return l.d.String()
}

// --- Anchor functions ------------------------------------------------------

// AnchorSide is the anchor edge an `anchor()` function refers to.
type AnchorSide uint8

// Anchor sides. AnchorAuto refers to the edge opposite of the inset property
// using it; it allows automatic flipping of positions.
const (
	AnchorAuto AnchorSide = iota
	AnchorTop
	AnchorRight
	AnchorBottom
	AnchorLeft
	AnchorStart
	AnchorEnd
	AnchorCenter
)

var anchorSideNames = map[AnchorSide]string{
	AnchorAuto:   "auto",
	AnchorTop:    "top",
	AnchorRight:  "right",
	AnchorBottom: "bottom",
	AnchorLeft:   "left",
	AnchorStart:  "start",
	AnchorEnd:    "end",
	AnchorCenter: "center",
}

// ParseAnchorSide parses an anchor side keyword.
func ParseAnchorSide(s string) (AnchorSide, bool) {
	for side, name := range anchorSideNames {
		if name == s {
			return side, true
		}
	}
	return AnchorAuto, false
}

// Mirror swaps the side with its opposite.
func (s AnchorSide) Mirror() AnchorSide {
	switch s {
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	case AnchorStart:
		return AnchorEnd
	case AnchorEnd:
		return AnchorStart
	}
	return s
}

func (s AnchorSide) String() string {
	return anchorSideNames[s]
}

// AnchorFn is an `anchor(name side, fallback)` function.
type AnchorFn struct {
	Name     string // empty for the default anchor
	Side     AnchorSide
	Fallback *Length // used if the anchor is absent
}

// Equals compares two anchor functions.
func (fn *AnchorFn) Equals(other *AnchorFn) bool {
	if fn.Name != other.Name || fn.Side != other.Side {
		return false
	}
	if fn.Fallback == nil || other.Fallback == nil {
		return fn.Fallback == other.Fallback
	}
	return fn.Fallback.Equals(*other.Fallback)
}

func (fn *AnchorFn) String() string {
	if fn.Fallback != nil {
		return fmt.Sprintf("anchor(%s %s, %s)", fn.Name, fn.Side, fn.Fallback)
	}
	return fmt.Sprintf("anchor(%s %s)", fn.Name, fn.Side)
}
