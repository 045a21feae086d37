package css

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/dom/style"
	"golang.org/x/text/unicode/bidi"
)

// ErrUnknownProperty flags a property this package does not interpret.
var ErrUnknownProperty = errors.New("unknown CSS property")

// ErrIllegalValue flags a value which cannot be parsed for its property.
var ErrIllegalValue = errors.New("illegal CSS value")

var lengthPattern = regexp.MustCompile(`^([+\-]?[0-9]+)(\.[0-9]+)?(%|[a-zA-Z]{2})?$`)

// ParseLength parses a CSS length, including keywords and `anchor()`.
// Valid lengths are
//
//     15px
//     80%
//     auto
//     anchor(--a right, 10px)
//
func ParseLength(s string) (style.Length, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "auto":
		return style.Auto(), nil
	case "none":
		return style.NoLength(), nil
	case "min-content":
		return style.Content(style.LengthContentMin), nil
	case "max-content":
		return style.Content(style.LengthContentMax), nil
	case "fit-content":
		return style.Content(style.LengthContentFit), nil
	case "0":
		return style.Px(0), nil
	}
	if strings.HasPrefix(s, "anchor(") && strings.HasSuffix(s, ")") {
		return parseAnchorFn(s[len("anchor(") : len(s)-1])
	}
	d, pcnt, err := parseDimension(s)
	if err != nil {
		return style.NoLength(), err
	}
	if pcnt {
		return style.Percent(int(d)), nil
	}
	return style.Fixed(d), nil
}

// parseDimension accepts fractional values, in contrast to dimen.ParseDimen.
func parseDimension(s string) (dimen.Dimen, bool, error) {
	m := lengthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false, fmt.Errorf("%w: length %q", ErrIllegalValue, s)
	}
	if m[2] == "" {
		return dimen.ParseDimen(m[1] + m[3])
	}
	f, err := strconv.ParseFloat(m[1]+m[2], 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: length %q", ErrIllegalValue, s)
	}
	if m[3] == "%" {
		return dimen.Dimen(f), true, nil
	}
	unit, _, err := dimen.ParseDimen("1" + m[3])
	if err != nil {
		return 0, false, fmt.Errorf("%w: unit of %q", ErrIllegalValue, s)
	}
	return dimen.Dimen(f * float64(unit)), false, nil
}

// parseAnchorFn parses the arguments of `anchor(name side, fallback)`.
func parseAnchorFn(args string) (style.Length, error) {
	fallback := style.NoLength()
	if comma := strings.Index(args, ","); comma >= 0 {
		fb, err := ParseLength(args[comma+1:])
		if err != nil {
			return style.NoLength(), err
		}
		fallback = fb
		args = args[:comma]
	}
	fields := strings.Fields(args)
	name, sidename := "", ""
	switch len(fields) {
	case 1:
		sidename = fields[0]
	case 2:
		name, sidename = fields[0], fields[1]
	default:
		return style.NoLength(), fmt.Errorf("%w: anchor(%s)", ErrIllegalValue, args)
	}
	side, ok := style.ParseAnchorSide(sidename)
	if !ok {
		return style.NoLength(), fmt.Errorf("%w: anchor side %q", ErrIllegalValue, sidename)
	}
	return style.Anchor(name, side, fallback), nil
}

// parseFourLengths parses the 1 to 4 values of a shorthand like `margin`.
func parseFourLengths(s string) ([4]style.Length, error) {
	var r [4]style.Length
	vals := splitValues(s)
	if len(vals) == 0 || len(vals) > 4 {
		return r, fmt.Errorf("%w: %q needs 1 to 4 values", ErrIllegalValue, s)
	}
	ls := make([]style.Length, len(vals))
	for i, v := range vals {
		l, err := ParseLength(v)
		if err != nil {
			return r, err
		}
		ls[i] = l
	}
	switch len(ls) {
	case 1:
		r = [4]style.Length{ls[0], ls[0], ls[0], ls[0]}
	case 2:
		r = [4]style.Length{ls[0], ls[1], ls[0], ls[1]}
	case 3:
		r = [4]style.Length{ls[0], ls[1], ls[2], ls[1]}
	default:
		r = [4]style.Length{ls[0], ls[1], ls[2], ls[3]}
	}
	return r, nil
}

// splitValues splits at white space outside of parentheses.
func splitValues(s string) []string {
	var vals []string
	depth, start := 0, -1
	for i, c := range s {
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start >= 0 {
				vals = append(vals, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		vals = append(vals, s[start:])
	}
	return vals
}

func parseBorderWidth(s string) (dimen.Dimen, error) {
	switch s {
	case "thin":
		return dimen.PX, nil
	case "medium":
		return 3 * dimen.PX, nil
	case "thick":
		return 5 * dimen.PX, nil
	}
	d, pcnt, err := parseDimension(s)
	if err != nil || pcnt || d < 0 {
		return 0, fmt.Errorf("%w: border width %q", ErrIllegalValue, s)
	}
	return d, nil
}

func parseOverflow(s string) (style.Overflow, error) {
	switch s {
	case "visible":
		return style.OverflowVisible, nil
	case "hidden":
		return style.OverflowHidden, nil
	case "clip":
		return style.OverflowClip, nil
	case "scroll":
		return style.OverflowScroll, nil
	case "auto":
		return style.OverflowAuto, nil
	}
	return 0, fmt.Errorf("%w: overflow %q", ErrIllegalValue, s)
}

func parseSelfAlign(s string) (style.SelfAlign, error) {
	switch s {
	case "normal", "auto":
		return style.AlignNormal, nil
	case "start", "flex-start":
		return style.AlignStart, nil
	case "center":
		return style.AlignCenter, nil
	case "end", "flex-end":
		return style.AlignEnd, nil
	case "stretch":
		return style.AlignStretch, nil
	case "self-start":
		return style.AlignSelfStart, nil
	case "self-end":
		return style.AlignSelfEnd, nil
	}
	return 0, fmt.Errorf("%w: alignment %q", ErrIllegalValue, s)
}

// parseInsetArea parses the physical keywords of inset-area. A single axis
// keyword spans the other axis completely.
func parseInsetArea(s string) (style.InsetArea, error) {
	var ia style.InsetArea
	var centers int
	for _, kw := range strings.Fields(s) {
		switch kw {
		case "top":
			ia.Y = style.AreaStart
		case "bottom":
			ia.Y = style.AreaEnd
		case "left":
			ia.X = style.AreaStart
		case "right":
			ia.X = style.AreaEnd
		case "span-top":
			ia.Y = style.AreaStart | style.AreaCenter
		case "span-bottom":
			ia.Y = style.AreaCenter | style.AreaEnd
		case "span-left":
			ia.X = style.AreaStart | style.AreaCenter
		case "span-right":
			ia.X = style.AreaCenter | style.AreaEnd
		case "center":
			centers++
		case "span-all":
		case "none":
			return style.InsetArea{}, nil
		default:
			return style.InsetArea{}, fmt.Errorf("%w: inset-area %q", ErrIllegalValue, kw)
		}
	}
	for ; centers > 0; centers-- {
		if ia.Y == style.AreaNone {
			ia.Y = style.AreaCenter
		} else if ia.X == style.AreaNone {
			ia.X = style.AreaCenter
		}
	}
	if ia.X == style.AreaNone {
		ia.X = style.AreaAll
	}
	if ia.Y == style.AreaNone {
		ia.Y = style.AreaAll
	}
	return ia, nil
}

func parseGridLines(s string) (style.GridLines, error) {
	parts := strings.Split(s, "/")
	var gl style.GridLines
	var err error
	if gl.Start, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return gl, fmt.Errorf("%w: grid line %q", ErrIllegalValue, s)
	}
	gl.End = gl.Start + 1
	if len(parts) > 1 {
		if gl.End, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return gl, fmt.Errorf("%w: grid line %q", ErrIllegalValue, s)
		}
	}
	return gl, nil
}

func parseTracks(s string) ([]dimen.Dimen, error) {
	var tracks []dimen.Dimen
	for _, v := range splitValues(s) {
		d, pcnt, err := parseDimension(v)
		if err != nil || pcnt {
			return nil, fmt.Errorf("%w: grid track %q", ErrIllegalValue, v)
		}
		tracks = append(tracks, d)
	}
	return tracks, nil
}

func parseWritingMode(s string) (frame.WritingMode, error) {
	switch s {
	case "horizontal-tb":
		return frame.HorizontalTB, nil
	case "vertical-rl":
		return frame.VerticalRL, nil
	case "vertical-lr":
		return frame.VerticalLR, nil
	}
	return 0, fmt.Errorf("%w: writing-mode %q", ErrIllegalValue, s)
}

func parseDirection(s string) (bidi.Direction, error) {
	switch s {
	case "ltr":
		return bidi.LeftToRight, nil
	case "rtl":
		return bidi.RightToLeft, nil
	}
	return 0, fmt.Errorf("%w: direction %q", ErrIllegalValue, s)
}

func parseDisplay(s string) (style.Display, error) {
	switch s {
	case "block", "flow-root", "list-item":
		return style.DisplayBlock, nil
	case "inline":
		return style.DisplayInline, nil
	case "inline-block":
		return style.DisplayInlineBlock, nil
	case "grid":
		return style.DisplayGrid, nil
	case "none":
		return style.DisplayNone, nil
	}
	return 0, fmt.Errorf("%w: display %q", ErrIllegalValue, s)
}
