package css

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	douceur "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/frame"
)

var sideNames = [4]string{"top", "right", "bottom", "left"}

// ParseStyle parses a declaration block, as found in a `style` attribute,
// and applies it to a copy of base. If base is nil, the initial style is used.
func ParseStyle(decls string, base *style.Style) (*style.Style, error) {
	var st *style.Style
	if base == nil {
		st = style.Default()
	} else {
		st = base.Clone()
	}
	d, err := parseDeclarations(decls)
	if err != nil {
		return st, err
	}
	return st, ApplyDeclarations(st, d)
}

func parseDeclarations(decls string) ([]*douceur.Declaration, error) {
	decls = strings.TrimSpace(decls)
	if decls != "" && !strings.HasSuffix(decls, ";") {
		decls += ";"
	}
	d, err := parser.ParseDeclarations(decls)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse declarations %q", decls)
	}
	return d, nil
}

// ApplyDeclarations applies parsed declarations to st. Unknown properties are
// skipped. The first illegal value is reported, but does not stop processing
// of subsequent declarations.
func ApplyDeclarations(st *style.Style, decls []*douceur.Declaration) error {
	var first error
	for _, d := range decls {
		if err := Apply(st, d.Property, d.Value); err != nil {
			if IsUnknown(err) {
				tracer().Debugf("css: skipping %s", err)
				continue
			}
			if first == nil {
				first = core.WrapError(err, core.EINVALID, "illegal value for %s", d.Property)
			}
		}
	}
	return first
}

// IsUnknown is true for errors reporting an unknown property.
func IsUnknown(err error) bool {
	return errors.Is(err, ErrUnknownProperty)
}

// Apply sets a single property on st.
func Apply(st *style.Style, prop, value string) error {
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)
	if ok, err := applyPositioning(st, prop, value); ok {
		return err
	}
	var err error
	switch prop {
	case "position":
		p, ok := style.ParsePosition(value)
		if !ok {
			return fmt.Errorf("%w: position %q", ErrIllegalValue, value)
		}
		st.Position = p
	case "display":
		st.Display, err = parseDisplay(value)
	case "padding":
		st.Padding, err = parseFourLengths(value)
	case "padding-top", "padding-right", "padding-bottom", "padding-left":
		st.Padding[sideIndex(prop)], err = ParseLength(value)
	case "border", "border-width":
		vals := splitValues(value)
		if len(vals) == 0 {
			return fmt.Errorf("%w: empty border", ErrIllegalValue)
		}
		var w dimen.Dimen
		if w, err = parseBorderWidth(vals[0]); err == nil {
			st.Border = [4]dimen.Dimen{w, w, w, w}
		}
	case "border-top-width", "border-right-width", "border-bottom-width", "border-left-width":
		st.Border[sideIndex(prop)], err = parseBorderWidth(value)
	case "box-sizing":
		switch value {
		case "border-box":
			st.BoxSizing = style.BorderBox
		case "content-box":
			st.BoxSizing = style.ContentBox
		default:
			err = fmt.Errorf("%w: box-sizing %q", ErrIllegalValue, value)
		}
	case "overflow":
		var o style.Overflow
		if o, err = parseOverflow(value); err == nil {
			st.OverflowX, st.OverflowY = o, o
		}
	case "overflow-x":
		st.OverflowX, err = parseOverflow(value)
	case "overflow-y":
		st.OverflowY, err = parseOverflow(value)
	case "anchor-name":
		st.AnchorName = value
	case "transform":
		st.Transformed = value != "none"
	case "column-count":
		st.ColumnCount, err = strconv.Atoi(value)
	case "column-gap":
		var l style.Length
		if l, err = ParseLength(value); err == nil {
			st.ColumnGap = l.Unwrap()
		}
	case "column-span":
		st.ColumnSpanAll = value == "all"
	case "column-fill":
		st.ColumnFillAuto = value == "auto"
	case "grid-template-columns":
		st.GridColumns, err = parseTracks(value)
	case "grid-template-rows":
		st.GridRows, err = parseTracks(value)
	case "grid-column":
		st.GridColumn, err = parseGridLines(value)
	case "grid-row":
		st.GridRow, err = parseGridLines(value)
	case "line-height":
		var l style.Length
		if l, err = ParseLength(value); err == nil && l.IsFixed() {
			st.LineHeight = l.Unwrap()
		}
	case "writing-mode":
		st.Writing.Mode, err = parseWritingMode(value)
	case "direction":
		st.Writing.Direction, err = parseDirection(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	return err
}

// applyPositioning handles the properties which may also appear in
// position-try blocks.
func applyPositioning(st *style.Style, prop, value string) (bool, error) {
	t := style.NewTryEntry()
	ok, err := applyTry(t, prop, value)
	if !ok || err != nil {
		return ok, err
	}
	*st = *t.Apply(st)
	if prop == "position-fallback" || prop == "position-try-options" {
		st.PositionFallback = value
	} else if prop == "position-fallback-bounds" {
		st.FallbackBounds = value
	}
	return true, nil
}

// applyTry sets a property on a position-try entry. The first return value is
// false for properties not allowed in position-try blocks.
func applyTry(t *style.TryEntry, prop, value string) (bool, error) {
	switch prop {
	case "top", "right", "bottom", "left":
		l, err := ParseLength(value)
		if err == nil {
			t.SetInset(sideIndex(prop), l)
		}
		return true, err
	case "inset":
		ls, err := parseFourLengths(value)
		if err == nil {
			for i, l := range ls {
				t.SetInset(i, l)
			}
		}
		return true, err
	case "margin":
		ls, err := parseFourLengths(value)
		if err == nil {
			for i, l := range ls {
				t.SetMargin(i, l)
			}
		}
		return true, err
	case "margin-top", "margin-right", "margin-bottom", "margin-left":
		l, err := ParseLength(value)
		if err == nil {
			t.SetMargin(sideIndex(prop), l)
		}
		return true, err
	case "width", "height", "min-width", "min-height", "max-width", "max-height":
		l, err := ParseLength(value)
		if err == nil {
			t.SetSize(sizeProps[prop], l)
		}
		return true, err
	case "inset-area", "position-area":
		ia, err := parseInsetArea(value)
		if err == nil {
			t.SetInsetArea(ia)
		}
		return true, err
	case "justify-self", "align-self":
		a, err := parseSelfAlign(value)
		if err == nil {
			p := style.PropJustifySelf
			if prop == "align-self" {
				p = style.PropAlignSelf
			}
			t.SetSelfAlign(p, a)
		}
		return true, err
	case "anchor-default", "position-anchor":
		t.SetAnchorDefault(value)
		return true, nil
	case "position-fallback", "position-try-options", "position-fallback-bounds":
		return true, nil
	}
	return false, nil
}

var sizeProps = map[string]style.Prop{
	"width":      style.PropWidth,
	"height":     style.PropHeight,
	"min-width":  style.PropMinWidth,
	"min-height": style.PropMinHeight,
	"max-width":  style.PropMaxWidth,
	"max-height": style.PropMaxHeight,
}

func sideIndex(prop string) int {
	for i, s := range sideNames {
		if strings.Contains(prop, s) {
			return i
		}
	}
	return frame.Top
}
