package style

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTryRule is returned when a position-fallback names a rule which
// has not been registered.
var ErrUnknownTryRule = errors.New("no such position-try rule")

// Prop flags the properties a position-try entry overrides.
type Prop uint32

// Overridable properties
const (
	PropTop Prop = 1 << iota
	PropRight
	PropBottom
	PropLeft
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropInsetArea
	PropJustifySelf
	PropAlignSelf
	PropAnchorDefault
)

var insetProps = [4]Prop{PropTop, PropRight, PropBottom, PropLeft}
var marginProps = [4]Prop{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}

// TryEntry is one alternative set of positioning properties.
type TryEntry struct {
	values Style
	set    Prop
}

// NewTryEntry creates an entry which does not override anything.
func NewTryEntry() *TryEntry {
	return &TryEntry{values: *Default()}
}

// SetInset overrides an inset property (frame.Top … frame.Left).
func (t *TryEntry) SetInset(side int, l Length) *TryEntry {
	t.values.Insets[side] = l
	t.set |= insetProps[side]
	return t
}

// SetMargin overrides a margin property.
func (t *TryEntry) SetMargin(side int, l Length) *TryEntry {
	t.values.Margins[side] = l
	t.set |= marginProps[side]
	return t
}

// SetSize overrides one of the sizing properties PropWidth … PropMaxHeight.
func (t *TryEntry) SetSize(p Prop, l Length) *TryEntry {
	switch p {
	case PropWidth:
		t.values.Width = l
	case PropHeight:
		t.values.Height = l
	case PropMinWidth:
		t.values.MinWidth = l
	case PropMinHeight:
		t.values.MinHeight = l
	case PropMaxWidth:
		t.values.MaxWidth = l
	case PropMaxHeight:
		t.values.MaxHeight = l
	default:
		tracer().Errorf("position-try: %d is not a sizing property", p)
		return t
	}
	t.set |= p
	return t
}

// SetInsetArea overrides inset-area.
func (t *TryEntry) SetInsetArea(a InsetArea) *TryEntry {
	t.values.InsetArea = a
	t.set |= PropInsetArea
	return t
}

// SetSelfAlign overrides justify-self (PropJustifySelf) or align-self.
func (t *TryEntry) SetSelfAlign(p Prop, a SelfAlign) *TryEntry {
	if p == PropJustifySelf {
		t.values.JustifySelf = a
	} else {
		t.values.AlignSelf = a
	}
	t.set |= p
	return t
}

// SetAnchorDefault overrides the default anchor.
func (t *TryEntry) SetAnchorDefault(name string) *TryEntry {
	t.values.AnchorDefault = name
	t.set |= PropAnchorDefault
	return t
}

// Has tells if t overrides property p.
func (t *TryEntry) Has(p Prop) bool {
	return t.set&p != 0
}

// UsesAutoAnchor is true if t itself sets one of the insets at sides a or b
// to `anchor(auto)`.
func (t *TryEntry) UsesAutoAnchor(a, b int) bool {
	return (t.Has(insetProps[a]) && t.values.Insets[a].IsAutoAnchor()) ||
		(t.Has(insetProps[b]) && t.values.Insets[b].IsAutoAnchor())
}

// Apply returns a copy of base with the properties of t overridden.
func (t *TryEntry) Apply(base *Style) *Style {
	st := base.Clone()
	for i := 0; i < 4; i++ {
		if t.Has(insetProps[i]) {
			st.Insets[i] = t.values.Insets[i]
		}
		if t.Has(marginProps[i]) {
			st.Margins[i] = t.values.Margins[i]
		}
	}
	if t.Has(PropWidth) {
		st.Width = t.values.Width
	}
	if t.Has(PropHeight) {
		st.Height = t.values.Height
	}
	if t.Has(PropMinWidth) {
		st.MinWidth = t.values.MinWidth
	}
	if t.Has(PropMinHeight) {
		st.MinHeight = t.values.MinHeight
	}
	if t.Has(PropMaxWidth) {
		st.MaxWidth = t.values.MaxWidth
	}
	if t.Has(PropMaxHeight) {
		st.MaxHeight = t.values.MaxHeight
	}
	if t.Has(PropInsetArea) {
		st.InsetArea = t.values.InsetArea
	}
	if t.Has(PropJustifySelf) {
		st.JustifySelf = t.values.JustifySelf
	}
	if t.Has(PropAlignSelf) {
		st.AlignSelf = t.values.AlignSelf
	}
	if t.Has(PropAnchorDefault) {
		st.AnchorDefault = t.values.AnchorDefault
	}
	return st
}

// TryRule is a named list of position-try entries, in document order.
type TryRule struct {
	Name    string
	Entries []*TryEntry
}

// TryRegistry holds the position-try rules of a document.
type TryRegistry struct {
	rules map[string]*TryRule
}

// NewTryRegistry creates an empty registry.
func NewTryRegistry() *TryRegistry {
	return &TryRegistry{rules: make(map[string]*TryRule)}
}

// Add registers a rule. Entries of a rule with the same name are appended,
// as cascading @position-try blocks do.
func (r *TryRegistry) Add(rule *TryRule) {
	name := strings.TrimSpace(rule.Name)
	if existing, ok := r.rules[name]; ok {
		existing.Entries = append(existing.Entries, rule.Entries...)
		return
	}
	r.rules[name] = &TryRule{Name: name, Entries: rule.Entries}
}

// Lookup finds a rule by name.
func (r *TryRegistry) Lookup(name string) (*TryRule, error) {
	if r != nil {
		if rule, ok := r.rules[strings.TrimSpace(name)]; ok {
			return rule, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTryRule, name)
}

// Len returns the number of rules.
func (r *TryRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Merge adds all rules of other to r.
func (r *TryRegistry) Merge(other *TryRegistry) {
	if other == nil {
		return
	}
	for _, rule := range other.rules {
		r.Add(rule)
	}
}
