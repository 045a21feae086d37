package css

import (
	"strings"

	douceur "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/engine/dom/style"
)

// Rule is a qualified style rule.
type Rule struct {
	Selectors    []string
	Declarations []*douceur.Declaration
}

// Sheet is a parsed style sheet.
type Sheet struct {
	Rules []*Rule
	Tries *style.TryRegistry
}

// ParseStylesheet parses CSS text. Style rules are kept in document order,
// `@position-try` blocks are collected into a registry.
func ParseStylesheet(text string) (*Sheet, error) {
	ss, err := parser.Parse(text)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse style sheet")
	}
	sheet := &Sheet{Tries: style.NewTryRegistry()}
	if err := sheet.collect(ss.Rules); err != nil {
		return sheet, err
	}
	return sheet, nil
}

func (sheet *Sheet) collect(rules []*douceur.Rule) error {
	for _, r := range rules {
		if r.Kind == douceur.QualifiedRule {
			sheet.Rules = append(sheet.Rules, &Rule{
				Selectors:    r.Selectors,
				Declarations: r.Declarations,
			})
			continue
		}
		switch strings.TrimPrefix(r.Name, "@") {
		case "position-try":
			entry, err := ParseTryEntry(r.Declarations)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(r.Prelude)
			tracer().Debugf("css: @position-try %s", name)
			sheet.Tries.Add(&style.TryRule{Name: name, Entries: []*style.TryEntry{entry}})
		default:
			tracer().Debugf("css: ignoring at-rule %s", r.Name)
		}
	}
	return nil
}

// ParseTryEntry interprets the declarations of a `@position-try` block.
// Properties not allowed in position-try blocks are ignored.
func ParseTryEntry(decls []*douceur.Declaration) (*style.TryEntry, error) {
	entry := style.NewTryEntry()
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		ok, err := applyTry(entry, prop, strings.TrimSpace(d.Value))
		if err != nil {
			return entry, core.WrapError(err, core.EINVALID, "illegal value for %s in @position-try", prop)
		}
		if !ok {
			tracer().Infof("css: property %s not allowed in @position-try", prop)
		}
	}
	return entry, nil
}
