/*
Package html reads HTML documents into box trees.

Only a small subset of HTML is interpreted: elements become block, inline or
replaced boxes, text becomes runs of unbreakable words. Words are the
segments between line break opportunities as found by the UAX #14 line
wrapping algorithm, with trailing white space removed. Style is taken from
`<style>` elements and from `style` attributes. Style rules are matched with
cascadia and applied in document order, followed by the declarations of the
`style` attribute.

Text is measured with a fixed advance per character cell; wide East Asian
characters take two cells.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package html

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/dom/style"
	"github.com/npillmayer/outflow/engine/dom/style/css"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// tracer traces with key 'outflow.input'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.input")
}

// ErrNoBody is returned for documents without a body element.
var ErrNoBody = errors.New("document has no body")

// DefaultCharWidth is the advance of a character cell.
const DefaultCharWidth = 8 * dimen.PX

// Loader builds box trees from HTML.
type Loader struct {
	CharWidth dimen.Dimen // advance of a character cell
	Paginated bool        // lay out the document into pages
	rules     []matcher
	tries     *style.TryRegistry
	names     map[string]int
	segmenter *segment.Segmenter
}

type matcher struct {
	sel  cascadia.Selector
	rule *css.Rule
}

// NewLoader creates a loader with default settings.
func NewLoader() *Loader {
	return &Loader{CharWidth: DefaultCharWidth}
}

// Load parses an HTML document and builds its box tree. The body element
// becomes the root box.
func Load(r io.Reader) (*boxtree.Tree, error) {
	return NewLoader().Load(r)
}

// LoadString is Load for documents held in a string.
func LoadString(doc string) (*boxtree.Tree, error) {
	return Load(strings.NewReader(doc))
}

// Load parses an HTML document and builds its box tree.
func (l *Loader) Load(r io.Reader) (*boxtree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse HTML")
	}
	l.rules = nil
	l.tries = style.NewTryRegistry()
	l.names = make(map[string]int)
	if err = l.collectSheets(doc); err != nil {
		return nil, err
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return nil, core.WrapError(ErrNoBody, core.EINVALID, "cannot build box tree")
	}
	root, err := l.box(body, nil)
	if err != nil {
		return nil, err
	}
	tree := boxtree.NewTree(root)
	tree.Paginated = l.Paginated
	tree.Tries.Merge(l.tries)
	tracer().Infof("html: box tree with %d boxes, %d style rules", tree.Size(), len(l.rules))
	return tree, nil
}

// collectSheets parses all `<style>` elements of the document.
func (l *Loader) collectSheets(doc *html.Node) error {
	var err error
	walk(doc, func(n *html.Node) bool {
		if err != nil {
			return false
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Style {
			return true
		}
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		err = l.addSheet(sb.String())
		return false
	})
	return err
}

func (l *Loader) addSheet(text string) error {
	sheet, err := css.ParseStylesheet(text)
	if err != nil {
		return err
	}
	for _, rule := range sheet.Rules {
		for _, s := range rule.Selectors {
			sel, err := cascadia.Compile(s)
			if err != nil {
				tracer().Infof("html: skipping selector %q: %v", s, err)
				continue
			}
			l.rules = append(l.rules, matcher{sel: sel, rule: rule})
		}
	}
	l.tries.Merge(sheet.Tries)
	return nil
}

// computeStyle cascades the style of element n. Inherited properties are
// taken from the parent style.
func (l *Loader) computeStyle(n *html.Node, parent *style.Style) (*style.Style, error) {
	st := style.Default()
	if isInlineElement(n.DataAtom) {
		st.Display = style.DisplayInline
	}
	if parent != nil {
		st.Writing = parent.Writing
		st.LineHeight = parent.LineHeight
	}
	var first error
	applied := make(map[*css.Rule]bool)
	for _, m := range l.rules {
		if applied[m.rule] || !m.sel.Match(n) {
			continue
		}
		applied[m.rule] = true
		if err := css.ApplyDeclarations(st, m.rule.Declarations); err != nil && first == nil {
			first = err
		}
	}
	if decls, ok := attr(n, "style"); ok {
		var err error
		if st, err = css.ParseStyle(decls, st); err != nil && first == nil {
			first = err
		}
	}
	return st, first
}

// box builds the box for element n and its content.
func (l *Loader) box(n *html.Node, parent *style.Style) (*boxtree.Node, error) {
	st, err := l.computeStyle(n, parent)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "illegal style for <%s>", n.Data)
	}
	name := l.name(n)
	var b *boxtree.Node
	switch {
	case n.DataAtom == atom.Img:
		b = boxtree.Replaced(name, st, frame.PhysicalSize{
			W: l.dimension(n, "width"),
			H: l.dimension(n, "height"),
		})
		return b, nil
	case st.Display == style.DisplayGrid:
		b = boxtree.Grid(name, st)
	case st.Display == style.DisplayInline:
		b = boxtree.NewBox(boxtree.InlineBox, name, st)
	default:
		b = boxtree.Block(name, st)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if words := l.measure(c.Data); len(words) > 0 {
				b.Add(boxtree.Inline(l.anonymous(name), textStyle(st), words...))
			}
		case html.ElementNode:
			if skipElement(c.DataAtom) {
				continue
			}
			child, err := l.box(c, st)
			if err != nil {
				return nil, err
			}
			if child.Style.Display != style.DisplayNone {
				b.Add(child)
			}
		}
	}
	return b, nil
}

func textStyle(parent *style.Style) *style.Style {
	st := style.Default()
	st.Display = style.DisplayInline
	st.Writing = parent.Writing
	st.LineHeight = parent.LineHeight
	return st
}

// measure splits text at line break opportunities and returns the widths
// of the segments. White space does not count.
func (l *Loader) measure(text string) []dimen.Dimen {
	if l.segmenter == nil {
		l.segmenter = segment.NewSegmenter(uax14.NewLineWrap())
	}
	seg := l.segmenter
	seg.Init(bufio.NewReader(norm.NFC.Reader(strings.NewReader(text))))
	var words []dimen.Dimen
	for seg.Next() {
		word := strings.TrimSpace(seg.Text())
		if word == "" {
			continue
		}
		words = append(words, dimen.Dimen(cells(word))*l.CharWidth)
	}
	return words
}

// cells counts the character cells of s. Wide East Asian characters take
// two cells.
func cells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// dimension reads a width or height attribute in pixels.
func (l *Loader) dimension(n *html.Node, key string) dimen.Dimen {
	v, ok := attr(n, key)
	if !ok {
		return 0
	}
	px, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || px < 0 {
		tracer().Infof("html: ignoring %s=%q of <%s>", key, v, n.Data)
		return 0
	}
	return dimen.Dimen(px) * dimen.PX
}

// name returns the id of n, or a generated name unique within the document.
func (l *Loader) name(n *html.Node) string {
	if id, ok := attr(n, "id"); ok && id != "" {
		return id
	}
	l.names[n.Data]++
	return fmt.Sprintf("%s%d", n.Data, l.names[n.Data])
}

func (l *Loader) anonymous(parent string) string {
	key := parent + "#text"
	l.names[key]++
	return fmt.Sprintf("%s%d", key, l.names[key])
}

// --- Helpers ----------------------------------------------------------

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// walk visits the nodes below n in document order. If fn returns false,
// the children of a node are skipped.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

func isInlineElement(a atom.Atom) bool {
	switch a {
	case atom.Span, atom.A, atom.Em, atom.Strong, atom.B, atom.I, atom.Code,
		atom.Small, atom.Sub, atom.Sup, atom.Label:
		return true
	}
	return false
}

func skipElement(a atom.Atom) bool {
	switch a {
	case atom.Style, atom.Script, atom.Head, atom.Title, atom.Meta, atom.Link:
		return true
	}
	return false
}
