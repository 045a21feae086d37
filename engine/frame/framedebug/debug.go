/*
Package framedebug writes fragment trees in a human readable form, either as
indented text or as input for Graphviz.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package framedebug

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.debug'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.debug")
}

// maxNodes guards against cycles in broken fragment trees.
const maxNodes = 5000

// Dump writes the fragment tree below root as indented text, one fragment
// per line, with its offset relative to root.
func Dump(arena *fragment.Arena, root fragment.Ref, w io.Writer) error {
	var err error
	cnt := 0
	arena.Walk(root, func(f *fragment.Fragment, offset frame.PhysicalOffset, depth int) bool {
		if err != nil || cnt >= maxNodes {
			return false
		}
		cnt++
		_, err = fmt.Fprintf(w, "%s%s @%v %v%s\n", strings.Repeat("  ", depth), describe(f),
			offset, f.Size, placement(f))
		return true
	})
	return err
}

func describe(f *fragment.Fragment) string {
	if f.Box == nil {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s[%v]", f.Kind, f.Box)
}

func placement(f *fragment.Fragment) string {
	var sb strings.Builder
	if oof := f.OutOfFlow(); oof != nil {
		fmt.Fprintf(&sb, " oof(offset=%v insets=%v", oof.Offset, oof.Insets)
		if oof.FallbackIndex >= 0 {
			fmt.Fprintf(&sb, " fallback=%d ranges=%d", oof.FallbackIndex, len(oof.Ranges))
		}
		sb.WriteString(")")
	}
	if f.BreakToken != nil {
		fmt.Fprintf(&sb, " break=%v", f.BreakToken)
	}
	return sb.String()
}

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname string
	NodeTmpl *template.Template
	EdgeTmpl *template.Template
	cnt      int
}

// ToGraphViz creates a graphical representation of a fragment tree.
// It produces a DOT file format suitable as input for Graphviz, given a Writer.
func ToGraphViz(arena *fragment.Arena, root fragment.Ref, w io.Writer) error {
	header, err := template.New("fragmentTree").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("fragment").Funcs(
		template.FuncMap{
			"label": label,
			"fill":  fill,
		}).Parse(nodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("edge").Parse(edgeTmpl))
	if err = header.Execute(w, gparams); err != nil {
		return err
	}
	dict := make(map[fragment.Ref]string, 256)
	if err = nodes(arena, root, w, dict, &gparams); err != nil {
		return err
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

type cnode struct {
	F    *fragment.Fragment
	Name string
}

type cedge struct {
	N1, N2 string
	Offset frame.PhysicalOffset
}

func nodes(arena *fragment.Arena, r fragment.Ref, w io.Writer, dict map[fragment.Ref]string,
	gparams *graphParamsType) error {
	//
	gparams.cnt++
	if gparams.cnt >= maxNodes {
		tracer().Errorf("fragment tree has more than %d fragments, stopping", maxNodes)
		return nil
	}
	f := arena.Fragment(r)
	if f == nil {
		tracer().Debugf("fragment %v not found", r)
		return nil
	}
	name := nodeName(r, dict)
	if err := gparams.NodeTmpl.Execute(w, &cnode{F: f, Name: name}); err != nil {
		return err
	}
	for _, l := range f.Children {
		if err := nodes(arena, l.Ref, w, dict, gparams); err != nil {
			return err
		}
		e := cedge{N1: name, N2: nodeName(l.Ref, dict), Offset: l.Offset}
		if err := gparams.EdgeTmpl.Execute(w, e); err != nil {
			return err
		}
	}
	return nil
}

func nodeName(r fragment.Ref, dict map[fragment.Ref]string) string {
	name := dict[r]
	if name == "" {
		name = fmt.Sprintf("frag%05d", len(dict)+1)
		dict[r] = name
	}
	return name
}

func label(f *fragment.Fragment) string {
	s := describe(f) + `\n` + f.Size.String()
	if oof := f.OutOfFlow(); oof != nil {
		s += fmt.Sprintf(`\noffset %v`, oof.Offset)
		if oof.FallbackIndex >= 0 {
			s += fmt.Sprintf(`\nfallback %d`, oof.FallbackIndex)
		}
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func fill(f *fragment.Fragment) string {
	switch {
	case f.OutOfFlow() != nil:
		return "fillcolor=lightsalmon peripheries=2"
	case f.Kind == fragment.PageFragment:
		return "fillcolor=grey90"
	case f.Kind == fragment.ColumnFragment:
		return "fillcolor=grey95"
	}
	return "fillcolor=lightblue3"
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=12] ;
   node [fontname = "{{ .Fontname }}" fontsize=12] ;
   edge [fontname = "{{ .Fontname }}" fontsize=10] ;
`

const nodeTmpl = `{{ .Name }}	[ label={{ label .F }} shape=box style=filled {{ fill .F }} ] ;
`

const edgeTmpl = `{{ .N1 }} -> {{ .N2 }} [weight=1 label="{{ .Offset }}"] ;
`
