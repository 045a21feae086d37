/*
Command oofcli is an interactive shell for inspecting the layout of
out-of-flow positioned boxes.

It loads an HTML fixture, lays it out and accepts commands to print the
fragment tree, show the placement of boxes and scroll anchors.

	oofcli -f fixture.html [-paged] [-trace Debug]

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/flow"
	"github.com/npillmayer/outflow/engine/frame/fragment"
	"github.com/npillmayer/outflow/engine/frame/framedebug"
	"github.com/npillmayer/outflow/engine/frame/layout"
	"github.com/npillmayer/outflow/input/html"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'outflow.cli'
func tracer() tracing.Trace {
	return tracing.Select("outflow.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fixture := flag.String("f", "", "HTML fixture to load")
	paged := flag.Bool("paged", false, "Lay out into pages")
	pageSize := flag.String("pagesize", "", "Page size, e.g. '600px x 800px'")
	flag.Parse()

	// set up logging and configuration
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":              "go",
		"trace.outflow.cli":            *tlevel,
		"trace.outflow.frame.layout":   *tlevel,
		"trace.outflow.frame.flow":     *tlevel,
		"trace.outflow.frame.anchor":   "Error",
		"trace.outflow.frame.debug":    "Error",
		"trace.outflow.frame.fragment": "Error",
		"trace.outflow.input":          *tlevel,
		"trace.outflow.style":          "Error",
		"outflow.page-size":            *pageSize,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	gconf.Initialize(conf)
	pterm.Info.Println("Welcome to the out-of-flow layout CLI") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up REPL
	repl, err := readline.New("oof > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, cfg: layout.ConfigFromGlobal(), paged: *paged}
	if *fixture != "" {
		if err := intp.load(*fixture); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl   *readline.Instance
	cfg    layout.Config
	paged  bool
	tree   *boxtree.Tree
	engine *flow.Engine
	result *fragment.Result
}

var errNoTree = errors.New("no fixture loaded")

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.execute(strings.Fields(line))
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(args []string) (bool, error) {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "quit", "q":
		return true, nil
	case "help", "?":
		intp.help()
	case "load":
		if len(args) != 1 {
			return false, errors.New("usage: load <file>")
		}
		return false, intp.load(args[0])
	case "paged":
		intp.paged = len(args) == 0 || args[0] == "on"
		return false, intp.layout()
	case "dump":
		if intp.result == nil {
			return false, errNoTree
		}
		return false, framedebug.Dump(intp.engine.Arena(), intp.result.Ref, os.Stdout)
	case "dot":
		if len(args) != 1 {
			return false, errors.New("usage: dot <file>")
		}
		return false, intp.dot(args[0])
	case "offsets", "o":
		if len(args) != 1 {
			return false, errors.New("usage: offsets <box>")
		}
		return false, intp.offsets(args[0])
	case "anchors":
		prefix := ""
		if len(args) > 0 {
			prefix = args[0]
		}
		return false, intp.anchors(prefix)
	case "scroll":
		if len(args) != 3 {
			return false, errors.New("usage: scroll <box> <x> <y>")
		}
		return false, intp.scroll(args[0], args[1], args[2])
	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}
	return false, nil
}

func (intp *Intp) help() {
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Command", "Description"},
		{"load <file>", "load an HTML fixture and lay it out"},
		{"paged [on|off]", "switch pagination and lay out again"},
		{"dump", "print the fragment tree"},
		{"dot <file>", "write the fragment tree in Graphviz format"},
		{"offsets <box>", "show the placement of a box"},
		{"anchors [prefix]", "list anchor names"},
		{"scroll <box> <x> <y>", "set the anchor scroll offset of a box"},
		{"quit", "leave"},
	}).Render()
}

func (intp *Intp) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	tree, err := html.Load(f)
	if err != nil {
		return err
	}
	intp.tree = tree
	pterm.Info.Printf("loaded %s: %d boxes, %d position-try rules\n", path, tree.Size(), tree.Tries.Len())
	return intp.layout()
}

func (intp *Intp) layout() error {
	if intp.tree == nil {
		return errNoTree
	}
	intp.tree.Paginated = intp.paged
	intp.engine = flow.New(intp.cfg)
	res, err := intp.engine.LayoutTree(intp.tree)
	if err != nil {
		return err
	}
	intp.result = res
	pterm.Info.Printf("laid out, root fragment %v\n", res.Fragment.Size)
	return nil
}

func (intp *Intp) dot(path string) error {
	if intp.result == nil {
		return errNoTree
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = framedebug.ToGraphViz(intp.engine.Arena(), intp.result.Ref, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (intp *Intp) box(name string) (*boxtree.Node, error) {
	if intp.tree == nil {
		return nil, errNoTree
	}
	n := intp.tree.Lookup(name)
	if n == nil {
		return nil, fmt.Errorf("no box named %q", name)
	}
	return n, nil
}

func (intp *Intp) offsets(name string) error {
	n, err := intp.box(name)
	if err != nil {
		return err
	}
	frags := intp.engine.Arena().FragmentsOf(n)
	if len(frags) == 0 {
		return fmt.Errorf("box %q has no fragments", name)
	}
	data := pterm.TableData{{"#", "size", "offset", "insets", "fallback", "ranges", "break"}}
	for i, f := range frags {
		row := []string{strconv.Itoa(i), f.Size.String(), "-", "-", "-", "-", "-"}
		if oof := f.OutOfFlow(); oof != nil {
			row[2] = fmt.Sprintf("%v", oof.Offset)
			row[3] = fmt.Sprintf("%v", oof.Insets)
			row[4] = strconv.Itoa(oof.FallbackIndex)
			row[5] = strconv.Itoa(len(oof.Ranges))
		}
		if f.BreakToken != nil {
			row[6] = fmt.Sprintf("%v", f.BreakToken)
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) anchors(prefix string) error {
	if intp.result == nil {
		return errNoTree
	}
	m := intp.result.Fragment.Anchors
	if m == nil || m.Len() == 0 {
		pterm.Info.Println("no anchors")
		return nil
	}
	for _, name := range m.Names(prefix) {
		e, _ := m.Lookup(name)
		pterm.Printf("%-20s %v\n", name, e.Rect)
	}
	return nil
}

// scroll sets the anchor scroll offset of a box and lays out again if
// the chosen fallback style no longer fits.
func (intp *Intp) scroll(name, xs, ys string) error {
	n, err := intp.box(name)
	if err != nil {
		return err
	}
	x, _, err := dimen.ParseDimen(xs)
	if err != nil {
		return err
	}
	y, _, err := dimen.ParseDimen(ys)
	if err != nil {
		return err
	}
	n.Layout.AnchorScroll = frame.PhysicalOffset{X: x, Y: y}
	relayout := false
	for _, f := range intp.engine.Arena().FragmentsOf(n) {
		if layout.NeedsFallbackRecalculation(f.OutOfFlow(), n.Layout.AnchorScroll, n.Layout.BoundsScroll) {
			relayout = true
		}
	}
	if !relayout {
		pterm.Info.Println("placement still valid")
		return nil
	}
	pterm.Info.Println("fallback changed, laying out again")
	if err = intp.layout(); err != nil {
		return err
	}
	return intp.offsets(name)
}
