/*
Package boxtree holds the box tree layout operates on.

Boxes come in a small closed set of kinds: block boxes, inline boxes, replaced
boxes, and table/grid boxes. Each box carries its computed style and, for
inline boxes, a list of unbreakable content runs. Boxes are numbered in
pre-order, which is the order positioned descendants are processed in.

Besides the immutable tree structure a box holds a little mutable layout
state, e.g. which scrollbars a scroll container currently shows.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package boxtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.box'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.box")
}
