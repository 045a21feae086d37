/*
Package frame holds the geometry primitives of layout.

Layout works on boxes placed within larger boxes. Geometry is expressed either
in physical terms (x to the right, y downwards) or in logical terms, relative to
a writing direction: the inline axis runs along a line of text, the block axis
along the stacking direction of lines. Algorithms compute in logical terms and
convert to physical geometry when fragments are finalized.

Besides offsets, sizes, rectangles and struts (4-way edge values) this package
defines constraint spaces, which describe the space offered to a box by its
parent algorithm, and break tokens, which describe where layout of a box has to
resume after a fragmentainer break.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package frame

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame")
}
