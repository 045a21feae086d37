/*
Package flow implements normal flow layout for the boxes of package boxtree.

Flow layout is deliberately small: block boxes stack their children in the
block direction, inline content is broken greedily into lines of a fixed
line height, replaced boxes take their intrinsic size, and multi-column
containers distribute their content into columns of equal block size,
balanced if no block size is given. Paginated documents are laid out into
pages.

Every box with positioned descendants hands them to a layout.Part before its
fragment is finished. The Engine implements layout.Algorithm for that
purpose, together with the position-try rules of the document and the
repetition of fixed positioned boxes on every page.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package flow

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.flow'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.flow")
}
