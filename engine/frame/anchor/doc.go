/*
Package anchor holds the geometry of anchor boxes for anchor positioning.

Boxes naming themselves with `anchor-name` are recorded in an anchor map when
their fragment is created. Maps travel up the fragment tree together with
the fragments, with rectangles shifted to the coordinate system of each
ancestor. Positioned boxes query the map of their containing block layout to
resolve `anchor()` functions and `inset-area`.

The map is read-only for positioned layout. Anchors which travel out of a
scroll container are flagged, as their position depends on a scroll offset.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package anchor

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.anchor'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.anchor")
}
