/*
Package fragment implements the fragment tree produced by layout.

Layout of a box produces one or more fragments, one per fragmentainer (column
or page) the box is laid out into. Fragments are created with a Builder and
owned by an Arena, which hands out slot references. Parents refer to their
children by reference only, and so do all back references from positioned
boxes to containing blocks.

Fragments are immutable once built. The one sanctioned mutation is replacing
a fragment by a modified clone: the arena swaps the slot, the old fragment is
superseded and every reference to the slot now leads to the clone.

Builders also carry the bookkeeping of out-of-flow positioned boxes: boxes
waiting for their containing block (candidates), boxes handed back to
ancestors, and boxes placed into fragmentainers by the fragmentation context
root (fragmentainer descendants).

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fragment

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.fragment'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.fragment")
}
