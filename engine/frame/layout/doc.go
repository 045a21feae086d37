/*
Package layout places out-of-flow positioned boxes.

Overview

Boxes with `position: absolute` or `position: fixed` are taken out of normal
flow. Normal flow records them as candidates on the fragment builder of the
box which laid them out, together with their static position. Once the
builder of a containing block is done with its in-flow content, a Part
resolves the containing block rectangle of each candidate, computes size and
offset (trying position-fallback styles if the box has any), lays the box out
and adds the resulting fragment as a child.

Inside a fragmentation context (multi-column containers, paginated roots),
positioned boxes travel up to the fragmentation context root as fragmentainer
descendants. The root's Part places them into the columns or pages they
start in, continues them in subsequent fragmentainers and adds fragmentainers
if they run out. Fixed positioned boxes of a paginated document are repeated
on every page.

Part works against the capability interface Algorithm, which lays out a
single box in a constraint space. Package flow provides an implementation for
the box kinds of package boxtree.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.frame.layout'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.frame.layout")
}
