/*
Package style holds computed style for boxes.

Computed style is typed: lengths are option-like values which may be unset,
`auto`, fixed, a percentage, content-sized, or an `anchor()` reference to the
geometry of another box. Parsing of CSS text lives in sub-package css.

Position-fallback rules (`@position-try`) are kept in a TryRegistry. A box
referencing a rule by name via `position-fallback` is laid out with the rule's
entries in document order until one of them fits its containing block.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.style'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.style")
}
