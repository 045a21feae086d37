/*
Package css parses CSS text into computed style.

Parsing of CSS syntax is done by douceur. This package interprets declarations
for the properties layout cares about, and collects `@position-try` blocks
into a style.TryRegistry:

    @position-try below {
        top: anchor(--a bottom);
        left: anchor(--a left);
    }

Consecutive blocks with the same name form the entries of one rule, in
document order.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package css

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'outflow.style'.
func tracer() tracing.Trace {
	return tracing.Select("outflow.style")
}
