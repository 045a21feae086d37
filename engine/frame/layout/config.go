package layout

import (
	"strconv"
	"strings"

	"github.com/npillmayer/outflow/core"
	"github.com/npillmayer/outflow/core/dimen"
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/schuko/gconf"
)

// Config holds the parameters of out-of-flow layout.
type Config struct {
	// Debug turns invariant violations into panics.
	Debug bool
	// MaxScrollbarPasses bounds the relayouts of a box whose scrollbars keep
	// changing.
	MaxScrollbarPasses int
	// ScrollbarWidth is the space a scrollbar takes.
	ScrollbarWidth dimen.Dimen
	// PageSize is the size of a page of a paginated root.
	PageSize frame.PhysicalSize
	// Viewport, if set, is the initial containing block of fixed positioned
	// boxes in a document which is not paginated.
	Viewport frame.PhysicalSize
	// DisableFirstTierCache switches off reuse of layout results.
	DisableFirstTierCache bool
}

// DefaultConfig returns the configuration used if nothing else is set.
func DefaultConfig() Config {
	return Config{
		MaxScrollbarPasses: 4,
		ScrollbarWidth:     15 * dimen.PX,
		PageSize:           frame.PhysicalSize{W: 600 * dimen.PX, H: 800 * dimen.PX},
	}
}

// ConfigFromGlobal starts from DefaultConfig and applies overrides from the
// global configuration. Recognized keys are
//
//     outflow.debug             true | false
//     outflow.scrollbar-passes  number of passes
//     outflow.scrollbar-width   dimension, e.g. 12px
//     outflow.page-size         width x height, e.g. 210mm x 297mm
//     outflow.viewport          width x height
//
// Malformed values are traced and ignored.
func ConfigFromGlobal() Config {
	cfg := DefaultConfig()
	if s := gconf.GetString("outflow.debug"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			cfg.Debug = b
		} else {
			tracer().Errorf("config outflow.debug: %v", err)
		}
	}
	if s := gconf.GetString("outflow.scrollbar-passes"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.MaxScrollbarPasses = n
		} else {
			tracer().Errorf("config outflow.scrollbar-passes: not a positive number: %q", s)
		}
	}
	if s := gconf.GetString("outflow.scrollbar-width"); s != "" {
		if d, pcnt, err := dimen.ParseDimen(s); err == nil && !pcnt {
			cfg.ScrollbarWidth = d
		} else {
			tracer().Errorf("config outflow.scrollbar-width: cannot use %q", s)
		}
	}
	if sz, ok := sizeFromGlobal("outflow.page-size"); ok {
		cfg.PageSize = sz
	}
	if sz, ok := sizeFromGlobal("outflow.viewport"); ok {
		cfg.Viewport = sz
	}
	tracer().Debugf("layout config: %+v", cfg)
	return cfg
}

func sizeFromGlobal(key string) (frame.PhysicalSize, bool) {
	s := gconf.GetString(key)
	if s == "" {
		return frame.PhysicalSize{}, false
	}
	sz, err := ParseSize(s)
	if err != nil {
		tracer().Errorf("config %s: %v", key, err)
		return frame.PhysicalSize{}, false
	}
	return sz, true
}

// ParseSize parses a size written as "width x height", e.g. "210mm x 297mm".
func ParseSize(s string) (frame.PhysicalSize, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 || (parts[1] != "x" && parts[1] != "X") {
		return frame.PhysicalSize{}, errSizeFormat(s)
	}
	w, wp, err := dimen.ParseDimen(parts[0])
	if err != nil || wp {
		return frame.PhysicalSize{}, errSizeFormat(s)
	}
	h, hp, err := dimen.ParseDimen(parts[2])
	if err != nil || hp {
		return frame.PhysicalSize{}, errSizeFormat(s)
	}
	return frame.PhysicalSize{W: w, H: h}, nil
}

func errSizeFormat(s string) error {
	return core.Error(core.EINVALID, "cannot parse size %q, expected <width> x <height>", s)
}
