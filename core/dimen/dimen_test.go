package dimen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.core")
	defer teardown()
	//
	d, _, err := ParseDimen("12px")
	if err != nil {
		t.Errorf("(1) %s", err.Error())
	} else if d != 12*BP {
		t.Errorf("(1) expected d to be 12bp (%d), is %d", 12*BP, d)
	}
	//
	d, _, err = ParseDimen("0")
	if err != nil {
		t.Errorf("(2) %s", err.Error())
	} else if d != 0 {
		t.Errorf("(2) expected d to be 0, is %d", d)
	}
	//
	d, ispcnt, err := ParseDimen("20%")
	if err != nil {
		t.Errorf("(3) %s", err.Error())
	} else if ispcnt != true || d != 20 {
		t.Errorf("(3) expected percentage 20, is %d (%v)", d, ispcnt)
	}
	//
	if _, _, err = ParseDimen("12furlong"); err == nil {
		t.Errorf("(4) expected unknown unit to be rejected")
	}
	if _, _, err = ParseDimen("99999999px"); err == nil {
		t.Errorf("(5) expected overflowing dimension to be rejected")
	}
}

func TestClampAndPercent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.core")
	defer teardown()
	//
	if c := Clamp(50*PX, 10*PX, 20*PX); c != 20*PX {
		t.Errorf("expected clamp to upper bound, have %s", c)
	}
	if c := Clamp(50*PX, 30*PX, 20*PX); c != 30*PX {
		t.Errorf("expected lower bound to win, have %s", c)
	}
	if p := Percent(800*PX, 50); p != 400*PX {
		t.Errorf("expected 50%% of 800px to be 400px, have %s", p)
	}
	a, b := Halve(5 * SP)
	if a != 2 || b != 3 {
		t.Errorf("expected halves 2+3, have %d+%d", a, b)
	}
	if s := (7 * PX).String(); s != "7px" {
		t.Errorf("expected 7px, have %s", s)
	}
}
