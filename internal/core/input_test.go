package core

import "testing"

func TestParseActionRoundTrip(t *testing.T) {
	for a := ActionNone; a <= ActionQuit; a++ {
		parsed, ok := ParseAction(a.String())
		if !ok {
			t.Errorf("ParseAction(%q) failed", a.String())
			continue
		}
		if parsed != a {
			t.Errorf("ParseAction(%q) = %v, expected %v", a.String(), parsed, a)
		}
	}
}

func TestParseActionUnknown(t *testing.T) {
	if _, ok := ParseAction("jump"); ok {
		t.Error("ParseAction should reject unknown names")
	}
	if Action(99).String() != "unknown" {
		t.Errorf("unknown action String() = %q", Action(99).String())
	}
}
