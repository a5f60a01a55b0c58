package render

import (
	"image/color"
	"testing"
	"time"
)

func TestColorForIsDeterministic(t *testing.T) {
	now := time.Unix(100, 0)
	base := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	for _, mode := range []ColorMode{ColorSolid, ColorCycle, ColorRandom} {
		a := ColorFor(7, now, mode, base)
		b := ColorFor(7, now, mode, base)
		if a != b {
			t.Errorf("mode %s: same inputs produced %v and %v", mode, a, b)
		}
	}
}

func TestSolidModeUsesBaseColor(t *testing.T) {
	base := color.RGBA{R: 61, G: 220, B: 132, A: 255}
	if got := ColorFor(3, time.Unix(5, 0), ColorSolid, base); got != base {
		t.Errorf("expected base color %v, got %v", base, got)
	}
}

func TestRandomModeSeparatesIdentities(t *testing.T) {
	now := time.Unix(5, 0)
	a := ColorFor(1, now, ColorRandom, color.RGBA{})
	b := ColorFor(2, now, ColorRandom, color.RGBA{})
	if a == b {
		t.Error("adjacent ids should land on distinct hues")
	}
	// Identity hue is stable over time
	later := ColorFor(1, now.Add(time.Minute), ColorRandom, color.RGBA{})
	if a != later {
		t.Errorf("per-identity hue must not vary with time: %v vs %v", a, later)
	}
}

func TestCycleModeVariesWithTime(t *testing.T) {
	a := ColorFor(1, time.Unix(5, 0), ColorCycle, color.RGBA{})
	b := ColorFor(1, time.Unix(6, 0), ColorCycle, color.RGBA{})
	if a == b {
		t.Error("cycle mode should move the hue over a one second gap")
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#3ddc84")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := color.RGBA{R: 0x3d, G: 0xdc, B: 0x84, A: 255}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, err := ParseHexColor("nope"); err == nil {
		t.Fatal("expected error for malformed color")
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Fatal("expected error for short color")
	}
}

func TestParseMode(t *testing.T) {
	for _, raw := range []string{"solid", "cycle", "random"} {
		if _, err := ParseMode(raw); err != nil {
			t.Errorf("mode %q should parse: %v", raw, err)
		}
	}
	if mode, err := ParseMode(""); err != nil || mode != ColorSolid {
		t.Errorf("empty mode should default to solid, got %v, %v", mode, err)
	}
	if _, err := ParseMode("plaid"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
