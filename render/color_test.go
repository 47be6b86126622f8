package render

import (
	"image/color"
	"testing"
)

func TestParseColorNamed(t *testing.T) {
	c, err := ParseColor("Red")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("got %+v", c)
	}
}

func TestParseColorHex6(t *testing.T) {
	c, err := ParseColor("#336699")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	want := color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}
	if c != want {
		t.Errorf("got %+v want %+v", c, want)
	}
}

func TestParseColorHex8(t *testing.T) {
	c, err := ParseColor("#11223344")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	want := color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if c != want {
		t.Errorf("got %+v want %+v", c, want)
	}
}

func TestParseColorBad(t *testing.T) {
	for _, s := range []string{"notacolor", "#12345", "#gggggg"} {
		if _, err := ParseColor(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
