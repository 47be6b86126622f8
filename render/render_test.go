package render

import (
	"testing"

	"vmap2toolkit/conv"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

func TestRenderDrawsLineStep(t *testing.T) {
	m := vmap2.NewMap()
	typ := vmap2.MakeType(vmap2.ClassLine, 1)
	o := vmap2.NewObj(typ)
	o.Coords = geom.MultiLine{{{X: 2, Y: 10}, {X: 18, Y: 10}}}
	if _, err := m.Add(o); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ss, err := ParseStylesheet("line:1\n + stroke #ff0000 3\n", nil)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}

	r := &Renderer{Style: ss, Map: m, Conv: conv.Identity{}}
	canvas, err := r.Render(geom.Rect{X: 0, Y: 0, W: 20, H: 20}, 20, 20)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	_, _, _, a := canvas.Img.At(10, 10).RGBA()
	if a == 0 {
		t.Errorf("expected the stroked line to paint the canvas center")
	}
}

func TestRenderMinSCFallbackPaintsBackground(t *testing.T) {
	m := vmap2.NewMap()
	ss, err := ParseStylesheet("minsc 1e12\nminsc_color #112233\nline:1\n + stroke black 1\n", nil)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	r := &Renderer{Style: ss, Map: m, Conv: conv.Identity{}}
	canvas, err := r.Render(geom.Rect{X: 0, Y: 0, W: 10, H: 10}, 10, 10)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	red, green, blue, a := canvas.Img.At(5, 5).RGBA()
	if a == 0 {
		t.Fatalf("expected minsc_color background painted")
	}
	if uint8(red>>8) != 0x11 || uint8(green>>8) != 0x22 || uint8(blue>>8) != 0x33 {
		t.Errorf("expected minsc_color #112233, got r=%d g=%d b=%d", red>>8, green>>8, blue>>8)
	}
}

func TestRenderTracesDiagnostics(t *testing.T) {
	m := vmap2.NewMap()
	ss, err := ParseStylesheet("line:1\n + stroke black 1\n", nil)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	var lines []string
	r := &Renderer{Style: ss, Map: m, Conv: conv.Identity{}, Diag: func(s string) { lines = append(lines, s) }}
	if _, err := r.Render(geom.Rect{X: 0, Y: 0, W: 10, H: 10}, 10, 10); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(lines) == 0 {
		t.Errorf("expected diagnostic trace lines")
	}
}
