package render

import (
	"image/color"
	"testing"

	"vmap2toolkit/geom"
)

func TestFillPolygonPaintsInterior(t *testing.T) {
	c := NewCanvas(20, 20)
	ring := geom.Line{{X: 2, Y: 2}, {X: 18, Y: 2}, {X: 18, Y: 18}, {X: 2, Y: 18}}
	c.FillPolygon(geom.MultiLine{ring}, color.NRGBA{R: 255, A: 255})

	r, _, _, a := c.Img.At(10, 10).RGBA()
	if a == 0 || r == 0 {
		t.Errorf("expected interior pixel painted, got r=%d a=%d", r, a)
	}
	_, _, _, a0 := c.Img.At(0, 0).RGBA()
	if a0 != 0 {
		t.Errorf("expected corner untouched, got a=%d", a0)
	}
}

func TestStrokeLinePaintsAlongPath(t *testing.T) {
	c := NewCanvas(20, 20)
	line := geom.Line{{X: 1, Y: 10}, {X: 18, Y: 10}}
	c.StrokeLine(line, 3, color.NRGBA{B: 255, A: 255})

	_, _, b, a := c.Img.At(10, 10).RGBA()
	if a == 0 || b == 0 {
		t.Errorf("expected stroked pixel on the line, got b=%d a=%d", b, a)
	}
	_, _, _, aFar := c.Img.At(10, 0).RGBA()
	if aFar != 0 {
		t.Errorf("expected pixel far from line untouched")
	}
}

func TestDrawTextPaintsSomething(t *testing.T) {
	c := NewCanvas(60, 20)
	c.DrawText("AB", 5, 12, 0, color.NRGBA{G: 255, A: 255})

	any := false
	for y := 0; y < 20 && !any; y++ {
		for x := 0; x < 60; x++ {
			_, _, _, a := c.Img.At(x, y).RGBA()
			if a != 0 {
				any = true
				break
			}
		}
	}
	if !any {
		t.Errorf("expected DrawText to paint at least one pixel")
	}
}
