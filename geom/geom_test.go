package geom

import (
	"errors"
	"math"
	"testing"
)

func TestPointAlt(t *testing.T) {
	p := Pt(1, 2)
	if !p.HasAlt() {
		t.Errorf("default altitude should be 0, not undefined")
	}
	p2 := PtZ(1, 2, math.NaN())
	if p2.HasAlt() {
		t.Errorf("NaN altitude should be undefined")
	}
	if !math.IsNaN(p2.Dist3(Pt(0, 0))) {
		t.Errorf("3D distance involving an undefined altitude must propagate NaN")
	}
}

func TestRectExpandUnion(t *testing.T) {
	r := EmptyRect()
	if !r.Empty() {
		t.Fatalf("EmptyRect should be empty")
	}
	r = r.Expand(Pt(1, 1)).Expand(Pt(3, 5))
	want := Rect{X: 1, Y: 1, W: 2, H: 4}
	if r != want {
		t.Errorf("got %+v want %+v", r, want)
	}
}

func TestLineCloseOpen(t *testing.T) {
	l := Line{Pt(0, 0), Pt(1, 0), Pt(1, 1)}
	closed := l.Close()
	if !closed.IsClosed() {
		t.Fatalf("Close() should close the line")
	}
	if len(closed) != len(l)+1 {
		t.Errorf("Close() should add exactly one point, got %d extra", len(closed)-len(l))
	}
	opened := closed.Open()
	if len(opened) != len(l) {
		t.Errorf("Open() should remove the duplicated terminal point")
	}
	// Opening an already-open line is a no-op.
	reopened := opened.Open()
	if len(reopened) != len(opened) {
		t.Errorf("Open() on an open line must not modify it")
	}
}

func TestRectCropFourSides(t *testing.T) {
	cutter := Rect{X: 0, Y: 0, W: 10, H: 10}
	line := Line{Pt(-5, 5), Pt(15, 5)}
	cropped := RectCrop(cutter, line, false)
	if len(cropped) != 2 {
		t.Fatalf("expected 2 boundary points, got %d: %+v", len(cropped), cropped)
	}
	if cropped[0].X != 0 || cropped[1].X != 10 {
		t.Errorf("crop points should sit exactly on cutter sides, got %+v", cropped)
	}
}

func TestRDPPreservesEndpoints(t *testing.T) {
	l := Line{Pt(0, 0), Pt(1, 0.01), Pt(2, 0), Pt(3, 5), Pt(4, 0)}
	s := l.RDP(0.5)
	if s[0] != l[0] || s[len(s)-1] != l[len(l)-1] {
		t.Errorf("RDP must preserve endpoints")
	}
	if len(s) >= len(l) {
		t.Errorf("RDP should simplify: got %d points from %d", len(s), len(l))
	}
}

func TestConvexHullSquareWithInteriorPoint(t *testing.T) {
	l := Line{Pt(0, 0), Pt(4, 0), Pt(4, 4), Pt(0, 4), Pt(2, 2)}
	hull, err := l.ConvexHull()
	if err != nil {
		t.Fatalf("ConvexHull: %v", err)
	}
	for _, p := range hull {
		if p == Pt(2, 2) {
			t.Errorf("interior point must not appear on the hull")
		}
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	l := Line{Pt(1, 1), Pt(1, 1)}
	_, err := l.ConvexHull()
	var degenErr *ErrDegenerate
	if !errors.As(err, &degenErr) {
		t.Fatalf("expected ErrDegenerate for a single distinct point, got %v", err)
	}
}

func TestRectSplitCroppedClosedRingStaysConnected(t *testing.T) {
	cutter := Rect{X: 0, Y: 0, W: 10, H: 10}

	// A polygon that fully engulfs the cutter: the clipped boundary is
	// exactly the cutter rectangle, a single already-connected ring
	// that must not be shattered into per-vertex fragments just
	// because every edge happens to run along the cutter boundary.
	engulfing := Line{Pt(-5, -5), Pt(-5, 15), Pt(15, 15), Pt(15, -5)}
	cropped := RectCrop(cutter, engulfing, true)
	parts := RectSplitCropped(cutter, cropped, true)
	if len(parts) != 1 {
		t.Fatalf("expected a single connected ring, got %d parts: %+v", len(parts), parts)
	}
	if len(parts[0]) < 4 {
		t.Errorf("ring degenerated to too few points: %+v", parts[0])
	}

	// A polygon overlapping only one corner of the cutter: the clipped
	// boundary runs along two cutter sides (left and bottom) but is
	// still one connected ring.
	corner := Line{Pt(-5, -5), Pt(-5, 5), Pt(5, 5), Pt(5, -5)}
	cropped2 := RectCrop(cutter, corner, true)
	parts2 := RectSplitCropped(cutter, cropped2, true)
	if len(parts2) != 1 {
		t.Fatalf("expected a single connected ring for a corner overlap, got %d parts: %+v", len(parts2), parts2)
	}
}

func TestNearestPointOnSegment(t *testing.T) {
	l := Line{Pt(0, 0), Pt(10, 0)}
	p, d := l.NearestPoint(Pt(5, 3))
	if p != Pt(5, 0) {
		t.Errorf("expected nearest point (5,0), got %+v", p)
	}
	if d != 3 {
		t.Errorf("expected distance 3, got %v", d)
	}
}
