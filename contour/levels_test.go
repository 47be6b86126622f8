package contour

import "testing"

func slopeGrid() *Grid {
	g := NewGrid(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			g.Set(x, y, float64(x)) // height increases left to right
		}
	}
	return g
}

func TestLevelsFindsVerticalContour(t *testing.T) {
	g := slopeGrid()
	lines, err := Levels(g, 2, 2, 1, false)
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	ml, ok := lines[2]
	if !ok || len(ml) == 0 {
		t.Fatalf("expected a contour at level 2, got %+v", lines)
	}
	for _, l := range ml {
		for _, p := range l {
			if p.X < 1.9 || p.X > 2.1 {
				t.Errorf("expected contour points near x=2, got %+v", p)
			}
		}
	}
}

func TestLevelsRejectsNonPositiveStep(t *testing.T) {
	g := slopeGrid()
	if _, err := Levels(g, 0, 4, 0, false); err == nil {
		t.Errorf("expected error for non-positive step")
	}
}

func TestLevelsRejectsMinGreaterThanMax(t *testing.T) {
	g := slopeGrid()
	if _, err := Levels(g, 4, 1, 1, false); err == nil {
		t.Errorf("expected error for min > max")
	}
}

func TestVTolFilterNoop(t *testing.T) {
	g := slopeGrid()
	lines, err := Levels(g, 2, 2, 1, false)
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	before := len(lines[2])
	VTolFilter(g, lines, 0.01)
	if len(lines[2]) != before {
		t.Errorf("expected VTolFilter to preserve line count on a steep slope")
	}
}
