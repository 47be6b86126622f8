package geomap

import (
	"math"
	"testing"

	"vmap2toolkit/geom"
)

func TestNomToRangeFIBaseSheet(t *testing.T) {
	r, sc, err := NomToRangeFI("V5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc != Scale200k {
		t.Errorf("expected Scale200k, got %v", sc)
	}
	if r.W != 192000 || r.H != 96000 {
		t.Errorf("unexpected sheet size: %+v", r)
	}
}

func TestNomToRangeFISubdivision(t *testing.T) {
	r, sc, err := NomToRangeFI("V5114A")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc != Scale10k {
		t.Errorf("expected Scale10k, got %v", sc)
	}
	if r.W <= 0 || r.H <= 0 {
		t.Errorf("degenerate sheet: %+v", r)
	}
}

func TestNomToRangeSUBaseSheet(t *testing.T) {
	r, sc, err := NomToRangeSU("P-37")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc != Scale1M {
		t.Errorf("expected Scale1M, got %v", sc)
	}
	if r.W != 6 || r.H != 4 {
		t.Errorf("unexpected 1:1M sheet extent: %+v", r)
	}
}

func TestNomToRangeSUSubdivision(t *testing.T) {
	r, sc, err := NomToRangeSU("P-37-144-A-a-3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc != Scale10k {
		t.Errorf("expected Scale10k, got %v", sc)
	}
	if r.W <= 0 || r.H <= 0 {
		t.Errorf("degenerate sheet: %+v", r)
	}
}

func TestTileRoundTrip(t *testing.T) {
	tc := NewTileCalc()
	r := tc.TileToRange(geom.Pt(10, 20), 6)
	back := tc.RangeToTiles(r, 6)
	if math.Abs(back.X-10) > 1 || math.Abs(back.Y-20) > 1 {
		t.Errorf("tile round trip drifted: %+v", back)
	}
}

func TestGeoMapConvAffineOnly(t *testing.T) {
	m := New()
	m.AddRef(geom.Pt(0, 0), geom.Pt(10, 50))
	m.AddRef(geom.Pt(100, 0), geom.Pt(11, 50))
	m.AddRef(geom.Pt(0, 100), geom.Pt(10, 49))
	c, err := m.Conv()
	if err != nil {
		t.Fatalf("conv: %v", err)
	}
	got, err := c.FrwPt(geom.Pt(0, 0))
	if err != nil {
		t.Fatalf("frw: %v", err)
	}
	if got.Dist2(geom.Pt(10, 50)) > 1e-9 {
		t.Errorf("got %+v want (10,50)", got)
	}
}

func TestGeoMapConvRequiresThreePoints(t *testing.T) {
	m := New()
	m.AddRef(geom.Pt(0, 0), geom.Pt(10, 50))
	if _, err := m.Conv(); err == nil {
		t.Errorf("expected error with only 1 reference point")
	}
}

func TestNewFromWebHasSquareImage(t *testing.T) {
	m := NewFromWeb()
	if m.ImageSize.X != m.ImageSize.Y {
		t.Errorf("expected square image, got %+v", m.ImageSize)
	}
	if len(m.Ref) != 4 {
		t.Errorf("expected 4 reference points, got %d", len(m.Ref))
	}
}
