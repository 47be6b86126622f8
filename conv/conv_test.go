package conv

import (
	"math"
	"testing"

	"vmap2toolkit/geom"
)

func TestIdentityPassthrough(t *testing.T) {
	id := Identity{}
	p := geom.Pt(12.5, -3.25)
	out, err := id.FrwPt(p)
	if err != nil || out != p {
		t.Fatalf("identity forward changed point: %+v (err=%v)", out, err)
	}
	out, err = id.BckPt(p)
	if err != nil || out != p {
		t.Fatalf("identity backward changed point: %+v (err=%v)", out, err)
	}
}

func TestAffineRoundTrip(t *testing.T) {
	a := NewAffineRotation(geom.Pt(0, 0), math.Pi/4)
	p := geom.Pt(3, 4)
	fwd, err := a.FrwPt(p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := a.BckPt(fwd)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if back.Dist2(p) > 1e-12 {
		t.Errorf("round trip mismatch: got %+v want %+v", back, p)
	}
}

func TestAffineFromPoints(t *testing.T) {
	src := []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(0, 1)}
	dst := []geom.Point{geom.Pt(10, 10), geom.Pt(12, 10), geom.Pt(10, 13)}
	a, err := NewAffineFromPoints(src, dst)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	for i, s := range src {
		got, err := a.FrwPt(s)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		if got.Dist2(dst[i]) > 1e-12 {
			t.Errorf("point %d: got %+v want %+v", i, got, dst[i])
		}
	}
}

func TestProjWebMercatorRoundTrip(t *testing.T) {
	p, err := NewProj("WGS", "WEB", true)
	if err != nil {
		t.Fatalf("new proj: %v", err)
	}
	src := geom.Pt(24.9, 60.17) // Helsinki
	fwd, err := p.FrwPt(src)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := p.BckPt(fwd)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if math.Abs(back.X-src.X) > 1e-6 || math.Abs(back.Y-src.Y) > 1e-6 {
		t.Errorf("round trip mismatch: got %+v want %+v", back, src)
	}
}

func TestLon2Lon0Zones(t *testing.T) {
	cases := []struct {
		lon  float64
		want int
	}{
		{27.5, 27},
		{0, 3},
		{-179, -177},
		{179, 177},
	}
	for _, c := range cases {
		got := Lon2Lon0(c.lon)
		if got != c.want {
			t.Errorf("Lon2Lon0(%v) = %v, want %v", c.lon, got, c.want)
		}
	}
}

func TestSUZoneRoundTrip(t *testing.T) {
	p, err := NewProj("WGS", "SU27", true)
	if err != nil {
		t.Fatalf("new proj: %v", err)
	}
	src := geom.Pt(27.5, 60.0)
	fwd, err := p.FrwPt(src)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := p.BckPt(fwd)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if math.Abs(back.X-src.X) > 1e-6 || math.Abs(back.Y-src.Y) > 1e-6 {
		t.Errorf("round trip mismatch: got %+v want %+v", back, src)
	}
}

func TestNewSUAutoPicksZoneFromLongitude(t *testing.T) {
	p, err := NewSUAuto(27.5, "WGS", true)
	if err != nil {
		t.Fatalf("new su auto: %v", err)
	}
	if p.src != "SU27" {
		t.Errorf("expected automatic zone SU27, got %q", p.src)
	}
}

func TestComposite(t *testing.T) {
	rot := NewAffineRotation(geom.Pt(0, 0), math.Pi/2)
	scale := NewAffineIdentity()
	scale.A, scale.E = 2, 2
	c := NewComposite(rot, scale)
	p := geom.Pt(1, 0)
	fwd, err := c.FrwPt(p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	// rotate 90ccw: (1,0)->(0,1), then scale by 2 -> (0,2)
	if fwd.Dist2(geom.Pt(0, 2)) > 1e-12 {
		t.Errorf("got %+v want (0,2)", fwd)
	}
	back, err := c.BckPt(fwd)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if back.Dist2(p) > 1e-12 {
		t.Errorf("round trip mismatch: got %+v want %+v", back, p)
	}
}

func TestFrwAccInsertsMidpointsOnCurve(t *testing.T) {
	web, err := NewProj("WGS", "WEB", true)
	if err != nil {
		t.Fatalf("new proj: %v", err)
	}
	l := geom.Line{geom.Pt(-10, 0), geom.Pt(10, 80)}
	refined, err := FrwAcc(web, l, 1)
	if err != nil {
		t.Fatalf("frwacc: %v", err)
	}
	if len(refined) <= 2 {
		t.Errorf("expected bisection to insert points for a curved span, got %d points", len(refined))
	}
	if refined[0].Dist2(mustFrw(t, web, l[0])) > 1e-9 {
		t.Errorf("first point should match direct forward conversion")
	}
}

func mustFrw(t *testing.T, c Conversion, p geom.Point) geom.Point {
	t.Helper()
	out, err := c.FrwPt(p)
	if err != nil {
		t.Fatalf("frw: %v", err)
	}
	return out
}

func TestGeoDist2DKnownDistance(t *testing.T) {
	helsinki := geom.Pt(24.9384, 60.1699)
	tallinn := geom.Pt(24.7536, 59.4370)
	d := GeoDist2D(helsinki, tallinn)
	// great-circle distance is roughly 80km; allow generous tolerance
	// since GeoEarthRadius is a sphere, not the WGS84 ellipsoid.
	if d < 70000 || d > 90000 {
		t.Errorf("expected ~80km, got %v m", d)
	}
}

func TestGeoNearestPoint(t *testing.T) {
	l := geom.Line{geom.Pt(0, 0), geom.Pt(1, 1), geom.Pt(2, 2)}
	nearest, d := GeoNearestPoint(l, geom.Pt(1.01, 1.01))
	if nearest != geom.Pt(1, 1) {
		t.Errorf("expected nearest vertex (1,1), got %+v", nearest)
	}
	if d <= 0 {
		t.Errorf("expected positive distance, got %v", d)
	}
}
