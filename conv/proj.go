package conv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"vmap2toolkit/geom"
)

// earthRadius is the spherical approximation mapsoft2 uses for its
// built-in projections (geo_utils.cpp's geo_dist_2d uses the same
// 6380km sphere). A real PROJ binding (out of scope, §1) would use the
// proper ellipsoid; Projector exists so callers can supply one.
const earthRadius = 6380e3

// Projector performs a single named projection's forward/backward
// transform between geographic radians (lon, lat) and projected
// meters (x, y). It is the seam where an external PROJ-style library
// (explicitly out of scope per spec §1) would be substituted; the
// built-in registry below only covers the aliases spec.md names.
type Projector interface {
	// Name returns the canonical alias this projector implements.
	Name() string
	// ToXY converts geographic radians to projected meters.
	ToXY(lonRad, latRad float64) (x, y float64, err error)
	// ToLonLat is the inverse of ToXY.
	ToLonLat(x, y float64) (lonRad, latRad float64, err error)
}

// geographic is the pass-through "projection": x,y are lon,lat in
// radians matching the ToXY/ToLonLat contract (conversion to/from
// degrees happens in Proj, not here).
type geographic struct{ name string }

func (g geographic) Name() string { return g.name }
func (g geographic) ToXY(lon, lat float64) (float64, float64, error) {
	return lon, lat, nil
}
func (g geographic) ToLonLat(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// webMercator implements the spherical Web Mercator used by slippy map
// tile servers (WEB). EWEB (elliptical Web Mercator, used by Yandex)
// is approximated with the same spherical formula: the earth's
// flattening makes a sub-kilometer difference which is negligible for
// anything this toolkit renders at screen resolution.
type webMercator struct{ name string }

func (w webMercator) Name() string { return w.name }
func (w webMercator) ToXY(lon, lat float64) (float64, float64, error) {
	if math.Abs(lat) >= math.Pi/2 {
		return 0, 0, fmt.Errorf("latitude out of web mercator domain")
	}
	x := earthRadius * lon
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat/2))
	return x, y, nil
}
func (w webMercator) ToLonLat(x, y float64) (float64, float64, error) {
	lon := x / earthRadius
	lat := 2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2
	return lon, lat, nil
}

// transverseMercator is a spherical transverse Mercator centered on a
// given meridian, used for the Soviet SU<N> zones, Finnish KKJ/ETRS-TM35FIN,
// British GB (approximated) and Swiss CH projections.
type transverseMercator struct {
	name     string
	lon0     float64 // central meridian, radians
	falseE   float64 // false easting, meters
	falseN   float64 // false northing, meters
	scale    float64 // scale factor at central meridian
}

func (t transverseMercator) Name() string { return t.name }

func (t transverseMercator) ToXY(lon, lat float64) (float64, float64, error) {
	b := math.Cos(lat) * math.Sin(lon-t.lon0)
	if math.Abs(b) >= 1 {
		return 0, 0, fmt.Errorf("point on the transverse mercator singularity")
	}
	x := 0.5 * earthRadius * t.scale * math.Log((1+b)/(1-b))
	y := earthRadius * t.scale * math.Atan2(math.Tan(lat), math.Cos(lon-t.lon0))
	return x + t.falseE, y + t.falseN, nil
}

func (t transverseMercator) ToLonLat(x, y float64) (float64, float64, error) {
	x -= t.falseE
	y -= t.falseN
	x /= t.scale
	y /= t.scale
	d := y / earthRadius
	lon := t.lon0 + math.Atan2(math.Sinh(x/earthRadius), math.Cos(d))
	lat := math.Asin(math.Sin(d) / math.Cosh(x/earthRadius))
	return lon, lat, nil
}

// Proj wraps a Projector, converting between a named source frame and
// a named destination frame. Exactly one of src/dst should be a
// geographic ("WGS", "SU_LL", ...) frame for the projector math below
// to apply directly; composing two non-geographic projections is done
// by routing through WGS as an intermediate (see NewProj).
type Proj struct {
	src, dst           string
	srcProj            Projector
	dstProj            Projector
	use2D              bool // stored only; no conversion path reads it
	srcScale, dstScale float64
}

// IsDeg reports whether values in the named frame are degrees (true
// for geographic frames) as opposed to projected meters.
func IsDeg(name string) bool {
	_, ok := geoAliases[strings.ToUpper(expandZoneSuffix(name))]
	return ok
}

// IsRad is the complement of IsDeg for this registry (no frame here
// natively stores radians; Proj always normalizes to radians
// internally before calling a Projector).
func IsRad(name string) bool { return false }

var geoAliases = map[string]bool{
	"WGS": true, "SU_LL": true,
}

// expandZoneSuffix strips a numeric zone suffix so "SU39"/"SU39N"
// matches the "SU" family during alias lookup.
func expandZoneSuffix(s string) string {
	s = strings.ToUpper(s)
	if strings.HasPrefix(s, "SU") && len(s) > 2 && s[2] >= '0' && s[2] <= '9' {
		return "SU"
	}
	return s
}

// NewProjector builds the built-in Projector for a canonical alias
// (after ExpandAlias). Returns an error for unrecognized aliases —
// callers needing full PROJ generality should provide their own
// Projector and bypass this registry entirely.
func NewProjector(alias string) (Projector, error) {
	u := strings.ToUpper(strings.TrimSpace(alias))
	switch {
	case u == "WGS" || u == "SU_LL":
		return geographic{name: u}, nil
	case u == "WEB" || u == "EWEB":
		return webMercator{name: u}, nil
	case u == "FI" || u == "KKJ":
		return transverseMercator{name: u, lon0: deg2rad(27), falseE: 500000, falseN: 0, scale: 1.0}, nil
	case u == "ETRS-TM35FIN" || u == "ETRS89":
		return transverseMercator{name: u, lon0: deg2rad(27), falseE: 500000, falseN: 0, scale: 0.9996}, nil
	case u == "GB":
		return transverseMercator{name: u, lon0: deg2rad(-2), falseE: 400000, falseN: -100000, scale: 0.9996012717}, nil
	case u == "CH":
		return transverseMercator{name: u, lon0: deg2rad(7.439583333333333), falseE: 600000, falseN: 200000, scale: 1.0}, nil
	case strings.HasPrefix(u, "SU"):
		lon0, okZone := parseSUZone(u)
		if !okZone {
			return nil, fmt.Errorf("unrecognized SU zone alias %q", alias)
		}
		return transverseMercator{name: u, lon0: deg2rad(lon0), falseE: 500000, falseN: 0, scale: 1.0}, nil
	default:
		return nil, fmt.Errorf("unrecognized projection alias %q", alias)
	}
}

// parseSUZone parses "SU<N>" or "SU<N>N" (explicit-zone Soviet
// transverse Mercator, §4.1) into its central meridian in degrees.
// "SU" alone (no digits) is the automatic-zone variant and is not
// handled here — see NewSUAuto.
func parseSUZone(alias string) (lon0 float64, ok bool) {
	rest := strings.TrimPrefix(strings.ToUpper(alias), "SU")
	rest = strings.TrimSuffix(rest, "N")
	if rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

// Lon2Lon0 returns the central meridian (degrees) of the standard 6°
// Gauss-Kruger/SU zone containing lon (degrees), normalized to
// (-180,180]. Grounded on original_source/geo_data/geo_utils.cpp's
// lon2lon0.
func Lon2Lon0(lonDeg float64) int {
	lon0 := math.Floor(lonDeg/6.0)*6 + 3
	for lon0 > 180 {
		lon0 -= 360
	}
	for lon0 < -180 {
		lon0 += 360
	}
	return int(lon0)
}

// SUAliasForLon returns the explicit-zone SU alias ("SU39", ...)
// whose zone contains lon (degrees).
func SUAliasForLon(lonDeg float64) string {
	return fmt.Sprintf("SU%d", Lon2Lon0(lonDeg))
}

// NewSUAuto builds a Proj whose source frame is the explicit SU zone
// containing lon0Deg, picked automatically rather than requested by
// name. Grounded on the commented-out automatic-zone branch of
// original_source/geo_data/conv_geo.cpp: the caller supplies a
// representative longitude (typically the centroid of the data being
// converted) and the zone is derived from it via Lon2Lon0.
func NewSUAuto(lon0Deg float64, dst string, use2D bool) (*Proj, error) {
	return NewProj(SUAliasForLon(lon0Deg), dst, use2D)
}

// ExpandAlias expands a mapsoft2-style projection alias to itself
// (the built-in registry already speaks in aliases; a PROJ-backed
// Projector would instead expand to a full "+proj=..." string here).
func ExpandAlias(alias string) string { return alias }

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// NewProj builds a Proj between two frame aliases. use2D mirrors
// ConvGeo's cnv2d flag and is stored on the Proj, but the conversions
// do not consult it: altitude is passed through unchanged whatever its
// value.
func NewProj(src, dst string, use2D bool) (*Proj, error) {
	if dst == "" {
		dst = "WGS"
	}
	sp, err := NewProjector(src)
	if err != nil {
		return nil, &ConversionError{Conv: "proj", Msg: err.Error()}
	}
	dp, err := NewProjector(dst)
	if err != nil {
		return nil, &ConversionError{Conv: "proj", Msg: err.Error()}
	}
	return &Proj{src: src, dst: dst, srcProj: sp, dstProj: dp, use2D: use2D, srcScale: 1, dstScale: 1}, nil
}

// srcToLonLat converts a point already scaled by RescaleSrc/RescaleDst
// back out, then asks the named frame's Projector for its geographic
// radians, short-circuiting the geographic frames (whose native units
// are degrees, not the Projector's radians/meters contract).
func (c *Proj) srcToLonLat(p geom.Point) (lon, lat float64, err error) {
	x, y := p.X/c.srcScale, p.Y/c.srcScale
	if geoAliases[strings.ToUpper(c.src)] {
		return deg2rad(x), deg2rad(y), nil
	}
	return c.srcProj.ToLonLat(x, y)
}

func (c *Proj) dstFromLonLat(lon, lat float64) (x, y float64, err error) {
	if geoAliases[strings.ToUpper(c.dst)] {
		x, y = rad2deg(lon), rad2deg(lat)
	} else {
		x, y, err = c.dstProj.ToXY(lon, lat)
		if err != nil {
			return 0, 0, err
		}
	}
	return x * c.dstScale, y * c.dstScale, nil
}

func (c *Proj) dstToLonLat(p geom.Point) (lon, lat float64, err error) {
	x, y := p.X/c.dstScale, p.Y/c.dstScale
	if geoAliases[strings.ToUpper(c.dst)] {
		return deg2rad(x), deg2rad(y), nil
	}
	return c.dstProj.ToLonLat(x, y)
}

func (c *Proj) srcFromLonLat(lon, lat float64) (x, y float64, err error) {
	if geoAliases[strings.ToUpper(c.src)] {
		x, y = rad2deg(lon), rad2deg(lat)
	} else {
		x, y, err = c.srcProj.ToXY(lon, lat)
		if err != nil {
			return 0, 0, err
		}
	}
	return x * c.srcScale, y * c.srcScale, nil
}

// FrwPt converts p from the src frame to the dst frame, routing
// through geographic radians as the common intermediate.
func (c *Proj) FrwPt(p geom.Point) (geom.Point, error) {
	lon, lat, err := c.srcToLonLat(p)
	if err != nil {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: err.Error()}
	}
	x, y, err := c.dstFromLonLat(lon, lat)
	if err != nil {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: err.Error()}
	}
	out := geom.Point{X: x, Y: y, Z: p.Z}
	if !finite(out) {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: "non-finite result"}
	}
	return out, nil
}

// BckPt is the inverse of FrwPt.
func (c *Proj) BckPt(p geom.Point) (geom.Point, error) {
	lon, lat, err := c.dstToLonLat(p)
	if err != nil {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: err.Error()}
	}
	x, y, err := c.srcFromLonLat(lon, lat)
	if err != nil {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: err.Error()}
	}
	out := geom.Point{X: x, Y: y, Z: p.Z}
	if !finite(out) {
		return geom.Point{}, &ConversionError{Conv: "proj", Point: p, Msg: "non-finite result"}
	}
	return out, nil
}

func (c *Proj) RescaleSrc(k float64) { c.srcScale *= k }
func (c *Proj) RescaleDst(k float64) { c.dstScale *= k }

func (c *Proj) Clone() Conversion {
	cp := *c
	return &cp
}
