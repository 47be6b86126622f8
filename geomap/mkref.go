package geomap

import (
	"fmt"
	"math"

	"vmap2toolkit/conv"
	"vmap2toolkit/geom"
)

// Margins sets a border around a built-in map reference's image, in
// pixels, set separately for each of the four sides.
type Margins struct {
	Top, Left, Right, Bottom int
}

// NomOptions controls NewFromNomSU/NewFromNomFI.
type NomOptions struct {
	DPI     float64 // default 300
	Mag     float64 // magnification, default 1
	North   bool    // orient map to geographic north (SU only)
	Margins Margins
}

func (o NomOptions) dpi() float64 {
	if o.DPI <= 0 {
		return 300
	}
	return o.DPI
}

func (o NomOptions) mag() float64 {
	if o.Mag <= 0 {
		return 1
	}
	return o.Mag
}

// NewFromNomSU builds a GeoMap covering the named Soviet nomenclature
// sheet. Grounded on original_source/geo_data/geo_mkref.cpp's
// geo_mkref_nom.
func NewFromNomSU(name string, o NomOptions) (*GeoMap, error) {
	r, _, err := NomToRangeSU(name)
	if err != nil {
		return nil, err
	}

	m := New()
	m.Name = name
	m.ImageDPI = o.dpi()

	lon0 := conv.Lon2Lon0(r.X + 1e-6)
	m.Proj = fmt.Sprintf("SU%d", lon0)

	// map projection -> pulkovo (SU_LL) -> wgs84
	projToPulkovo, err := conv.NewProj(m.Proj, "SU_LL", true)
	if err != nil {
		return nil, err
	}
	var toPulkovo conv.Conversion = projToPulkovo
	pulkovoToWGS, err := conv.NewProj("SU_LL", "WGS", true)
	if err != nil {
		return nil, err
	}

	// scale denominator / magnification, converted to meters per pixel
	k := float64(Scale1M.Denominator()) / o.mag() * 25.4e-3 / m.ImageDPI
	toPulkovo.RescaleSrc(k) // now: map pixels -> pulkovo

	if o.North {
		// Orient the map so pulkovo north is image-up: rotate around
		// the sheet's center by the local convergence angle.
		center := r.Center()
		a, err := bckAngle(toPulkovo, center, 0.1)
		if err == nil {
			rot := conv.NewAffineRotation(center, a)
			toPulkovo = toComposite(rot, toPulkovo)
		}
	}

	boundary := r.ToLine(true)
	brdPix, err := conv.BckAcc(toPulkovo, boundary, 1)
	if err != nil {
		return nil, err
	}
	brdPix = brdPix.Open()

	imgBBox, err := conv.BckAccRect(toPulkovo, r, 1)
	if err != nil {
		return nil, err
	}
	imgBBox = imgBBox.Floor()

	refPulk := r.ToLine(false)
	refPix, err := conv.Bck(toPulkovo, refPulk)
	if err != nil {
		return nil, err
	}
	refPix = refPix.Floor()

	refPulkBack, err := conv.Frw(toPulkovo, refPix)
	if err != nil {
		return nil, err
	}
	refWGS, err := conv.Frw(pulkovoToWGS, refPulkBack)
	if err != nil {
		return nil, err
	}

	imgBBox = geom.Rect{
		X: imgBBox.X - float64(o.Margins.Left), Y: imgBBox.Y - float64(o.Margins.Bottom),
		W: imgBBox.W + float64(o.Margins.Left+o.Margins.Right),
		H: imgBBox.H + float64(o.Margins.Top+o.Margins.Bottom),
	}

	brdPix = brdPix.Shift(geom.Pt(-imgBBox.X, -imgBBox.Y)).FlipY(imgBBox.H)
	refPix = refPix.Shift(geom.Pt(-imgBBox.X, -imgBBox.Y)).FlipY(imgBBox.H)

	m.ImageSize = geom.Pt(imgBBox.W, imgBBox.H)
	m.Border = geom.MultiLine{brdPix}
	if err := m.AddRefLines(refPix, refWGS); err != nil {
		return nil, err
	}
	return m, nil
}

// NewFromNomFI builds a GeoMap covering the named Finnish nomenclature
// sheet. Grounded on geo_mkref.cpp's geo_mkref_nom_fi.
func NewFromNomFI(name string, o NomOptions) (*GeoMap, error) {
	r, _, err := NomToRangeFI(name)
	if err != nil {
		return nil, err
	}

	m := New()
	m.Name = name
	m.ImageDPI = o.dpi()
	m.Proj = "ETRS-TM35FIN"

	toWGS, err := conv.NewProj(m.Proj, "WGS", true)
	if err != nil {
		return nil, err
	}

	k := 100000.0 * 25.4e-3 / o.mag() / m.ImageDPI
	toWGS.RescaleSrc(k)

	imgBBox := geom.Rect{X: r.X / k, Y: r.Y / k, W: r.W / k, H: r.H / k}.Rint()
	brdPix := imgBBox.ToLine(false)
	refPix := imgBBox.ToLine(false)
	refWGS, err := conv.Frw(toWGS, refPix)
	if err != nil {
		return nil, err
	}

	imgBBox = geom.Rect{
		X: imgBBox.X - float64(o.Margins.Left), Y: imgBBox.Y - float64(o.Margins.Bottom),
		W: imgBBox.W + float64(o.Margins.Left+o.Margins.Right),
		H: imgBBox.H + float64(o.Margins.Top+o.Margins.Bottom),
	}

	brdPix = brdPix.Shift(geom.Pt(-imgBBox.X, -imgBBox.Y)).FlipY(imgBBox.H)
	refPix = refPix.Shift(geom.Pt(-imgBBox.X, -imgBBox.Y)).FlipY(imgBBox.H)

	m.ImageSize = geom.Pt(imgBBox.W, imgBBox.H)
	m.Border = geom.MultiLine{brdPix}
	if err := m.AddRefLines(refPix, refWGS); err != nil {
		return nil, err
	}
	return m, nil
}

// NewFromTiles builds a GeoMap covering a slippy-map tile range at
// zoom z (Google/OSM convention unless google is false, in which case
// TMS row numbering is used). Grounded on geo_mkref.cpp's
// geo_mkref_tiles.
func NewFromTiles(tileRange geom.Rect, z int, google bool, mag float64) (*GeoMap, error) {
	if mag <= 0 {
		mag = 1
	}
	m := New()
	m.Name = fmt.Sprintf("tiles-z%d", z)
	m.Proj = "WEB"
	m.IsTiled = true

	tc := NewTileCalc()
	var tlc, brc geom.Point
	if google {
		tlc = tc.TileToRange(tileRange.TLC(), z).TLC()
		brc = tc.TileToRange(geom.Pt(tileRange.X+tileRange.W, tileRange.Y), z).TLC()
	} else {
		tlc = tc.GTileToRange(tileRange.TLC(), z).TLC()
		brc = tc.GTileToRange(geom.Pt(tileRange.X+tileRange.W, tileRange.Y), z).TLC()
	}

	m.ImageSize = geom.Pt(tileRange.W*float64(tc.tileSize())*mag, tileRange.H*float64(tc.tileSize())*mag)
	refWGS := geom.NewRect(tlc, brc).ToLine(false)
	refPix := geom.NewRect(geom.Pt(0, 0), m.ImageSize).ToLine(false)
	refPix = refPix.FlipY(m.ImageSize.Y)

	if err := m.AddRefLines(refPix, refWGS); err != nil {
		return nil, err
	}
	m.Border = geom.MultiLine{refPix}
	return m, nil
}

// NewFromWeb returns the canonical square world map used by slippy
// map viewers at zoom 0: a single 256x256 tile spanning the full Web
// Mercator domain. Grounded on geo_mkref.cpp's geo_mkref_web.
func NewFromWeb() *GeoMap {
	const mlat, mlon = 85.0511288, 180.0
	const wr = 256.0
	m := New()
	m.Name = "default"
	m.Proj = "WEB"
	m.ImageSize = geom.Pt(wr, wr)
	m.AddRef(geom.Pt(0, 0), geom.Pt(-mlon, mlat))
	m.AddRef(geom.Pt(wr, 0), geom.Pt(mlon, mlat))
	m.AddRef(geom.Pt(wr, wr), geom.Pt(mlon, -mlat))
	m.AddRef(geom.Pt(0, wr), geom.Pt(-mlon, -mlat))
	return m
}

// bckAngle estimates the rotation (radians) that would align the
// conversion's backward image of true-north at p with the image
// y-axis, by backward-converting two points d source-units apart
// along the meridian and measuring the resulting image-space bearing.
func bckAngle(c conv.Conversion, p geom.Point, d float64) (float64, error) {
	a, err := c.BckPt(p)
	if err != nil {
		return 0, err
	}
	b, err := c.BckPt(geom.Pt(p.X, p.Y+d))
	if err != nil {
		return 0, err
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return 0, nil
	}
	return -math.Atan2(dx, dy), nil
}

func toComposite(a *conv.Affine2D, c conv.Conversion) conv.Conversion {
	return conv.NewComposite(a, c)
}
