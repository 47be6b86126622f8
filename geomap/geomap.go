package geomap

import (
	"vmap2toolkit/conv"
	"vmap2toolkit/geom"
)

// GeoMap binds an image's pixel grid to WGS84 geographic coordinates
// via a set of reference points, plus the map's border, projection
// name and (for slippy-map sources) tile parameters. Grounded on
// original_source/geo_data/geo_data.h's GeoMap.
type GeoMap struct {
	Name string
	Comm string

	// Ref maps image-pixel points to their WGS84 lon/lat equivalent.
	// At least 3 non-collinear pairs are required to build a Conv.
	Ref map[geom.Point]geom.Point

	// Border is the map's valid area, in image pixel coordinates.
	Border geom.MultiLine

	// Proj is the mapsoft2-style projection alias or a libproj string
	// (see conv.NewProjector); empty means WGS84 geographic.
	Proj string

	Image     string
	ImageSize geom.Point
	ImageDPI  float64

	TileSize    int
	TileSwapY   bool
	IsTiled     bool
	TileMinZ    int
	TileMaxZ    int
}

// New returns an empty GeoMap with mapsoft2's defaults.
func New() *GeoMap {
	return &GeoMap{
		Ref:      map[geom.Point]geom.Point{},
		ImageDPI: 300,
		TileSize: 256,
		TileMaxZ: 18,
	}
}

// Empty reports whether the map has no reference points.
func (m *GeoMap) Empty() bool { return len(m.Ref) == 0 }

// AddRef records a single image-pixel -> WGS84 correspondence.
func (m *GeoMap) AddRef(img, wgs geom.Point) {
	if m.Ref == nil {
		m.Ref = map[geom.Point]geom.Point{}
	}
	m.Ref[img] = wgs
}

// AddRefLines records correspondences between two equal-length lines,
// pairing points positionally.
func (m *GeoMap) AddRefLines(img, wgs geom.Line) error {
	if len(img) != len(wgs) {
		return &GeoMapError{Msg: "AddRefLines: mismatched point counts"}
	}
	for i := range img {
		m.AddRef(img[i], wgs[i])
	}
	return nil
}

// GeoMapError reports a malformed GeoMap operation.
type GeoMapError struct{ Msg string }

func (e *GeoMapError) Error() string { return "geomap: " + e.Msg }

// Shift translates every reference point and the border by d, in
// image pixel coordinates.
func (m *GeoMap) Shift(d geom.Point) {
	ref := make(map[geom.Point]geom.Point, len(m.Ref))
	for img, wgs := range m.Ref {
		ref[img.Add(d)] = wgs
	}
	m.Ref = ref
	m.Border = m.Border.Shift(d)
}

// Scale multiplies every reference point, the border, and the image
// size by k, in image pixel coordinates.
func (m *GeoMap) Scale(k float64) {
	ref := make(map[geom.Point]geom.Point, len(m.Ref))
	for img, wgs := range m.Ref {
		ref[img.Mul(k)] = wgs
	}
	m.Ref = ref
	m.Border = m.Border.Mul(k)
	m.ImageSize = m.ImageSize.Mul(k)
}

// BBoxRefImg returns the bounding box of the reference points in
// image pixel coordinates.
func (m *GeoMap) BBoxRefImg() geom.Rect {
	r := geom.EmptyRect()
	for img := range m.Ref {
		r = r.Expand(img)
	}
	return r
}

// BBoxRefWGS returns the bounding box of the reference points in
// WGS84 coordinates.
func (m *GeoMap) BBoxRefWGS() geom.Rect {
	r := geom.EmptyRect()
	for _, wgs := range m.Ref {
		r = r.Expand(wgs)
	}
	return r
}

// BBox returns the map's extent in image pixel coordinates: the image
// size if set, otherwise the union of reference points and border.
func (m *GeoMap) BBox() geom.Rect {
	if m.ImageSize.X > 0 || m.ImageSize.Y > 0 {
		return geom.NewRect(geom.Pt(0, 0), m.ImageSize)
	}
	r := m.BBoxRefImg()
	for _, l := range m.Border {
		r = r.Union(l.BBox())
	}
	return r
}

// Conv builds the Conversion from this map's image pixel coordinates
// to WGS84, by least-squares fitting an affine transform through the
// reference points and composing it with the named projection (when
// Proj names something other than plain WGS84 geographic). Grounded
// on original_source/geo_data/conv_geo.h's ConvMap.
func (m *GeoMap) Conv() (conv.Conversion, error) {
	if len(m.Ref) < 3 {
		return nil, &GeoMapError{Msg: "at least 3 reference points are required to build a conversion"}
	}
	var imgPts, wgsPts []geom.Point
	for img, wgs := range m.Ref {
		imgPts = append(imgPts, img)
		wgsPts = append(wgsPts, wgs)
	}
	if m.Proj == "" || m.Proj == "WGS" {
		return conv.NewAffineFromPoints(imgPts, wgsPts)
	}
	// Fit image pixels -> projected coordinates (the projection's own
	// frame, not WGS84), then project -> WGS84.
	var projPts []geom.Point
	p, err := conv.NewProj(m.Proj, "WGS", true)
	if err != nil {
		return nil, err
	}
	for _, wgs := range wgsPts {
		pp, err := p.BckPt(wgs)
		if err != nil {
			return nil, err
		}
		projPts = append(projPts, pp)
	}
	affine, err := conv.NewAffineFromPoints(imgPts, projPts)
	if err != nil {
		return nil, err
	}
	return conv.NewComposite(affine, p), nil
}
