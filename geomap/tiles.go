package geomap

import (
	"math"

	"vmap2toolkit/geom"
)

// TileSize is the default pixel size of a single slippy-map tile.
const TileSize = 256

// TileCalc converts between WGS84 longitude/latitude and slippy-map
// tile/pixel coordinates, in both the Google/OSM convention (y=0 at
// the north pole) and the TMS convention (y=0 at the south pole, the
// Google row flipped). The underlying projection is the same
// spherical Web Mercator conv.NewProjector("WEB") implements; this
// type only adds the zoom-dependent tile/pixel grid on top of it.
type TileCalc struct {
	TileSize int
}

// NewTileCalc returns a TileCalc using the standard 256px tile grid.
func NewTileCalc() TileCalc { return TileCalc{TileSize: TileSize} }

func (t TileCalc) tileSize() float64 {
	if t.TileSize <= 0 {
		return TileSize
	}
	return float64(t.TileSize)
}

// worldSize returns the total pixel width (== height) of the full
// world map at zoom z.
func (t TileCalc) worldSize(z int) float64 {
	return t.tileSize() * math.Exp2(float64(z))
}

// LonLatToPixel converts WGS84 degrees to global pixel coordinates at
// zoom z, in the Google/OSM (y-down from the north pole) convention.
func (t TileCalc) LonLatToPixel(p geom.Point, z int) geom.Point {
	ws := t.worldSize(z)
	x := (p.X + 180) / 360 * ws
	latRad := p.Y * math.Pi / 180
	sinLat := math.Sin(latRad)
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * ws
	return geom.Pt(x, y)
}

// PixelToLonLat is the inverse of LonLatToPixel.
func (t TileCalc) PixelToLonLat(px geom.Point, z int) geom.Point {
	ws := t.worldSize(z)
	lon := px.X/ws*360 - 180
	n := math.Pi - 2*math.Pi*px.Y/ws
	lat := 180 / math.Pi * math.Atan(0.5*(math.Exp(n)-math.Exp(-n)))
	return geom.Pt(lon, lat)
}

// RangeToTiles returns the Google/OSM tile index rectangle (tile
// units, not pixels) covering WGS84 rect r at zoom z.
func (t TileCalc) RangeToTiles(r geom.Rect, z int) geom.Rect {
	tlc := t.LonLatToPixel(geom.Pt(r.X, r.Y+r.H), z)
	brc := t.LonLatToPixel(geom.Pt(r.X+r.W, r.Y), z)
	ts := t.tileSize()
	return geom.NewRect(
		geom.Pt(math.Floor(tlc.X/ts), math.Floor(tlc.Y/ts)),
		geom.Pt(math.Ceil(brc.X/ts), math.Ceil(brc.Y/ts)),
	)
}

// TileToRange returns the WGS84 bounding rect of a single Google/OSM
// tile (x,y) at zoom z.
func (t TileCalc) TileToRange(tile geom.Point, z int) geom.Rect {
	ts := t.tileSize()
	tlc := t.PixelToLonLat(geom.Pt(tile.X*ts, tile.Y*ts), z)
	brc := t.PixelToLonLat(geom.Pt((tile.X+1)*ts, (tile.Y+1)*ts), z)
	return geom.NewRect(tlc, brc)
}

// googleYToTMS flips a Google/OSM tile row to the TMS convention (or
// back; the flip is its own inverse) at zoom z.
func googleYToTMS(y float64, z int) float64 {
	n := math.Exp2(float64(z))
	return n - 1 - y
}

// GTileToRange is TileToRange for a TMS-convention tile index.
func (t TileCalc) GTileToRange(tile geom.Point, z int) geom.Rect {
	g := geom.Pt(tile.X, googleYToTMS(tile.Y, z))
	return t.TileToRange(g, z)
}

// RangeToGTiles is RangeToTiles producing TMS-convention tile indices.
func (t TileCalc) RangeToGTiles(r geom.Rect, z int) geom.Rect {
	g := t.RangeToTiles(r, z)
	y0 := googleYToTMS(g.Y+g.H, z)
	return geom.Rect{X: g.X, Y: y0, W: g.W, H: g.H}
}
