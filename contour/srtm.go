package contour

import (
	"fmt"
	"math"

	"vmap2toolkit/cache"
)

// SRTMDir is a directory of 1x1 degree elevation tiles named the
// SRTM way (N55E037.hgt, S12W070.tif, ...), opened on demand and kept
// in a size-bounded cache. Grounded on original_source/srtm/srtm.cpp's
// SRTM class: SRTM::load's tile-name construction and its
// mutex-guarded srtm_cache (here cache.SizeCache, safe for concurrent
// use on its own).
type SRTMDir struct {
	dir   string
	cache *cache.SizeCache[tileKey, *Grid]
}

type tileKey struct{ lon, lat int }

// NewSRTMDir returns a reader over dir, keeping up to maxTiles decoded
// grids resident (0 = unlimited).
func NewSRTMDir(dir string, maxTiles int) *SRTMDir {
	limit := int64(0)
	if maxTiles > 0 {
		limit = int64(maxTiles)
	}
	return &SRTMDir{
		dir:   dir,
		cache: cache.NewSizeCache[tileKey, *Grid](limit, func(*Grid) int64 { return 1 }),
	}
}

// tileName builds the "N55E037"-style file stem for the 1x1 degree
// tile containing (lonDeg, latDeg), matching SRTM::load's iPoint key
// (floor of the coordinate) and NS/EW letter + zero-padded digit
// formatting.
func tileName(key tileKey) string {
	ns, lat := byte('N'), key.lat
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	ew, lon := byte('E'), key.lon
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d", ns, lat, ew, lon)
}

// keyFor floors (lonDeg, latDeg) to the tile it falls in, matching
// SRTM::load's iPoint(floor(x), floor(y)) key.
func keyFor(lonDeg, latDeg float64) tileKey {
	return tileKey{lon: int(math.Floor(lonDeg)), lat: int(math.Floor(latDeg))}
}

// loadTile tries the file extensions SRTM::load tries, in order
// (.hgt, .tif, .tiff, .hgt.gz all read through the same godal-backed
// ReadDEM here since godal already handles the common raster codecs
// mapsoft2 hand-rolls readers for).
func (s *SRTMDir) loadTile(key tileKey) (*Grid, error) {
	stem := s.dir + "/" + tileName(key)
	var lastErr error
	for _, ext := range []string{".hgt", ".tif", ".tiff", ".hgt.gz"} {
		g, err := ReadDEM(stem + ext)
		if err == nil {
			return g, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("contour: srtm tile %s not found in %s: %w", tileName(key), s.dir, lastErr)
}

// Height returns the elevation at (lonDeg, latDeg) by nearest-cell
// lookup within whichever 1x1 degree tile covers it, assuming the
// tile's raster spans exactly that degree square (the standard SRTM
// layout). Returns math.NaN() if the tile is missing or the point
// falls on a nodata cell.
func (s *SRTMDir) Height(lonDeg, latDeg float64) (float64, error) {
	key := keyFor(lonDeg, latDeg)
	g, err := s.cache.Get(key, func() (*Grid, error) { return s.loadTile(key) })
	if err != nil {
		return math.NaN(), err
	}
	fx := (lonDeg - float64(key.lon)) * float64(g.W-1)
	fy := (1 - (latDeg - float64(key.lat))) * float64(g.H-1)
	x, y := int(math.Round(fx)), int(math.Round(fy))
	if !g.InBounds(x, y) {
		return math.NaN(), fmt.Errorf("contour: point (%g,%g) outside tile %s", lonDeg, latDeg, tileName(key))
	}
	return g.Get(x, y), nil
}
