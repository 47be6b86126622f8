// Package contour extracts vector contour lines and river/ridge
// networks from a regular elevation grid, and reads that grid from
// GeoTIFF-style raster files. Grounded on
// original_source/image_cnt/image_cnt.cpp (contour crossing + segment
// merge), original_source/image_cnt/image_trace.cpp (sink tracing) and
// Klaus-Tockloth-dtm-elevation-service/gdal.go (godal-based raster
// access).
package contour

import "fmt"

// Grid is a 2D array of cell values addressed [row][col], i.e.
// Get(x, y) reads column x, row y, matching the original's image
// get_double(x, y) convention.
type Grid struct {
	W, H int
	data []float64
}

// NewGrid allocates a w×h grid filled with zero.
func NewGrid(w, h int) *Grid {
	if w <= 0 || h <= 0 {
		return &Grid{W: w, H: h}
	}
	return &Grid{W: w, H: h, data: make([]float64, w*h)}
}

func (g *Grid) idx(x, y int) int { return y*g.W + x }

// InBounds reports whether (x, y) is a valid cell.
func (g *Grid) InBounds(x, y int) bool { return x >= 0 && y >= 0 && x < g.W && y < g.H }

// Get returns the value at (x, y).
func (g *Grid) Get(x, y int) float64 { return g.data[g.idx(x, y)] }

// Set stores a value at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.data[g.idx(x, y)] = v }

// GetChecked returns the value at (x, y), or an error if out of bounds.
func (g *Grid) GetChecked(x, y int) (float64, error) {
	if !g.InBounds(x, y) {
		return 0, fmt.Errorf("contour: point (%d,%d) outside %dx%d grid", x, y, g.W, g.H)
	}
	return g.Get(x, y), nil
}
