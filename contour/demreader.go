package contour

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
)

// ReadDEM opens a single-band raster (GeoTIFF or any GDAL-supported
// format) and loads it fully into a Grid, using the file's own pixel
// grid (no resampling); callers needing a particular CRS reproject
// before or after with the conv package. Grounded on
// Klaus-Tockloth-dtm-elevation-service/gdal.go's getElevationFromUTM,
// generalized from single-pixel lookups to a bulk read.
func ReadDEM(path string) (*Grid, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contour: open %s: %w", path, err)
	}
	defer ds.Close()

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("contour: geotransform %s: %w", path, err)
	}
	if gt[2] != 0 || gt[4] != 0 {
		return nil, fmt.Errorf("contour: %s is rotated/skewed, not supported", path)
	}

	structure := ds.Structure()
	w, h := structure.SizeX, structure.SizeY

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("contour: %s has no raster bands", path)
	}
	band := bands[0]

	buf := make([]float64, w*h)
	if err := band.Read(0, 0, buf, w, h); err != nil {
		return nil, fmt.Errorf("contour: read %s: %w", path, err)
	}

	g := NewGrid(w, h)
	nodata, hasNoData := band.NoData()
	copy(g.data, buf)
	if hasNoData {
		for i, v := range g.data {
			if v == nodata {
				g.data[i] = math.NaN()
			}
		}
	}
	return g, nil
}

// DEMGeoTransform exposes the affine pixel-to-CRS mapping of a DEM
// file as returned by GDAL: X = gt[0] + col*gt[1] + row*gt[2],
// Y = gt[3] + col*gt[4] + row*gt[5].
type DEMGeoTransform [6]float64

// PixelToCRS maps a (col, row) pixel position to CRS coordinates.
func (gt DEMGeoTransform) PixelToCRS(col, row float64) (x, y float64) {
	return gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]
}

// ReadDEMGeoTransform reads just the geotransform of a raster file,
// without loading pixel data, for callers that already have a Grid
// (e.g. from ReadDEM) and need its spatial reference separately.
func ReadDEMGeoTransform(path string) (DEMGeoTransform, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return DEMGeoTransform{}, fmt.Errorf("contour: open %s: %w", path, err)
	}
	defer ds.Close()
	gt, err := ds.GeoTransform()
	if err != nil {
		return DEMGeoTransform{}, fmt.Errorf("contour: geotransform %s: %w", path, err)
	}
	return DEMGeoTransform(gt), nil
}
