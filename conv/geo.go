package conv

import (
	"math"

	"vmap2toolkit/geom"
)

// GeoEarthRadius is the spherical earth radius (meters) used by the
// geographic distance/bearing helpers below, matching the constant
// original_source/geo_data/geo_utils.cpp uses for geo_dist_2d.
const GeoEarthRadius = earthRadius

// GeoDist2D returns the great-circle (haversine) distance in meters
// between two WGS84 lon/lat points given in degrees. Grounded on
// original_source/geo_data/geo_utils.cpp's geo_dist_2d.
func GeoDist2D(a, b geom.Point) float64 {
	lat1, lat2 := deg2rad(a.Y), deg2rad(b.Y)
	dLat := deg2rad(b.Y - a.Y)
	dLon := deg2rad(b.X - a.X)
	sa := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(sa), math.Sqrt(1-sa))
	return GeoEarthRadius * c
}

// GeoBearing returns the initial bearing in degrees (0=north,
// clockwise) for the great-circle path from a to b.
func GeoBearing(a, b geom.Point) float64 {
	lat1, lat2 := deg2rad(a.Y), deg2rad(b.Y)
	dLon := deg2rad(b.X - a.X)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brg := rad2deg(math.Atan2(y, x))
	if brg < 0 {
		brg += 360
	}
	return brg
}

// GeoNearestDist returns the smallest GeoDist2D between p and any
// point on l, sampling vertex-to-vertex great-circle distance rather
// than geodesic-on-segment distance (the source line's segments are
// assumed short enough, as in mapsoft2's usage, that the difference is
// negligible). Grounded on geo_utils.cpp's geo_nearest_dist.
func GeoNearestDist(l geom.Line, p geom.Point) float64 {
	_, d := GeoNearestPoint(l, p)
	return d
}

// GeoLineLength returns the sum of great-circle segment distances
// along l, the geodesic analogue of geom.Line.Length used by
// rem_short (§4.7) to measure a line in meters rather than degrees.
func GeoLineLength(l geom.Line) float64 {
	var total float64
	for i := 1; i < len(l); i++ {
		total += GeoDist2D(l[i-1], l[i])
	}
	return total
}

// GeoNearestPoint returns the closest vertex of l to p (great-circle
// distance) and that distance in meters. Grounded on
// geo_utils.cpp's geo_nearest_pt.
func GeoNearestPoint(l geom.Line, p geom.Point) (geom.Point, float64) {
	var best geom.Point
	bestD := math.Inf(1)
	for _, q := range l {
		d := GeoDist2D(p, q)
		if d < bestD {
			bestD = d
			best = q
		}
	}
	return best, bestD
}
