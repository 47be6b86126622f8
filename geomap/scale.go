// Package geomap implements GeoMap, the binding between an image's
// pixel grid and geographic (WGS84) coordinates, plus the builders
// that construct one from a Soviet or Finnish nomenclature sheet name,
// a tile range, an explicit projection, or an existing geo dataset.
package geomap

// Scale identifies the nominal denominator of a nomenclature sheet
// ("1:N"), both for the Soviet system (NomSU) and the Finnish system
// (NomFI). The zero value is ScaleUnknown.
type Scale int

const (
	ScaleUnknown Scale = iota
	Scale1M             // 1:1 000 000
	Scale500k           // 1:500 000
	Scale200k           // 1:200 000
	ScaleH200k          // 1:200 000 half-sheet (L/R)
	Scale100k           // 1:100 000
	ScaleH100k          // 1:100 000 half-sheet
	Scale50k            // 1:50 000
	ScaleH50k           // 1:50 000 half-sheet
	Scale25k            // 1:25 000
	ScaleH25k           // 1:25 000 half-sheet
	Scale10k            // 1:10 000
	ScaleH10k           // 1:10 000 half-sheet
	Scale5k             // 1:5 000
	ScaleH5k            // 1:5 000 half-sheet
)

// Denominator returns the map scale denominator N in "1:N" (half
// sheets share their parent's denominator, since they cover half the
// area at the same scale).
func (s Scale) Denominator() int {
	switch s {
	case Scale1M:
		return 1000000
	case Scale500k:
		return 500000
	case Scale200k, ScaleH200k:
		return 200000
	case Scale100k, ScaleH100k:
		return 100000
	case Scale50k, ScaleH50k:
		return 50000
	case Scale25k, ScaleH25k:
		return 25000
	case Scale10k, ScaleH10k:
		return 10000
	case Scale5k, ScaleH5k:
		return 5000
	default:
		return 0
	}
}
